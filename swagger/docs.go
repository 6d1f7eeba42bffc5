// Package swagger holds the OpenAPI description of the gateway routes
// served under /swagger/.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "tags": ["session"],
                "summary": "Log in against the library API",
                "parameters": [
                    {"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "token and user", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "invalid input"},
                    "401": {"description": "invalid credentials"}
                }
            }
        },
        "/logout": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["session"],
                "summary": "Drop the session",
                "responses": {"200": {"description": "logged out", "schema": {"$ref": "#/definitions/model.Message"}}}
            }
        },
        "/me": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["session"],
                "summary": "User of the session",
                "responses": {"200": {"description": "user", "schema": {"$ref": "#/definitions/model.User"}}}
            }
        },
        "/books": {
            "get": {
                "tags": ["books"],
                "summary": "List or search books",
                "parameters": [
                    {"type": "string", "in": "query", "name": "q", "description": "title search"},
                    {"type": "string", "in": "query", "name": "id", "description": "book id"}
                ],
                "responses": {"200": {"description": "books with the returning flag"}}
            },
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["books"],
                "summary": "Create a book (librarian)",
                "parameters": [
                    {"in": "body", "name": "book", "required": true, "schema": {"$ref": "#/definitions/model.BookInput"}}
                ],
                "responses": {
                    "201": {"description": "created", "schema": {"$ref": "#/definitions/handler.mutationResponse"}},
                    "400": {"description": "invalid input"},
                    "403": {"description": "not a librarian"}
                }
            }
        },
        "/books/{isbn}": {
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["books"],
                "summary": "Update a book by isbn, falling back to its id (librarian)",
                "parameters": [
                    {"type": "string", "in": "path", "name": "isbn", "required": true},
                    {"type": "string", "in": "query", "name": "id", "description": "book id"},
                    {"in": "body", "name": "book", "required": true, "schema": {"$ref": "#/definitions/model.BookInput"}}
                ],
                "responses": {"200": {"description": "updated", "schema": {"$ref": "#/definitions/handler.mutationResponse"}}}
            },
            "delete": {
                "security": [{"Bearer": []}],
                "tags": ["books"],
                "summary": "Delete a book (librarian)",
                "parameters": [{"type": "string", "in": "path", "name": "isbn", "required": true}],
                "responses": {"200": {"description": "deleted", "schema": {"$ref": "#/definitions/handler.mutationResponse"}}}
            }
        },
        "/books/{bookId}/borrow": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["circulation"],
                "summary": "Borrow a book (borrower)",
                "parameters": [{"type": "string", "in": "path", "name": "bookId", "required": true}],
                "responses": {"201": {"description": "borrowed", "schema": {"$ref": "#/definitions/handler.mutationResponse"}}}
            }
        },
        "/books/{bookId}/return": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["circulation"],
                "summary": "Return a book and confirm it in the history (borrower)",
                "parameters": [
                    {"type": "string", "in": "path", "name": "bookId", "required": true},
                    {"type": "string", "in": "query", "name": "isbn"}
                ],
                "responses": {
                    "200": {"description": "outcome with notification"},
                    "409": {"description": "return already in progress"}
                }
            }
        },
        "/history": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["circulation"],
                "summary": "Borrow history",
                "responses": {"200": {"description": "history rows"}}
            }
        },
        "/loans": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["circulation"],
                "summary": "Active, overdue and held loans (borrower)",
                "responses": {"200": {"description": "loan dashboard"}}
            }
        },
        "/loans/{borrowId}/return": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["circulation"],
                "summary": "Return a loan by its borrow id (borrower)",
                "parameters": [{"type": "string", "in": "path", "name": "borrowId", "required": true}],
                "responses": {
                    "200": {"description": "outcome with notification"},
                    "409": {"description": "return already in progress"}
                }
            }
        },
        "/borrowers": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["borrowers"],
                "summary": "Borrow records with book titles (librarian)",
                "responses": {"200": {"description": "borrow records"}}
            },
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["borrowers"],
                "summary": "Create a borrower (librarian)",
                "parameters": [
                    {"in": "body", "name": "borrower", "required": true, "schema": {"$ref": "#/definitions/model.BorrowerInput"}}
                ],
                "responses": {"201": {"description": "created", "schema": {"$ref": "#/definitions/handler.mutationResponse"}}}
            }
        },
        "/borrowers/{borrowId}/returned": {
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["borrowers"],
                "summary": "Set the return date of a record to now (librarian)",
                "parameters": [{"type": "string", "in": "path", "name": "borrowId", "required": true}],
                "responses": {"200": {"description": "updated", "schema": {"$ref": "#/definitions/handler.mutationResponse"}}}
            }
        },
        "/borrowers/{borrowId}": {
            "delete": {
                "security": [{"Bearer": []}],
                "tags": ["borrowers"],
                "summary": "Delete a borrow record (librarian)",
                "parameters": [{"type": "string", "in": "path", "name": "borrowId", "required": true}],
                "responses": {"200": {"description": "deleted", "schema": {"$ref": "#/definitions/handler.mutationResponse"}}}
            }
        },
        "/stats": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["borrowers"],
                "summary": "Library totals (librarian)",
                "responses": {"200": {"description": "totals"}}
            }
        },
        "/events": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["events"],
                "summary": "Server-sent borrow record changes, scoped to the session user",
                "produces": ["text/event-stream"],
                "parameters": [{"type": "string", "in": "query", "name": "token", "description": "token for EventSource clients"}],
                "responses": {"200": {"description": "event stream"}}
            }
        }
    },
    "definitions": {
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "handler.mutationResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "notification": {"$ref": "#/definitions/notify.Notification"}
            }
        },
        "model.BookInput": {
            "type": "object",
            "required": ["author", "isbn", "title"],
            "properties": {
                "author": {"type": "string"},
                "availableBooks": {"type": "integer", "minimum": 0},
                "isbn": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 0},
                "title": {"type": "string"}
            }
        },
        "model.BorrowerInput": {
            "type": "object",
            "required": ["email", "name"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "model.Message": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.User": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["librarian", "borrower"]}
            }
        },
        "notify.Notification": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["success", "info", "warning", "error"]},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "BookHub gateway",
	Description:      "Backend for the BookHub front end: sessions, catalog, circulation and borrow record events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
