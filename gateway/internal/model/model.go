package model

import (
	"github.com/Astemirdum/bookhub/gateway/internal/role"
)

type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"availableBooks"`
}

func (b *Book) UnmarshalJSON(data []byte) error {
	m, err := decodeObject(data)
	if err != nil {
		return err
	}
	*b = bookFromMap(m)
	return nil
}

func bookFromMap(m map[string]any) Book {
	b := Book{
		ID:     firstString(m, "_id", "id", "bookId"),
		Title:  firstString(m, "title", "name"),
		Author: firstString(m, "author"),
		ISBN:   firstString(m, "isbn", "ISBN"),
	}
	b.Quantity, _ = firstInt(m, "quantity", "total", "totalQuantity")
	b.Available, _ = firstInt(m, "availableBooks", "available")
	return b
}

// SameAs compares two copies of a book by db id, then isbn.
func (b Book) SameAs(other Book) bool {
	if b.ID != "" && b.ID == other.ID {
		return true
	}
	return b.ISBN != "" && b.ISBN == other.ISBN
}

type User struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  role.Role `json:"role"`
	// Raw is the record exactly as the API sent it.
	Raw map[string]any `json:"-"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	m, err := decodeObject(data)
	if err != nil {
		return err
	}
	*u = UserFromRaw(m)
	return nil
}

func UserFromRaw(m map[string]any) User {
	return User{
		ID:    firstString(m, "_id", "id", "userId"),
		Name:  firstString(m, "name", "fullName", "username"),
		Email: firstString(m, "email"),
		Role:  role.Resolve(m),
		Raw:   m,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Message struct {
	Message string `json:"message"`
}

type BookQuery struct {
	Q  string `query:"q"`
	ID string `query:"id"`
}

type BookInput struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	ISBN      string `json:"isbn" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Available int    `json:"availableBooks" validate:"gte=0,ltefield=Quantity"`
}

type BorrowRequest struct {
	BookID string `json:"bookId" validate:"required"`
}

type BorrowerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type BorrowUpdate struct {
	ReturnDate Timestamp `json:"returnDate"`
}
