package cli_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeBook struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"availableBooks"`
}

type fakeRecord struct {
	ID         string  `json:"_id"`
	BookID     string  `json:"bookId"`
	UserID     string  `json:"userId"`
	BorrowDate string  `json:"borrowDate"`
	DueDate    string  `json:"dueDate,omitempty"`
	ReturnDate *string `json:"returnDate"`
}

type fakeUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// fakeAPI is an in-memory library API.
type fakeAPI struct {
	mu      sync.Mutex
	books   []fakeBook
	records []fakeRecord
	users   map[string]fakeUser
	// expired makes every authenticated call answer 401.
	expired bool
	// ghostReturns accepts returns without recording a date.
	ghostReturns bool
	calls        []string

	srv *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		books: []fakeBook{
			{ID: "b1", Title: "Dune", Author: "Frank Herbert", ISBN: "111", Quantity: 3, Available: 2},
			{ID: "b2", Title: "Solaris", Author: "Stanislaw Lem", ISBN: "222", Quantity: 1, Available: 1},
		},
		users: map[string]fakeUser{
			"lib@bookhub.io": {ID: "u1", Name: "Lena", Email: "lib@bookhub.io", Role: "Librarian"},
			"bob@bookhub.io": {ID: "u2", Name: "Bob", Email: "bob@bookhub.io", Role: "borrower"},
		},
	}
	api.srv = httptest.NewServer(http.StripPrefix("/api", http.HandlerFunc(api.serve)))
	t.Cleanup(api.srv.Close)
	return api
}

func (f *fakeAPI) URL() string { return f.srv.URL + "/api" }

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) book(id string) fakeBook {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.books {
		if b.ID == id {
			return b
		}
	}
	return fakeBook{}
}

func (f *fakeAPI) addRecord(rec fakeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
}

func (f *fakeAPI) setGhostReturns(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ghostReturns = v
}

func (f *fakeAPI) setExpired(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = v
}

func reply(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func msg(text string) map[string]string {
	return map[string]string{"message": text}
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	if r.Method == http.MethodPost && path == "login" {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		u, ok := f.users[in.Email]
		if !ok || in.Password != "pw" {
			reply(w, http.StatusUnauthorized, msg("Invalid credentials"))
			return
		}
		reply(w, http.StatusOK, map[string]any{"token": "tok-" + u.ID, "user": u})
		return
	}

	user, ok := f.userOf(r)
	if !ok {
		if r.Method == http.MethodGet && path == "books" && r.Header.Get("Authorization") == "" {
			reply(w, http.StatusOK, map[string]any{"books": f.books})
			return
		}
		reply(w, http.StatusUnauthorized, msg("Token expired"))
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "books":
		q := strings.ToLower(r.URL.Query().Get("q"))
		out := []fakeBook{}
		for _, b := range f.books {
			if q == "" || strings.Contains(strings.ToLower(b.Title), q) {
				out = append(out, b)
			}
		}
		reply(w, http.StatusOK, map[string]any{"books": out})
	case r.Method == http.MethodPost && path == "books":
		var b fakeBook
		_ = json.NewDecoder(r.Body).Decode(&b)
		b.ID = "b" + b.ISBN
		f.books = append(f.books, b)
		reply(w, http.StatusCreated, msg("Book created"))
	case r.Method == http.MethodPut && parts[0] == "books" && len(parts) == 2:
		for i, b := range f.books {
			if b.ISBN == parts[1] {
				var in fakeBook
				_ = json.NewDecoder(r.Body).Decode(&in)
				in.ID = b.ID
				f.books[i] = in
				reply(w, http.StatusOK, msg("Book updated"))
				return
			}
		}
		reply(w, http.StatusNotFound, msg("Book not found"))
	case r.Method == http.MethodDelete && parts[0] == "books" && len(parts) == 2:
		for i, b := range f.books {
			if b.ISBN == parts[1] {
				f.books = append(f.books[:i], f.books[i+1:]...)
				reply(w, http.StatusOK, msg("Book deleted"))
				return
			}
		}
		reply(w, http.StatusNotFound, msg("Book not found"))
	case r.Method == http.MethodPost && path == "borrow":
		var in struct {
			BookID string `json:"bookId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i, b := range f.books {
			if b.ID != in.BookID {
				continue
			}
			if b.Available == 0 {
				reply(w, http.StatusBadRequest, msg("No copies available"))
				return
			}
			f.books[i].Available--
			f.records = append(f.records, fakeRecord{
				ID:         "r" + b.ID + user.ID,
				BookID:     b.ID,
				UserID:     user.ID,
				BorrowDate: "2024-03-01T10:00:00Z",
				DueDate:    "2024-03-15T10:00:00Z",
			})
			reply(w, http.StatusCreated, msg("Book borrowed successfully"))
			return
		}
		reply(w, http.StatusNotFound, msg("Book not found"))
	case r.Method == http.MethodGet && path == "borrow/history":
		reply(w, http.StatusOK, map[string]any{"history": f.records})
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "borrow" && parts[1] == "return":
		f.returnRecord(w, parts[2])
	case r.Method == http.MethodGet && path == "borrowers":
		reply(w, http.StatusOK, map[string]any{"borrowers": f.records})
	case r.Method == http.MethodPost && path == "borrowers":
		reply(w, http.StatusCreated, msg("Borrower created"))
	case r.Method == http.MethodPut && parts[0] == "borrowers" && len(parts) == 2:
		f.returnRecord(w, parts[1])
	case r.Method == http.MethodDelete && parts[0] == "borrowers" && len(parts) == 2:
		for i, rec := range f.records {
			if rec.ID == parts[1] {
				f.records = append(f.records[:i], f.records[i+1:]...)
				reply(w, http.StatusOK, msg("Record deleted"))
				return
			}
		}
		reply(w, http.StatusNotFound, msg("Record not found"))
	default:
		reply(w, http.StatusNotFound, msg("Not found"))
	}
}

func (f *fakeAPI) returnRecord(w http.ResponseWriter, id string) {
	for i, rec := range f.records {
		if rec.ID != id {
			continue
		}
		if rec.ReturnDate != nil {
			reply(w, http.StatusBadRequest, msg("Book already returned"))
			return
		}
		if !f.ghostReturns {
			at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
			f.records[i].ReturnDate = &at
		}
		for j, b := range f.books {
			if b.ID == rec.BookID {
				f.books[j].Available++
			}
		}
		reply(w, http.StatusOK, msg("Book returned successfully"))
		return
	}
	reply(w, http.StatusNotFound, msg("Borrow record not found"))
}

func (f *fakeAPI) userOf(r *http.Request) (fakeUser, bool) {
	if f.expired {
		return fakeUser{}, false
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	for _, u := range f.users {
		if token == "tok-"+u.ID {
			return u, true
		}
	}
	return fakeUser{}, false
}
