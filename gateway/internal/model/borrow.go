package model

type BorrowRecord struct {
	ID     string `json:"id"`
	BookID string `json:"bookId"`
	Book   *Book  `json:"book,omitempty"`
	// Title and ISBN are flat copies some endpoints send next to a bare book id.
	Title      string    `json:"bookTitle,omitempty"`
	ISBN       string    `json:"isbn,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	UserName   string    `json:"userName,omitempty"`
	BorrowedAt Timestamp `json:"borrowDate"`
	DueAt      Timestamp `json:"dueDate"`
	ReturnedAt Timestamp `json:"returnedAt"`
	Status     string    `json:"status,omitempty"`
}

var (
	recordIDKeys   = []string{"_id", "id", "borrowId", "borrow_id"}
	bookRefKeys    = []string{"bookId", "book", "bookDetails"}
	userRefKeys    = []string{"user", "userId", "member", "user_id", "memberId"}
	borrowedAtKeys = []string{"borrowDate", "borrow_date", "borrowedAt", "borrowed_at", "createdAt", "created_at"}
	dueAtKeys      = []string{"dueDate", "due_date"}
	returnedAtKeys = []string{"returnedAt", "returned_at", "returnDate", "return_date"}
)

func (r *BorrowRecord) UnmarshalJSON(data []byte) error {
	m, err := decodeObject(data)
	if err != nil {
		return err
	}
	rec := BorrowRecord{
		ID:         firstString(m, recordIDKeys...),
		Title:      firstString(m, "bookTitle", "book_title", "title"),
		ISBN:       firstString(m, "isbn", "ISBN"),
		UserName:   firstString(m, "userName", "user_name"),
		BorrowedAt: firstTimestamp(m, borrowedAtKeys...),
		DueAt:      firstTimestamp(m, dueAtKeys...),
		ReturnedAt: firstTimestamp(m, returnedAtKeys...),
		Status:     firstString(m, "status"),
	}

	for _, k := range bookRefKeys {
		switch v := m[k].(type) {
		case map[string]any:
			if rec.Book == nil {
				b := bookFromMap(v)
				rec.Book = &b
			}
		default:
			if rec.BookID == "" {
				rec.BookID = scalar(v)
			}
		}
	}
	if rec.BookID == "" && rec.Book != nil {
		rec.BookID = rec.Book.ID
	}

	for _, k := range userRefKeys {
		switch v := m[k].(type) {
		case map[string]any:
			if rec.UserID == "" {
				rec.UserID = firstString(v, "_id", "id")
			}
			if rec.UserName == "" {
				rec.UserName = firstString(v, "name", "fullName", "email")
			}
		default:
			if rec.UserID == "" {
				rec.UserID = scalar(v)
			}
		}
	}

	*r = rec
	return nil
}

func (r BorrowRecord) Returned() bool {
	return r.ReturnedAt.IsSet()
}

func (r BorrowRecord) BookISBN() string {
	if r.Book != nil && r.Book.ISBN != "" {
		return r.Book.ISBN
	}
	return r.ISBN
}

func (r BorrowRecord) BookTitle() string {
	if r.Title != "" {
		return r.Title
	}
	if r.Book != nil {
		return r.Book.Title
	}
	return ""
}

func (r BorrowRecord) BookAuthor() string {
	if r.Book != nil {
		return r.Book.Author
	}
	return ""
}
