package view

import (
	"strings"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
)

// Loans is the borrower dashboard.
type Loans struct {
	Active  []model.BorrowRecord `json:"active"`
	Overdue []model.BorrowRecord `json:"overdue"`
	Holds   []model.BorrowRecord `json:"holds"`
}

// Summarize splits a borrower's records. Overdue loans are unreturned ones
// with a due date before now; they also stay in Active.
func Summarize(records []model.BorrowRecord, now time.Time) Loans {
	out := Loans{
		Active:  []model.BorrowRecord{},
		Overdue: []model.BorrowRecord{},
		Holds:   []model.BorrowRecord{},
	}
	for _, rec := range records {
		if IsHold(rec) {
			out.Holds = append(out.Holds, rec)
		}
		if rec.Returned() {
			continue
		}
		out.Active = append(out.Active, rec)
		if rec.DueAt.Valid() && rec.DueAt.Time.Before(now) {
			out.Overdue = append(out.Overdue, rec)
		}
	}
	return out
}

func IsHold(rec model.BorrowRecord) bool {
	switch strings.ToLower(strings.TrimSpace(rec.Status)) {
	case "hold", "on-hold", "on_hold":
		return true
	}
	return false
}

// Stats is the librarian dashboard.
type Stats struct {
	TotalBooks      int `json:"totalBooks"`
	TotalBorrows    int `json:"totalBorrows"`
	ActiveBorrowers int `json:"activeBorrowers"`
}

// ComputeStats counts distinct user ids among unreturned records. Records
// without a user id are not counted as borrowers.
func ComputeStats(books []model.Book, records []model.BorrowRecord) Stats {
	users := make(map[string]struct{})
	for _, rec := range records {
		if rec.Returned() || rec.UserID == "" {
			continue
		}
		users[rec.UserID] = struct{}{}
	}
	return Stats{
		TotalBooks:      len(books),
		TotalBorrows:    len(records),
		ActiveBorrowers: len(users),
	}
}

type HistoryRow struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	BorrowedAt string `json:"borrowDate"`
	ReturnedAt string `json:"returnDate"`
	Status     string `json:"status"`
}

// HistoryRows flattens records for display. Books missing from the record
// are looked up in books by id.
func HistoryRows(records []model.BorrowRecord, books []model.Book) []HistoryRow {
	byID := make(map[string]model.Book, len(books))
	for _, b := range books {
		if b.ID != "" {
			byID[b.ID] = b
		}
	}
	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		row := HistoryRow{
			Title:      rec.BookTitle(),
			Author:     rec.BookAuthor(),
			ISBN:       rec.BookISBN(),
			BorrowedAt: rec.BorrowedAt.Date(),
			ReturnedAt: rec.ReturnedAt.Date(),
			Status:     StatusOf(rec),
		}
		if b, ok := byID[rec.BookID]; ok {
			if row.Title == "" {
				row.Title = b.Title
			}
			if row.Author == "" {
				row.Author = b.Author
			}
			if row.ISBN == "" {
				row.ISBN = b.ISBN
			}
		}
		if row.Title == "" {
			row.Title = "Unknown"
		}
		rows = append(rows, row)
	}
	return rows
}

func StatusOf(rec model.BorrowRecord) string {
	if rec.Status != "" {
		return rec.Status
	}
	if rec.Returned() {
		return "returned"
	}
	return "borrowed"
}

// WithTitles fills missing book titles of roster rows from the catalog.
func WithTitles(records []model.BorrowRecord, books []model.Book) []model.BorrowRecord {
	byID := make(map[string]model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	out := make([]model.BorrowRecord, len(records))
	for i, rec := range records {
		if rec.BookTitle() == "" {
			if b, ok := byID[rec.BookID]; ok {
				rec.Title = b.Title
			}
		}
		out[i] = rec
	}
	return out
}
