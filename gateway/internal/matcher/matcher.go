// Package matcher finds the borrow record a book-level action refers to.
//
// The library API hands out books and borrow records from separate endpoints
// and the UI never learns a borrow id up front, so a return has to be tied to
// its record by book identity.
package matcher

import (
	"github.com/Astemirdum/bookhub/gateway/internal/model"
)

type Status uint8

const (
	StatusNotFound Status = iota
	StatusActive
	StatusReturned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusReturned:
		return "returned"
	default:
		return "not_found"
	}
}

// Target identifies what to look for. Empty fields never match.
type Target struct {
	RecordID string
	BookID   string
	ISBN     string
}

func TargetOf(book model.Book) Target {
	return Target{BookID: book.ID, ISBN: book.ISBN}
}

// TargetOfLoan builds a target from a loan row of the borrower dashboard.
func TargetOfLoan(rec model.BorrowRecord) Target {
	t := Target{RecordID: rec.ID, BookID: rec.BookID, ISBN: rec.BookISBN()}
	if t.BookID == "" && rec.Book != nil {
		t.BookID = rec.Book.ID
	}
	return t
}

func (t Target) Empty() bool {
	return t.RecordID == "" && t.BookID == "" && t.ISBN == ""
}

type Result struct {
	Status Status
	// Index points into the searched slice, -1 when nothing matched.
	Index  int
	Record model.BorrowRecord
}

func (r Result) Found() bool {
	return r.Status != StatusNotFound
}

func (r Result) ReturnedAt() model.Timestamp {
	return r.Record.ReturnedAt
}

// Matches reports whether rec refers to the target's record or book.
func (t Target) Matches(rec model.BorrowRecord) bool {
	if t.RecordID != "" && rec.ID == t.RecordID {
		return true
	}
	if t.BookID != "" && rec.BookID == t.BookID {
		return true
	}
	isbn := rec.BookISBN()
	return t.ISBN != "" && isbn != "" && isbn == t.ISBN
}

// FindActive returns the first unreturned record matching the target.
func FindActive(t Target, records []model.BorrowRecord) Result {
	return find(t, records, func(rec model.BorrowRecord) bool {
		return !rec.Returned()
	})
}

// FindAny returns the first matching record regardless of its return state.
func FindAny(t Target, records []model.BorrowRecord) Result {
	return find(t, records, func(model.BorrowRecord) bool { return true })
}

// Lookup prefers an active record. When the book has none it falls back to a
// returned one so callers can say when the book came back instead of
// reporting nothing.
func Lookup(t Target, records []model.BorrowRecord) Result {
	if res := FindActive(t, records); res.Found() {
		return res
	}
	return FindAny(t, records)
}

// Verify locates the record a return was issued for. An exact record id wins
// over book identity, so an older returned loan of the same book cannot
// confirm a newer one.
func Verify(t Target, records []model.BorrowRecord) Result {
	if t.RecordID != "" {
		byID := Target{RecordID: t.RecordID}
		if res := FindAny(byID, records); res.Found() {
			return res
		}
	}
	return FindAny(Target{BookID: t.BookID, ISBN: t.ISBN}, records)
}

func find(t Target, records []model.BorrowRecord, keep func(model.BorrowRecord) bool) Result {
	if t.Empty() {
		return notFound()
	}
	for i := range records {
		rec := records[i]
		if !keep(rec) || !t.Matches(rec) {
			continue
		}
		status := StatusActive
		if rec.Returned() {
			status = StatusReturned
		}
		return Result{Status: status, Index: i, Record: rec}
	}
	return notFound()
}

func notFound() Result {
	return Result{Status: StatusNotFound, Index: -1}
}
