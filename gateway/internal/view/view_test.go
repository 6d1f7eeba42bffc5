package view_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Adjust(t *testing.T) {
	t.Parallel()
	c := view.NewCatalog(
		model.Book{ID: "b1", ISBN: "111", Quantity: 3, Available: 1},
		model.Book{ID: "b2", ISBN: "222", Quantity: 1, Available: 0},
	)

	got, ok := c.Adjust(model.Book{ISBN: "111"}, 1)
	require.True(t, ok)
	require.Equal(t, 2, got.Available)

	got, ok = c.Adjust(model.Book{ID: "b2"}, -1)
	require.True(t, ok)
	require.Equal(t, 0, got.Available)

	_, ok = c.Adjust(model.Book{ID: "b9"}, 1)
	require.False(t, ok)

	require.True(t, c.Remove("222"))
	require.False(t, c.Remove("222"))
	require.Equal(t, 1, c.Len())

	c.Upsert(model.Book{ID: "b1", ISBN: "111", Title: "Dune", Available: 5})
	b, ok := c.Get(model.Book{ID: "b1"})
	require.True(t, ok)
	require.Equal(t, "Dune", b.Title)
}

func TestCatalog_ConcurrentAdjust(t *testing.T) {
	t.Parallel()
	c := view.NewCatalog(model.Book{ID: "b1", Available: 0})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Adjust(model.Book{ID: "b1"}, 1)
		}()
	}
	wg.Wait()
	b, _ := c.Get(model.Book{ID: "b1"})
	require.Equal(t, 50, b.Available)
}

func TestCatalog_BooksIsACopy(t *testing.T) {
	t.Parallel()
	c := view.NewCatalog(model.Book{ID: "b1", Available: 1})
	books := c.Books()
	books[0].Available = 99
	b, _ := c.Get(model.Book{ID: "b1"})
	require.Equal(t, 1, b.Available)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []model.BorrowRecord{
		{ID: "active", DueAt: model.NewTimestamp(now.Add(48 * time.Hour))},
		{ID: "overdue", DueAt: model.NewTimestamp(now.Add(-48 * time.Hour))},
		{ID: "returned-late", DueAt: model.NewTimestamp(now.Add(-48 * time.Hour)), ReturnedAt: model.NewTimestamp(now)},
		{ID: "hold", Status: "On-Hold"},
		{ID: "no-due"},
	}
	loans := view.Summarize(records, now)

	ids := func(recs []model.BorrowRecord) []string {
		out := make([]string, 0, len(recs))
		for _, r := range recs {
			out = append(out, r.ID)
		}
		return out
	}
	require.Equal(t, []string{"active", "overdue", "hold", "no-due"}, ids(loans.Active))
	require.Equal(t, []string{"overdue"}, ids(loans.Overdue))
	require.Equal(t, []string{"hold"}, ids(loans.Holds))

	empty := view.Summarize(nil, now)
	require.NotNil(t, empty.Active)
	require.Empty(t, empty.Overdue)
}

func TestComputeStats(t *testing.T) {
	t.Parallel()
	books := []model.Book{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}
	records := []model.BorrowRecord{
		{ID: "r1", UserID: "u1"},
		{ID: "r2", UserID: "u1"},
		{ID: "r3", UserID: "u2", ReturnedAt: model.ParseTimestamp("2024-01-01")},
		{ID: "r4", UserID: "u3"},
		{ID: "r5"},
	}
	require.Equal(t, view.Stats{TotalBooks: 3, TotalBorrows: 5, ActiveBorrowers: 2}, view.ComputeStats(books, records))
}

func TestHistoryRows(t *testing.T) {
	t.Parallel()
	books := []model.Book{{ID: "b2", Title: "Solaris", Author: "Lem", ISBN: "222"}}
	records := []model.BorrowRecord{
		{
			BookID:     "b1",
			Book:       &model.Book{ID: "b1", Title: "Dune", Author: "Herbert", ISBN: "111"},
			BorrowedAt: model.NewTimestamp(time.Date(2024, 1, 5, 12, 0, 0, 0, time.Local)),
			ReturnedAt: model.ParseTimestamp("soon"),
		},
		{BookID: "b2", Status: "hold"},
		{BookID: "b9"},
	}
	rows := view.HistoryRows(records, books)
	require.Len(t, rows, 3)

	require.Equal(t, "Dune", rows[0].Title)
	require.Equal(t, "2024-01-05", rows[0].BorrowedAt)
	require.Equal(t, "soon", rows[0].ReturnedAt)
	require.Equal(t, "returned", rows[0].Status)

	require.Equal(t, view.HistoryRow{Title: "Solaris", Author: "Lem", ISBN: "222", BorrowedAt: "-", ReturnedAt: "-", Status: "hold"}, rows[1])

	require.Equal(t, "Unknown", rows[2].Title)
	require.Equal(t, "borrowed", rows[2].Status)
}

func TestWithTitles(t *testing.T) {
	t.Parallel()
	records := []model.BorrowRecord{
		{ID: "r1", BookID: "b1"},
		{ID: "r2", BookID: "b2", Title: "Kept"},
		{ID: "r3", BookID: "b9"},
	}
	books := []model.Book{{ID: "b1", Title: "Dune"}, {ID: "b2", Title: "Other"}}

	got := view.WithTitles(records, books)
	require.Equal(t, "Dune", got[0].BookTitle())
	require.Equal(t, "Kept", got[1].BookTitle())
	require.Empty(t, got[2].BookTitle())
	require.Empty(t, records[0].Title)
}
