package matcher_test

import (
	"testing"

	"github.com/Astemirdum/bookhub/gateway/internal/matcher"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func rec(id, bookID, isbn, returned string) model.BorrowRecord {
	r := model.BorrowRecord{ID: id, BookID: bookID, ReturnedAt: model.ParseTimestamp(returned)}
	if isbn != "" {
		r.Book = &model.Book{ID: bookID, ISBN: isbn}
	}
	return r
}

func TestFindActive(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		target    matcher.Target
		records   []model.BorrowRecord
		wantID    string
		wantIndex int
	}{
		{
			name:      "single active record by book id",
			target:    matcher.Target{BookID: "b1"},
			records:   []model.BorrowRecord{rec("r0", "b0", "", ""), rec("r1", "b1", "", "")},
			wantID:    "r1",
			wantIndex: 1,
		},
		{
			name:      "skips returned records",
			target:    matcher.Target{BookID: "b1"},
			records:   []model.BorrowRecord{rec("r1", "b1", "", "2024-01-01"), rec("r2", "b1", "", "")},
			wantID:    "r2",
			wantIndex: 1,
		},
		{
			name:      "isbn secondary match",
			target:    matcher.Target{BookID: "other-db-id", ISBN: "111"},
			records:   []model.BorrowRecord{rec("r1", "b1", "111", "")},
			wantID:    "r1",
			wantIndex: 0,
		},
		{
			name:      "first match wins",
			target:    matcher.Target{BookID: "b1"},
			records:   []model.BorrowRecord{rec("r1", "b1", "", ""), rec("r2", "b1", "", "")},
			wantID:    "r1",
			wantIndex: 0,
		},
		{
			name:      "never cross matches books",
			target:    matcher.Target{BookID: "b1", ISBN: "111"},
			records:   []model.BorrowRecord{rec("r2", "b2", "222", ""), rec("r3", "b3", "", "")},
			wantIndex: -1,
		},
		{
			name:      "empty isbn does not match empty isbn",
			target:    matcher.Target{ISBN: ""},
			records:   []model.BorrowRecord{rec("r1", "", "", "")},
			wantIndex: -1,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := matcher.FindActive(tt.target, tt.records)
			require.Equal(t, tt.wantIndex, res.Index)
			require.Equal(t, tt.wantID, res.Record.ID)
			if tt.wantIndex >= 0 {
				require.Equal(t, matcher.StatusActive, res.Status)
			}
		})
	}
}

func TestLookup_FallsBackToReturned(t *testing.T) {
	t.Parallel()
	records := []model.BorrowRecord{
		rec("r0", "b0", "", ""),
		rec("r1", "b1", "", "2024-02-03T10:00:00Z"),
	}
	res := matcher.Lookup(matcher.Target{BookID: "b1"}, records)
	require.Equal(t, matcher.StatusReturned, res.Status)
	require.Equal(t, "r1", res.Record.ID)
	require.Equal(t, "2024-02-03T10:00:00Z", res.ReturnedAt().Raw)

	none := matcher.Lookup(matcher.Target{BookID: "b9"}, records)
	require.False(t, none.Found())
	require.Equal(t, "not_found", none.Status.String())
}

func TestVerify_PrefersRecordID(t *testing.T) {
	t.Parallel()
	records := []model.BorrowRecord{
		rec("old", "b1", "111", "2023-01-01"),
		rec("new", "b1", "111", ""),
	}
	res := matcher.Verify(matcher.Target{RecordID: "new", BookID: "b1", ISBN: "111"}, records)
	require.Equal(t, "new", res.Record.ID)
	require.Equal(t, matcher.StatusActive, res.Status)

	gone := matcher.Verify(matcher.Target{RecordID: "missing", ISBN: "111"}, records)
	require.Equal(t, "old", gone.Record.ID)
}

func TestFind_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	records := []model.BorrowRecord{
		rec("r1", "b1", "111", "2024-01-01"),
		rec("r2", "b1", "111", ""),
	}
	before := make([]model.BorrowRecord, len(records))
	copy(before, records)
	target := matcher.Target{BookID: "b1"}

	first := matcher.Lookup(target, records)
	second := matcher.Lookup(target, records)

	opts := cmpopts.IgnoreFields(model.Timestamp{}, "Time")
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("lookup not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, records, opts); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
	require.Same(t, records[0].Book, before[0].Book)
}

func TestTargetOfLoan(t *testing.T) {
	t.Parallel()
	loan := model.BorrowRecord{ID: "r1", Book: &model.Book{ID: "b1", ISBN: "111"}}
	require.Equal(t, matcher.Target{RecordID: "r1", BookID: "b1", ISBN: "111"}, matcher.TargetOfLoan(loan))
	require.True(t, matcher.Target{}.Empty())
	require.Equal(t, matcher.Target{BookID: "b2", ISBN: "222"}, matcher.TargetOf(model.Book{ID: "b2", ISBN: "222"}))
}
