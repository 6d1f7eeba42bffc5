package cli_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/bookhub/gateway/cli"
	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t     *testing.T
	api   *fakeAPI
	store *session.MemoryPersister
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:     t,
		api:   newFakeAPI(t),
		store: &session.MemoryPersister{},
		now:   time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := cli.NewRootCmd(
		cli.WithPersister(h.store),
		cli.WithPasswordReader(func() (string, error) { return "pw", nil }),
		cli.WithClock(func() time.Time { return h.now }),
	)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--api", h.api.URL()))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) login(email string) {
	h.t.Helper()
	_, err := h.run("login", "--email", email, "--password", "pw")
	require.NoError(h.t, err)
}

func (h *harness) current() session.Session {
	h.t.Helper()
	s, err := h.store.Load()
	require.NoError(h.t, err)
	return s
}

func TestLogin(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	out, err := h.run("login", "--email", "lib@bookhub.io", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as Lena (librarian)")

	s := h.current()
	require.Equal(t, "tok-u1", s.Token)
	require.Equal(t, role.Librarian, s.Role())

	out, err = h.run("whoami")
	require.NoError(t, err)
	require.Contains(t, out, "lib@bookhub.io")
	require.Contains(t, out, "Role:  librarian")
}

func TestLogin_PromptsForPassword(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	out, err := h.run("login", "-e", "bob@bookhub.io")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as Bob (borrower)")
	require.Equal(t, role.Borrower, h.current().Role())
}

func TestLogin_Rejected(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	out, err := h.run("login", "--email", "lib@bookhub.io", "--password", "nope")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Contains(t, out, "Invalid credentials")
	require.NotContains(t, out, "Session expired")
	require.False(t, h.current().Valid())
}

func TestLogin_InvalidEmail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, err := h.run("login", "--email", "not-an-email", "--password", "pw")
	require.Error(t, err)
	require.Empty(t, h.api.Calls())
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("bob@bookhub.io")

	out, err := h.run("logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")
	require.False(t, h.current().Valid())

	_, err = h.run("whoami")
	require.ErrorContains(t, err, "not logged in")
}

func TestBooksList(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	out, err := h.run("books", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Dune")
	require.Contains(t, out, "Solaris")
	require.Contains(t, out, "2/3")

	h.login("lib@bookhub.io")
	out, err = h.run("books", "search", "-q", "dun")
	require.NoError(t, err)
	require.Contains(t, out, "Dune")
	require.NotContains(t, out, "Solaris")
}

func TestRoleGuards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		login string
		args  []string
	}{
		{name: "borrower cannot add books", login: "bob@bookhub.io", args: []string{"books", "add", "--title", "T", "--author", "A", "--isbn", "9"}},
		{name: "borrower cannot read the roster", login: "bob@bookhub.io", args: []string{"borrowers", "list"}},
		{name: "borrower cannot read stats", login: "bob@bookhub.io", args: []string{"stats"}},
		{name: "librarian cannot borrow", login: "lib@bookhub.io", args: []string{"borrow", "b1"}},
		{name: "librarian has no loans", login: "lib@bookhub.io", args: []string{"loans"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			h.login(tt.login)
			before := len(h.api.Calls())

			_, err := h.run(tt.args...)
			require.ErrorIs(t, err, errs.ErrForbiddenRole)
			require.Len(t, h.api.Calls(), before)
		})
	}
}

func TestBorrowAndReturn(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("bob@bookhub.io")

	out, err := h.run("borrow", "b1")
	require.NoError(t, err)
	require.Contains(t, out, "Book borrowed successfully")
	require.Contains(t, out, "Dune: 1 of 3 available")

	out, err = h.run("return", "111")
	require.NoError(t, err)
	require.Contains(t, out, "Book returned successfully")
	require.Contains(t, out, "Dune: 2 of 3 available")
	require.Contains(t, h.api.Calls(), "POST /borrow/return/rb1u2")
	require.Equal(t, 2, h.api.book("b1").Available)
}

func TestReturn_Outcomes(t *testing.T) {
	t.Parallel()
	returned := "2024-03-02T08:30:00Z"
	tests := []struct {
		name       string
		records    []fakeRecord
		ghost      bool
		wantOut    string
		wantErr    error
		wantReturn bool
	}{
		{
			name:    "already returned before",
			records: []fakeRecord{{ID: "r1", BookID: "b1", UserID: "u2", ReturnDate: &returned}},
			wantOut: "Book already returned on",
		},
		{
			name:    "no borrow record",
			wantOut: "No active borrow record found for this book",
			wantErr: errs.ErrNoActiveBorrow,
		},
		{
			name:       "return not recorded by the api",
			records:    []fakeRecord{{ID: "r1", BookID: "b1", UserID: "u2"}},
			ghost:      true,
			wantOut:    "has not recorded a return date yet",
			wantReturn: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			for _, rec := range tt.records {
				h.api.addRecord(rec)
			}
			h.api.setGhostReturns(tt.ghost)
			h.login("bob@bookhub.io")

			out, err := h.run("return", "b1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Contains(t, out, tt.wantOut)
			require.Equal(t, tt.wantReturn, containsCall(h.api.Calls(), "POST /borrow/return/r1"))
		})
	}
}

func TestLoans(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("bob@bookhub.io")
	_, err := h.run("borrow", "b2")
	require.NoError(t, err)

	out, err := h.run("loans")
	require.NoError(t, err)
	require.Contains(t, out, "Active loans (1)")
	require.Contains(t, out, "Overdue (1)")
	require.Contains(t, out, "Holds (0)")
	require.Contains(t, out, "rb2u2")

	out, err = h.run("loans", "return", "rb2u2")
	require.NoError(t, err)
	require.Contains(t, out, "Book returned successfully")

	out, err = h.run("loans", "return", "rb2u2")
	require.NoError(t, err)
	require.Contains(t, out, "Book already returned on")
}

func TestHistory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	returned := "2024-03-02T08:30:00Z"
	h.api.addRecord(fakeRecord{ID: "r1", BookID: "b2", UserID: "u2", BorrowDate: "2024-02-20T08:30:00Z", ReturnDate: &returned})
	h.login("bob@bookhub.io")

	out, err := h.run("history")
	require.NoError(t, err)
	require.Contains(t, out, "Solaris")
	require.Contains(t, out, "Stanislaw Lem")
	require.Contains(t, out, "returned")
}

func TestSessionExpired(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("bob@bookhub.io")
	h.api.setExpired(true)

	out, err := h.run("history")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Contains(t, out, "Session expired, log in again")
	require.False(t, h.current().Valid())
}

func TestRoster(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.addRecord(fakeRecord{ID: "r1", BookID: "b1", UserID: "u2", BorrowDate: "2024-03-01T10:00:00Z"})
	h.login("lib@bookhub.io")

	out, err := h.run("borrowers", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Dune")
	require.Contains(t, out, "u2")

	out, err = h.run("stats")
	require.NoError(t, err)
	require.Contains(t, out, "Total books        2")
	require.Contains(t, out, "Total borrows      1")
	require.Contains(t, out, "Active borrowers   1")

	out, err = h.run("borrowers", "mark-returned", "r1")
	require.NoError(t, err)
	require.Contains(t, out, "Book returned successfully")
	require.Contains(t, h.api.Calls(), "PUT /borrowers/r1")

	out, err = h.run("borrowers", "delete", "r1")
	require.NoError(t, err)
	require.Contains(t, out, "Record deleted")

	out, err = h.run("borrowers", "add", "--name", "Ann", "--email", "ann@bookhub.io")
	require.NoError(t, err)
	require.Contains(t, out, "Borrower created")
}

func TestBooksManagement(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("lib@bookhub.io")

	out, err := h.run("books", "add", "--title", "Hyperion", "--author", "Dan Simmons", "--isbn", "333", "--quantity", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Book created")
	require.Equal(t, 2, h.api.book("b333").Available)

	out, err = h.run("books", "edit", "b1", "--available", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Book updated")
	updated := h.api.book("b1")
	require.Equal(t, "Dune", updated.Title)
	require.Equal(t, 1, updated.Available)
	require.Contains(t, h.api.Calls(), "PUT /books/111")

	_, err = h.run("books", "edit", "111", "--available", "9")
	require.Error(t, err)

	out, err = h.run("books", "delete", "222")
	require.NoError(t, err)
	require.Contains(t, out, "Book deleted")
	require.Empty(t, h.api.book("b2").ID)
}

func containsCall(calls []string, want string) bool {
	for _, c := range calls {
		if c == want {
			return true
		}
	}
	return false
}
