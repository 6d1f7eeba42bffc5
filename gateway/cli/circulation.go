package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/reconciler"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) borrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <bookId>",
		Short: "Borrow a book (borrower)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Borrower)
			if err != nil {
				return err
			}
			if err := a.loadCatalog(ctx); err != nil {
				a.log.Warn("borrow: books", zap.Error(err))
			}
			book, ok := a.lookupBook(args[0])
			if !ok {
				book = model.Book{ID: args[0]}
			}
			msg, err := a.api.Borrow(ctx, book.ID)
			if err != nil {
				return a.fail(ctx, err)
			}
			a.succeed(ctx, msg.Message, "Book borrowed")
			if b, ok := a.catalog.Adjust(book, -1); ok {
				fmt.Fprintln(cmd.OutOrStdout(), a.term.Muted(fmt.Sprintf("%s: %d of %d available", b.Title, b.Available, b.Quantity)))
			}
			a.events.Publish(ctx, broker.Event{Topic: broker.TopicBorrowRecords, AttemptID: uuid.NewString()})
			return nil
		},
	}
}

func (a *App) returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <bookId|isbn>",
		Short: "Return a borrowed book (borrower)",
		Long: `Return a book by its id or isbn.

The active borrow record of the book is looked up in the borrow history,
returned, and the history is read again to confirm the return.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Borrower)
			if err != nil {
				return err
			}
			if err := a.loadCatalog(ctx); err != nil {
				a.log.Warn("return: books", zap.Error(err))
			}
			book, ok := a.lookupBook(args[0])
			if !ok {
				book = model.Book{ID: args[0], ISBN: args[0]}
			}
			out, err := a.returns.Return(ctx, book)
			if err != nil {
				return a.fail(ctx, err)
			}
			return a.outcome(cmd, out)
		},
	}
}

// outcome prints the availability change of a finished return. The
// reconciler already sent the notification.
func (a *App) outcome(cmd *cobra.Command, out reconciler.Outcome) error {
	if out.Book != nil {
		fmt.Fprintln(cmd.OutOrStdout(), a.term.Muted(fmt.Sprintf("%s: %d of %d available", out.Book.Title, out.Book.Available, out.Book.Quantity)))
	}
	if out.Returned() || out.Notification.Level != notify.LevelError {
		return nil
	}
	if out.Err == nil {
		return reported{errors.New(out.Notification.Message)}
	}
	return reported{out.Err}
}

func (a *App) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the borrow history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd)
			if err != nil {
				return err
			}
			records, err := a.api.History(ctx)
			if err != nil {
				return a.fail(ctx, err)
			}
			if err := a.loadCatalog(ctx); err != nil {
				a.log.Warn("history: books", zap.Error(err))
			}
			printHistory(cmd.OutOrStdout(), view.HistoryRows(records, a.catalog.Books()))
			return nil
		},
	}
}

func printHistory(w io.Writer, rows []view.HistoryRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No borrow history.")
		return
	}
	t := newTable(w, titleWidth, authorWidth, isbnWidth, dateWidth, dateWidth, statusWidth)
	t.header("Title", "Author", "ISBN", "Borrowed", "Returned", "Status")
	for _, r := range rows {
		t.row(r.Title, orDash(r.Author), orDash(r.ISBN), r.BorrowedAt, r.ReturnedAt, r.Status)
	}
}

func (a *App) loansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Show active loans, overdue books and holds (borrower)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Borrower)
			if err != nil {
				return err
			}
			records, err := a.api.History(ctx)
			if err != nil {
				return a.fail(ctx, err)
			}
			a.printLoans(cmd.OutOrStdout(), view.Summarize(records, a.now()))
			return nil
		},
	}
	cmd.AddCommand(a.loansReturnCmd())
	return cmd
}

func (a *App) printLoans(w io.Writer, loans view.Loans) {
	sections := []struct {
		title   string
		records []model.BorrowRecord
	}{
		{"Active loans", loans.Active},
		{"Overdue", loans.Overdue},
		{"Holds", loans.Holds},
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", a.term.Heading(s.title), len(s.records))
		if len(s.records) == 0 {
			fmt.Fprintln(w, a.term.Muted("none"))
			continue
		}
		t := newTable(w, idWidth, titleWidth, dateWidth, dateWidth)
		t.header("Borrow ID", "Title", "Borrowed", "Due")
		for _, rec := range s.records {
			t.row(rec.ID, orDash(rec.BookTitle()), rec.BorrowedAt.Date(), rec.DueAt.Date())
		}
	}
}

func (a *App) loansReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrowId>",
		Short: "Return a loan by its borrow id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Borrower)
			if err != nil {
				return err
			}
			if err := a.loadCatalog(ctx); err != nil {
				a.log.Warn("return loan: books", zap.Error(err))
			}
			loan, err := a.findLoan(ctx, args[0])
			if err != nil {
				return a.fail(ctx, err)
			}
			out, err := a.returns.ReturnLoan(ctx, loan)
			if err != nil {
				return a.fail(ctx, err)
			}
			return a.outcome(cmd, out)
		},
	}
}

// findLoan picks the loan row from the history; an unknown id is returned
// as a bare record and left to the API to judge.
func (a *App) findLoan(ctx context.Context, borrowID string) (model.BorrowRecord, error) {
	records, err := a.api.History(ctx)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	for _, rec := range records {
		if rec.ID == borrowID {
			return rec, nil
		}
	}
	return model.BorrowRecord{ID: borrowID}, nil
}
