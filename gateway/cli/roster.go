package cli

import (
	"fmt"
	"io"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (a *App) borrowersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borrowers",
		Short: "Manage the borrower roster (librarian)",
		Long: `Manage borrow records and borrowers.

Available subcommands:
  list          - List borrow records
  add           - Add a borrower
  mark-returned - Set the return date of a record to now
  delete        - Delete a borrow record`,
	}
	cmd.AddCommand(a.borrowersListCmd(), a.borrowersAddCmd(), a.markReturnedCmd(), a.borrowersDeleteCmd())
	return cmd
}

func (a *App) borrowersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List borrow records",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			var (
				records []model.BorrowRecord
				books   []model.Book
			)
			gg, gctx := errgroup.WithContext(ctx)
			gg.Go(func() error {
				var err error
				records, err = a.api.ListBorrowers(gctx)
				return err
			})
			gg.Go(func() error {
				list, err := a.api.ListBooks(gctx, model.BookQuery{})
				if err != nil {
					a.log.Warn("borrowers: books", zap.Error(err))
					return nil
				}
				books = list
				return nil
			})
			if err := gg.Wait(); err != nil {
				return a.fail(ctx, err)
			}
			printRoster(cmd.OutOrStdout(), view.WithTitles(records, books))
			return nil
		},
	}
}

func printRoster(w io.Writer, records []model.BorrowRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No borrow records.")
		return
	}
	t := newTable(w, idWidth, nameWidth, titleWidth, dateWidth, dateWidth, dateWidth)
	t.header("ID", "Borrower", "Title", "Borrowed", "Due", "Returned")
	for _, rec := range records {
		borrower := rec.UserName
		if borrower == "" {
			borrower = rec.UserID
		}
		t.row(rec.ID, orDash(borrower), orDash(rec.BookTitle()),
			rec.BorrowedAt.Date(), rec.DueAt.Date(), rec.ReturnedAt.Date())
	}
}

func (a *App) borrowersAddCmd() *cobra.Command {
	var in model.BorrowerInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a borrower",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			if err := a.validator.Validate(&in); err != nil {
				return errors.Wrap(err, "borrower")
			}
			msg, err := a.api.CreateBorrower(ctx, in)
			if err != nil {
				return a.fail(ctx, err)
			}
			a.succeed(ctx, msg.Message, "Borrower added")
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Borrower name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Borrower email (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) markReturnedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-returned <borrowId>",
		Short: "Set the return date of a borrow record to now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			msg, err := a.api.MarkReturned(ctx, args[0])
			if err != nil {
				return a.fail(ctx, err)
			}
			a.events.Publish(ctx, broker.Event{Topic: broker.TopicBorrowRecords, AttemptID: uuid.NewString()})
			a.succeed(ctx, msg.Message, "Marked as returned")
			return nil
		},
	}
}

func (a *App) borrowersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <borrowId>",
		Aliases: []string{"rm"},
		Short:   "Delete a borrow record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			msg, err := a.api.DeleteBorrow(ctx, args[0])
			if err != nil {
				return a.fail(ctx, err)
			}
			a.events.Publish(ctx, broker.Event{Topic: broker.TopicBorrowRecords, AttemptID: uuid.NewString()})
			a.succeed(ctx, msg.Message, "Borrow record deleted")
			return nil
		},
	}
}

func (a *App) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library totals (librarian)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			var (
				books   []model.Book
				records []model.BorrowRecord
				gg      errgroup.Group
			)
			gg.Go(func() error {
				list, err := a.api.ListBooks(ctx, model.BookQuery{})
				if err != nil {
					a.log.Warn("stats: books", zap.Error(err))
					return nil
				}
				books = list
				return nil
			})
			gg.Go(func() error {
				list, err := a.api.ListBorrowers(ctx)
				if err != nil {
					a.log.Warn("stats: borrowers", zap.Error(err))
					return nil
				}
				records = list
				return nil
			})
			_ = gg.Wait()

			st := view.ComputeStats(books, records)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.term.Heading("Library"))
			fmt.Fprintf(out, "%-18s %d\n", "Total books", st.TotalBooks)
			fmt.Fprintf(out, "%-18s %d\n", "Total borrows", st.TotalBorrows)
			fmt.Fprintf(out, "%-18s %d\n", "Active borrowers", st.ActiveBorrowers)
			return nil
		},
	}
}
