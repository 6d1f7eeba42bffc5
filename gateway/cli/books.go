package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func (a *App) booksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
		Long: `Browse the catalog. Librarians can also add, edit and delete books.

Available subcommands:
  list   - List or search books
  add    - Add a book
  edit   - Change a book, addressed by isbn or id
  delete - Delete a book by isbn`,
	}
	cmd.AddCommand(a.booksListCmd(), a.booksAddCmd(), a.booksEditCmd(), a.booksDeleteCmd())
	return cmd
}

func (a *App) booksListCmd() *cobra.Command {
	var q model.BookQuery
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "search"},
		Short:   "List or search books",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.optional(cmd)
			books, err := a.api.ListBooks(ctx, q)
			if err != nil {
				return a.fail(ctx, err)
			}
			if q == (model.BookQuery{}) {
				a.catalog.Replace(books)
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		},
	}
	cmd.Flags().StringVarP(&q.Q, "query", "q", "", "Search title, author or isbn")
	cmd.Flags().StringVar(&q.ID, "id", "", "Fetch a single book by id")
	return cmd
}

func printBooks(w io.Writer, books []model.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	t := newTable(w, idWidth, titleWidth, authorWidth, isbnWidth, 9)
	t.header("ID", "Title", "Author", "ISBN", "Available")
	for _, b := range books {
		t.row(b.ID, b.Title, b.Author, b.ISBN, fmt.Sprintf("%d/%d", b.Available, b.Quantity))
	}
}

type bookFlags struct {
	in model.BookInput
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Title, "title", "", "Book title")
	fs.StringVar(&f.in.Author, "author", "", "Book author")
	fs.StringVar(&f.in.ISBN, "isbn", "", "Book isbn")
	fs.IntVar(&f.in.Quantity, "quantity", 1, "Copies owned")
	fs.IntVar(&f.in.Available, "available", 0, "Copies on the shelf (defaults to quantity)")
}

// apply overlays the flags the user set on base.
func (f *bookFlags) apply(fs *pflag.FlagSet, base model.BookInput) model.BookInput {
	if fs.Changed("title") {
		base.Title = f.in.Title
	}
	if fs.Changed("author") {
		base.Author = f.in.Author
	}
	if fs.Changed("isbn") {
		base.ISBN = f.in.ISBN
	}
	if fs.Changed("quantity") {
		base.Quantity = f.in.Quantity
	}
	if fs.Changed("available") {
		base.Available = f.in.Available
	}
	return base
}

func (a *App) booksAddCmd() *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (librarian)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			in := f.in
			if !cmd.Flags().Changed("available") {
				in.Available = in.Quantity
			}
			if err := a.validator.Validate(&in); err != nil {
				return errors.Wrap(err, "book")
			}
			msg, err := a.api.CreateBook(ctx, in)
			if err != nil {
				return a.fail(ctx, err)
			}
			a.succeed(ctx, msg.Message, "Book added")
			return nil
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("isbn")
	return cmd
}

func (a *App) booksEditCmd() *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "edit <isbn|id>",
		Short: "Change a book (librarian)",
		Long: `Change a book. Fields not given keep their current value.

The book is addressed by isbn first and by its id second.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			if err := a.loadCatalog(ctx); err != nil {
				return a.fail(ctx, err)
			}
			ref, ok := a.lookupBook(args[0])
			if !ok {
				ref = model.Book{ISBN: args[0], ID: args[0]}
			}
			in := f.apply(cmd.Flags(), model.BookInput{
				Title:     ref.Title,
				Author:    ref.Author,
				ISBN:      ref.ISBN,
				Quantity:  ref.Quantity,
				Available: ref.Available,
			})
			if err := a.validator.Validate(&in); err != nil {
				return errors.Wrap(err, "book")
			}
			msg, err := a.api.UpdateBook(ctx, ref, in)
			if err != nil {
				return a.fail(ctx, err)
			}
			a.succeed(ctx, msg.Message, "Book updated")
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *App) booksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <isbn>",
		Aliases: []string{"rm"},
		Short:   "Delete a book (librarian)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authorize(cmd, role.Librarian)
			if err != nil {
				return err
			}
			msg, err := a.api.DeleteBook(ctx, args[0])
			if err != nil {
				return a.fail(ctx, err)
			}
			a.catalog.Remove(args[0])
			a.succeed(ctx, msg.Message, "Book deleted")
			return nil
		},
	}
}

func (a *App) loadCatalog(ctx context.Context) error {
	books, err := a.api.ListBooks(ctx, model.BookQuery{})
	if err != nil {
		return err
	}
	a.catalog.Replace(books)
	return nil
}

// lookupBook finds a catalog book by id or isbn.
func (a *App) lookupBook(ref string) (model.Book, bool) {
	return a.catalog.Get(model.Book{ID: ref, ISBN: ref})
}
