package handler

import (
	"net/http"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/labstack/echo/v4"
)

type bookRow struct {
	model.Book
	// Returning marks a book whose return is running; the UI disables its
	// return control.
	Returning bool `json:"returning"`
}

type booksResponse struct {
	Books []bookRow `json:"books"`
}

func (h *Handler) ListBooks(c echo.Context) error {
	var q model.BookQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	books, err := h.librarySvc.ListBooks(ctx, q)
	if err != nil {
		return httpError(err)
	}
	if q.Q == "" && q.ID == "" {
		h.catalog.Replace(books)
	}
	rows := make([]bookRow, 0, len(books))
	for _, b := range books {
		rows = append(rows, bookRow{Book: b, Returning: h.returns.InFlight(ctx, b.ID) || h.returns.InFlight(ctx, b.ISBN)})
	}
	return c.JSON(http.StatusOK, booksResponse{Books: rows})
}

func (h *Handler) CreateBook(c echo.Context) error {
	var in model.BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.librarySvc.CreateBook(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	h.catalog.Upsert(bookOf(in))
	return h.succeed(c, http.StatusCreated, notify.Success(textOr(msg.Message, "Book added")), nil)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	var in model.BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ref := model.Book{ISBN: c.Param("isbn"), ID: c.QueryParam("id")}
	if known, ok := h.catalog.Get(model.Book{ISBN: ref.ISBN}); ok && ref.ID == "" {
		ref.ID = known.ID
	}
	msg, err := h.librarySvc.UpdateBook(c.Request().Context(), ref, in)
	if err != nil {
		return h.fail(c, err)
	}
	updated := bookOf(in)
	updated.ID = ref.ID
	h.catalog.Upsert(updated)
	return h.succeed(c, http.StatusOK, notify.Success(textOr(msg.Message, "Book updated")), nil)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	isbn := c.Param("isbn")
	msg, err := h.librarySvc.DeleteBook(c.Request().Context(), isbn)
	if err != nil {
		return h.fail(c, err)
	}
	h.catalog.Remove(isbn)
	return h.succeed(c, http.StatusOK, notify.Success(textOr(msg.Message, "Book deleted")), nil)
}

func bookOf(in model.BookInput) model.Book {
	return model.Book{
		Title:     in.Title,
		Author:    in.Author,
		ISBN:      in.ISBN,
		Quantity:  in.Quantity,
		Available: in.Available,
	}
}
