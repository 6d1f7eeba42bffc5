package handler

import (
	"net/http"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/reconciler"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/labstack/echo/v4"
)

type borrowResponse struct {
	mutationResponse
	Book *model.Book `json:"book,omitempty"`
}

func (h *Handler) Borrow(c echo.Context) error {
	bookID := c.Param("bookId")
	msg, err := h.librarySvc.Borrow(c.Request().Context(), bookID)
	if err != nil {
		return h.fail(c, err)
	}
	n := notify.Success(textOr(msg.Message, "Book borrowed"))
	resp := borrowResponse{mutationResponse: mutationResponse{Message: n.Message, Notification: n}}
	if b, ok := h.catalog.Adjust(model.Book{ID: bookID}, -1); ok {
		resp.Book = &b
	}
	return h.succeed(c, http.StatusOK, n, resp)
}

type returnResponse struct {
	AttemptID    string              `json:"attemptId"`
	State        string              `json:"state"`
	Record       *model.BorrowRecord `json:"record,omitempty"`
	ReturnedAt   model.Timestamp     `json:"returnedAt"`
	Notification notify.Notification `json:"notification"`
	Book         *model.Book         `json:"book,omitempty"`
}

// ReturnBook returns a book from the catalog, where the borrow id is unknown.
func (h *Handler) ReturnBook(c echo.Context) error {
	bookID := c.Param("bookId")
	book, ok := h.catalog.Get(model.Book{ID: bookID})
	if !ok {
		book = model.Book{ID: bookID, ISBN: c.QueryParam("isbn")}
	}
	out, err := h.returns.Return(c.Request().Context(), book)
	if err != nil {
		return httpError(err)
	}
	return h.outcome(c, out)
}

type loanRef struct {
	BookID string `json:"bookId" query:"bookId"`
	ISBN   string `json:"isbn" query:"isbn"`
}

// ReturnLoan returns a row of the borrower dashboard.
func (h *Handler) ReturnLoan(c echo.Context) error {
	var ref loanRef
	if err := c.Bind(&ref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	loan := model.BorrowRecord{ID: c.Param("borrowId"), BookID: ref.BookID, ISBN: ref.ISBN}
	out, err := h.returns.ReturnLoan(c.Request().Context(), loan)
	if err != nil {
		return httpError(err)
	}
	return h.outcome(c, out)
}

func (h *Handler) outcome(c echo.Context, out reconciler.Outcome) error {
	resp := returnResponse{
		AttemptID:    out.AttemptID,
		State:        out.State.String(),
		ReturnedAt:   out.ReturnedAt,
		Notification: out.Notification,
		Book:         out.Book,
	}
	if out.Record.ID != "" || out.Record.BookID != "" {
		rec := out.Record
		resp.Record = &rec
	}
	code := http.StatusOK
	if !out.Returned() && out.Err != nil {
		code = statusOf(out.Err)
	}
	return c.JSON(code, resp)
}

type historyResponse struct {
	History []view.HistoryRow    `json:"history"`
	Records []model.BorrowRecord `json:"records"`
}

func (h *Handler) History(c echo.Context) error {
	records, err := h.librarySvc.History(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, historyResponse{
		History: view.HistoryRows(records, h.catalog.Books()),
		Records: records,
	})
}

func (h *Handler) Loans(c echo.Context) error {
	records, err := h.librarySvc.History(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view.Summarize(records, time.Now()))
}
