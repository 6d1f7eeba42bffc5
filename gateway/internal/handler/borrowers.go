package handler

import (
	"context"
	"net/http"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type borrowersResponse struct {
	Borrowers []model.BorrowRecord `json:"borrowers"`
}

// ListBorrowers fetches the roster and the catalog concurrently. The catalog
// only resolves titles, so failing to load it is not fatal.
func (h *Handler) ListBorrowers(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		records []model.BorrowRecord
		books   []model.Book
	)
	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		var err error
		records, err = h.librarySvc.ListBorrowers(gctx)
		return err
	})
	gg.Go(func() error {
		list, err := h.librarySvc.ListBooks(gctx, model.BookQuery{})
		if err != nil {
			h.log.Warn("borrowers: books", zap.Error(err))
			return nil
		}
		books = list
		return nil
	})
	if err := gg.Wait(); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, borrowersResponse{Borrowers: view.WithTitles(records, books)})
}

func (h *Handler) CreateBorrower(c echo.Context) error {
	var in model.BorrowerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg, err := h.librarySvc.CreateBorrower(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return h.succeed(c, http.StatusCreated, notify.Success(textOr(msg.Message, "Borrower added")), nil)
}

func (h *Handler) MarkReturned(c echo.Context) error {
	ctx := c.Request().Context()
	msg, err := h.librarySvc.MarkReturned(ctx, c.Param("borrowId"))
	if err != nil {
		return h.fail(c, err)
	}
	h.recordsChanged(ctx)
	return h.succeed(c, http.StatusOK, notify.Success(textOr(msg.Message, "Marked as returned")), nil)
}

func (h *Handler) DeleteBorrow(c echo.Context) error {
	ctx := c.Request().Context()
	msg, err := h.librarySvc.DeleteBorrow(ctx, c.Param("borrowId"))
	if err != nil {
		return h.fail(c, err)
	}
	h.recordsChanged(ctx)
	return h.succeed(c, http.StatusOK, notify.Success(textOr(msg.Message, "Borrow record deleted")), nil)
}

// recordsChanged tells open views to reload; the roster routes do not know
// the resulting record list.
func (h *Handler) recordsChanged(ctx context.Context) {
	h.events.Publish(ctx, broker.Event{Topic: broker.TopicBorrowRecords, AttemptID: uuid.NewString()})
}

// Stats loads books and borrow records concurrently; either may fail without
// failing the dashboard.
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		books   []model.Book
		records []model.BorrowRecord
		gg      errgroup.Group
	)
	gg.Go(func() error {
		list, err := h.librarySvc.ListBooks(ctx, model.BookQuery{})
		if err != nil {
			h.log.Warn("stats: books", zap.Error(err))
		}
		books = list
		return nil
	})
	gg.Go(func() error {
		list, err := h.librarySvc.ListBorrowers(ctx)
		if err != nil {
			h.log.Warn("stats: borrowers", zap.Error(err))
		}
		records = list
		return nil
	})
	_ = gg.Wait()
	return c.JSON(http.StatusOK, view.ComputeStats(books, records))
}
