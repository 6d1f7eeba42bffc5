package library

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/pkg/errors"
)

func (s *Service) Borrow(ctx context.Context, bookID string) (model.Message, error) {
	if bookID == "" {
		return model.Message{}, errs.ErrMissingBookRef
	}
	data, err := s.do(ctx, request{method: http.MethodPost, path: "/borrow", body: model.BorrowRequest{BookID: bookID}})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

func (s *Service) History(ctx context.Context) ([]model.BorrowRecord, error) {
	data, err := s.do(ctx, request{method: http.MethodGet, path: "/borrow/history"})
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}

func (s *Service) Return(ctx context.Context, borrowID string) (model.Message, error) {
	if borrowID == "" {
		return model.Message{}, errs.ErrMissingBorrowID
	}
	data, err := s.do(ctx, request{method: http.MethodPost, path: "/borrow/return/" + url.PathEscape(borrowID)})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

func (s *Service) ListBorrowers(ctx context.Context) ([]model.BorrowRecord, error) {
	data, err := s.do(ctx, request{method: http.MethodGet, path: "/borrowers"})
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}

func (s *Service) CreateBorrower(ctx context.Context, in model.BorrowerInput) (model.Message, error) {
	data, err := s.do(ctx, request{method: http.MethodPost, path: "/borrowers", body: in})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

// MarkReturned sets the return date of a borrow record to now.
func (s *Service) MarkReturned(ctx context.Context, borrowID string) (model.Message, error) {
	return s.UpdateBorrow(ctx, borrowID, model.BorrowUpdate{ReturnDate: model.NewTimestamp(time.Now())})
}

func (s *Service) UpdateBorrow(ctx context.Context, borrowID string, upd model.BorrowUpdate) (model.Message, error) {
	if borrowID == "" {
		return model.Message{}, errs.ErrMissingBorrowID
	}
	data, err := s.do(ctx, request{method: http.MethodPut, path: "/borrowers/" + url.PathEscape(borrowID), body: upd})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

func (s *Service) DeleteBorrow(ctx context.Context, borrowID string) (model.Message, error) {
	if borrowID == "" {
		return model.Message{}, errs.ErrMissingBorrowID
	}
	data, err := s.do(ctx, request{method: http.MethodDelete, path: "/borrowers/" + url.PathEscape(borrowID)})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

func decodeRecords(data []byte) ([]model.BorrowRecord, error) {
	records, err := model.DecodeList[model.BorrowRecord](data, "borrows", "history", "borrowers", "loans", "records", "data")
	if err != nil {
		return nil, errors.Wrap(err, "decode borrow records")
	}
	return records, nil
}
