package library

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Service) Login(ctx context.Context, in model.LoginRequest) (model.LoginResponse, error) {
	data, err := s.do(ctx, request{method: http.MethodPost, path: "/login", body: in, auth: authNone})
	if err != nil {
		return model.LoginResponse{}, err
	}
	resp, err := model.DecodeItem[model.LoginResponse](data, "data")
	if err != nil {
		return model.LoginResponse{}, errors.Wrap(err, "decode login")
	}
	if resp.Token == "" {
		return model.LoginResponse{}, errors.Wrap(errs.ErrUnauthorized, "login response without token")
	}
	return resp, nil
}

// ListBooks fetches the catalog. Without a session, or when the API rejects
// the token with anything but 401, the public listing is used instead.
func (s *Service) ListBooks(ctx context.Context, q model.BookQuery) ([]model.Book, error) {
	query := url.Values{}
	if q.Q != "" {
		query.Set("q", q.Q)
	}
	if q.ID != "" {
		query.Set("id", q.ID)
	}
	r := request{method: http.MethodGet, path: "/books", query: query}
	if _, ok := session.FromContext(ctx); !ok {
		r.auth = authNone
	}

	data, err := s.do(ctx, r)
	if code := errs.StatusCode(err); r.auth == authRequired && isClientError(code) && code != http.StatusUnauthorized {
		s.log.Debug("books: retry without credentials", zap.Int("status", code))
		r.auth = authNone
		data, err = s.do(ctx, r)
	}
	if err != nil {
		return nil, err
	}
	books, err := model.DecodeList[model.Book](data, "books", "data")
	if err != nil {
		return nil, errors.Wrap(err, "decode books")
	}
	return books, nil
}

func (s *Service) CreateBook(ctx context.Context, in model.BookInput) (model.Message, error) {
	data, err := s.do(ctx, request{method: http.MethodPost, path: "/books", body: in})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

// UpdateBook addresses the book by isbn first and by db id second. A client
// error on one identifier falls through to the next.
func (s *Service) UpdateBook(ctx context.Context, ref model.Book, in model.BookInput) (model.Message, error) {
	ids := make([]string, 0, 2)
	for _, id := range []string{ref.ISBN, ref.ID} {
		if id != "" && (len(ids) == 0 || ids[0] != id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return model.Message{}, errs.ErrMissingBookRef
	}

	var lastErr error
	for _, id := range ids {
		data, err := s.do(ctx, request{method: http.MethodPut, path: "/books/" + url.PathEscape(id), body: in})
		if err == nil {
			return decodeMessage(data), nil
		}
		lastErr = err
		if code := errs.StatusCode(err); !isClientError(code) || code == http.StatusUnauthorized {
			return model.Message{}, err
		}
	}
	return model.Message{}, lastErr
}

func (s *Service) DeleteBook(ctx context.Context, isbn string) (model.Message, error) {
	if isbn == "" {
		return model.Message{}, errs.ErrMissingISBN
	}
	data, err := s.do(ctx, request{method: http.MethodDelete, path: "/books/" + url.PathEscape(isbn)})
	if err != nil {
		return model.Message{}, err
	}
	return decodeMessage(data), nil
}

func isClientError(code int) bool {
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError
}
