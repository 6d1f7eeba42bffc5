package library

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Astemirdum/bookhub/gateway/config"
	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/Astemirdum/bookhub/pkg/circuit_breaker"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	XRequestID = "X-Request-ID"
	Bearer     = "Bearer "
)

type Service struct {
	log            *zap.Logger
	client         *http.Client
	baseURL        string
	cb             circuit_breaker.CircuitBreaker
	onUnauthorized func(ctx context.Context, err error)
}

type Option func(s *Service)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

func WithBreaker(cb circuit_breaker.CircuitBreaker) Option {
	return func(s *Service) {
		s.cb = cb
	}
}

// OnUnauthorized registers the hook run whenever the API answers 401.
func OnUnauthorized(fn func(ctx context.Context, err error)) Option {
	return func(s *Service) {
		s.onUnauthorized = fn
	}
}

func NewService(log *zap.Logger, cfg config.Config, opts ...Option) *Service { //nolint:gocritic
	timeout := cfg.LibraryAPI.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &Service{
		log:     log.Named("library"),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.LibraryAPI.BaseURL, "/"),
		cb:      circuit_breaker.New(cfg.CB, circuit_breaker.WithFailurePredicate(errs.IsServerFault)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CB() circuit_breaker.CircuitBreaker {
	return s.cb
}

type authMode uint8

const (
	authRequired authMode = iota
	authNone
)

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
}

func (s *Service) do(ctx context.Context, r request) ([]byte, error) {
	var data []byte
	err := s.cb.Call(func() error {
		var err error
		data, err = s.roundTrip(ctx, r)
		return err
	})
	if errors.Is(err, errs.ErrUnauthorized) && s.onUnauthorized != nil {
		s.onUnauthorized(ctx, err)
	}
	return data, err
}

func (s *Service) roundTrip(ctx context.Context, r request) ([]byte, error) {
	u := s.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	var body io.Reader = http.NoBody
	if r.body != nil {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(r.body); err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		body = b
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	reqID := uuid.NewString()
	req.Header.Set(XRequestID, reqID)
	if r.auth == authRequired {
		sess, ok := session.FromContext(ctx)
		if !ok {
			return nil, errs.ErrNoSession
		}
		req.Header.Set(echo.HeaderAuthorization, Bearer+sess.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrTransport, "%s %s: %v", r.method, r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrTransport, "read %s %s: %v", r.method, r.path, err)
	}
	s.log.Debug("library api",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
	)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &errs.APIError{Status: resp.StatusCode, Message: messageOf(data)}
	}
	return data, nil
}

// messageOf extracts the human readable text of an API answer.
func messageOf(data []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		return m.Error
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

func decodeMessage(data []byte) model.Message {
	return model.Message{Message: messageOf(data)}
}
