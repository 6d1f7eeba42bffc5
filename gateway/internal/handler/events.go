package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	eventsBuffer      = 16
	heartbeatInterval = 25 * time.Second
)

// Events streams borrow record changes as server-sent events until the
// client goes away. Borrowers only see their own records; librarians see
// every change.
func (h *Handler) Events(c echo.Context) error {
	s, ok := session.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrNoSession.Error())
	}
	all := s.Role() == role.Librarian

	ch, cancel := h.events.Subscribe(broker.TopicBorrowRecords, eventsBuffer)
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			ev = ev.For(s.User.ID, all)
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("events: marshal", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
