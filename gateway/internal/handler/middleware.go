package handler

import (
	"net/http"
	"strings"

	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	Bearer = "Bearer "
	// tokenQueryParam carries the token for EventSource clients, which cannot
	// set headers.
	tokenQueryParam = "token"
)

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, Bearer) {
		return strings.TrimSpace(strings.TrimPrefix(h, Bearer))
	}
	return c.QueryParam(tokenQueryParam)
}

// authMW resolves the bearer token to a registered session and puts it into
// the request context.
func (h *Handler) authMW(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "no token in Authorization header")
		}
		s, ok := h.sessions.Get(token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired, log in again")
		}
		withSession(c, s)
		return next(c)
	}
}

// optionalAuthMW attaches a session when a known token is presented.
func (h *Handler) optionalAuthMW(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s, ok := h.sessions.Get(bearerToken(c)); ok {
			withSession(c, s)
		}
		return next(c)
	}
}

func withSession(c echo.Context, s session.Session) {
	req := c.Request()
	c.SetRequest(req.WithContext(session.WithContext(req.Context(), s)))
}

func requireRole(roles ...role.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := session.FromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrNoSession.Error())
			}
			for _, r := range roles {
				if s.Role() == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, errs.ErrForbiddenRole.Error())
		}
	}
}

func requestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	log = log.Named("echo")
	c := middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
	return c
}

func newRateLimiterMW(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}
