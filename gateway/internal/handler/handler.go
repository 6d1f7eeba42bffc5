package handler

import (
	"net/http"

	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/Astemirdum/bookhub/pkg/validate"
	_ "github.com/Astemirdum/bookhub/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	librarySvc LibraryService
	returns    ReturnService
	events     Events
	catalog    *view.Catalog
	sessions   *session.Registry
	notifier   notify.Notifier
	log        *zap.Logger
}

func New(
	log *zap.Logger,
	librarySvc LibraryService,
	returns ReturnService,
	events Events,
	catalog *view.Catalog,
	sessions *session.Registry,
) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		returns:    returns,
		events:     events,
		catalog:    catalog,
		sessions:   sessions,
		notifier:   notify.NewLog(log),
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)
	h.register(api)
	return e
}

func (h *Handler) register(api *echo.Group) {
	api.POST("/login", h.Login)
	api.GET("/books", h.ListBooks, h.optionalAuthMW)

	authed := api.Group("", h.authMW)
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)
	authed.GET("/history", h.History)
	authed.GET("/events", h.Events)

	librarian := authed.Group("", requireRole(role.Librarian))
	librarian.POST("/books", h.CreateBook)
	librarian.PUT("/books/:isbn", h.UpdateBook)
	librarian.DELETE("/books/:isbn", h.DeleteBook)
	librarian.GET("/borrowers", h.ListBorrowers)
	librarian.POST("/borrowers", h.CreateBorrower)
	librarian.PUT("/borrowers/:borrowId/returned", h.MarkReturned)
	librarian.DELETE("/borrowers/:borrowId", h.DeleteBorrow)
	librarian.GET("/stats", h.Stats)

	borrower := authed.Group("", requireRole(role.Borrower))
	borrower.POST("/books/:bookId/borrow", h.Borrow)
	borrower.POST("/books/:bookId/return", h.ReturnBook)
	borrower.GET("/loans", h.Loans)
	borrower.POST("/loans/:borrowId/return", h.ReturnLoan)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// mutationResponse is the answer of every state changing route. The
// notification is what the UI shows as a toast.
type mutationResponse struct {
	Message      string              `json:"message,omitempty"`
	Notification notify.Notification `json:"notification"`
}

func (h *Handler) succeed(c echo.Context, code int, n notify.Notification, body any) error {
	notify.Dispatch(c.Request().Context(), h.notifier, n)
	if body == nil {
		body = mutationResponse{Message: n.Message, Notification: n}
	}
	return c.JSON(code, body)
}

// fail answers a failed mutation with an error notification.
func (h *Handler) fail(c echo.Context, err error) error {
	he := httpError(err)
	msg, _ := he.Message.(string)
	n := notify.Error(msg)
	notify.Dispatch(c.Request().Context(), h.notifier, n)
	return c.JSON(he.Code, mutationResponse{Message: msg, Notification: n})
}

func textOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
