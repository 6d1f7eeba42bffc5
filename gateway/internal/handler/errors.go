package handler

import (
	"errors"
	"net/http"

	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/pkg/circuit_breaker"
	"github.com/labstack/echo/v4"
)

// statusOf maps a library or domain error to the gateway's HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNoSession), errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbiddenRole):
		return http.StatusForbidden
	case errors.Is(err, circuit_breaker.ErrOpenCB), errors.Is(err, errs.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrReturnInFlight), errors.Is(err, errs.ErrAlreadyReturned):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNoActiveBorrow):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrMissingBorrowID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrMissingBookRef), errors.Is(err, errs.ErrMissingISBN):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotConfirmed):
		return http.StatusOK
	}
	if code := errs.StatusCode(err); code != 0 {
		return code
	}
	return http.StatusInternalServerError
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(statusOf(err), errs.Message(err))
}
