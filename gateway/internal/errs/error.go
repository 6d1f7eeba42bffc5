package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTransport       = errors.New("library api unreachable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoSession       = errors.New("no active session")
	ErrForbiddenRole   = errors.New("action not allowed for this role")
	ErrReturnInFlight  = errors.New("return already in progress for this book")
	ErrAlreadyReturned = errors.New("book already returned")
	ErrNoActiveBorrow  = errors.New("no active borrow record found for this book")
	ErrNotConfirmed    = errors.New("return not confirmed by the library api")
	ErrMissingBorrowID = errors.New("borrow record id not found")
	ErrMissingBookRef  = errors.New("missing book id and isbn")
	ErrMissingISBN     = errors.New("missing isbn")
)

// APIError is a non-2xx answer of the library API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("library api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized ||
		target == ErrNotFound && e.Status == http.StatusNotFound
}

func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message is the text a user should see for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsAlreadyReturned reports whether the API refused a return because the
// record was returned before. The API has no error codes, so this matches text.
// TODO: switch to a structured code once the library API exposes one.
func IsAlreadyReturned(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(Message(err))
	return strings.Contains(text, "already") && strings.Contains(text, "return")
}

// IsServerFault is true for failures worth counting against a circuit breaker.
func IsServerFault(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransport) {
		return true
	}
	return StatusCode(err) >= http.StatusInternalServerError
}
