// Package errors defines the application error taxonomy and normalizes
// raw datastore/driver errors into it. Handlers map sentinels to HTTP
// statuses and sanitized messages; raw driver text stays wrapped inside
// the error chain for logs only.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors for the application.
var (
	ErrDuplicateKey   = stderrors.New("duplicate key")
	ErrNotFound       = stderrors.New("not found")
	ErrForeignKey     = stderrors.New("foreign key violation")
	ErrCheckViolation = stderrors.New("check constraint violation")
	ErrValidation     = stderrors.New("validation failed")
	ErrAuth           = stderrors.New("authentication failed")
	ErrConflict       = stderrors.New("conflict")
	ErrConfig         = stderrors.New("service not configured")
	ErrUpstream       = stderrors.New("upstream provider failed")
)

// Is re-exports errors.Is so callers don't need a second import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// Normalize maps gorm and SQLite driver errors to application
// sentinels, keeping the original error wrapped for logging.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value"):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	case strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %v", ErrCheckViolation, err)
	}
	return err
}

// HTTPStatus maps a (possibly normalized) error to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrValidation), stderrors.Is(err, ErrForeignKey), stderrors.Is(err, ErrCheckViolation):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrDuplicateKey), stderrors.Is(err, ErrConflict):
		return http.StatusConflict
	case stderrors.Is(err, ErrConfig):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, ErrUpstream):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a user-facing string for err. The context argument
// hints at what was being written ("email", "report vote", ...) so
// uniqueness violations read naturally. Driver text never leaks.
func Message(err error, context string) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrDuplicateKey):
		if strings.Contains(strings.ToLower(context), "email") {
			return "Email already registered"
		}
		if context != "" {
			return fmt.Sprintf("%s already exists", capitalize(context))
		}
		return "Resource already exists"
	case stderrors.Is(err, ErrNotFound):
		if context != "" {
			return fmt.Sprintf("%s not found", capitalize(context))
		}
		return "Resource not found"
	case stderrors.Is(err, ErrForeignKey):
		return "Referenced resource does not exist"
	case stderrors.Is(err, ErrCheckViolation):
		return "Invalid field value"
	case stderrors.Is(err, ErrValidation):
		return trimWrap(err, ErrValidation, "Invalid request")
	case stderrors.Is(err, ErrAuth):
		return trimWrap(err, ErrAuth, "Authentication failed")
	case stderrors.Is(err, ErrConflict):
		return trimWrap(err, ErrConflict, "Conflict")
	case stderrors.Is(err, ErrConfig):
		return trimWrap(err, ErrConfig, "Service not configured")
	case stderrors.Is(err, ErrUpstream):
		return "Upstream provider failed"
	default:
		return "Internal server error"
	}
}

// trimWrap extracts the human part of "sentinel: detail" errors built
// with Wrap, falling back when only the sentinel is present.
func trimWrap(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if strings.HasPrefix(msg, prefix) && len(msg) > len(prefix) {
		return msg[len(prefix):]
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Wrap attaches a user-presentable detail to a sentinel.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
