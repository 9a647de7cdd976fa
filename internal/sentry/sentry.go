// Package sentry wraps error reporting so callers log locally and
// report to Sentry in one call, with a noise filter for expected
// upstream and client failures.
package sentry

import (
	"fmt"
	"log"
	"strings"

	apperrors "aircast/internal/errors"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// ignoredErrors contains error messages that should be logged but not
// sent to Sentry. These are routine upstream hiccups or client
// behavior and only create noise.
var ignoredErrors = []string{
	"connection reset by peer",  // Client disconnected abruptly
	"broken pipe",               // Write to closed connection
	"context deadline exceeded", // Slow upstream; surfaced to caller already
	"context canceled",          // Caller went away mid-request
	"EOF",                       // Client closed without graceful shutdown
}

// shouldIgnore checks if an error should be filtered out from Sentry.
func shouldIgnore(err error) bool {
	if err == nil {
		return true
	}

	// Expected application outcomes are handled at the boundary and
	// never worth an event.
	for _, sentinel := range []error{
		apperrors.ErrValidation, apperrors.ErrAuth, apperrors.ErrNotFound,
		apperrors.ErrConflict, apperrors.ErrDuplicateKey,
	} {
		if apperrors.Is(err, sentinel) {
			return true
		}
	}

	type timeoutError interface{ Timeout() bool }
	if te, ok := err.(timeoutError); ok && te.Timeout() {
		return true
	}

	errStr := err.Error()
	for _, ignored := range ignoredErrors {
		if strings.Contains(errStr, ignored) {
			return true
		}
	}
	return false
}

// CaptureError logs an error locally and reports it to Sentry.
// Use this for errors outside of HTTP request context (startup,
// background alert loops).
func CaptureError(err error, message string) {
	log.Printf("%s: %v", message, err)
	if shouldIgnore(err) {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("message", message)
		sentry.CaptureException(err)
	})
}

// CaptureErrorWithContext logs an error and reports it to Sentry with
// HTTP request context preserved.
func CaptureErrorWithContext(c *gin.Context, err error, message string) {
	log.Printf("%s: %v", message, err)
	if shouldIgnore(err) {
		return
	}
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("message", message)
			if c != nil && c.Request != nil {
				scope.SetTag("http.method", c.Request.Method)
				scope.SetTag("http.path", c.Request.URL.Path)
				scope.SetExtra("http.query", c.Request.URL.RawQuery)
				scope.SetExtra("http.remote_ip", c.ClientIP())
			}
			hub.CaptureException(err)
		})
	} else {
		// Fallback to global capture if no hub in context
		CaptureError(err, message)
	}
}

// CaptureErrorf logs and reports an error with a formatted message.
func CaptureErrorf(err error, format string, args ...interface{}) {
	CaptureError(err, fmt.Sprintf(format, args...))
}
