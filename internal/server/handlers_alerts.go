package server

import (
	stderrors "errors"
	"net/http"

	"aircast/internal/mail"
	"aircast/internal/sentry"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleInstantAlert(c *gin.Context) {
	userID, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}

	sample, err := s.instant.RunInstant(c.Request.Context(), userID)
	if err != nil {
		// Mail transport failures get their own status mapping.
		switch {
		case stderrors.Is(err, mail.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Email delivery is not configured"})
		case stderrors.Is(err, mail.ErrAuth), stderrors.Is(err, mail.ErrNetwork), stderrors.Is(err, mail.ErrSend):
			sentry.CaptureErrorWithContext(c, err, "alerts: instant email delivery failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to deliver alert email"})
		default:
			sentry.CaptureErrorWithContext(c, err, "alerts: instant alert failed")
			fail(c, err, "user")
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"sent": true, "aqi": sample.AQI})
}
