package server

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	apperrors "aircast/internal/errors"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// requireAuth implements the identity convention: a numeric user_id
// must be present in the JSON body or the query string. This is a
// convention, not a credential check; there are no tokens or sessions.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := extractUserID(c); ok {
			c.Set(userIDKey, id)
			c.Next()
			return
		}
		c.AbortWithStatusJSON(apperrors.HTTPStatus(apperrors.ErrAuth), gin.H{
			"success": false,
			"error":   "user_id is required",
		})
	}
}

func extractUserID(c *gin.Context) (uint, bool) {
	if q := c.Query("user_id"); q != "" {
		if id, err := strconv.ParseUint(q, 10, 32); err == nil && id > 0 {
			return uint(id), true
		}
		return 0, false
	}

	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		return 0, false
	}
	// Restore the body so the handler's bind still works.
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		UserID *json.Number `json:"user_id"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&probe); err != nil || probe.UserID == nil {
		return 0, false
	}
	id, err := probe.UserID.Int64()
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// authedUserID returns the identity set by requireAuth.
func authedUserID(c *gin.Context) uint {
	v, _ := c.Get(userIDKey)
	id, _ := v.(uint)
	return id
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
