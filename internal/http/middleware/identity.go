// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity. Resolution order is the context
// value set by upstream identity middleware, then the X-User-ID header, then
// a demo fallback. Every consumer of the identity (handlers, idempotency
// lookup, rate-limit keying) must go through the same resolver so stored
// records and lookups agree on the key for headerless clients.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultUserID identifies callers that present no identity at all.
const DefaultUserID = "demo-user"

// UserID returns the resolved user identifier for this request.
func UserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return DefaultUserID
}
