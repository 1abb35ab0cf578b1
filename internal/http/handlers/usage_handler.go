// Usage HTTP handlers.
//
// This file exposes the read-only quota snapshot:
//   - GET /usage   (messages used/remaining for the current user today)
//
// The endpoint backs client-side limit displays; it never mutates the
// counter.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Usage handles GET /usage. It reports the caller's current standing
// against today's quota; premium and admin tiers report -1 remaining.
func (h *Handlers) Usage(c *gin.Context) {
	summary, err := h.usageSvc.Usage(c.Request.Context(), userID(c), userTier(c))
	if err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUsageFailed, "usage store unavailable")
		return
	}
	ok(c, http.StatusOK, summary)
}
