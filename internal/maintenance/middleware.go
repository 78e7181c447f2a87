// Package maintenance implements read-only mode. While it is enabled the
// catalog can be browsed but not changed; authentication keeps working.
package maintenance

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyReadOnly holds the read-only flag for template rendering.
const ContextKeyReadOnly = "read_only_mode"

const blockedMessage = "The catalog is in read-only mode for maintenance"

// Middleware blocks write operations in read-only mode.
// GET, HEAD and OPTIONS always pass.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyReadOnly, m.enabled)

		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		respondBlocked(c)
	}
}

// isAllowedPath lists the write endpoints that keep working: sessions must
// still be opened and closed during maintenance.
func isAllowedPath(path string) bool {
	switch path {
	case "/login", "/logout", "/register":
		return true
	}
	return false
}

func respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":     blockedMessage,
			"read_only": true,
		})
		return
	}

	c.Header("Retry-After", "300")
	c.String(http.StatusServiceUnavailable, blockedMessage)
	c.Abort()
}

// IsReadOnly reports whether the request was served in read-only mode.
func IsReadOnly(c *gin.Context) bool {
	enabled, _ := c.Get(ContextKeyReadOnly)
	readOnly, _ := enabled.(bool)
	return readOnly
}
