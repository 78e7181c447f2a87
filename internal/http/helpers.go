package http

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-catalog/internal/auth"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// --- Error Response Helpers ---

// isAPIRequest reports whether the client expects JSON instead of a page.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// respondNotFound sends a 404 with the not_found page, or JSON to API clients.
func respondNotFound(c *gin.Context, resource string) {
	message := resource + " not found"
	if isAPIRequest(c) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
		return
	}
	c.HTML(http.StatusNotFound, "not_found.html", pageData(c, gin.H{
		"Title":   "Not found",
		"Message": message,
	}))
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged with the request id but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	requestID := GetRequestID(c)
	log.Printf("Internal error (%s) [request %s]: %v", context, requestID, err)

	if isAPIRequest(c) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "internal server error",
			RequestID: requestID,
		})
		return
	}
	c.HTML(http.StatusInternalServerError, "error.html", pageData(c, gin.H{
		"Title":     "Error",
		"RequestID": requestID,
	}))
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters. Malformed
// ids cannot name a book, so they are answered like unknown ones.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondNotFound(c, "Book")
		return 0, false
	}
	return uint(id), true
}

// parseOptionalID reads an optional numeric form field. Missing or malformed
// values yield 0.
func parseOptionalID(c *gin.Context, field string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(c.PostForm(field)), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
