package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-catalog/internal/auth"
	"github.com/mrlokans/library-catalog/internal/maintenance"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	LoggedIn  bool   // Whether user is logged in
	Username  string // Current user's username (empty if not logged in)
	CSRFToken string // CSRF token for forms (empty when CSRF is disabled)
}

// AuthContextMiddleware injects authentication data into Gin context for templates.
// Templates can access auth data via .Auth in the template data.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authData := AuthTemplateData{
			CSRFToken: auth.GetCSRFToken(c),
		}

		if auth.IsAuthenticated(c) {
			authData.LoggedIn = true
			authData.Username = auth.GetUsername(c)
		}

		c.Set("auth_template_data", authData)
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get("auth_template_data"); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}

// pageData merges the values every page template expects into data.
func pageData(c *gin.Context, data gin.H) gin.H {
	authData := GetAuthTemplateData(c)
	data["Auth"] = authData
	data["CSRFToken"] = authData.CSRFToken
	data["ReadOnly"] = maintenance.IsReadOnly(c)
	return data
}
