package auth

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-catalog/internal/config"
)

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
// Returns true if the path is safe for redirect (local path only).
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}

	// Must start with /
	if !strings.HasPrefix(path, "/") {
		return false
	}

	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}

	// Reject URLs with schemes
	if strings.Contains(path, "://") {
		return false
	}

	// Reject paths with backslashes (potential bypass attempts)
	if strings.Contains(path, "\\") {
		return false
	}

	// Browsers drop tabs and newlines, so "/\t/evil.com" would become "//evil.com"
	for i := 0; i < len(path); i++ {
		if path[i] < 0x20 || path[i] == 0x7f {
			return false
		}
	}

	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}

	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuditLogger records authentication events.
type AuditLogger interface {
	LogAuth(userID uint, action, username, ipAddr string, success bool)
}

// AuthController serves the login, registration and logout endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	rateLimiter    *RateLimiter
	audit          AuditLogger
}

// NewAuthController creates a new authentication controller. With nil
// templates the pages render their data as JSON. auditLog may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, templates *template.Template, cfg config.Auth, auditLog AuditLogger) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      templates,
		rateLimiter:    rateLimiter,
		audit:          auditLog,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.POST("/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderTemplate(c, http.StatusOK, "login.html", gin.H{
		"Title":     "Login",
		"Next":      sanitizeRedirectPath(c.Query("next")),
		"CSRFToken": GetCSRFToken(c),
		"Notice":    c.Query("notice"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	form := gin.H{
		"Title":     "Login",
		"Next":      next,
		"Username":  username,
		"CSRFToken": GetCSRFToken(c),
	}

	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			form["Error"] = "Too many login attempts. Please try again later."
			ac.renderTemplate(c, http.StatusTooManyRequests, "login.html", form)
			return
		}
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		switch {
		case IsValidationError(err):
			form["Error"] = capitalize(err.Error())
			ac.renderTemplate(c, http.StatusBadRequest, "login.html", form)
		case errors.Is(err, ErrInvalidCredentials):
			if ac.rateLimiter != nil {
				ac.rateLimiter.RecordFailure(clientIP, username)
			}
			ac.logAuth(0, "login", username, clientIP, false)
			form["Error"] = "Invalid username or password"
			ac.renderTemplate(c, http.StatusUnauthorized, "login.html", form)
		default:
			log.Printf("Login failed for %q: %v", username, err)
			form["Error"] = "Something went wrong. Please try again."
			ac.renderTemplate(c, http.StatusInternalServerError, "login.html", form)
		}
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, username)
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("Failed to create session for user %d: %v", user.ID, err)
			form["Error"] = "Failed to create session"
			ac.renderTemplate(c, http.StatusInternalServerError, "login.html", form)
			return
		}
	}

	ac.logAuth(user.ID, "login", user.Username, clientIP, true)
	c.Redirect(http.StatusFound, next)
}

// RegisterPage renders the registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderTemplate(c, http.StatusOK, "register.html", gin.H{
		"Title":     "Register",
		"CSRFToken": GetCSRFToken(c),
	})
}

// Register handles the registration form submission.
func (ac *AuthController) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	form := gin.H{
		"Title":     "Register",
		"Username":  username,
		"Email":     email,
		"CSRFToken": GetCSRFToken(c),
	}

	user, err := ac.service.Register(username, email, password)
	if err != nil {
		switch {
		case IsValidationError(err):
			form["Error"] = capitalize(err.Error())
			ac.renderTemplate(c, http.StatusBadRequest, "register.html", form)
		case errors.Is(err, ErrUserExists):
			form["Error"] = "Username or email already registered"
			ac.renderTemplate(c, http.StatusConflict, "register.html", form)
		default:
			log.Printf("Registration failed for %q: %v", username, err)
			form["Error"] = "Something went wrong. Please try again."
			ac.renderTemplate(c, http.StatusInternalServerError, "register.html", form)
		}
		return
	}

	ac.logAuth(user.ID, "register", user.Username, c.ClientIP(), true)
	c.Redirect(http.StatusFound, "/login?notice=registered")
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}
	if userID != AnonymousUserID {
		ac.logAuth(userID, "logout", GetUsername(c), c.ClientIP(), true)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (ac *AuthController) logAuth(userID uint, action, username, ip string, success bool) {
	if ac.audit == nil {
		return
	}
	ac.audit.LogAuth(userID, action, username, ip, success)
}

// renderTemplate renders an auth template or falls back to JSON.
func (ac *AuthController) renderTemplate(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil {
		c.JSON(status, data)
		return
	}

	var buf bytes.Buffer
	if err := ac.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Template %s failed: %v", name, err)
		c.String(http.StatusInternalServerError, "Template error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
