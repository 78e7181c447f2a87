package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-catalog/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Inject auth data for templates
	router.Use(AuthContextMiddleware())

	if cfg.Maintenance != nil {
		router.Use(cfg.Maintenance.Handler())
	}

	tmpl := cfg.Templates
	if tmpl == nil {
		tmpl = template.Must(ParseTemplates())
	}
	router.SetHTMLTemplate(tmpl)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	if cfg.Catalog != nil {
		catalogController := NewCatalogController(cfg.Catalog)
		booksController := NewBooksController(cfg.Catalog)

		router.GET("/", catalogController.BooksPage)
		router.GET("/add_book", catalogController.AddBookPage)
		router.POST("/add_book", catalogController.AddBook)
		router.GET("/edit_book/:id", catalogController.EditBookPage)
		router.POST("/edit_book/:id", catalogController.EditBook)
		router.POST("/delete_book/:id", catalogController.DeleteBook)

		router.GET("/api/books", booksController.GetAllBooks)
	}

	return router
}
