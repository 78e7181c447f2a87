package maintenance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "OK") }
	router.GET("/", ok)
	router.POST("/add_book", ok)
	router.POST("/delete_book/:id", ok)
	router.POST("/login", ok)
	router.POST("/logout", ok)
	router.POST("/register", ok)
	router.GET("/flag", func(c *gin.Context) {
		if IsReadOnly(c) {
			c.String(http.StatusOK, "read-only")
			return
		}
		c.String(http.StatusOK, "writable")
	})
	return router
}

func serve(router *gin.Engine, method, path string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewMiddleware(t *testing.T) {
	if !NewMiddleware(true).IsEnabled() {
		t.Error("Expected middleware to be enabled")
	}
	if NewMiddleware(false).IsEnabled() {
		t.Error("Expected middleware to be disabled")
	}
}

func TestMiddleware_DisabledAllowsEverything(t *testing.T) {
	router := newRouter(NewMiddleware(false))

	for _, path := range []string{"/add_book", "/delete_book/1"} {
		w := serve(router, http.MethodPost, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}

	w := serve(router, http.MethodGet, "/flag", "")
	if w.Body.String() != "writable" {
		t.Errorf("Expected writable flag, got %s", w.Body.String())
	}
}

func TestMiddleware_AllowsGETRequests(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	w := serve(router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = serve(router, http.MethodGet, "/flag", "")
	if w.Body.String() != "read-only" {
		t.Errorf("Expected read-only flag, got %s", w.Body.String())
	}
}

func TestMiddleware_BlocksCatalogWrites(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	for _, path := range []string{"/add_book", "/delete_book/1"} {
		w := serve(router, http.MethodPost, path, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d", path, w.Code)
		}
		if w.Body.String() != blockedMessage {
			t.Errorf("%s: unexpected body %q", path, w.Body.String())
		}
	}
}

func TestMiddleware_BlocksWithJSON(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	w := serve(router, http.MethodPost, "/add_book", "application/json")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["read_only"] != true {
		t.Error("Expected read_only flag in response")
	}
}

func TestMiddleware_AllowsAuthentication(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	for _, path := range []string{"/login", "/logout", "/register"} {
		w := serve(router, http.MethodPost, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}
}
