package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/library-catalog/internal/auth"
	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/database"
	"github.com/mrlokans/library-catalog/internal/database/catalog"
	"github.com/mrlokans/library-catalog/internal/database/users"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/maintenance"
	"github.com/mrlokans/library-catalog/internal/services"
)

type appOptions struct {
	csrfSecret []byte
	readOnly   bool
}

// setupApp assembles the router the way the server does, on a fresh sqlite
// database.
func setupApp(t *testing.T, opts appOptions) (http.Handler, *database.Database) {
	t.Helper()
	db := setupTestDB(t)

	authCfg := config.Auth{
		SessionLifetime:  time.Hour,
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}

	authService := auth.NewService(users.NewRepository(db.DB), authCfg)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	store, err := auth.NewSQLiteStore(sqlDB)
	require.NoError(t, err)
	sessionManager := auth.NewSessionManager(store, authCfg)

	tmpl, err := ParseTemplates()
	require.NoError(t, err)

	authController := auth.NewAuthController(authService, sessionManager, tmpl, authCfg, nil)
	t.Cleanup(authController.Stop)

	catalogService := services.NewCatalogService(catalog.NewRepository(db.DB, config.EditInPlace), nil)

	router := NewRouter(RouterConfig{
		Catalog:        catalogService,
		Database:       db,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: auth.NewMiddleware(authService, sessionManager),
		AuthController: authController,
		CSRFSecret:     opts.csrfSecret,
		Maintenance:    maintenance.NewMiddleware(opts.readOnly),
		Templates:      tmpl,
		Version:        "test",
	})
	return router, db
}

// browser keeps the session cookie between requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	return &browser{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	resp := http.Response{Header: w.Header()}
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) registerAndLogin(username string) {
	b.t.Helper()
	w := b.post("/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret"},
	})
	require.Equal(b.t, http.StatusFound, w.Code)

	w = b.post("/login", url.Values{"username": {username}, "password": {"secret"}})
	require.Equal(b.t, http.StatusFound, w.Code)
	require.Equal(b.t, "/", w.Header().Get("Location"))
}

func countBooks(t *testing.T, db *database.Database) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB.Model(&entities.Book{}).Count(&n).Error)
	return n
}

func TestApp_AnonymousIsRedirectedToLogin(t *testing.T) {
	router, _ := setupApp(t, appOptions{})
	b := newBrowser(t, router)

	w := b.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = b.get("/api/books")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = b.get("/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/login"`)

	w = b.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_RegisterLoginAddListDelete(t *testing.T) {
	router, db := setupApp(t, appOptions{})
	b := newBrowser(t, router)

	b.registerAndLogin("alice")

	w := b.post("/add_book", url.Values{
		"title":         {"Dune"},
		"author_name":   {"Herbert"},
		"author_email":  {"h@x.com"},
		"category_name": {"SciFi"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = b.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dune")
	assert.Contains(t, w.Body.String(), "Herbert")
	assert.Contains(t, w.Body.String(), "Signed in as alice")
	assert.Equal(t, int64(1), countBooks(t, db))

	var book entities.Book
	require.NoError(t, db.DB.First(&book).Error)

	w = b.post("/delete_book/"+itoa(book.ID), nil)
	require.Equal(t, http.StatusFound, w.Code)

	w = b.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The catalog is empty.")
	assert.Equal(t, int64(0), countBooks(t, db))

	var authors, categories int64
	db.DB.Model(&entities.Author{}).Count(&authors)
	db.DB.Model(&entities.Category{}).Count(&categories)
	assert.Equal(t, int64(1), authors, "authors are never cascade-deleted")
	assert.Equal(t, int64(1), categories, "categories are never cascade-deleted")

	w = b.post("/delete_book/"+itoa(book.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_EditWithUnknownAuthorKeepsOriginal(t *testing.T) {
	router, db := setupApp(t, appOptions{})
	b := newBrowser(t, router)
	b.registerAndLogin("alice")

	w := b.post("/add_book", url.Values{
		"title":         {"Dune"},
		"author_name":   {"Herbert"},
		"author_email":  {"h@x.com"},
		"category_name": {"SciFi"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	var book entities.Book
	require.NoError(t, db.DB.First(&book).Error)

	w = b.post("/edit_book/"+itoa(book.ID), url.Values{
		"title":         {"Dune"},
		"author_id":     {"999"},
		"category_id":   {itoa(book.CategoryID)},
		"author_name":   {"Frank Herbert"},
		"author_email":  {"frank@x.com"},
		"category_name": {"SciFi"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	var original entities.Author
	require.NoError(t, db.DB.First(&original, book.AuthorID).Error)
	assert.Equal(t, "Herbert", original.Name)
	assert.Equal(t, "h@x.com", original.Email)

	var updated entities.Book
	require.NoError(t, db.DB.Preload("Author").First(&updated, book.ID).Error)
	assert.NotEqual(t, book.AuthorID, updated.AuthorID)
	assert.Equal(t, "frank@x.com", updated.Author.Email)
}

func TestApp_APIListing(t *testing.T) {
	router, _ := setupApp(t, appOptions{})
	b := newBrowser(t, router)
	b.registerAndLogin("alice")

	w := b.post("/add_book", url.Values{
		"title":         {"Dune"},
		"author_name":   {"Herbert"},
		"author_email":  {"h@x.com"},
		"category_name": {"SciFi"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	w = b.get("/api/books")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
}

func TestApp_LogoutEndsSession(t *testing.T) {
	router, _ := setupApp(t, appOptions{})
	b := newBrowser(t, router)
	b.registerAndLogin("alice")

	w := b.post("/logout", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = b.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestApp_CSRFRejectsFormsWithoutToken(t *testing.T) {
	router, db := setupApp(t, appOptions{csrfSecret: []byte("0123456789abcdef0123456789abcdef")})
	b := newBrowser(t, router)

	w := b.post("/add_book", url.Values{
		"title":         {"Dune"},
		"author_name":   {"Herbert"},
		"author_email":  {"h@x.com"},
		"category_name": {"SciFi"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int64(0), countBooks(t, db))

	w = b.get("/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="gorilla.csrf.Token"`)
}

func TestApp_ReadOnlyMode(t *testing.T) {
	router, db := setupApp(t, appOptions{readOnly: true})
	b := newBrowser(t, router)
	b.registerAndLogin("alice")

	w := b.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "read-only mode")
	assert.NotContains(t, w.Body.String(), `href="/add_book"`)

	w = b.post("/add_book", url.Values{
		"title":         {"Dune"},
		"author_name":   {"Herbert"},
		"author_email":  {"h@x.com"},
		"category_name": {"SciFi"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, int64(0), countBooks(t, db))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
