package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/database"
	"github.com/mrlokans/library-catalog/internal/database/users"
	"github.com/mrlokans/library-catalog/internal/entities"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db := setupTestDB(t)
	return NewService(users.NewRepository(db.DB), testAuthConfig())
}

func setupSessionManager(t *testing.T, db *database.Database) *SessionManager {
	t.Helper()
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	store, err := NewSQLiteStore(sqlDB)
	require.NoError(t, err)
	return NewSessionManager(store, testAuthConfig())
}

type recordingAuditLogger struct {
	actions []string
}

func (r *recordingAuditLogger) LogAuth(userID uint, action, username, ipAddr string, success bool) {
	status := "ok"
	if !success {
		status = "failed"
	}
	r.actions = append(r.actions, action+":"+username+":"+status)
}

type testEnv struct {
	router  *gin.Engine
	db      *database.Database
	service *Service
	audit   *recordingAuditLogger
}

// setupTestRouter wires sessions, the auth middleware and the auth
// controller (JSON rendering) plus two protected probe routes.
func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	cfg := testAuthConfig()
	svc := NewService(users.NewRepository(db.DB), cfg)
	sm := setupSessionManager(t, db)
	auditLog := &recordingAuditLogger{}

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm).Handler())

	ctrl := NewAuthController(svc, sm, nil, cfg, auditLog)
	t.Cleanup(ctrl.Stop)
	ctrl.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})
	router.GET("/api/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	return &testEnv{router: router, db: db, service: svc, audit: auditLog}
}

func deleteUser(t *testing.T, env *testEnv, id uint) {
	t.Helper()
	require.NoError(t, env.db.DB.Delete(&entities.User{}, id).Error)
}

func postForm(router http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// responseCookie reads a cookie straight from the recorder's headers.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	resp := http.Response{Header: w.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
