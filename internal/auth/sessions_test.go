package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-catalog/internal/entities"
)

func TestSessionManager_CreateAndRetrieve(t *testing.T) {
	db := setupTestDB(t)
	sm := setupSessionManager(t, db)
	user := &entities.User{ID: 42, Username: "alice"}

	login := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.CreateSession(r, user))
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	login.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookie := responseCookie(w, "session")
	require.NotNil(t, cookie, "session cookie should be set")

	var data *SessionData
	var keys []string
	probe := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data = sm.GetSessionData(r)
		keys = sm.Keys(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	probe.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, data)
	assert.Equal(t, uint(42), data.UserID)
	assert.Equal(t, "alice", data.Username)
	assert.False(t, data.LoginAt.IsZero())
	assert.ElementsMatch(t, []string{SessionKeyUserID, SessionKeyUsername, SessionKeyLoginAt}, keys)
}

func TestSessionManager_Destroy(t *testing.T) {
	db := setupTestDB(t)
	sm := setupSessionManager(t, db)

	var cookie *http.Cookie
	login := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.CreateSession(r, &entities.User{ID: 7, Username: "bob"}))
	}))
	w := httptest.NewRecorder()
	login.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookie = responseCookie(w, "session")
	require.NotNil(t, cookie)

	logout := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.DestroySession(r))
	}))
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	logout.ServeHTTP(httptest.NewRecorder(), req)

	authenticated := true
	probe := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = sm.IsAuthenticated(r)
	}))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	probe.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, authenticated, "destroyed session token must not authenticate")
}

func TestSessionManager_Anonymous(t *testing.T) {
	db := setupTestDB(t)
	sm := setupSessionManager(t, db)

	var data *SessionData
	var userID uint = 99
	probe := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data = sm.GetSessionData(r)
		userID = sm.GetUserID(r)
	}))
	probe.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, data)
	assert.Equal(t, uint(0), userID)
}

func TestSessionManager_CookieConfig(t *testing.T) {
	db := setupTestDB(t)
	sm := setupSessionManager(t, db)

	assert.Equal(t, "session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
	assert.Equal(t, "/", sm.Cookie.Path)
	assert.Equal(t, testAuthConfig().SessionLifetime, sm.Lifetime)
}
