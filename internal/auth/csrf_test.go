package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSRFSecret = []byte("0123456789abcdef0123456789abcdef")

func setupCSRFRouter(handled *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CSRFMiddleware(testCSRFSecret, false))
	router.GET("/form", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": GetCSRFToken(c)})
	})
	router.POST("/form", func(c *gin.Context) {
		*handled = true
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCSRF_GetPassesWithToken(t *testing.T) {
	var handled bool
	router := setupCSRFRouter(&handled)

	w := get(router, "/form")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])
}

func TestCSRF_PostWithoutTokenIsRejected(t *testing.T) {
	var handled bool
	router := setupCSRFRouter(&handled)

	w := postForm(router, "/form", "title=Dune")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Form Expired")
	assert.False(t, handled, "handler must not run after a CSRF failure")
}

func TestCSRF_JSONErrorBody(t *testing.T) {
	var handled bool
	router := setupCSRFRouter(&handled)

	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"CSRF token invalid or missing"}`, w.Body.String())
	assert.False(t, handled)
}

func TestCSRF_RoundTrip(t *testing.T) {
	var handled bool
	router := setupCSRFRouter(&handled)

	w := get(router, "/form")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	var cookies []*http.Cookie
	cookies = append(cookies, (&http.Response{Header: w.Header()}).Cookies()...)
	require.NotEmpty(t, cookies, "CSRF cookie should be set")

	form := url.Values{}
	form.Set(CSRFFieldName, body["token"])
	form.Set("title", "Dune")

	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handled)
}

func TestGetCSRFToken_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCSRFToken(c))
}
