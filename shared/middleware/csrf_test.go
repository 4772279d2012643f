package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFRouter(g *CSRFGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(g.Guard())
	router.GET("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCSRFGuard_AllowsMatchingPair(t *testing.T) {
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	token, cookieValue, err := g.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set(CSRFHeaderName, token)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookieValue})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFGuard_RejectsMismatchedPair(t *testing.T) {
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	_, cookieValue, err := g.IssueToken()
	require.NoError(t, err)
	otherToken, _, err := g.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set(CSRFHeaderName, otherToken)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookieValue})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or missing CSRF token")
}

func TestCSRFGuard_RejectsMissingHeader(t *testing.T) {
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	_, cookieValue, err := g.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookieValue})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFGuard_RejectsMissingCookie(t *testing.T) {
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	token, _, err := g.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set(CSRFHeaderName, token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFGuard_RejectsForgedCookieSignature(t *testing.T) {
	issuer := NewCSRFGuard("attacker-secret", time.Hour, false)
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	// Cookie signed with the wrong secret must be treated as missing even
	// though the header token matches its embedded value.
	token, forgedCookie, err := issuer.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set(CSRFHeaderName, token)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: forgedCookie})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFGuard_RejectsExpiredToken(t *testing.T) {
	g := NewCSRFGuard("test-secret", -time.Minute, false)
	router := newCSRFRouter(g)

	token, cookieValue, err := g.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set(CSRFHeaderName, token)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookieValue})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFGuard_SafeMethodsBypassTheGuard(t *testing.T) {
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFGuard_TokenIsReusable(t *testing.T) {
	g := NewCSRFGuard("test-secret", time.Hour, false)
	router := newCSRFRouter(g)

	token, cookieValue, err := g.IssueToken()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/resource", nil)
		req.Header.Set(CSRFHeaderName, token)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookieValue})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
