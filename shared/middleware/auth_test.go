package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

func setupAuthTest(t *testing.T) (*AuthMiddleware, *models.User, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	utils.SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	am := NewAuthMiddleware("test-jwt-secret", time.Hour)
	user := &models.User{
		ID:     uuid.New(),
		TeamID: uuid.New(),
		Email:  "coach@example.com",
		Role:   models.RoleHeadCoach,
	}

	return am, user, func() {
		utils.SetRedisClient(nil)
		mr.Close()
	}
}

func newAuthRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		info, err := GetUserInfoFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, info)
	})
	return router
}

func TestRequireAuth_MissingToken(t *testing.T) {
	am, _, cleanup := setupAuthTest(t)
	defer cleanup()
	router := newAuthRouter(am)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization token required")
}

func TestRequireAuth_MalformedToken(t *testing.T) {
	am, _, cleanup := setupAuthTest(t)
	defer cleanup()
	router := newAuthRouter(am)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestRequireAuth_WrongSigningKey(t *testing.T) {
	am, user, cleanup := setupAuthTest(t)
	defer cleanup()
	router := newAuthRouter(am)

	other := NewAuthMiddleware("different-secret", time.Hour)
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestRequireAuth_ValidTokenWithLiveSession(t *testing.T) {
	am, user, cleanup := setupAuthTest(t)
	defer cleanup()
	router := newAuthRouter(am)

	token, err := am.GenerateToken(user)
	require.NoError(t, err)
	_, err = utils.CreateTokenSession(token, user.ID, user.TeamID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.TeamID.String())
}

func TestRequireAuth_RevokedSession(t *testing.T) {
	am, user, cleanup := setupAuthTest(t)
	defer cleanup()
	router := newAuthRouter(am)

	token, err := am.GenerateToken(user)
	require.NoError(t, err)
	_, err = utils.CreateTokenSession(token, user.ID, user.TeamID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, utils.RevokeTokenSession(token))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestRequireAuth_TokenFromCookie(t *testing.T) {
	am, user, cleanup := setupAuthTest(t)
	defer cleanup()
	router := newAuthRouter(am)

	token, err := am.GenerateToken(user)
	require.NoError(t, err)
	_, err = utils.CreateTokenSession(token, user.ID, user.TeamID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateToken_RoundTrip(t *testing.T) {
	am, user, cleanup := setupAuthTest(t)
	defer cleanup()

	token, err := am.GenerateToken(user)
	require.NoError(t, err)

	claims, err := am.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.TeamID, claims.TeamID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
}
