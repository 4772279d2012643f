package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

// Tests run against a warm permission cache so the gate never reaches the
// database; passing a nil db proves cache hits short-circuit the lookup.
func setupGateTest(t *testing.T, granted []models.Permission) (*gin.Engine, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	utils.SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	userID := uuid.New()
	teamID := uuid.New()
	require.NoError(t, utils.CachePermissionSet(teamID, userID, granted))

	gate := NewPermissionGate(nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("team_id", teamID.String())
		c.Set("email", "coach@example.com")
		c.Set("role", string(models.RoleHeadCoach))
	})
	router.POST("/players", gate.Require(models.PermPlayerCreate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	return router, func() {
		utils.SetRedisClient(nil)
		mr.Close()
	}
}

func TestRequire_GrantedPermissionPasses(t *testing.T) {
	router, cleanup := setupGateTest(t, []models.Permission{models.PermPlayerCreate})
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/players", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequire_MissingPermissionNamesIt(t *testing.T) {
	router, cleanup := setupGateTest(t, []models.Permission{models.PermPlayerView})
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/players", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required permission: player_create")
}

func TestRequire_EmptyGrantSetDenies(t *testing.T) {
	router, cleanup := setupGateTest(t, nil)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/players", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequire_UnauthenticatedContext(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	utils.SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer utils.SetRedisClient(nil)

	gate := NewPermissionGate(nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/players", gate.Require(models.PermPlayerCreate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/players", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidatePermissionSet_ForcesCacheMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	utils.SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer utils.SetRedisClient(nil)

	userID := uuid.New()
	teamID := uuid.New()
	require.NoError(t, utils.CachePermissionSet(teamID, userID, []models.Permission{models.PermPlayerView}))

	set, err := utils.GetCachedPermissionSet(teamID, userID)
	require.NoError(t, err)
	assert.True(t, set.Has(models.PermPlayerView))

	require.NoError(t, utils.InvalidatePermissionSet(teamID, userID))

	_, err = utils.GetCachedPermissionSet(teamID, userID)
	assert.Error(t, err)
}
