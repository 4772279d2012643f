package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/middleware"
	"github.com/dugouthq/dugout/shared/utils"
)

func setupHandlerDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock, func() { sqlDB.Close() }
}

func putJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func chartRows(id, teamID, createdBy uuid.UUID, name string, isDefault bool, version int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "team_id", "name", "description", "is_default", "version", "is_active", "created_by",
	}).AddRow(id, teamID, name, "", isDefault, version, true, createdBy)
}

// Registration logs the new user in: the response carries an access token and
// the session cookie is set, same as login.
func TestRegister_IssuesSessionAndCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	utils.SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer utils.SetRedisClient(nil)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WithArgs("newcoach@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "teams"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "permission_grants"`).WillReturnResult(sqlmock.NewResult(0, 31))
	mock.ExpectCommit()

	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	router := gin.New()
	router.POST("/auth/register", handleRegister(db, auth, 4, false))

	w := postJSON(t, router, "/auth/register", gin.H{
		"email":      "newcoach@example.com",
		"password":   "long-enough-password",
		"first_name": "Sam",
		"last_name":  "Rivera",
		"team_name":  "Riverside Hawks",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)

	var sessionCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, token, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	session, err := utils.GetTokenSession(token)
	require.NoError(t, err)
	assert.Equal(t, data["session_id"], session.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The email pre-check races with the insert. A unique violation from the
// transaction must surface as the same 400 the pre-check produces.
func TestRegister_DuplicateInsertMapsTo400(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WithArgs("taken@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "teams"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	router := gin.New()
	router.POST("/auth/register", handleRegister(db, auth, 4, false))

	w := postJSON(t, router, "/auth/register", gin.H{
		"email":      "taken@example.com",
		"password":   "long-enough-password",
		"first_name": "Sam",
		"last_name":  "Rivera",
		"team_name":  "Riverside Hawks",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A second active assignment of the same player on the same position is
// rejected before any insert happens.
func TestAssignPlayer_DuplicateAssignmentRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	teamID := uuid.New()
	posID := uuid.New()
	playerID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "depth_chart_positions" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, posID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "max_players", "is_active"}).
			AddRow(posID, teamID, 3, true))
	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "is_active"}).
			AddRow(playerID, teamID, true))
	mock.ExpectQuery(`SELECT (.+) FROM "player_assignments" WHERE depth_chart_position_id = \$1 AND player_id = \$2 AND is_active = \$3`).
		WithArgs(posID, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "depth_chart_position_id", "player_id", "is_active"}).
			AddRow(uuid.New(), teamID, posID, playerID, true))

	router := gin.New()
	router.Use(fakeAuth(uuid.New(), teamID))
	router.POST("/positions/:positionId/players", handleAssignPlayer(db, nil))

	w := postJSON(t, router, "/positions/"+posID.String()+"/players", gin.H{
		"player_id": playerID.String(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Player is already assigned to this position")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A slot at max_players rejects further assignments.
func TestAssignPlayer_PositionFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	teamID := uuid.New()
	posID := uuid.New()
	playerID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "depth_chart_positions" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, posID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "max_players", "is_active"}).
			AddRow(posID, teamID, 2, true))
	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "is_active"}).
			AddRow(playerID, teamID, true))
	mock.ExpectQuery(`SELECT (.+) FROM "player_assignments" WHERE depth_chart_position_id = \$1 AND player_id = \$2 AND is_active = \$3`).
		WithArgs(posID, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "player_assignments" WHERE depth_chart_position_id = \$1 AND is_active = \$2`).
		WithArgs(posID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	router := gin.New()
	router.Use(fakeAuth(uuid.New(), teamID))
	router.POST("/positions/:positionId/players", handleAssignPlayer(db, nil))

	w := postJSON(t, router, "/positions/"+posID.String()+"/players", gin.H{
		"player_id": playerID.String(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Position is full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Updating a chart to default clears every sibling's flag in the same
// transaction and increments version in SQL, not in Go.
func TestUpdateDepthChart_BumpsVersionAndClearsSiblings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	teamID := uuid.New()
	userID := uuid.New()
	chartID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "depth_charts" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, chartID, true, 1).
		WillReturnRows(chartRows(chartID, teamID, userID, "Lineup A", false, 3))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "depth_charts" SET (.+) WHERE team_id = \$(.+) AND id <> \$(.+) AND is_default = \$(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "depth_charts" SET (.+) WHERE "id" = \$(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "depth_charts" SET (.+)"version"=version \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "depth_charts" WHERE id = \$1`).
		WithArgs(chartID, 1).
		WillReturnRows(chartRows(chartID, teamID, userID, "Lineup B", true, 4))
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := gin.New()
	router.Use(fakeAuth(userID, teamID))
	router.PUT("/depth-charts/:id", handleUpdateDepthChart(db, nil))

	w := putJSON(t, router, "/depth-charts/"+chartID.String(), gin.H{
		"name":       "Lineup B",
		"is_default": true,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), data["version"])
	assert.Equal(t, true, data["is_default"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Duplicating a chart inserts the copy and its active positions, and nothing
// else: no assignment rows are written, and the copy is never the default.
func TestDuplicateDepthChart_CopiesPositionsNotAssignments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	teamID := uuid.New()
	userID := uuid.New()
	chartID := uuid.New()
	posID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "depth_charts" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, chartID, true, 1).
		WillReturnRows(chartRows(chartID, teamID, userID, "Lineup A", true, 2))
	mock.ExpectQuery(`SELECT (.+) FROM "depth_chart_positions"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "team_id", "depth_chart_id", "position", "display_name", "sort_order", "max_players", "is_active",
		}).AddRow(posID, teamID, chartID, "SS", "Shortstop", 1, 2, true))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "depth_charts"`).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO "depth_chart_positions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "depth_charts" WHERE id = \$1`).
		WithArgs(sqlmock.AnyArg(), 1).
		WillReturnRows(chartRows(uuid.New(), teamID, userID, "Lineup A (Copy)", false, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "depth_chart_positions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "depth_chart_id", "position", "is_active"}))

	router := gin.New()
	router.Use(fakeAuth(userID, teamID))
	router.POST("/depth-charts/:id/duplicate", handleDuplicateDepthChart(db, nil))

	w := postJSON(t, router, "/depth-charts/"+chartID.String()+"/duplicate", nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Lineup A (Copy)")
	assert.Contains(t, w.Body.String(), `"is_default":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Every lookup carries the caller's team_id, so a row owned by another team is
// indistinguishable from a missing one.
func TestGetPlayer_ScopedToCallerTeam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, cleanup := setupHandlerDB(t)
	defer cleanup()

	callerTeam := uuid.New()
	playerID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(callerTeam, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := gin.New()
	router.Use(fakeAuth(uuid.New(), callerTeam))
	router.GET("/players/:id", handleGetPlayer(db))

	req := httptest.NewRequest(http.MethodGet, "/players/"+playerID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Player not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
