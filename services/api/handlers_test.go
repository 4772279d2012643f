package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dugouthq/dugout/shared/middleware"
	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
	"github.com/dugouthq/dugout/shared/validation"
)

// fakeAuth injects an authenticated identity the way RequireAuth would.
func fakeAuth(userID, teamID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("team_id", teamID.String())
		c.Set("email", "coach@example.com")
		c.Set("role", string(models.RoleHeadCoach))
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorPaths(errs []validation.FieldError) []string {
	paths := make([]string, 0, len(errs))
	for _, e := range errs {
		paths = append(paths, e.Path)
	}
	return paths
}

func TestCopyName(t *testing.T) {
	assert.Equal(t, "Opening Day (Copy)", copyName("Opening Day"))
	assert.Equal(t, "Opening Day (Copy) (Copy)", copyName("Opening Day (Copy)"))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-04-01")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.April, d.Month())

	_, err = parseDate("04/01/2026")
	assert.Error(t, err)
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/things/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/things/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/things/not-a-uuid", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid id parameter")
}

// Registration validation runs before any database access, so a nil db proves
// rejected requests never touch storage.
func TestRegister_ValidationAggregatesAllFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	router.POST("/auth/register", handleRegister(nil, auth, 4, false))

	w := postJSON(t, router, "/auth/register", gin.H{
		"email":      "not-an-email",
		"password":   "short",
		"first_name": "",
		"last_name":  "",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Message)

	paths := errorPaths(resp.Errors)
	assert.Contains(t, paths, "email")
	assert.Contains(t, paths, "password")
	assert.Contains(t, paths, "first_name")
	assert.Contains(t, paths, "last_name")
	assert.Contains(t, paths, "team_id")
}

func TestRegister_RejectsBothTeamFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	router.POST("/auth/register", handleRegister(nil, auth, 4, false))

	w := postJSON(t, router, "/auth/register", gin.H{
		"email":      "coach@example.com",
		"password":   "long-enough-password",
		"first_name": "Sam",
		"last_name":  "Rivera",
		"team_id":    uuid.New().String(),
		"team_name":  "Riverside Hawks",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Contains(t, errorPaths(resp.Errors), "team_id")
}

func TestCreateReport_RequiresExactlyOneSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(fakeAuth(uuid.New(), uuid.New()))
	router.POST("/scouting-reports", handleCreateReport(nil, nil))

	// Neither player_id nor prospect_id.
	w := postJSON(t, router, "/scouting-reports", gin.H{
		"scout_id":    uuid.New().String(),
		"report_date": "2026-04-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Contains(t, errorPaths(resp.Errors), "player_id")

	// Both at once.
	w = postJSON(t, router, "/scouting-reports", gin.H{
		"scout_id":    uuid.New().String(),
		"report_date": "2026-04-01",
		"player_id":   uuid.New().String(),
		"prospect_id": uuid.New().String(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp = decodeEnvelope(t, w)
	assert.Contains(t, errorPaths(resp.Errors), "player_id")
}

func TestCreateReport_GradesOutOfScale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(fakeAuth(uuid.New(), uuid.New()))
	router.POST("/scouting-reports", handleCreateReport(nil, nil))

	w := postJSON(t, router, "/scouting-reports", gin.H{
		"scout_id":      uuid.New().String(),
		"player_id":     uuid.New().String(),
		"report_date":   "2026-04-01",
		"overall_grade": 95,
		"speed_grade":   10,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	paths := errorPaths(resp.Errors)
	assert.Contains(t, paths, "overall_grade")
	assert.Contains(t, paths, "speed_grade")
}

func TestCSRFTokenEndpoint_IssuesMatchingPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	csrf := middleware.NewCSRFGuard("test-csrf-secret", time.Hour, false)

	router := gin.New()
	router.GET("/csrf-token", handleCSRFToken(csrf))
	router.Use(csrf.Guard())
	router.POST("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)

	cookies := w.Result().Cookies()
	var csrfCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == middleware.CSRFCookieName {
			csrfCookie = ck
		}
	}
	require.NotNil(t, csrfCookie)

	mutate := httptest.NewRequest(http.MethodPost, "/resource", nil)
	mutate.Header.Set(middleware.CSRFHeaderName, resp.Data.Token)
	mutate.AddCookie(csrfCookie)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, mutate)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidPermission(t *testing.T) {
	assert.True(t, models.ValidPermission("player_create"))
	assert.True(t, models.ValidPermission("manage_permissions"))
	assert.False(t, models.ValidPermission("superuser"))
	assert.False(t, models.ValidPermission(""))
}
