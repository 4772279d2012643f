package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock, func() { sqlDB.Close() }
}

func TestFindScoped_FiltersByTeamAndActive(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	teamID := uuid.New()
	playerID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "is_active"}).
			AddRow(playerID, teamID, true))

	var player models.Player
	err := FindScoped(db, &player, teamID, playerID, true)
	require.NoError(t, err)
	assert.Equal(t, playerID, player.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindScoped_MissingRowIsNotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	teamID := uuid.New()
	playerID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE team_id = \$1 AND id = \$2 AND is_active = \$3`).
		WithArgs(teamID, playerID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var player models.Player
	err := FindScoped(db, &player, teamID, playerID, true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindScoped_InactiveRowsVisibleWhenRequested(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	teamID := uuid.New()
	playerID := uuid.New()

	// activeOnly=false must not add the is_active filter, so history reads
	// can see soft-deleted rows.
	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE team_id = \$1 AND id = \$2 ORDER BY`).
		WithArgs(teamID, playerID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "is_active"}).
			AddRow(playerID, teamID, false))

	var player models.Player
	err := FindScoped(db, &player, teamID, playerID, false)
	require.NoError(t, err)
	assert.False(t, player.IsActive)
}

func TestClearDefaultSiblings_SingleUpdate(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	teamID := uuid.New()
	keepID := uuid.New()

	mock.ExpectExec(`UPDATE "depth_charts" SET (.+) WHERE team_id = \$(.+) AND id <> \$(.+) AND is_default = \$(.+)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := ClearDefaultSiblings(db, &models.DepthChart{}, teamID, keepID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySearch_BuildsILIKEAcrossColumns(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "players" WHERE first_name ILIKE \$1 OR last_name ILIKE \$2`).
		WithArgs("%rivera%", "%rivera%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var players []models.Player
	err := ApplySearch(db.Model(&models.Player{}), "rivera", []string{"first_name", "last_name"}).
		Find(&players).Error
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
