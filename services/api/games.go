package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/store"
	"github.com/dugouthq/dugout/shared/utils"
	"github.com/dugouthq/dugout/shared/validation"
)

type CreateGameRequest struct {
	Opponent      string `json:"opponent" validate:"required,min=1,max=120"`
	GameDate      string `json:"game_date" validate:"required,datetime=2006-01-02"`
	Location      string `json:"location" validate:"omitempty,max=160"`
	HomeAway      string `json:"home_away" validate:"omitempty,oneof=home away"`
	Status        string `json:"status" validate:"omitempty,oneof=scheduled in_progress final postponed cancelled"`
	TeamScore     *int   `json:"team_score" validate:"omitempty,gte=0"`
	OpponentScore *int   `json:"opponent_score" validate:"omitempty,gte=0"`
	Notes         string `json:"notes" validate:"omitempty,max=4000"`
}

type UpdateGameRequest struct {
	Opponent      *string `json:"opponent" validate:"omitempty,min=1,max=120"`
	GameDate      *string `json:"game_date" validate:"omitempty,datetime=2006-01-02"`
	Location      *string `json:"location" validate:"omitempty,max=160"`
	HomeAway      *string `json:"home_away" validate:"omitempty,oneof=home away"`
	Status        *string `json:"status" validate:"omitempty,oneof=scheduled in_progress final postponed cancelled"`
	TeamScore     *int    `json:"team_score" validate:"omitempty,gte=0"`
	OpponentScore *int    `json:"opponent_score" validate:"omitempty,gte=0"`
	Notes         *string `json:"notes" validate:"omitempty,max=4000"`
}

var gameSortColumns = []string{"game_date", "opponent", "status", "created_at"}

// findGame is the tenant-scoped lookup shared by the game handlers. Games
// have no soft-delete flag: hard deletion removes the row entirely.
func findGame(db *gorm.DB, teamID, id uuid.UUID, dest *models.Game) error {
	return store.Scoped(db, teamID).Where("id = ?", id).First(dest).Error
}

func handleCreateGame(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		date, _ := parseDate(req.GameDate)
		homeAway := models.HomeGame
		if req.HomeAway != "" {
			homeAway = models.HomeAway(req.HomeAway)
		}
		status := models.GameStatusScheduled
		if req.Status != "" {
			status = models.GameStatus(req.Status)
		}

		game := models.Game{
			ID:            uuid.New(),
			TeamID:        info.TeamID,
			Opponent:      req.Opponent,
			GameDate:      date,
			Location:      req.Location,
			HomeAway:      homeAway,
			Status:        status,
			TeamScore:     req.TeamScore,
			OpponentScore: req.OpponentScore,
			Notes:         req.Notes,
			CreatedBy:     info.UserID,
		}

		if err := db.Create(&game).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create game")
			return
		}

		if err := db.Preload("Creator").First(&game, "id = ?", game.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch game")
			return
		}
		recordAudit(c, audit, "create", "game", game.ID)
		utils.CreatedResponse(c, "Game created successfully", game)
	}
}

func handleListGames(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, gameSortColumns, store.Sort{Column: "game_date", Direction: "DESC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.Scoped(db.Model(&models.Game{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"opponent", "location", "notes"})
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if ha := c.Query("home_away"); ha != "" {
			q = q.Where("home_away = ?", ha)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count games")
			return
		}

		p := store.ParsePagination(c)
		var games []models.Game
		if err := q.Order(sort.OrderClause()).Offset(p.Offset()).Limit(p.Limit).Find(&games).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch games")
			return
		}

		utils.PaginatedResponse(c, "Games retrieved successfully", games, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetGame(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var game models.Game
		if err := findGame(db.Preload("Creator"), info.TeamID, id, &game); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Game not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch game")
			}
			return
		}

		utils.OKResponse(c, "Game retrieved successfully", game)
	}
}

func handleUpdateGame(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var game models.Game
		if err := findGame(db, info.TeamID, id, &game); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Game not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch game")
			}
			return
		}

		var req UpdateGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Opponent != nil {
			game.Opponent = *req.Opponent
		}
		if req.GameDate != nil {
			d, _ := parseDate(*req.GameDate)
			game.GameDate = d
		}
		if req.Location != nil {
			game.Location = *req.Location
		}
		if req.HomeAway != nil {
			game.HomeAway = models.HomeAway(*req.HomeAway)
		}
		if req.Status != nil {
			game.Status = models.GameStatus(*req.Status)
		}
		if req.TeamScore != nil {
			game.TeamScore = req.TeamScore
		}
		if req.OpponentScore != nil {
			game.OpponentScore = req.OpponentScore
		}
		if req.Notes != nil {
			game.Notes = *req.Notes
		}

		if err := db.Save(&game).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update game")
			return
		}

		if err := db.Preload("Creator").First(&game, "id = ?", game.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch game")
			return
		}
		recordAudit(c, audit, "update", "game", game.ID)
		utils.OKResponse(c, "Game updated successfully", game)
	}
}

// handleDeleteGame destroys the row. Subsequent reads 404.
func handleDeleteGame(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var game models.Game
		if err := findGame(db, info.TeamID, id, &game); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Game not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch game")
			}
			return
		}

		if err := db.Delete(&game).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete game")
			return
		}

		recordAudit(c, audit, "delete", "game", game.ID)
		utils.OKResponse(c, "Game deleted successfully", nil)
	}
}
