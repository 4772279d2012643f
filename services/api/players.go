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

// CreatePlayerRequest carries the writable player fields.
type CreatePlayerRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=80"`
	LastName        string `json:"last_name" validate:"required,max=80"`
	JerseyNumber    *int   `json:"jersey_number" validate:"omitempty,gte=0,lte=99"`
	PrimaryPosition string `json:"primary_position" validate:"omitempty,oneof=P C 1B 2B 3B SS LF CF RF DH"`
	Bats            string `json:"bats" validate:"omitempty,oneof=L R S"`
	Throws          string `json:"throws" validate:"omitempty,oneof=L R"`
	Status          string `json:"status" validate:"omitempty,oneof=active injured suspended inactive"`
	HeightInches    *int   `json:"height_inches" validate:"omitempty,gte=48,lte=90"`
	WeightLbs       *int   `json:"weight_lbs" validate:"omitempty,gte=80,lte=400"`
	Birthdate       string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Notes           string `json:"notes" validate:"omitempty,max=4000"`
}

// UpdatePlayerRequest is a partial update: only provided fields change.
type UpdatePlayerRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,min=1,max=80"`
	LastName        *string `json:"last_name" validate:"omitempty,min=1,max=80"`
	JerseyNumber    *int    `json:"jersey_number" validate:"omitempty,gte=0,lte=99"`
	PrimaryPosition *string `json:"primary_position" validate:"omitempty,oneof=P C 1B 2B 3B SS LF CF RF DH"`
	Bats            *string `json:"bats" validate:"omitempty,oneof=L R S"`
	Throws          *string `json:"throws" validate:"omitempty,oneof=L R"`
	Status          *string `json:"status" validate:"omitempty,oneof=active injured suspended inactive"`
	HeightInches    *int    `json:"height_inches" validate:"omitempty,gte=48,lte=90"`
	WeightLbs       *int    `json:"weight_lbs" validate:"omitempty,gte=80,lte=400"`
	Birthdate       *string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Notes           *string `json:"notes" validate:"omitempty,max=4000"`
}

var playerSortColumns = []string{"last_name", "first_name", "jersey_number", "status", "created_at"}

func handleCreatePlayer(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreatePlayerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		status := models.PlayerStatusActive
		if req.Status != "" {
			status = models.PlayerStatus(req.Status)
		}

		player := models.Player{
			ID:              uuid.New(),
			TeamID:          info.TeamID,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			JerseyNumber:    req.JerseyNumber,
			PrimaryPosition: models.PositionCode(req.PrimaryPosition),
			Bats:            models.Handedness(req.Bats),
			Throws:          models.Handedness(req.Throws),
			Status:          status,
			HeightInches:    req.HeightInches,
			WeightLbs:       req.WeightLbs,
			Notes:           req.Notes,
			IsActive:        true,
			CreatedBy:       info.UserID,
		}
		if req.Birthdate != "" {
			bd, _ := parseDate(req.Birthdate)
			player.Birthdate = &bd
		}

		if err := db.Create(&player).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create player")
			return
		}

		if err := db.Preload("Creator").First(&player, "id = ?", player.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch player")
			return
		}
		recordAudit(c, audit, "create", "player", player.ID)
		utils.CreatedResponse(c, "Player created successfully", player)
	}
}

func handleListPlayers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, playerSortColumns, store.Sort{Column: "created_at", Direction: "DESC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.ScopedActive(db.Model(&models.Player{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"first_name", "last_name", "notes"})
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if pos := c.Query("position"); pos != "" {
			q = q.Where("primary_position = ?", pos)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count players")
			return
		}

		p := store.ParsePagination(c)
		var players []models.Player
		if err := q.Order(sort.OrderClause()).Offset(p.Offset()).Limit(p.Limit).Find(&players).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch players")
			return
		}

		utils.PaginatedResponse(c, "Players retrieved successfully", players, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetPlayer(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var player models.Player
		if err := store.FindScoped(db.Preload("Creator"), &player, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Player not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch player")
			}
			return
		}

		utils.OKResponse(c, "Player retrieved successfully", player)
	}
}

// handleGetPlayerHistory returns the player even after soft deletion, for
// audit and history views.
func handleGetPlayerHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var player models.Player
		if err := store.FindScoped(db.Preload("Creator"), &player, info.TeamID, id, false); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Player not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch player")
			}
			return
		}

		utils.OKResponse(c, "Player retrieved successfully", player)
	}
}

func handleUpdatePlayer(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var player models.Player
		if err := store.FindScoped(db, &player, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Player not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch player")
			}
			return
		}

		var req UpdatePlayerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.FirstName != nil {
			player.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			player.LastName = *req.LastName
		}
		if req.JerseyNumber != nil {
			player.JerseyNumber = req.JerseyNumber
		}
		if req.PrimaryPosition != nil {
			player.PrimaryPosition = models.PositionCode(*req.PrimaryPosition)
		}
		if req.Bats != nil {
			player.Bats = models.Handedness(*req.Bats)
		}
		if req.Throws != nil {
			player.Throws = models.Handedness(*req.Throws)
		}
		if req.Status != nil {
			player.Status = models.PlayerStatus(*req.Status)
		}
		if req.HeightInches != nil {
			player.HeightInches = req.HeightInches
		}
		if req.WeightLbs != nil {
			player.WeightLbs = req.WeightLbs
		}
		if req.Birthdate != nil {
			bd, _ := parseDate(*req.Birthdate)
			player.Birthdate = &bd
		}
		if req.Notes != nil {
			player.Notes = *req.Notes
		}

		if err := db.Save(&player).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update player")
			return
		}

		if err := db.Preload("Creator").First(&player, "id = ?", player.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch player")
			return
		}
		recordAudit(c, audit, "update", "player", player.ID)
		utils.OKResponse(c, "Player updated successfully", player)
	}
}

// handleDeletePlayer soft-deletes. Deleting an already-inactive player is a
// 404, not a 200.
func handleDeletePlayer(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var player models.Player
		if err := store.FindScoped(db, &player, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Player not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch player")
			}
			return
		}

		player.IsActive = false
		if err := db.Save(&player).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete player")
			return
		}

		recordAudit(c, audit, "delete", "player", player.ID)
		utils.OKResponse(c, "Player deleted successfully", nil)
	}
}
