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

type CreatePositionRequest struct {
	Position    string `json:"position" validate:"required,oneof=P C 1B 2B 3B SS LF CF RF DH"`
	DisplayName string `json:"display_name" validate:"omitempty,max=80"`
	SortOrder   *int   `json:"sort_order" validate:"omitempty,gte=0"`
	MaxPlayers  *int   `json:"max_players" validate:"omitempty,gte=1,lte=20"`
}

type UpdatePositionRequest struct {
	Position    *string `json:"position" validate:"omitempty,oneof=P C 1B 2B 3B SS LF CF RF DH"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=80"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
	MaxPlayers  *int    `json:"max_players" validate:"omitempty,gte=1,lte=20"`
}

type AssignPlayerRequest struct {
	PlayerID   string `json:"player_id" validate:"required,uuid"`
	DepthOrder *int   `json:"depth_order" validate:"omitempty,gte=1"`
}

// handleCreatePosition adds a slot to a chart. The parent chart must be an
// active chart of the caller's team.
func handleCreatePosition(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		chartID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var chart models.DepthChart
		if err := store.FindScoped(db, &chart, info.TeamID, chartID, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Depth chart not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			}
			return
		}

		var req CreatePositionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		pos := models.DepthChartPosition{
			ID:           uuid.New(),
			TeamID:       info.TeamID,
			DepthChartID: chart.ID,
			Position:     models.PositionCode(req.Position),
			DisplayName:  req.DisplayName,
			SortOrder:    0,
			MaxPlayers:   1,
			IsActive:     true,
		}
		if req.SortOrder != nil {
			pos.SortOrder = *req.SortOrder
		}
		if req.MaxPlayers != nil {
			pos.MaxPlayers = *req.MaxPlayers
		}

		if err := db.Create(&pos).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create position")
			return
		}

		recordAudit(c, audit, "create", "depth_chart_position", pos.ID)
		utils.CreatedResponse(c, "Position created successfully", pos)
	}
}

func handleUpdatePosition(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		posID, ok := parseIDParam(c, "positionId")
		if !ok {
			return
		}

		var pos models.DepthChartPosition
		if err := store.FindScoped(db, &pos, info.TeamID, posID, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Position not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch position")
			}
			return
		}

		var req UpdatePositionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Position != nil {
			pos.Position = models.PositionCode(*req.Position)
		}
		if req.DisplayName != nil {
			pos.DisplayName = *req.DisplayName
		}
		if req.SortOrder != nil {
			pos.SortOrder = *req.SortOrder
		}
		if req.MaxPlayers != nil {
			pos.MaxPlayers = *req.MaxPlayers
		}

		if err := db.Save(&pos).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update position")
			return
		}

		recordAudit(c, audit, "update", "depth_chart_position", pos.ID)
		utils.OKResponse(c, "Position updated successfully", pos)
	}
}

// handleDeletePosition soft-deletes the slot. Assignments under it stay
// untouched; children are toggled independently, never cascaded.
func handleDeletePosition(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		posID, ok := parseIDParam(c, "positionId")
		if !ok {
			return
		}

		var pos models.DepthChartPosition
		if err := store.FindScoped(db, &pos, info.TeamID, posID, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Position not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch position")
			}
			return
		}

		pos.IsActive = false
		if err := db.Save(&pos).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete position")
			return
		}

		recordAudit(c, audit, "delete", "depth_chart_position", pos.ID)
		utils.OKResponse(c, "Position deleted successfully", nil)
	}
}

// handleAssignPlayer places a player on a position slot. A player may hold at
// most one active assignment per position, and the slot cannot exceed its
// max_players.
func handleAssignPlayer(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		posID, ok := parseIDParam(c, "positionId")
		if !ok {
			return
		}

		var req AssignPlayerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}
		playerID, _ := uuid.Parse(req.PlayerID)

		var pos models.DepthChartPosition
		if err := store.FindScoped(db, &pos, info.TeamID, posID, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Position not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch position")
			}
			return
		}

		var player models.Player
		if err := store.FindScoped(db, &player, info.TeamID, playerID, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Player not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch player")
			}
			return
		}

		var existing models.PlayerAssignment
		err := db.Where("depth_chart_position_id = ? AND player_id = ? AND is_active = ?", pos.ID, player.ID, true).
			First(&existing).Error
		if err == nil {
			utils.BadRequestResponse(c, "Player is already assigned to this position")
			return
		}
		if err != gorm.ErrRecordNotFound {
			utils.InternalServerErrorResponse(c, "Failed to check existing assignments")
			return
		}

		var count int64
		if err := db.Model(&models.PlayerAssignment{}).
			Where("depth_chart_position_id = ? AND is_active = ?", pos.ID, true).
			Count(&count).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to check position capacity")
			return
		}
		if count >= int64(pos.MaxPlayers) {
			utils.BadRequestResponse(c, "Position is full")
			return
		}

		assignment := models.PlayerAssignment{
			ID:                   uuid.New(),
			TeamID:               info.TeamID,
			DepthChartPositionID: pos.ID,
			PlayerID:             player.ID,
			DepthOrder:           int(count) + 1,
			IsActive:             true,
		}
		if req.DepthOrder != nil {
			assignment.DepthOrder = *req.DepthOrder
		}

		if err := db.Create(&assignment).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to assign player")
			return
		}

		if err := db.Preload("Player").First(&assignment, "id = ?", assignment.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch assignment")
			return
		}
		recordAudit(c, audit, "create", "player_assignment", assignment.ID)
		utils.CreatedResponse(c, "Player assigned successfully", assignment)
	}
}

// handleUnassignPlayer soft-deletes the active assignment of a player on a
// position. 404 when no active assignment exists.
func handleUnassignPlayer(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		posID, ok := parseIDParam(c, "positionId")
		if !ok {
			return
		}
		playerID, ok := parseIDParam(c, "playerId")
		if !ok {
			return
		}

		var assignment models.PlayerAssignment
		err := store.Scoped(db, info.TeamID).
			Where("depth_chart_position_id = ? AND player_id = ? AND is_active = ?", posID, playerID, true).
			First(&assignment).Error
		if err == gorm.ErrRecordNotFound {
			utils.NotFoundResponse(c, "Assignment not found")
			return
		}
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch assignment")
			return
		}

		assignment.IsActive = false
		if err := db.Save(&assignment).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to remove assignment")
			return
		}

		recordAudit(c, audit, "delete", "player_assignment", assignment.ID)
		utils.OKResponse(c, "Player removed from position successfully", nil)
	}
}
