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

type CreateDepthChartRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	IsDefault   *bool  `json:"is_default"`
}

type UpdateDepthChartRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	IsDefault   *bool   `json:"is_default"`
}

var depthChartSortColumns = []string{"name", "version", "created_at", "updated_at"}

// handleCreateDepthChart inserts the chart at version 1. Setting is_default
// clears the flag on every sibling inside the same transaction, so the team
// never ends up with zero or two defaults.
func handleCreateDepthChart(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateDepthChartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		chart := models.DepthChart{
			ID:          uuid.New(),
			TeamID:      info.TeamID,
			Name:        req.Name,
			Description: req.Description,
			IsDefault:   req.IsDefault != nil && *req.IsDefault,
			Version:     1,
			IsActive:    true,
			CreatedBy:   info.UserID,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if chart.IsDefault {
				if err := store.ClearDefaultSiblings(tx, &models.DepthChart{}, info.TeamID, chart.ID); err != nil {
					return err
				}
			}
			return tx.Create(&chart).Error
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create depth chart")
			return
		}

		if err := db.Preload("Creator").First(&chart, "id = ?", chart.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			return
		}
		recordAudit(c, audit, "create", "depth_chart", chart.ID)
		utils.CreatedResponse(c, "Depth chart created successfully", chart)
	}
}

func handleListDepthCharts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, depthChartSortColumns, store.Sort{Column: "name", Direction: "ASC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.ScopedActive(db.Model(&models.DepthChart{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"name", "description"})

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count depth charts")
			return
		}

		p := store.ParsePagination(c)
		var charts []models.DepthChart
		// Default chart first, then the requested ordering.
		if err := q.Order("is_default DESC").Order(sort.OrderClause()).
			Offset(p.Offset()).Limit(p.Limit).Find(&charts).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch depth charts")
			return
		}

		utils.PaginatedResponse(c, "Depth charts retrieved successfully", charts, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetDepthChart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var chart models.DepthChart
		q := db.Preload("Creator").
			Preload("Positions", "is_active = ?", true).
			Preload("Positions.Assignments", "is_active = ?", true).
			Preload("Positions.Assignments.Player")
		if err := store.FindScoped(q, &chart, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Depth chart not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			}
			return
		}

		utils.OKResponse(c, "Depth chart retrieved successfully", chart)
	}
}

// handleGetDepthChartHistory returns the chart regardless of is_active.
func handleGetDepthChartHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var chart models.DepthChart
		if err := store.FindScoped(db.Preload("Creator"), &chart, info.TeamID, id, false); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Depth chart not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			}
			return
		}

		utils.OKResponse(c, "Depth chart retrieved successfully", chart)
	}
}

// handleUpdateDepthChart merges provided fields and bumps Version by exactly
// one regardless of which fields changed.
func handleUpdateDepthChart(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var chart models.DepthChart
		if err := store.FindScoped(db, &chart, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Depth chart not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			}
			return
		}

		var req UpdateDepthChartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Name != nil {
			chart.Name = *req.Name
		}
		if req.Description != nil {
			chart.Description = *req.Description
		}
		settingDefault := req.IsDefault != nil && *req.IsDefault && !chart.IsDefault
		if req.IsDefault != nil {
			chart.IsDefault = *req.IsDefault
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if settingDefault {
				if err := store.ClearDefaultSiblings(tx, &models.DepthChart{}, info.TeamID, chart.ID); err != nil {
					return err
				}
			}
			if err := tx.Omit("version").Save(&chart).Error; err != nil {
				return err
			}
			// Increment in SQL so concurrent updates each land on a
			// distinct version.
			return tx.Model(&chart).Update("version", gorm.Expr("version + 1")).Error
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update depth chart")
			return
		}

		if err := db.Preload("Creator").First(&chart, "id = ?", chart.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			return
		}
		recordAudit(c, audit, "update", "depth_chart", chart.ID)
		utils.OKResponse(c, "Depth chart updated successfully", chart)
	}
}

func handleDeleteDepthChart(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var chart models.DepthChart
		if err := store.FindScoped(db, &chart, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Depth chart not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			}
			return
		}

		chart.IsActive = false
		if err := db.Save(&chart).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete depth chart")
			return
		}

		recordAudit(c, audit, "delete", "depth_chart", chart.ID)
		utils.OKResponse(c, "Depth chart deleted successfully", nil)
	}
}

// handleDuplicateDepthChart copies the chart and its active positions into a
// new chart named "<name> (Copy)". Player assignments are never copied, and
// the duplicate is never the default.
func handleDuplicateDepthChart(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var source models.DepthChart
		q := db.Preload("Positions", "is_active = ?", true)
		if err := store.FindScoped(q, &source, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Depth chart not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			}
			return
		}

		duplicate := models.DepthChart{
			ID:          uuid.New(),
			TeamID:      info.TeamID,
			Name:        copyName(source.Name),
			Description: source.Description,
			IsDefault:   false,
			Version:     1,
			IsActive:    true,
			CreatedBy:   info.UserID,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&duplicate).Error; err != nil {
				return err
			}
			for _, pos := range source.Positions {
				copied := models.DepthChartPosition{
					ID:           uuid.New(),
					TeamID:       info.TeamID,
					DepthChartID: duplicate.ID,
					Position:     pos.Position,
					DisplayName:  pos.DisplayName,
					SortOrder:    pos.SortOrder,
					MaxPlayers:   pos.MaxPlayers,
					IsActive:     true,
				}
				if err := tx.Create(&copied).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to duplicate depth chart")
			return
		}

		if err := db.Preload("Creator").Preload("Positions", "is_active = ?", true).
			First(&duplicate, "id = ?", duplicate.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch depth chart")
			return
		}
		recordAudit(c, audit, "duplicate", "depth_chart", duplicate.ID)
		utils.CreatedResponse(c, "Depth chart duplicated successfully", duplicate)
	}
}
