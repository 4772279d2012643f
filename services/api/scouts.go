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

type CreateScoutRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	Organization string `json:"organization" validate:"omitempty,max=160"`
	Region       string `json:"region" validate:"omitempty,max=120"`
	Notes        string `json:"notes" validate:"omitempty,max=4000"`
}

type UpdateScoutRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	Organization *string `json:"organization" validate:"omitempty,max=160"`
	Region       *string `json:"region" validate:"omitempty,max=120"`
	Notes        *string `json:"notes" validate:"omitempty,max=4000"`
}

var scoutSortColumns = []string{"name", "organization", "region", "created_at"}

// findScout is the tenant-scoped lookup for scouts. Like games, scouts are
// hard-deleted.
func findScout(db *gorm.DB, teamID, id uuid.UUID, dest *models.Scout) error {
	return store.Scoped(db, teamID).Where("id = ?", id).First(dest).Error
}

func handleCreateScout(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateScoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		scout := models.Scout{
			ID:           uuid.New(),
			TeamID:       info.TeamID,
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			Organization: req.Organization,
			Region:       req.Region,
			Notes:        req.Notes,
			CreatedBy:    info.UserID,
		}

		if err := db.Create(&scout).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create scout")
			return
		}

		recordAudit(c, audit, "create", "scout", scout.ID)
		utils.CreatedResponse(c, "Scout created successfully", scout)
	}
}

func handleListScouts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, scoutSortColumns, store.Sort{Column: "name", Direction: "ASC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.Scoped(db.Model(&models.Scout{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"name", "organization", "region"})

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count scouts")
			return
		}

		p := store.ParsePagination(c)
		var scouts []models.Scout
		if err := q.Order(sort.OrderClause()).Offset(p.Offset()).Limit(p.Limit).Find(&scouts).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch scouts")
			return
		}

		utils.PaginatedResponse(c, "Scouts retrieved successfully", scouts, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetScout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var scout models.Scout
		if err := findScout(db, info.TeamID, id, &scout); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scout not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scout")
			}
			return
		}

		utils.OKResponse(c, "Scout retrieved successfully", scout)
	}
}

func handleUpdateScout(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var scout models.Scout
		if err := findScout(db, info.TeamID, id, &scout); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scout not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scout")
			}
			return
		}

		var req UpdateScoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Name != nil {
			scout.Name = *req.Name
		}
		if req.Email != nil {
			scout.Email = *req.Email
		}
		if req.Phone != nil {
			scout.Phone = *req.Phone
		}
		if req.Organization != nil {
			scout.Organization = *req.Organization
		}
		if req.Region != nil {
			scout.Region = *req.Region
		}
		if req.Notes != nil {
			scout.Notes = *req.Notes
		}

		if err := db.Save(&scout).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update scout")
			return
		}

		recordAudit(c, audit, "update", "scout", scout.ID)
		utils.OKResponse(c, "Scout updated successfully", scout)
	}
}

// handleDeleteScout destroys the row. Subsequent reads 404.
func handleDeleteScout(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var scout models.Scout
		if err := findScout(db, info.TeamID, id, &scout); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scout not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scout")
			}
			return
		}

		if err := db.Delete(&scout).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete scout")
			return
		}

		recordAudit(c, audit, "delete", "scout", scout.ID)
		utils.OKResponse(c, "Scout deleted successfully", nil)
	}
}
