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

type CreateProspectRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=80"`
	LastName        string `json:"last_name" validate:"required,max=80"`
	PrimaryPosition string `json:"primary_position" validate:"omitempty,oneof=P C 1B 2B 3B SS LF CF RF DH"`
	GraduationYear  *int   `json:"graduation_year" validate:"omitempty,gte=2000,lte=2100"`
	School          string `json:"school" validate:"omitempty,max=160"`
	City            string `json:"city" validate:"omitempty,max=120"`
	State           string `json:"state" validate:"omitempty,max=40"`
	OverallGrade    *int   `json:"overall_grade" validate:"omitempty,gte=20,lte=80"`
	Status          string `json:"status" validate:"omitempty,oneof=watch evaluate priority signed passed"`
	Notes           string `json:"notes" validate:"omitempty,max=4000"`
}

type UpdateProspectRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,min=1,max=80"`
	LastName        *string `json:"last_name" validate:"omitempty,min=1,max=80"`
	PrimaryPosition *string `json:"primary_position" validate:"omitempty,oneof=P C 1B 2B 3B SS LF CF RF DH"`
	GraduationYear  *int    `json:"graduation_year" validate:"omitempty,gte=2000,lte=2100"`
	School          *string `json:"school" validate:"omitempty,max=160"`
	City            *string `json:"city" validate:"omitempty,max=120"`
	State           *string `json:"state" validate:"omitempty,max=40"`
	OverallGrade    *int    `json:"overall_grade" validate:"omitempty,gte=20,lte=80"`
	Status          *string `json:"status" validate:"omitempty,oneof=watch evaluate priority signed passed"`
	Notes           *string `json:"notes" validate:"omitempty,max=4000"`
}

var prospectSortColumns = []string{"last_name", "first_name", "graduation_year", "overall_grade", "status", "created_at"}

func handleCreateProspect(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateProspectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		status := models.ProspectStatusWatch
		if req.Status != "" {
			status = models.ProspectStatus(req.Status)
		}

		prospect := models.Prospect{
			ID:              uuid.New(),
			TeamID:          info.TeamID,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			PrimaryPosition: models.PositionCode(req.PrimaryPosition),
			GraduationYear:  req.GraduationYear,
			School:          req.School,
			City:            req.City,
			State:           req.State,
			OverallGrade:    req.OverallGrade,
			Status:          status,
			Notes:           req.Notes,
			IsActive:        true,
			CreatedBy:       info.UserID,
		}

		if err := db.Create(&prospect).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create prospect")
			return
		}

		if err := db.Preload("Creator").First(&prospect, "id = ?", prospect.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
			return
		}
		recordAudit(c, audit, "create", "prospect", prospect.ID)
		utils.CreatedResponse(c, "Prospect created successfully", prospect)
	}
}

func handleListProspects(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, prospectSortColumns, store.Sort{Column: "created_at", Direction: "DESC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.ScopedActive(db.Model(&models.Prospect{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"first_name", "last_name", "school", "city"})
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if pos := c.Query("position"); pos != "" {
			q = q.Where("primary_position = ?", pos)
		}
		if year := c.Query("graduation_year"); year != "" {
			q = q.Where("graduation_year = ?", year)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count prospects")
			return
		}

		p := store.ParsePagination(c)
		var prospects []models.Prospect
		if err := q.Order(sort.OrderClause()).Offset(p.Offset()).Limit(p.Limit).Find(&prospects).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch prospects")
			return
		}

		utils.PaginatedResponse(c, "Prospects retrieved successfully", prospects, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetProspect(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var prospect models.Prospect
		if err := store.FindScoped(db.Preload("Creator"), &prospect, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Prospect not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
			}
			return
		}

		utils.OKResponse(c, "Prospect retrieved successfully", prospect)
	}
}

// handleGetProspectHistory returns the prospect even after soft deletion.
func handleGetProspectHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var prospect models.Prospect
		if err := store.FindScoped(db.Preload("Creator"), &prospect, info.TeamID, id, false); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Prospect not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
			}
			return
		}

		utils.OKResponse(c, "Prospect retrieved successfully", prospect)
	}
}

func handleUpdateProspect(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var prospect models.Prospect
		if err := store.FindScoped(db, &prospect, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Prospect not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
			}
			return
		}

		var req UpdateProspectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.FirstName != nil {
			prospect.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			prospect.LastName = *req.LastName
		}
		if req.PrimaryPosition != nil {
			prospect.PrimaryPosition = models.PositionCode(*req.PrimaryPosition)
		}
		if req.GraduationYear != nil {
			prospect.GraduationYear = req.GraduationYear
		}
		if req.School != nil {
			prospect.School = *req.School
		}
		if req.City != nil {
			prospect.City = *req.City
		}
		if req.State != nil {
			prospect.State = *req.State
		}
		if req.OverallGrade != nil {
			prospect.OverallGrade = req.OverallGrade
		}
		if req.Status != nil {
			prospect.Status = models.ProspectStatus(*req.Status)
		}
		if req.Notes != nil {
			prospect.Notes = *req.Notes
		}

		if err := db.Save(&prospect).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update prospect")
			return
		}

		if err := db.Preload("Creator").First(&prospect, "id = ?", prospect.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
			return
		}
		recordAudit(c, audit, "update", "prospect", prospect.ID)
		utils.OKResponse(c, "Prospect updated successfully", prospect)
	}
}

func handleDeleteProspect(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var prospect models.Prospect
		if err := store.FindScoped(db, &prospect, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Prospect not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
			}
			return
		}

		prospect.IsActive = false
		if err := db.Save(&prospect).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete prospect")
			return
		}

		recordAudit(c, audit, "delete", "prospect", prospect.ID)
		utils.OKResponse(c, "Prospect deleted successfully", nil)
	}
}
