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

// CreateReportRequest grades exactly one player or one prospect. Grades use
// the 20-80 scouting scale.
type CreateReportRequest struct {
	ScoutID       string `json:"scout_id" validate:"required,uuid"`
	PlayerID      string `json:"player_id" validate:"omitempty,uuid"`
	ProspectID    string `json:"prospect_id" validate:"omitempty,uuid"`
	ReportDate    string `json:"report_date" validate:"required,datetime=2006-01-02"`
	OverallGrade  *int   `json:"overall_grade" validate:"omitempty,gte=20,lte=80"`
	HittingGrade  *int   `json:"hitting_grade" validate:"omitempty,gte=20,lte=80"`
	PowerGrade    *int   `json:"power_grade" validate:"omitempty,gte=20,lte=80"`
	SpeedGrade    *int   `json:"speed_grade" validate:"omitempty,gte=20,lte=80"`
	FieldingGrade *int   `json:"fielding_grade" validate:"omitempty,gte=20,lte=80"`
	ArmGrade      *int   `json:"arm_grade" validate:"omitempty,gte=20,lte=80"`
	Summary       string `json:"summary" validate:"omitempty,max=8000"`
}

type UpdateReportRequest struct {
	ReportDate    *string `json:"report_date" validate:"omitempty,datetime=2006-01-02"`
	OverallGrade  *int    `json:"overall_grade" validate:"omitempty,gte=20,lte=80"`
	HittingGrade  *int    `json:"hitting_grade" validate:"omitempty,gte=20,lte=80"`
	PowerGrade    *int    `json:"power_grade" validate:"omitempty,gte=20,lte=80"`
	SpeedGrade    *int    `json:"speed_grade" validate:"omitempty,gte=20,lte=80"`
	FieldingGrade *int    `json:"fielding_grade" validate:"omitempty,gte=20,lte=80"`
	ArmGrade      *int    `json:"arm_grade" validate:"omitempty,gte=20,lte=80"`
	Summary       *string `json:"summary" validate:"omitempty,max=8000"`
}

var reportSortColumns = []string{"report_date", "overall_grade", "created_at"}

func handleCreateReport(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		errs := validation.Struct(&req)
		if (req.PlayerID == "") == (req.ProspectID == "") {
			errs = append(errs, validation.FieldError{
				Path:    "player_id",
				Message: "exactly one of player_id or prospect_id must be provided",
			})
		}
		if len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		scoutID, _ := uuid.Parse(req.ScoutID)
		var scout models.Scout
		if err := findScout(db, info.TeamID, scoutID, &scout); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scout not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scout")
			}
			return
		}

		report := models.ScoutingReport{
			ID:            uuid.New(),
			TeamID:        info.TeamID,
			ScoutID:       scout.ID,
			OverallGrade:  req.OverallGrade,
			HittingGrade:  req.HittingGrade,
			PowerGrade:    req.PowerGrade,
			SpeedGrade:    req.SpeedGrade,
			FieldingGrade: req.FieldingGrade,
			ArmGrade:      req.ArmGrade,
			Summary:       req.Summary,
			IsActive:      true,
			CreatedBy:     info.UserID,
		}
		report.ReportDate, _ = parseDate(req.ReportDate)

		if req.PlayerID != "" {
			playerID, _ := uuid.Parse(req.PlayerID)
			var player models.Player
			if err := store.FindScoped(db, &player, info.TeamID, playerID, true); err != nil {
				if err == gorm.ErrRecordNotFound {
					utils.NotFoundResponse(c, "Player not found")
				} else {
					utils.InternalServerErrorResponse(c, "Failed to fetch player")
				}
				return
			}
			report.PlayerID = &player.ID
		} else {
			prospectID, _ := uuid.Parse(req.ProspectID)
			var prospect models.Prospect
			if err := store.FindScoped(db, &prospect, info.TeamID, prospectID, true); err != nil {
				if err == gorm.ErrRecordNotFound {
					utils.NotFoundResponse(c, "Prospect not found")
				} else {
					utils.InternalServerErrorResponse(c, "Failed to fetch prospect")
				}
				return
			}
			report.ProspectID = &prospect.ID
		}

		if err := db.Create(&report).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create scouting report")
			return
		}

		if err := db.Preload("Scout").Preload("Player").Preload("Prospect").
			First(&report, "id = ?", report.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch scouting report")
			return
		}
		recordAudit(c, audit, "create", "scouting_report", report.ID)
		utils.CreatedResponse(c, "Scouting report created successfully", report)
	}
}

func handleListReports(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, reportSortColumns, store.Sort{Column: "report_date", Direction: "DESC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.ScopedActive(db.Model(&models.ScoutingReport{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"summary"})
		if scoutID := c.Query("scout_id"); scoutID != "" {
			q = q.Where("scout_id = ?", scoutID)
		}
		if playerID := c.Query("player_id"); playerID != "" {
			q = q.Where("player_id = ?", playerID)
		}
		if prospectID := c.Query("prospect_id"); prospectID != "" {
			q = q.Where("prospect_id = ?", prospectID)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count scouting reports")
			return
		}

		p := store.ParsePagination(c)
		var reports []models.ScoutingReport
		if err := q.Order(sort.OrderClause()).Offset(p.Offset()).Limit(p.Limit).Find(&reports).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch scouting reports")
			return
		}

		utils.PaginatedResponse(c, "Scouting reports retrieved successfully", reports, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var report models.ScoutingReport
		q := db.Preload("Scout").Preload("Player").Preload("Prospect")
		if err := store.FindScoped(q, &report, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scouting report not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scouting report")
			}
			return
		}

		utils.OKResponse(c, "Scouting report retrieved successfully", report)
	}
}

// handleGetReportHistory returns the report even after soft deletion.
func handleGetReportHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var report models.ScoutingReport
		q := db.Preload("Scout").Preload("Player").Preload("Prospect")
		if err := store.FindScoped(q, &report, info.TeamID, id, false); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scouting report not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scouting report")
			}
			return
		}

		utils.OKResponse(c, "Scouting report retrieved successfully", report)
	}
}

func handleUpdateReport(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var report models.ScoutingReport
		if err := store.FindScoped(db, &report, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scouting report not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scouting report")
			}
			return
		}

		var req UpdateReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.ReportDate != nil {
			d, _ := parseDate(*req.ReportDate)
			report.ReportDate = d
		}
		if req.OverallGrade != nil {
			report.OverallGrade = req.OverallGrade
		}
		if req.HittingGrade != nil {
			report.HittingGrade = req.HittingGrade
		}
		if req.PowerGrade != nil {
			report.PowerGrade = req.PowerGrade
		}
		if req.SpeedGrade != nil {
			report.SpeedGrade = req.SpeedGrade
		}
		if req.FieldingGrade != nil {
			report.FieldingGrade = req.FieldingGrade
		}
		if req.ArmGrade != nil {
			report.ArmGrade = req.ArmGrade
		}
		if req.Summary != nil {
			report.Summary = *req.Summary
		}

		if err := db.Save(&report).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update scouting report")
			return
		}

		if err := db.Preload("Scout").Preload("Player").Preload("Prospect").
			First(&report, "id = ?", report.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch scouting report")
			return
		}
		recordAudit(c, audit, "update", "scouting_report", report.ID)
		utils.OKResponse(c, "Scouting report updated successfully", report)
	}
}

func handleDeleteReport(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var report models.ScoutingReport
		if err := store.FindScoped(db, &report, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Scouting report not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch scouting report")
			}
			return
		}

		report.IsActive = false
		if err := db.Save(&report).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete scouting report")
			return
		}

		recordAudit(c, audit, "delete", "scouting_report", report.ID)
		utils.OKResponse(c, "Scouting report deleted successfully", nil)
	}
}
