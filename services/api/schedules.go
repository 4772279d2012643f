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

type CreateScheduleTemplateRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=120"`
	Description      string `json:"description" validate:"omitempty,max=4000"`
	EventType        string `json:"event_type" validate:"omitempty,oneof=game practice scrimmage meeting training other"`
	DefaultStartTime string `json:"default_start_time" validate:"omitempty,datetime=15:04"`
	DefaultEndTime   string `json:"default_end_time" validate:"omitempty,datetime=15:04"`
	Location         string `json:"location" validate:"omitempty,max=160"`
	IsDefault        *bool  `json:"is_default"`
}

type UpdateScheduleTemplateRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description      *string `json:"description" validate:"omitempty,max=4000"`
	EventType        *string `json:"event_type" validate:"omitempty,oneof=game practice scrimmage meeting training other"`
	DefaultStartTime *string `json:"default_start_time" validate:"omitempty,datetime=15:04"`
	DefaultEndTime   *string `json:"default_end_time" validate:"omitempty,datetime=15:04"`
	Location         *string `json:"location" validate:"omitempty,max=160"`
	IsDefault        *bool   `json:"is_default"`
}

type CreateScheduleEventRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=160"`
	EventType string `json:"event_type" validate:"required,oneof=game practice scrimmage meeting training other"`
	EventDate string `json:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"omitempty,datetime=15:04"`
	Location  string `json:"location" validate:"omitempty,max=160"`
	Opponent  string `json:"opponent" validate:"omitempty,max=120"`
	Notes     string `json:"notes" validate:"omitempty,max=4000"`
}

type UpdateScheduleEventRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=160"`
	EventType *string `json:"event_type" validate:"omitempty,oneof=game practice scrimmage meeting training other"`
	EventDate *string `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time" validate:"omitempty,datetime=15:04"`
	Location  *string `json:"location" validate:"omitempty,max=160"`
	Opponent  *string `json:"opponent" validate:"omitempty,max=120"`
	Notes     *string `json:"notes" validate:"omitempty,max=4000"`
}

// GenerateEventRequest stamps one event out of a template's defaults.
type GenerateEventRequest struct {
	EventDate string `json:"event_date" validate:"required,datetime=2006-01-02"`
	Title     string `json:"title" validate:"omitempty,min=1,max=160"`
}

var (
	templateSortColumns = []string{"name", "event_type", "created_at", "updated_at"}
	eventSortColumns    = []string{"event_date", "title", "event_type", "created_at"}
)

func handleCreateScheduleTemplate(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateScheduleTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		eventType := models.EventTypePractice
		if req.EventType != "" {
			eventType = models.EventType(req.EventType)
		}

		tmpl := models.ScheduleTemplate{
			ID:               uuid.New(),
			TeamID:           info.TeamID,
			Name:             req.Name,
			Description:      req.Description,
			EventType:        eventType,
			DefaultStartTime: req.DefaultStartTime,
			DefaultEndTime:   req.DefaultEndTime,
			Location:         req.Location,
			IsDefault:        req.IsDefault != nil && *req.IsDefault,
			Version:          1,
			IsActive:         true,
			CreatedBy:        info.UserID,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if tmpl.IsDefault {
				if err := store.ClearDefaultSiblings(tx, &models.ScheduleTemplate{}, info.TeamID, tmpl.ID); err != nil {
					return err
				}
			}
			return tx.Create(&tmpl).Error
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create schedule template")
			return
		}

		if err := db.Preload("Creator").First(&tmpl, "id = ?", tmpl.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			return
		}
		recordAudit(c, audit, "create", "schedule_template", tmpl.ID)
		utils.CreatedResponse(c, "Schedule template created successfully", tmpl)
	}
}

func handleListScheduleTemplates(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, templateSortColumns, store.Sort{Column: "name", Direction: "ASC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.ScopedActive(db.Model(&models.ScheduleTemplate{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"name", "description", "location"})
		if et := c.Query("event_type"); et != "" {
			q = q.Where("event_type = ?", et)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count schedule templates")
			return
		}

		p := store.ParsePagination(c)
		var templates []models.ScheduleTemplate
		if err := q.Order("is_default DESC").Order(sort.OrderClause()).
			Offset(p.Offset()).Limit(p.Limit).Find(&templates).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule templates")
			return
		}

		utils.PaginatedResponse(c, "Schedule templates retrieved successfully", templates, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetScheduleTemplate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tmpl models.ScheduleTemplate
		if err := store.FindScoped(db.Preload("Creator"), &tmpl, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule template not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			}
			return
		}

		utils.OKResponse(c, "Schedule template retrieved successfully", tmpl)
	}
}

// handleGetScheduleTemplateHistory returns the template even after soft deletion.
func handleGetScheduleTemplateHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tmpl models.ScheduleTemplate
		if err := store.FindScoped(db.Preload("Creator"), &tmpl, info.TeamID, id, false); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule template not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			}
			return
		}

		utils.OKResponse(c, "Schedule template retrieved successfully", tmpl)
	}
}

func handleUpdateScheduleTemplate(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tmpl models.ScheduleTemplate
		if err := store.FindScoped(db, &tmpl, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule template not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			}
			return
		}

		var req UpdateScheduleTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Name != nil {
			tmpl.Name = *req.Name
		}
		if req.Description != nil {
			tmpl.Description = *req.Description
		}
		if req.EventType != nil {
			tmpl.EventType = models.EventType(*req.EventType)
		}
		if req.DefaultStartTime != nil {
			tmpl.DefaultStartTime = *req.DefaultStartTime
		}
		if req.DefaultEndTime != nil {
			tmpl.DefaultEndTime = *req.DefaultEndTime
		}
		if req.Location != nil {
			tmpl.Location = *req.Location
		}
		settingDefault := req.IsDefault != nil && *req.IsDefault && !tmpl.IsDefault
		if req.IsDefault != nil {
			tmpl.IsDefault = *req.IsDefault
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if settingDefault {
				if err := store.ClearDefaultSiblings(tx, &models.ScheduleTemplate{}, info.TeamID, tmpl.ID); err != nil {
					return err
				}
			}
			if err := tx.Omit("version").Save(&tmpl).Error; err != nil {
				return err
			}
			// Increment in SQL so concurrent updates each land on a
			// distinct version.
			return tx.Model(&tmpl).Update("version", gorm.Expr("version + 1")).Error
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update schedule template")
			return
		}

		if err := db.Preload("Creator").First(&tmpl, "id = ?", tmpl.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			return
		}
		recordAudit(c, audit, "update", "schedule_template", tmpl.ID)
		utils.OKResponse(c, "Schedule template updated successfully", tmpl)
	}
}

func handleDeleteScheduleTemplate(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tmpl models.ScheduleTemplate
		if err := store.FindScoped(db, &tmpl, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule template not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			}
			return
		}

		tmpl.IsActive = false
		if err := db.Save(&tmpl).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete schedule template")
			return
		}

		recordAudit(c, audit, "delete", "schedule_template", tmpl.ID)
		utils.OKResponse(c, "Schedule template deleted successfully", nil)
	}
}

// handleDuplicateScheduleTemplate copies the template under "<name> (Copy)"
// with is_default forced false.
func handleDuplicateScheduleTemplate(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var source models.ScheduleTemplate
		if err := store.FindScoped(db, &source, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule template not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			}
			return
		}

		duplicate := models.ScheduleTemplate{
			ID:               uuid.New(),
			TeamID:           info.TeamID,
			Name:             copyName(source.Name),
			Description:      source.Description,
			EventType:        source.EventType,
			DefaultStartTime: source.DefaultStartTime,
			DefaultEndTime:   source.DefaultEndTime,
			Location:         source.Location,
			IsDefault:        false,
			Version:          1,
			IsActive:         true,
			CreatedBy:        info.UserID,
		}

		if err := db.Create(&duplicate).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to duplicate schedule template")
			return
		}

		if err := db.Preload("Creator").First(&duplicate, "id = ?", duplicate.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			return
		}
		recordAudit(c, audit, "duplicate", "schedule_template", duplicate.ID)
		utils.CreatedResponse(c, "Schedule template duplicated successfully", duplicate)
	}
}

// handleGenerateEvent creates a schedule event from a template's defaults.
func handleGenerateEvent(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tmpl models.ScheduleTemplate
		if err := store.FindScoped(db, &tmpl, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule template not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule template")
			}
			return
		}

		var req GenerateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		date, _ := parseDate(req.EventDate)
		title := req.Title
		if title == "" {
			title = tmpl.Name
		}

		event := models.ScheduleEvent{
			ID:         uuid.New(),
			TeamID:     info.TeamID,
			TemplateID: &tmpl.ID,
			Title:      title,
			EventType:  tmpl.EventType,
			EventDate:  date,
			StartTime:  tmpl.DefaultStartTime,
			EndTime:    tmpl.DefaultEndTime,
			Location:   tmpl.Location,
			IsActive:   true,
			CreatedBy:  info.UserID,
		}

		if err := db.Create(&event).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate event")
			return
		}

		if err := db.Preload("Template").Preload("Creator").First(&event, "id = ?", event.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			return
		}
		recordAudit(c, audit, "create", "schedule_event", event.ID)
		utils.CreatedResponse(c, "Schedule event generated successfully", event)
	}
}

func handleCreateScheduleEvent(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var req CreateScheduleEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		date, _ := parseDate(req.EventDate)
		event := models.ScheduleEvent{
			ID:        uuid.New(),
			TeamID:    info.TeamID,
			Title:     req.Title,
			EventType: models.EventType(req.EventType),
			EventDate: date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Location:  req.Location,
			Opponent:  req.Opponent,
			Notes:     req.Notes,
			IsActive:  true,
			CreatedBy: info.UserID,
		}

		if err := db.Create(&event).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create schedule event")
			return
		}

		if err := db.Preload("Creator").First(&event, "id = ?", event.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			return
		}
		recordAudit(c, audit, "create", "schedule_event", event.ID)
		utils.CreatedResponse(c, "Schedule event created successfully", event)
	}
}

func handleListScheduleEvents(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		sort, sortErrs := store.ParseSort(c, eventSortColumns, store.Sort{Column: "event_date", Direction: "ASC"})
		if len(sortErrs) > 0 {
			utils.ValidationErrorResponse(c, sortErrs)
			return
		}

		q := store.ScopedActive(db.Model(&models.ScheduleEvent{}), info.TeamID)
		q = store.ApplySearch(q, c.Query("search"), []string{"title", "location", "opponent", "notes"})
		if et := c.Query("event_type"); et != "" {
			q = q.Where("event_type = ?", et)
		}
		if from := c.Query("from"); from != "" {
			if d, err := parseDate(from); err == nil {
				q = q.Where("event_date >= ?", d)
			}
		}
		if to := c.Query("to"); to != "" {
			if d, err := parseDate(to); err == nil {
				q = q.Where("event_date <= ?", d)
			}
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to count schedule events")
			return
		}

		p := store.ParsePagination(c)
		var events []models.ScheduleEvent
		if err := q.Order(sort.OrderClause()).Offset(p.Offset()).Limit(p.Limit).Find(&events).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule events")
			return
		}

		utils.PaginatedResponse(c, "Schedule events retrieved successfully", events, utils.NewPagination(p.Page, p.Limit, total))
	}
}

func handleGetScheduleEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var event models.ScheduleEvent
		if err := store.FindScoped(db.Preload("Template").Preload("Creator"), &event, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule event not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			}
			return
		}

		utils.OKResponse(c, "Schedule event retrieved successfully", event)
	}
}

// handleGetScheduleEventHistory returns the event even after soft deletion.
func handleGetScheduleEventHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var event models.ScheduleEvent
		if err := store.FindScoped(db.Preload("Creator"), &event, info.TeamID, id, false); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule event not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			}
			return
		}

		utils.OKResponse(c, "Schedule event retrieved successfully", event)
	}
}

func handleUpdateScheduleEvent(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var event models.ScheduleEvent
		if err := store.FindScoped(db, &event, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule event not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			}
			return
		}

		var req UpdateScheduleEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Title != nil {
			event.Title = *req.Title
		}
		if req.EventType != nil {
			event.EventType = models.EventType(*req.EventType)
		}
		if req.EventDate != nil {
			d, _ := parseDate(*req.EventDate)
			event.EventDate = d
		}
		if req.StartTime != nil {
			event.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			event.EndTime = *req.EndTime
		}
		if req.Location != nil {
			event.Location = *req.Location
		}
		if req.Opponent != nil {
			event.Opponent = *req.Opponent
		}
		if req.Notes != nil {
			event.Notes = *req.Notes
		}

		if err := db.Save(&event).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update schedule event")
			return
		}

		if err := db.Preload("Template").Preload("Creator").First(&event, "id = ?", event.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			return
		}
		recordAudit(c, audit, "update", "schedule_event", event.ID)
		utils.OKResponse(c, "Schedule event updated successfully", event)
	}
}

func handleDeleteScheduleEvent(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var event models.ScheduleEvent
		if err := store.FindScoped(db, &event, info.TeamID, id, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Schedule event not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch schedule event")
			}
			return
		}

		event.IsActive = false
		if err := db.Save(&event).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete schedule event")
			return
		}

		recordAudit(c, audit, "delete", "schedule_event", event.ID)
		utils.OKResponse(c, "Schedule event deleted successfully", nil)
	}
}
