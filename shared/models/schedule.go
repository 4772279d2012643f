package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleTemplate holds the defaults used to stamp out recurring schedule
// events. At most one template per team may have IsDefault=true.
type ScheduleTemplate struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID           uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	Name             string    `json:"name" gorm:"type:varchar(120);not null"`
	Description      string    `json:"description" gorm:"type:text"`
	EventType        EventType `json:"event_type" gorm:"type:varchar(20);not null;default:'practice'"`
	DefaultStartTime string    `json:"default_start_time" gorm:"type:varchar(5)"` // HH:MM
	DefaultEndTime   string    `json:"default_end_time" gorm:"type:varchar(5)"`   // HH:MM
	Location         string    `json:"location" gorm:"type:varchar(160)"`
	IsDefault        bool      `json:"is_default" gorm:"default:false"`
	Version          int       `json:"version" gorm:"not null;default:1"`
	IsActive         bool      `json:"is_active" gorm:"default:true"`
	CreatedBy        uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (ScheduleTemplate) TableName() string {
	return "schedule_templates"
}

// ScheduleEvent is one calendar entry, optionally generated from a template.
type ScheduleEvent struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID     uuid.UUID  `json:"team_id" gorm:"type:uuid;not null;index"`
	TemplateID *uuid.UUID `json:"template_id,omitempty" gorm:"type:uuid;index"`
	Title      string     `json:"title" gorm:"type:varchar(160);not null"`
	EventType  EventType  `json:"event_type" gorm:"type:varchar(20);not null"`
	EventDate  time.Time  `json:"event_date" gorm:"not null;index"`
	StartTime  string     `json:"start_time" gorm:"type:varchar(5)"` // HH:MM
	EndTime    string     `json:"end_time" gorm:"type:varchar(5)"`   // HH:MM
	Location   string     `json:"location" gorm:"type:varchar(160)"`
	Opponent   string     `json:"opponent" gorm:"type:varchar(120)"`
	Notes      string     `json:"notes" gorm:"type:text"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	CreatedBy  uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Template *ScheduleTemplate `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Creator  *User             `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (ScheduleEvent) TableName() string {
	return "schedule_events"
}

// EventType classifies a schedule entry.
type EventType string

const (
	EventTypeGame      EventType = "game"
	EventTypePractice  EventType = "practice"
	EventTypeScrimmage EventType = "scrimmage"
	EventTypeMeeting   EventType = "meeting"
	EventTypeTraining  EventType = "training"
	EventTypeOther     EventType = "other"
)
