package models

import (
	"time"

	"github.com/google/uuid"
)

// Prospect is an unsigned player the team is tracking. Soft-deleted via IsActive.
type Prospect struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID          uuid.UUID      `json:"team_id" gorm:"type:uuid;not null;index"`
	FirstName       string         `json:"first_name" gorm:"type:varchar(80);not null"`
	LastName        string         `json:"last_name" gorm:"type:varchar(80);not null"`
	PrimaryPosition PositionCode   `json:"primary_position" gorm:"type:varchar(4)"`
	GraduationYear  *int           `json:"graduation_year,omitempty"`
	School          string         `json:"school" gorm:"type:varchar(160)"`
	City            string         `json:"city" gorm:"type:varchar(120)"`
	State           string         `json:"state" gorm:"type:varchar(40)"`
	OverallGrade    *int           `json:"overall_grade,omitempty"` // 20-80 scouting scale
	Status          ProspectStatus `json:"status" gorm:"type:varchar(20);not null;default:'watch'"`
	Notes           string         `json:"notes" gorm:"type:text"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	CreatedBy       uuid.UUID      `json:"created_by" gorm:"type:uuid"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Prospect) TableName() string {
	return "prospects"
}

// ProspectStatus tracks where a prospect sits in the evaluation funnel.
type ProspectStatus string

const (
	ProspectStatusWatch    ProspectStatus = "watch"
	ProspectStatusEvaluate ProspectStatus = "evaluate"
	ProspectStatusPriority ProspectStatus = "priority"
	ProspectStatusSigned   ProspectStatus = "signed"
	ProspectStatusPassed   ProspectStatus = "passed"
)
