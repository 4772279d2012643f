package models

import (
	"time"

	"github.com/google/uuid"
)

// Scout is an external evaluator the team works with. Scouts are hard-deleted.
type Scout struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID       uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	Name         string    `json:"name" gorm:"type:varchar(120);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255)"`
	Phone        string    `json:"phone" gorm:"type:varchar(32)"`
	Organization string    `json:"organization" gorm:"type:varchar(160)"`
	Region       string    `json:"region" gorm:"type:varchar(120)"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CreatedBy    uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Scout) TableName() string {
	return "scouts"
}

// ScoutingReport grades one player or one prospect (exactly one of the two).
// Grades use the 20-80 scouting scale. Soft-deleted via IsActive.
type ScoutingReport struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID        uuid.UUID  `json:"team_id" gorm:"type:uuid;not null;index"`
	ScoutID       uuid.UUID  `json:"scout_id" gorm:"type:uuid;not null;index"`
	PlayerID      *uuid.UUID `json:"player_id,omitempty" gorm:"type:uuid;index"`
	ProspectID    *uuid.UUID `json:"prospect_id,omitempty" gorm:"type:uuid;index"`
	ReportDate    time.Time  `json:"report_date" gorm:"not null"`
	OverallGrade  *int       `json:"overall_grade,omitempty"`
	HittingGrade  *int       `json:"hitting_grade,omitempty"`
	PowerGrade    *int       `json:"power_grade,omitempty"`
	SpeedGrade    *int       `json:"speed_grade,omitempty"`
	FieldingGrade *int       `json:"fielding_grade,omitempty"`
	ArmGrade      *int       `json:"arm_grade,omitempty"`
	Summary       string     `json:"summary" gorm:"type:text"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	CreatedBy     uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Scout    *Scout    `json:"scout,omitempty" gorm:"foreignKey:ScoutID"`
	Player   *Player   `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
	Prospect *Prospect `json:"prospect,omitempty" gorm:"foreignKey:ProspectID"`
}

func (ScoutingReport) TableName() string {
	return "scouting_reports"
}
