package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a rostered player. Soft-deleted via IsActive.
type Player struct {
	ID              uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID          uuid.UUID    `json:"team_id" gorm:"type:uuid;not null;index"`
	FirstName       string       `json:"first_name" gorm:"type:varchar(80);not null"`
	LastName        string       `json:"last_name" gorm:"type:varchar(80);not null"`
	JerseyNumber    *int         `json:"jersey_number,omitempty"`
	PrimaryPosition PositionCode `json:"primary_position" gorm:"type:varchar(4)"`
	Bats            Handedness   `json:"bats" gorm:"type:varchar(1)"`
	Throws          Handedness   `json:"throws" gorm:"type:varchar(1)"`
	Status          PlayerStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	HeightInches    *int         `json:"height_inches,omitempty"`
	WeightLbs       *int         `json:"weight_lbs,omitempty"`
	Birthdate       *time.Time   `json:"birthdate,omitempty"`
	Notes           string       `json:"notes" gorm:"type:text"`
	IsActive        bool         `json:"is_active" gorm:"default:true"`
	CreatedBy       uuid.UUID    `json:"created_by" gorm:"type:uuid"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Player) TableName() string {
	return "players"
}

// PlayerStatus is the roster availability of a player.
type PlayerStatus string

const (
	PlayerStatusActive    PlayerStatus = "active"
	PlayerStatusInjured   PlayerStatus = "injured"
	PlayerStatusSuspended PlayerStatus = "suspended"
	PlayerStatusInactive  PlayerStatus = "inactive"
)

// Handedness is a batting or throwing side: L, R, or S (switch).
type Handedness string

// PositionCode is a standard defensive position abbreviation.
type PositionCode string

const (
	PositionPitcher      PositionCode = "P"
	PositionCatcher      PositionCode = "C"
	PositionFirstBase    PositionCode = "1B"
	PositionSecondBase   PositionCode = "2B"
	PositionThirdBase    PositionCode = "3B"
	PositionShortstop    PositionCode = "SS"
	PositionLeftField    PositionCode = "LF"
	PositionCenterField  PositionCode = "CF"
	PositionRightField   PositionCode = "RF"
	PositionDesignatedHitter PositionCode = "DH"
)

// ValidPositionCode reports whether s is a known position abbreviation.
func ValidPositionCode(s string) bool {
	switch PositionCode(s) {
	case PositionPitcher, PositionCatcher, PositionFirstBase, PositionSecondBase,
		PositionThirdBase, PositionShortstop, PositionLeftField, PositionCenterField,
		PositionRightField, PositionDesignatedHitter:
		return true
	}
	return false
}
