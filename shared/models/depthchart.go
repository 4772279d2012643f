package models

import (
	"time"

	"github.com/google/uuid"
)

// DepthChart is a named ordering of positions and player assignments.
// At most one chart per team may have IsDefault=true. Version increments by
// one on every successful update; it is advisory only and never compared
// against a caller-supplied value.
type DepthChart struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID      uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(120);not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsDefault   bool      `json:"is_default" gorm:"default:false"`
	Version     int       `json:"version" gorm:"not null;default:1"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Creator   *User                `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Positions []DepthChartPosition `json:"positions,omitempty" gorm:"foreignKey:DepthChartID"`
}

func (DepthChart) TableName() string {
	return "depth_charts"
}

// DepthChartPosition is a slot on a chart. Children are soft-deleted
// independently of the parent; deactivating a chart does not cascade.
type DepthChartPosition struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID       uuid.UUID    `json:"team_id" gorm:"type:uuid;not null;index"`
	DepthChartID uuid.UUID    `json:"depth_chart_id" gorm:"type:uuid;not null;index"`
	Position     PositionCode `json:"position" gorm:"type:varchar(4);not null"`
	DisplayName  string       `json:"display_name" gorm:"type:varchar(80)"`
	SortOrder    int          `json:"sort_order" gorm:"not null;default:0"`
	MaxPlayers   int          `json:"max_players" gorm:"not null;default:1"`
	IsActive     bool         `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Assignments []PlayerAssignment `json:"assignments,omitempty" gorm:"foreignKey:DepthChartPositionID"`
}

func (DepthChartPosition) TableName() string {
	return "depth_chart_positions"
}

// PlayerAssignment places one player on one position slot. A player may hold
// at most one active assignment per position.
type PlayerAssignment struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID               uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	DepthChartPositionID uuid.UUID `json:"depth_chart_position_id" gorm:"type:uuid;not null;index"`
	PlayerID             uuid.UUID `json:"player_id" gorm:"type:uuid;not null;index"`
	DepthOrder           int       `json:"depth_order" gorm:"not null;default:1"`
	IsActive             bool      `json:"is_active" gorm:"default:true"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Player *Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}

func (PlayerAssignment) TableName() string {
	return "player_assignments"
}
