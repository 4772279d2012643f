package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a scheduled or completed game. Games are hard-deleted: removing one
// destroys the row and subsequent reads 404.
type Game struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID        uuid.UUID  `json:"team_id" gorm:"type:uuid;not null;index"`
	Opponent      string     `json:"opponent" gorm:"type:varchar(120);not null"`
	GameDate      time.Time  `json:"game_date" gorm:"not null;index"`
	Location      string     `json:"location" gorm:"type:varchar(160)"`
	HomeAway      HomeAway   `json:"home_away" gorm:"type:varchar(4);not null;default:'home'"`
	Status        GameStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	TeamScore     *int       `json:"team_score,omitempty"`
	OpponentScore *int       `json:"opponent_score,omitempty"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedBy     uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Game) TableName() string {
	return "games"
}

type HomeAway string

const (
	HomeGame HomeAway = "home"
	AwayGame HomeAway = "away"
)

type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinal      GameStatus = "final"
	GameStatusPostponed  GameStatus = "postponed"
	GameStatusCancelled  GameStatus = "cancelled"
)
