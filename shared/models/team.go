package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is the tenant boundary. Every domain row carries a TeamID and every
// lookup filters on it.
type Team struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string    `json:"name" gorm:"type:varchar(120);not null"`
	City           string    `json:"city" gorm:"type:varchar(120)"`
	Abbreviation   string    `json:"abbreviation" gorm:"type:varchar(8)"`
	PrimaryColor   string    `json:"primary_color" gorm:"type:varchar(7)"`
	SecondaryColor string    `json:"secondary_color" gorm:"type:varchar(7)"`
	LogoURL        string    `json:"logo_url" gorm:"type:varchar(512)"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Users []User `json:"users,omitempty" gorm:"foreignKey:TeamID"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamDirectoryEntry is the restricted attribute subset exposed by the
// cross-team directory listing. Branding only, nothing operational.
type TeamDirectoryEntry struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	Abbreviation   string    `json:"abbreviation"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
}
