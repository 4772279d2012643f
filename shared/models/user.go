package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated coach or staff member belonging to one team.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID       uuid.UUID  `json:"team_id" gorm:"type:uuid;not null;index"`
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    string     `json:"first_name" gorm:"type:varchar(80)"`
	LastName     string     `json:"last_name" gorm:"type:varchar(80)"`
	Role         UserRole   `json:"role" gorm:"type:varchar(32);not null;default:'staff'"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Team *Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`
}

type UserRole string

const (
	RoleHeadCoach      UserRole = "head_coach"
	RoleAssistantCoach UserRole = "assistant_coach"
	RoleManager        UserRole = "manager"
	RoleStaff          UserRole = "staff"
)

// ValidRole reports whether the given string names a known role.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleHeadCoach, RoleAssistantCoach, RoleManager, RoleStaff:
		return true
	}
	return false
}

func (User) TableName() string {
	return "users"
}

// UserInfo is the identity attached to the request context after the session
// layer has verified the token. Permissions are resolved separately by the
// permission gate.
type UserInfo struct {
	UserID uuid.UUID `json:"user_id"`
	TeamID uuid.UUID `json:"team_id"`
	Email  string    `json:"email"`
	Role   UserRole  `json:"role"`
}

// TokenSession is the server-side session record stored in Redis, keyed by a
// hash of the access token. Revoking it invalidates the token before expiry.
type TokenSession struct {
	UserID     uuid.UUID `json:"user_id"`
	TeamID     uuid.UUID `json:"team_id"`
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (ts *TokenSession) IsExpired() bool {
	return time.Now().After(ts.ExpiresAt)
}
