package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is the message published to Kafka after every successful mutation.
type AuditEvent struct {
	ID         string    `json:"id"`
	TeamID     uuid.UUID `json:"team_id"`
	UserID     uuid.UUID `json:"user_id"`
	Action     string    `json:"action"`   // create, update, delete, duplicate, ...
	Resource   string    `json:"resource"` // player, depth_chart, ...
	ResourceID uuid.UUID `json:"resource_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditLog is the persisted form of an AuditEvent, written by the audit
// consumer service.
type AuditLog struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID    string    `json:"event_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	TeamID     uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Action     string    `json:"action" gorm:"type:varchar(32);not null"`
	Resource   string    `json:"resource" gorm:"type:varchar(64);not null"`
	ResourceID uuid.UUID `json:"resource_id" gorm:"type:uuid"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// FailedAuditEvent records an audit event the consumer could not persist, so
// the retry loop can replay it with backoff.
type FailedAuditEvent struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID      string     `json:"event_id" gorm:"type:varchar(64);not null;index"`
	Payload      string     `json:"payload" gorm:"type:text;not null"`
	ErrorMessage string     `json:"error_message" gorm:"type:text"`
	RetryCount   int        `json:"retry_count" gorm:"default:0"`
	Status       string     `json:"status" gorm:"type:varchar(20);default:'pending'"` // pending, resolved, abandoned
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

func (FailedAuditEvent) TableName() string {
	return "failed_audit_events"
}
