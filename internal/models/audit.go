package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	AuditRegister      = "user.register"
	AuditLogin         = "user.login"
	AuditLoginFailed   = "user.login_failed"
	AuditAccountDelete = "user.delete"
	AuditProfileUpsert = "profile.upsert"
	AuditPostDelete    = "post.delete"
)

// AuditEvent is a security-relevant action, stored in Postgres.
type AuditEvent struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string         `gorm:"column:user_id;type:text;index" json:"user_id"`
	Action     string         `gorm:"column:action;type:text;index" json:"action"`
	Resource   string         `gorm:"column:resource;type:text" json:"resource"`
	ResourceID string         `gorm:"column:resource_id;type:text" json:"resource_id"`
	Fields     pq.StringArray `gorm:"column:fields;type:text[]" json:"fields"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (AuditEvent) TableName() string { return "audit_events" }
