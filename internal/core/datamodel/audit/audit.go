package audit

import "time"

// AuditLog rows are inserted once and never updated.
type AuditLog struct {
	ID         int64     `gorm:"primaryKey"`
	ActorID    *int64    `gorm:"column:actor_id;index"`
	Action     string    `gorm:"column:action;not null;index"`
	EntityType string    `gorm:"column:entity_type;not null;index"`
	EntityID   string    `gorm:"column:entity_id"`
	Changes    *string   `gorm:"column:changes;type:jsonb"`
	Details    string    `gorm:"column:details"`
	IPAddress  string    `gorm:"column:ip_address"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogWithActor is the read shape joined with users.
type AuditLogWithActor struct {
	AuditLog
	ActorName  *string `gorm:"column:actor_name"`
	ActorEmail *string `gorm:"column:actor_email"`
	ActorRole  *string `gorm:"column:actor_role"`
}
