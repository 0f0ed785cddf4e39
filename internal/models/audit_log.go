package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog: неизменяемая запись журнала аудита. Порядок задаётся ID.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index;not null" json:"at"`

	Action string `gorm:"size:50;not null;index" json:"action"` // "entry created", "login" и т.п.
	Actor  string `gorm:"size:255;not null" json:"by"`
	Detail string `gorm:"type:text" json:"detail"`

	Entity   string            `gorm:"size:50;index:idx_audit_entity" json:"entity,omitempty"` // "entry", "equipment", "room", "session"
	EntityID string            `gorm:"size:64;index:idx_audit_entity" json:"entityId,omitempty"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`
}
