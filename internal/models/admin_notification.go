package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminNotification is the persisted channel of the notify bus: one row per
// delivered event.
type AdminNotification struct {
	ID        string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Event     string            `gorm:"column:event;type:varchar(64);not null;index" json:"event"`
	UserID    *string           `gorm:"column:user_id;type:varchar(64);default:null" json:"user_id"`
	Payload   datatypes.JSONMap `gorm:"column:payload;type:jsonb;default:'{}'" json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

func (AdminNotification) TableName() string { return "admin_notifications" }
