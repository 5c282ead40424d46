package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"gorm.io/datatypes"
)

// SubscriptionLog records subscription lifecycle transitions.
// Use case: troubleshooting and audit.
type SubscriptionLog struct {
	ID     string `gorm:"column:id;type:uuid;primary_key"`
	UserID string `gorm:"column:user_id;type:varchar(64);index:idx_sub_log_user_id,priority:1;not null"`
	Reason types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(64);not null"`
	// Before stores subscription data before the transition in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores subscription data after the transition in JSON format.
	After datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores additional context such as the acting admin and reason text.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string { return "subscription_logs" }
