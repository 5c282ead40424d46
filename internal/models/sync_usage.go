package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

// SyncUsage is the per-user usage ledger row for one rolling window.
// Exactly one row exists per (user, period, window); the unique index backs
// the get-or-create path under concurrent first touch.
type SyncUsage struct {
	ID          string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID      string            `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_usage_window,priority:1" json:"user_id"`
	Period      types.UsagePeriod `gorm:"column:period;type:varchar(16);not null;uniqueIndex:idx_usage_window,priority:2" json:"period"`
	WindowStart time.Time         `gorm:"column:window_start;not null;uniqueIndex:idx_usage_window,priority:3" json:"window_start"`
	WindowEnd   time.Time         `gorm:"column:window_end;not null;uniqueIndex:idx_usage_window,priority:4" json:"window_end"`

	// Counters only ever increase inside a window.
	SyncCount   int64 `gorm:"column:sync_count;type:bigint;not null;default:0" json:"sync_count"`
	RevenueSum  int64 `gorm:"column:revenue_sum;type:bigint;not null;default:0" json:"revenue_sum"`
	OrdersCount int64 `gorm:"column:orders_count;type:bigint;not null;default:0" json:"orders_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncUsage) TableName() string { return "sync_usages" }

// Contains reports whether t falls inside the window.
func (u *SyncUsage) Contains(t time.Time) bool {
	return !t.Before(u.WindowStart) && !t.After(u.WindowEnd)
}
