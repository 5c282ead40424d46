package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"gorm.io/datatypes"
)

// Subscription binds a user to a plan. Rows are never hard-deleted; every
// lifecycle change is a status transition recorded in Meta and in
// subscription_logs.
type Subscription struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	PlanID string `gorm:"column:plan_id;type:uuid;not null" json:"plan_id"`
	Plan   *Plan  `gorm:"foreignKey:PlanID" json:"plan,omitempty"`

	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// BillingInterval is snapshotted from the plan at creation so later plan
	// edits do not change an existing subscription's cycle.
	BillingInterval types.BillingCycle `gorm:"column:billing_interval;type:varchar(32);not null" json:"billing_interval"`

	StartsAt    time.Time  `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt      *time.Time `gorm:"column:ends_at;default:null" json:"ends_at"`
	TrialEndsAt *time.Time `gorm:"column:trial_ends_at;default:null" json:"trial_ends_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at;default:null" json:"cancelled_at"`

	// Meta is a free-form audit trail: who triggered each transition and why.
	Meta datatypes.JSONMap `gorm:"column:meta;type:jsonb;default:'{}'" json:"meta"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Usable reports whether the subscription grants access at t.
func (s *Subscription) Usable(t time.Time) bool {
	return s != nil && s.Status.Usable(s.TrialEndsAt, t)
}
