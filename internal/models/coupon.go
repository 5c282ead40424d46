package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

// Coupon is a discount code ingested from a network.
type Coupon struct {
	ID         string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string  `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_coupon_ext,priority:1" json:"user_id"`
	NetworkID  string  `gorm:"column:network_id;type:uuid;not null;uniqueIndex:idx_coupon_ext,priority:2" json:"network_id"`
	CampaignID *string `gorm:"column:campaign_id;type:uuid;default:null" json:"campaign_id"`
	ExternalID string  `gorm:"column:external_id;type:varchar(128);not null;uniqueIndex:idx_coupon_ext,priority:3" json:"external_id"`

	Code        string             `gorm:"column:code;type:varchar(64);not null" json:"code"`
	Description string             `gorm:"column:description;type:text" json:"description"`
	Status      types.CouponStatus `gorm:"column:status;type:varchar(32);not null;default:'active'" json:"status"`

	// UsageLimit of 0 means uncapped.
	UsageLimit int        `gorm:"column:usage_limit;not null;default:0" json:"usage_limit"`
	UsedCount  int        `gorm:"column:used_count;not null;default:0" json:"used_count"`
	ExpiresAt  *time.Time `gorm:"column:expires_at;default:null" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

// IncrementUsage bumps UsedCount and flips the coupon to used once the
// limit is reached. Returns false when the coupon can no longer be used.
func (c *Coupon) IncrementUsage() bool {
	if c.Status != types.CouponStatusActive {
		return false
	}
	c.UsedCount++
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		c.Status = types.CouponStatusUsed
	}
	return true
}
