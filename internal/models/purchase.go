package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

// Purchase is an order/commission record ingested from a network.
// Monetary amounts are in minor currency units.
type Purchase struct {
	ID         string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string  `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_purchase_ext,priority:1" json:"user_id"`
	NetworkID  string  `gorm:"column:network_id;type:uuid;not null;uniqueIndex:idx_purchase_ext,priority:2" json:"network_id"`
	ExternalID string  `gorm:"column:external_id;type:varchar(128);not null;uniqueIndex:idx_purchase_ext,priority:3" json:"external_id"`
	CampaignID *string `gorm:"column:campaign_id;type:uuid;default:null" json:"campaign_id"`
	CouponID   *string `gorm:"column:coupon_id;type:uuid;default:null" json:"coupon_id"`

	OrderID    string `gorm:"column:order_id;type:varchar(128);not null" json:"order_id"`
	OrderValue int64  `gorm:"column:order_value;type:bigint;not null;default:0" json:"order_value"`
	Commission int64  `gorm:"column:commission;type:bigint;not null;default:0" json:"commission"`
	Revenue    int64  `gorm:"column:revenue;type:bigint;not null;default:0" json:"revenue"`
	Quantity   int    `gorm:"column:quantity;not null;default:1" json:"quantity"`

	Status       types.PurchaseStatus `gorm:"column:status;type:varchar(32);not null;default:'pending';index" json:"status"`
	PurchaseType types.PurchaseType   `gorm:"column:purchase_type;type:varchar(32);not null;default:'link'" json:"purchase_type"`
	OrderDate    time.Time            `gorm:"column:order_date;not null;index" json:"order_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Purchase) TableName() string { return "purchases" }
