package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"gorm.io/datatypes"
)

// Plan is a sellable subscription plan with metered caps.
// Numeric cap columns use NULL for "no cap configured"; the legacy -1
// sentinel in the features JSON also means unlimited. Callers must go
// through ResolvedFeatures and never read cap columns directly.
type Plan struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Code string `gorm:"column:code;type:varchar(64);not null;uniqueIndex" json:"code"`
	Name string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	// Price is stored in minor currency units.
	Price        int64              `gorm:"column:price;type:bigint;not null" json:"price"`
	Currency     string             `gorm:"column:currency;type:varchar(8);not null;default:'USD'" json:"currency"`
	BillingCycle types.BillingCycle `gorm:"column:billing_cycle;type:varchar(32);not null;default:'monthly'" json:"billing_cycle"`
	TrialDays    int                `gorm:"column:trial_days;not null;default:0" json:"trial_days"`

	MaxNetworks      *int64 `gorm:"column:max_networks" json:"max_networks"`
	DailySyncLimit   *int64 `gorm:"column:daily_sync_limit" json:"daily_sync_limit"`
	MonthlySyncLimit *int64 `gorm:"column:monthly_sync_limit" json:"monthly_sync_limit"`
	// RevenueCap is in minor currency units.
	RevenueCap *int64 `gorm:"column:revenue_cap" json:"revenue_cap"`
	OrdersCap  *int64 `gorm:"column:orders_cap" json:"orders_cap"`

	// SyncWindowFrom/To restrict syncing to a daily "HH:MM" window.
	SyncWindowFrom *string `gorm:"column:sync_window_from;type:varchar(8)" json:"sync_window_from"`
	SyncWindowTo   *string `gorm:"column:sync_window_to;type:varchar(8)" json:"sync_window_to"`

	// Features holds per-plan JSON overrides for the cap columns above.
	Features datatypes.JSONMap `gorm:"column:features;type:jsonb;default:'{}'" json:"features"`

	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

// ResolvedFeatures merges the features JSON over the cap columns and returns
// a fully populated set. JSON wins; a NULL column resolves to Unlimited.
func (p *Plan) ResolvedFeatures() types.FeatureSet {
	f := types.FeatureSet{
		NetworksLimit:    limitFromColumn(p.MaxNetworks),
		DailySyncLimit:   limitFromColumn(p.DailySyncLimit),
		MonthlySyncLimit: limitFromColumn(p.MonthlySyncLimit),
		OrdersLimit:      limitFromColumn(p.OrdersCap),
		RevenueLimit:     limitFromColumn(p.RevenueCap),
	}
	if p.SyncWindowFrom != nil {
		f.SyncWindowFrom = *p.SyncWindowFrom
	}
	if p.SyncWindowTo != nil {
		f.SyncWindowTo = *p.SyncWindowTo
	}

	f.NetworksLimit = overrideLimit(p.Features, "networks_limit", f.NetworksLimit)
	f.DailySyncLimit = overrideLimit(p.Features, "daily_sync_limit", f.DailySyncLimit)
	f.MonthlySyncLimit = overrideLimit(p.Features, "monthly_sync_limit", f.MonthlySyncLimit)
	f.OrdersLimit = overrideLimit(p.Features, "orders_limit", f.OrdersLimit)
	f.RevenueLimit = overrideLimit(p.Features, "revenue_limit", f.RevenueLimit)
	f.SyncWindowFrom = overrideString(p.Features, "sync_window_from", f.SyncWindowFrom)
	f.SyncWindowTo = overrideString(p.Features, "sync_window_to", f.SyncWindowTo)
	return f
}

func limitFromColumn(col *int64) types.Limit {
	if col == nil {
		return types.Unlimited
	}
	return types.Limit(*col)
}

func overrideLimit(m datatypes.JSONMap, key string, fallback types.Limit) types.Limit {
	if m == nil {
		return fallback
	}
	switch v := m[key].(type) {
	case float64:
		return types.Limit(int64(v))
	case int64:
		return types.Limit(v)
	case int:
		return types.Limit(int64(v))
	default:
		return fallback
	}
}

func overrideString(m datatypes.JSONMap, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
