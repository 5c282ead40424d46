package types

import (
	"fmt"
	"time"
)

// Limit is a numeric plan cap. The Unlimited sentinel replaces the legacy
// magic -1 convention.
type Limit int64

const Unlimited Limit = -1

func (l Limit) IsUnlimited() bool { return l == Unlimited }

// Allows reports whether one more unit may be consumed given current usage.
func (l Limit) Allows(used int64) bool {
	return l.IsUnlimited() || used < int64(l)
}

// AllowsAmount reports whether consuming amount on top of used stays within
// the cap.
func (l Limit) AllowsAmount(used, amount int64) bool {
	return l.IsUnlimited() || used+amount <= int64(l)
}

func (l Limit) String() string {
	if l.IsUnlimited() {
		return "unlimited"
	}
	return fmt.Sprintf("%d", int64(l))
}

// FeatureSet is a plan's fully resolved cap set. Every field is always
// populated, so callers never fall back a second time.
type FeatureSet struct {
	NetworksLimit    Limit  `json:"networks_limit"`
	DailySyncLimit   Limit  `json:"daily_sync_limit"`
	MonthlySyncLimit Limit  `json:"monthly_sync_limit"`
	OrdersLimit      Limit  `json:"orders_limit"`
	RevenueLimit     Limit  `json:"revenue_limit"`
	SyncWindowFrom   string `json:"sync_window_from"`
	SyncWindowTo     string `json:"sync_window_to"`
}

// HasSyncWindow reports whether the plan restricts syncing to a daily
// time-of-day window.
func (f FeatureSet) HasSyncWindow() bool {
	return f.SyncWindowFrom != "" && f.SyncWindowTo != ""
}

// SyncWindowOpen reports whether now's time of day falls inside the allowed
// [from, to] window. Windows crossing midnight (from > to) wrap around.
// Malformed window bounds fail open.
func (f FeatureSet) SyncWindowOpen(now time.Time) bool {
	if !f.HasSyncWindow() {
		return true
	}
	from, err1 := minuteOfDay(f.SyncWindowFrom)
	to, err2 := minuteOfDay(f.SyncWindowTo)
	if err1 != nil || err2 != nil {
		return true
	}
	cur := now.Hour()*60 + now.Minute()
	if from <= to {
		return cur >= from && cur <= to
	}
	return cur >= from || cur <= to
}

func minuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
