package types

import "time"

type SyncType string

const (
	SyncTypeCampaigns SyncType = "campaigns"
	SyncTypeCoupons   SyncType = "coupons"
	SyncTypePurchases SyncType = "purchases"
	SyncTypeAll       SyncType = "all"
)

// Normalize maps unrecognized sync types to SyncTypeAll.
func (t SyncType) Normalize() SyncType {
	switch t {
	case SyncTypeCampaigns, SyncTypeCoupons, SyncTypePurchases, SyncTypeAll:
		return t
	default:
		return SyncTypeAll
	}
}

type SyncLogStatus string

const (
	SyncLogStatusPending    SyncLogStatus = "pending"
	SyncLogStatusProcessing SyncLogStatus = "processing"
	SyncLogStatusCompleted  SyncLogStatus = "completed"
	SyncLogStatusFailed     SyncLogStatus = "failed"
)

func (s SyncLogStatus) Terminal() bool {
	return s == SyncLogStatusCompleted || s == SyncLogStatusFailed
}

type ConnectionStatus string

const (
	ConnectionStatusActive   ConnectionStatus = "active"
	ConnectionStatusInactive ConnectionStatus = "inactive"
	ConnectionStatusFailed   ConnectionStatus = "failed"
)

type DateRange string

const (
	DateRangeToday         DateRange = "today"
	DateRangeYesterday     DateRange = "yesterday"
	DateRangeLast7Days     DateRange = "last_7_days"
	DateRangeLast30Days    DateRange = "last_30_days"
	DateRangeCurrentMonth  DateRange = "current_month"
	DateRangePreviousMonth DateRange = "previous_month"
	DateRangeCustom        DateRange = "custom"
)

// Bounds resolves the range to [from, to] relative to now. Custom ranges are
// resolved by the caller; here they default to today.
func (r DateRange) Bounds(now time.Time) (time.Time, time.Time) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	today := day(now)
	endOfDay := func(t time.Time) time.Time { return t.AddDate(0, 0, 1).Add(-time.Second) }

	switch r {
	case DateRangeYesterday:
		from := today.AddDate(0, 0, -1)
		return from, endOfDay(from)
	case DateRangeLast7Days:
		return today.AddDate(0, 0, -6), endOfDay(today)
	case DateRangeLast30Days:
		return today.AddDate(0, 0, -29), endOfDay(today)
	case DateRangeCurrentMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 1, 0).Add(-time.Second)
	case DateRangePreviousMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return from, from.AddDate(0, 1, 0).Add(-time.Second)
	default:
		return today, endOfDay(today)
	}
}
