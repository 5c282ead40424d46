package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"gorm.io/datatypes"
)

// SyncSchedule describes a recurring sync over a set of networks.
// RunsToday is reset once per day by an external trigger. ClaimedUntil is a
// run lease: a schedule with a live lease is considered in flight and must
// not be started again.
type SyncSchedule struct {
	ID         string                      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string                      `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name       string                      `gorm:"column:name;type:varchar(128);not null" json:"name"`
	NetworkIDs datatypes.JSONSlice[string] `gorm:"column:network_ids;type:jsonb;default:'[]'" json:"network_ids"`

	SyncType  types.SyncType  `gorm:"column:sync_type;type:varchar(32);not null;default:'all'" json:"sync_type"`
	DateRange types.DateRange `gorm:"column:date_range;type:varchar(32);not null;default:'today'" json:"date_range"`
	// DateFrom/DateTo apply only when DateRange is custom.
	DateFrom *time.Time `gorm:"column:date_from;default:null" json:"date_from"`
	DateTo   *time.Time `gorm:"column:date_to;default:null" json:"date_to"`

	IntervalMinutes int `gorm:"column:interval_minutes;not null;default:60" json:"interval_minutes"`
	MaxRunsPerDay   int `gorm:"column:max_runs_per_day;not null;default:24" json:"max_runs_per_day"`
	RunsToday       int `gorm:"column:runs_today;not null;default:0" json:"runs_today"`

	NextRunAt    *time.Time `gorm:"column:next_run_at;default:null" json:"next_run_at"`
	LastRunAt    *time.Time `gorm:"column:last_run_at;default:null" json:"last_run_at"`
	ClaimedUntil *time.Time `gorm:"column:claimed_until;default:null" json:"claimed_until"`

	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncSchedule) TableName() string { return "sync_schedules" }

// CanRun reports whether the schedule is due at now: it must be active, under
// its daily run budget, and either never scheduled or past NextRunAt.
func (s *SyncSchedule) CanRun(now time.Time) bool {
	if s == nil || !s.Active {
		return false
	}
	if s.RunsToday >= s.MaxRunsPerDay {
		return false
	}
	return s.NextRunAt == nil || !s.NextRunAt.After(now)
}

// Claimed reports whether a run lease is currently held.
func (s *SyncSchedule) Claimed(now time.Time) bool {
	return s.ClaimedUntil != nil && s.ClaimedUntil.After(now)
}

// ResolveRange returns the sync date range at now.
func (s *SyncSchedule) ResolveRange(now time.Time) (time.Time, time.Time) {
	if s.DateRange == types.DateRangeCustom && s.DateFrom != nil && s.DateTo != nil {
		return *s.DateFrom, *s.DateTo
	}
	return s.DateRange.Bounds(now)
}
