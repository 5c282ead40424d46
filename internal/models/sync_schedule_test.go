package models

import (
	"testing"
	"time"

	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestSyncSchedule_CanRun(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name  string
		sched *SyncSchedule
		want  bool
	}{
		{"never scheduled", &SyncSchedule{Active: true, MaxRunsPerDay: 5}, true},
		{"due", &SyncSchedule{Active: true, MaxRunsPerDay: 5, NextRunAt: &past}, true},
		{"not yet due", &SyncSchedule{Active: true, MaxRunsPerDay: 5, NextRunAt: &future}, false},
		{"inactive", &SyncSchedule{Active: false, MaxRunsPerDay: 5}, false},
		{"daily budget exhausted", &SyncSchedule{Active: true, MaxRunsPerDay: 3, RunsToday: 3}, false},
		{"nil schedule", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.sched.CanRun(now))
		})
	}
}

func TestSyncSchedule_Claimed(t *testing.T) {
	now := time.Now()
	live := now.Add(5 * time.Minute)
	expired := now.Add(-5 * time.Minute)

	require.False(t, (&SyncSchedule{}).Claimed(now))
	require.True(t, (&SyncSchedule{ClaimedUntil: &live}).Claimed(now))
	require.False(t, (&SyncSchedule{ClaimedUntil: &expired}).Claimed(now))
}

func TestSyncSchedule_ResolveRange(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	custom := &SyncSchedule{DateRange: types.DateRangeCustom, DateFrom: &from, DateTo: &to}
	gotFrom, gotTo := custom.ResolveRange(now)
	require.Equal(t, from, gotFrom)
	require.Equal(t, to, gotTo)

	// custom without explicit dates falls back to today
	gotFrom, gotTo = (&SyncSchedule{DateRange: types.DateRangeCustom}).ResolveRange(now)
	require.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), gotFrom)
	require.Equal(t, time.Date(2026, 7, 15, 23, 59, 59, 0, time.UTC), gotTo)

	gotFrom, gotTo = (&SyncSchedule{DateRange: types.DateRangeYesterday}).ResolveRange(now)
	require.Equal(t, time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC), gotFrom)
	require.Equal(t, time.Date(2026, 7, 14, 23, 59, 59, 0, time.UTC), gotTo)
}
