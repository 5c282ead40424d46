package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculateEndDate(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		cycle BillingCycle
		want  time.Time
	}{
		{"monthly", BillingCycleMonthly, time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)},
		{"quarterly", BillingCycleQuarterly, time.Date(2026, 4, 15, 10, 30, 0, 0, time.UTC)},
		{"semi_annually", BillingCycleSemiAnnually, time.Date(2026, 7, 15, 10, 30, 0, 0, time.UTC)},
		{"annually", BillingCycleAnnually, time.Date(2027, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"unknown falls back to monthly", BillingCycle("weekly"), time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CalculateEndDate(start, tt.cycle))
		})
	}
}

func TestCalculateEndDate_MonthEndNormalization(t *testing.T) {
	// Jan 31 + 1 month normalizes past February.
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), CalculateEndDate(start, BillingCycleMonthly))
}
