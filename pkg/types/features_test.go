package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimit_Allows(t *testing.T) {
	require.True(t, Limit(5).Allows(4))
	require.False(t, Limit(5).Allows(5))
	require.False(t, Limit(0).Allows(0))
	require.True(t, Unlimited.Allows(1<<40))
}

func TestLimit_AllowsAmount(t *testing.T) {
	require.True(t, Limit(100).AllowsAmount(60, 40))
	require.False(t, Limit(100).AllowsAmount(60, 41))
	require.True(t, Unlimited.AllowsAmount(1<<40, 1<<40))
}

func TestLimit_String(t *testing.T) {
	require.Equal(t, "unlimited", Unlimited.String())
	require.Equal(t, "10", Limit(10).String())
}

func TestSyncWindowOpen_NoWindow(t *testing.T) {
	f := FeatureSet{}
	require.True(t, f.SyncWindowOpen(time.Now()))
}

func TestSyncWindowOpen(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 6, 1, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		from, to string
		now      time.Time
		want     bool
	}{
		{"inside window", "08:00", "18:00", at(12, 0), true},
		{"at lower bound", "08:00", "18:00", at(8, 0), true},
		{"at upper bound", "08:00", "18:00", at(18, 0), true},
		{"before window", "08:00", "18:00", at(7, 59), false},
		{"after window", "08:00", "18:00", at(18, 1), false},
		{"wraps midnight, late evening", "22:00", "06:00", at(23, 30), true},
		{"wraps midnight, early morning", "22:00", "06:00", at(5, 0), true},
		{"wraps midnight, midday closed", "22:00", "06:00", at(12, 0), false},
		{"malformed bounds fail open", "8am", "6pm", at(12, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FeatureSet{SyncWindowFrom: tt.from, SyncWindowTo: tt.to}
			require.Equal(t, tt.want, f.SyncWindowOpen(tt.now))
		})
	}
}
