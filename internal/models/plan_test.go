package models

import (
	"testing"

	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestResolvedFeatures_NullColumnsMeanUnlimited(t *testing.T) {
	p := &Plan{}
	f := p.ResolvedFeatures()
	require.True(t, f.NetworksLimit.IsUnlimited())
	require.True(t, f.DailySyncLimit.IsUnlimited())
	require.True(t, f.MonthlySyncLimit.IsUnlimited())
	require.True(t, f.OrdersLimit.IsUnlimited())
	require.True(t, f.RevenueLimit.IsUnlimited())
	require.False(t, f.HasSyncWindow())
}

func TestResolvedFeatures_Columns(t *testing.T) {
	p := &Plan{
		MaxNetworks:    int64Ptr(3),
		DailySyncLimit: int64Ptr(10),
		OrdersCap:      int64Ptr(500),
		SyncWindowFrom: strPtr("08:00"),
		SyncWindowTo:   strPtr("20:00"),
	}
	f := p.ResolvedFeatures()
	require.Equal(t, types.Limit(3), f.NetworksLimit)
	require.Equal(t, types.Limit(10), f.DailySyncLimit)
	require.Equal(t, types.Limit(500), f.OrdersLimit)
	require.True(t, f.MonthlySyncLimit.IsUnlimited())
	require.Equal(t, "08:00", f.SyncWindowFrom)
	require.Equal(t, "20:00", f.SyncWindowTo)
	require.True(t, f.HasSyncWindow())
}

func TestResolvedFeatures_JSONOverridesColumns(t *testing.T) {
	p := &Plan{
		DailySyncLimit: int64Ptr(10),
		MaxNetworks:    int64Ptr(3),
		// json.Unmarshal yields float64 for numbers
		Features: datatypes.JSONMap{
			"daily_sync_limit": float64(25),
			"networks_limit":   float64(-1),
			"sync_window_from": "06:00",
			"sync_window_to":   "23:00",
		},
	}
	f := p.ResolvedFeatures()
	require.Equal(t, types.Limit(25), f.DailySyncLimit)
	require.True(t, f.NetworksLimit.IsUnlimited())
	require.Equal(t, "06:00", f.SyncWindowFrom)
	require.Equal(t, "23:00", f.SyncWindowTo)
}

func TestResolvedFeatures_IgnoresMalformedOverride(t *testing.T) {
	p := &Plan{
		OrdersCap: int64Ptr(100),
		Features:  datatypes.JSONMap{"orders_limit": "lots", "sync_window_from": ""},
	}
	f := p.ResolvedFeatures()
	require.Equal(t, types.Limit(100), f.OrdersLimit)
	require.Equal(t, "", f.SyncWindowFrom)
}
