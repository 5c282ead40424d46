package models

import (
	"testing"

	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestCoupon_IncrementUsage(t *testing.T) {
	c := &Coupon{Status: types.CouponStatusActive, UsageLimit: 2}

	require.True(t, c.IncrementUsage())
	require.Equal(t, 1, c.UsedCount)
	require.Equal(t, types.CouponStatusActive, c.Status)

	require.True(t, c.IncrementUsage())
	require.Equal(t, 2, c.UsedCount)
	require.Equal(t, types.CouponStatusUsed, c.Status)

	// a used coupon cannot be used again
	require.False(t, c.IncrementUsage())
	require.Equal(t, 2, c.UsedCount)
}

func TestCoupon_IncrementUsage_Uncapped(t *testing.T) {
	c := &Coupon{Status: types.CouponStatusActive, UsageLimit: 0}
	for i := 0; i < 100; i++ {
		require.True(t, c.IncrementUsage())
	}
	require.Equal(t, 100, c.UsedCount)
	require.Equal(t, types.CouponStatusActive, c.Status)
}

func TestCoupon_IncrementUsage_Disabled(t *testing.T) {
	c := &Coupon{Status: types.CouponStatusDisabled}
	require.False(t, c.IncrementUsage())
	require.Equal(t, 0, c.UsedCount)
}
