package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubscriptionStatus_Usable(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	require.True(t, SubscriptionStatusActive.Usable(nil, now))
	require.True(t, SubscriptionStatusTrialing.Usable(&future, now))
	require.False(t, SubscriptionStatusTrialing.Usable(&past, now))
	require.False(t, SubscriptionStatusTrialing.Usable(nil, now))
	require.False(t, SubscriptionStatusCanceled.Usable(nil, now))
	require.False(t, SubscriptionStatusPending.Usable(nil, now))
}
