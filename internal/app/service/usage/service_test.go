package usage

import (
	"context"
	"testing"
	"time"

	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SyncUsage{}))
	return db
}

func TestGetOrCreateWindow_FirstTouchCreatesZeroedRow(t *testing.T) {
	svc := NewService(setupTestDB(t), zap.NewNop().Sugar())
	ctx := context.Background()
	ref := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

	w, err := svc.GetOrCreateWindow(ctx, "user-1", types.UsagePeriodDaily, ref)
	require.NoError(t, err)
	require.Equal(t, int64(0), w.SyncCount)
	require.Equal(t, int64(0), w.RevenueSum)
	require.Equal(t, int64(0), w.OrdersCount)
	require.True(t, w.Contains(ref))
}

func TestGetOrCreateWindow_SecondTouchReturnsSameRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()
	ref := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

	w1, err := svc.GetOrCreateWindow(ctx, "user-1", types.UsagePeriodDaily, ref)
	require.NoError(t, err)
	w2, err := svc.GetOrCreateWindow(ctx, "user-1", types.UsagePeriodDaily, ref.Add(10*time.Hour))
	require.NoError(t, err)
	require.Equal(t, w1.ID, w2.ID)

	var count int64
	require.NoError(t, db.Model(&models.SyncUsage{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestIncrement_TouchesDailyAndMonthly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()
	ref := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Increment(ctx, "user-1", ref, Deltas{Sync: 1, Orders: 4, Revenue: 2500}))
	require.NoError(t, svc.Increment(ctx, "user-1", ref, Deltas{Sync: 1}))

	daily, monthly, err := svc.CurrentWindows(ctx, "user-1", ref)
	require.NoError(t, err)
	require.Equal(t, int64(2), daily.SyncCount)
	require.Equal(t, int64(4), daily.OrdersCount)
	require.Equal(t, int64(2500), daily.RevenueSum)
	require.Equal(t, int64(2), monthly.SyncCount)
	require.Equal(t, int64(4), monthly.OrdersCount)
	require.Equal(t, int64(2500), monthly.RevenueSum)
}

func TestIncrement_EmptyDeltasWriteNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())

	require.NoError(t, svc.Increment(context.Background(), "user-1", time.Now(), Deltas{}))

	var count int64
	require.NoError(t, db.Model(&models.SyncUsage{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestIncrement_NewDayOpensNewWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()

	day1 := time.Date(2026, 4, 10, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 4, 11, 1, 0, 0, 0, time.UTC)

	require.NoError(t, svc.IncrementPeriod(ctx, "user-1", types.UsagePeriodDaily, day1, Deltas{Sync: 3}))
	require.NoError(t, svc.IncrementPeriod(ctx, "user-1", types.UsagePeriodDaily, day2, Deltas{Sync: 1}))

	w1, err := svc.GetOrCreateWindow(ctx, "user-1", types.UsagePeriodDaily, day1)
	require.NoError(t, err)
	w2, err := svc.GetOrCreateWindow(ctx, "user-1", types.UsagePeriodDaily, day2)
	require.NoError(t, err)

	require.NotEqual(t, w1.ID, w2.ID)
	require.Equal(t, int64(3), w1.SyncCount)
	require.Equal(t, int64(1), w2.SyncCount)
}

func TestIncrement_WindowsArePerUser(t *testing.T) {
	svc := NewService(setupTestDB(t), zap.NewNop().Sugar())
	ctx := context.Background()
	ref := time.Now()

	require.NoError(t, svc.Increment(ctx, "user-a", ref, Deltas{Sync: 5}))
	require.NoError(t, svc.Increment(ctx, "user-b", ref, Deltas{Sync: 1}))

	wa, err := svc.GetOrCreateWindow(ctx, "user-a", types.UsagePeriodDaily, ref)
	require.NoError(t, err)
	wb, err := svc.GetOrCreateWindow(ctx, "user-b", types.UsagePeriodDaily, ref)
	require.NoError(t, err)
	require.Equal(t, int64(5), wa.SyncCount)
	require.Equal(t, int64(1), wb.SyncCount)
}
