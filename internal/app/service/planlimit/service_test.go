package planlimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/usage"
	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/tool"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&models.Plan{}, &models.Subscription{}, &models.SyncUsage{},
		&models.NetworkConnection{}, &models.Purchase{},
	)
	require.NoError(t, err)
	return db
}

func newGate(t *testing.T) (*Service, *gorm.DB, *usage.Service) {
	db := setupTestDB(t)
	us := usage.NewService(db, zap.NewNop().Sugar())
	return NewService(db, us, zap.NewNop().Sugar()), db, us
}

func int64Ptr(v int64) *int64 { return &v }

func seedSubscription(t *testing.T, db *gorm.DB, userID string, plan *models.Plan) {
	plan.ID = tool.GenerateUUIDV7()
	if plan.Code == "" {
		plan.Code = "plan-" + plan.ID
	}
	require.NoError(t, db.Create(plan).Error)

	ends := time.Now().AddDate(0, 1, 0)
	sub := &models.Subscription{
		ID:       tool.GenerateUUIDV7(),
		UserID:   userID,
		PlanID:   plan.ID,
		Status:   types.SubscriptionStatusActive,
		StartsAt: time.Now(),
		EndsAt:   &ends,
	}
	require.NoError(t, db.Create(sub).Error)
}

func TestAssertSubscribed_NoSubscription(t *testing.T) {
	gate, _, _ := newGate(t)
	_, err := gate.AssertSubscribed(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrNoSubscription)
}

func TestAssertSubscribed_InactiveSubscription(t *testing.T) {
	gate, db, _ := newGate(t)

	plan := &models.Plan{Name: "Basic"}
	plan.ID = tool.GenerateUUIDV7()
	plan.Code = "basic"
	require.NoError(t, db.Create(plan).Error)
	sub := &models.Subscription{
		ID:       tool.GenerateUUIDV7(),
		UserID:   "user-1",
		PlanID:   plan.ID,
		Status:   types.SubscriptionStatusCanceled,
		StartsAt: time.Now(),
	}
	require.NoError(t, db.Create(sub).Error)

	_, err := gate.AssertSubscribed(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrSubscriptionInactive)
}

func TestAssertCanSync_DailyLimitBoundary(t *testing.T) {
	gate, db, us := newGate(t)
	ctx := context.Background()
	now := time.Now()

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", DailySyncLimit: int64Ptr(2)})

	// under the cap
	require.NoError(t, gate.AssertCanSync(ctx, "user-1", now))
	require.NoError(t, us.IncrementPeriod(ctx, "user-1", types.UsagePeriodDaily, now, usage.Deltas{Sync: 1}))
	require.NoError(t, gate.AssertCanSync(ctx, "user-1", now))

	// at the cap
	require.NoError(t, us.IncrementPeriod(ctx, "user-1", types.UsagePeriodDaily, now, usage.Deltas{Sync: 1}))
	err := gate.AssertCanSync(ctx, "user-1", now)
	require.Error(t, err)

	limitErr, ok := IsLimitExceeded(err)
	require.True(t, ok)
	require.Equal(t, LimitScopeDailySync, limitErr.Scope)
	require.Equal(t, int64(2), limitErr.Used)
}

func TestAssertCanSync_MonthlyLimit(t *testing.T) {
	gate, db, us := newGate(t)
	ctx := context.Background()
	now := time.Now()

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", MonthlySyncLimit: int64Ptr(1)})

	require.NoError(t, gate.AssertCanSync(ctx, "user-1", now))
	require.NoError(t, us.IncrementPeriod(ctx, "user-1", types.UsagePeriodMonthly, now, usage.Deltas{Sync: 1}))

	err := gate.AssertCanSync(ctx, "user-1", now)
	var limitErr *LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	require.Equal(t, LimitScopeMonthlySync, limitErr.Scope)
}

func TestAssertCanSync_UnlimitedPlanNeverDenies(t *testing.T) {
	gate, db, us := newGate(t)
	ctx := context.Background()
	now := time.Now()

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Pro"})
	require.NoError(t, us.Increment(ctx, "user-1", now, usage.Deltas{Sync: 10000}))
	require.NoError(t, gate.AssertCanSync(ctx, "user-1", now))
}

func TestAssertCanSync_WindowClosed(t *testing.T) {
	gate, db, _ := newGate(t)
	from, to := "08:00", "18:00"

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", SyncWindowFrom: &from, SyncWindowTo: &to})

	closed := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	err := gate.AssertCanSync(context.Background(), "user-1", closed)
	require.ErrorIs(t, err, ErrSyncWindowClosed)

	open := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, gate.AssertCanSync(context.Background(), "user-1", open))
}

func TestAssertCanAddNetwork(t *testing.T) {
	gate, db, _ := newGate(t)
	ctx := context.Background()

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", MaxNetworks: int64Ptr(1)})
	require.NoError(t, gate.AssertCanAddNetwork(ctx, "user-1"))

	conn := &models.NetworkConnection{
		ID:        tool.GenerateUUIDV7(),
		UserID:    "user-1",
		NetworkID: tool.GenerateUUIDV7(),
		Status:    types.ConnectionStatusActive,
	}
	require.NoError(t, db.Create(conn).Error)

	err := gate.AssertCanAddNetwork(ctx, "user-1")
	var limitErr *LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	require.Equal(t, LimitScopeNetworks, limitErr.Scope)
}

func TestAssertCanAddNetwork_InactiveConnectionsDoNotCount(t *testing.T) {
	gate, db, _ := newGate(t)

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", MaxNetworks: int64Ptr(1)})
	conn := &models.NetworkConnection{
		ID:        tool.GenerateUUIDV7(),
		UserID:    "user-1",
		NetworkID: tool.GenerateUUIDV7(),
		Status:    types.ConnectionStatusInactive,
	}
	require.NoError(t, db.Create(conn).Error)

	require.NoError(t, gate.AssertCanAddNetwork(context.Background(), "user-1"))
}

func TestCanCreateOrder_CountsApprovedPurchasesOnly(t *testing.T) {
	gate, db, _ := newGate(t)
	ctx := context.Background()
	now := time.Now()

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", OrdersCap: int64Ptr(1)})
	require.True(t, gate.CanCreateOrder(ctx, "user-1", now))

	// a pending purchase does not consume the cap
	pending := &models.Purchase{
		ID: tool.GenerateUUIDV7(), UserID: "user-1", NetworkID: tool.GenerateUUIDV7(),
		ExternalID: "p1", Status: types.PurchaseStatusPending, OrderDate: now,
	}
	require.NoError(t, db.Create(pending).Error)
	require.True(t, gate.CanCreateOrder(ctx, "user-1", now))

	approved := &models.Purchase{
		ID: tool.GenerateUUIDV7(), UserID: "user-1", NetworkID: tool.GenerateUUIDV7(),
		ExternalID: "p2", Status: types.PurchaseStatusApproved, OrderDate: now,
	}
	require.NoError(t, db.Create(approved).Error)
	require.False(t, gate.CanCreateOrder(ctx, "user-1", now))
}

func TestCanGenerateRevenue(t *testing.T) {
	gate, db, _ := newGate(t)
	ctx := context.Background()
	now := time.Now()

	seedSubscription(t, db, "user-1", &models.Plan{Name: "Basic", RevenueCap: int64Ptr(10000)})

	approved := &models.Purchase{
		ID: tool.GenerateUUIDV7(), UserID: "user-1", NetworkID: tool.GenerateUUIDV7(),
		ExternalID: "p1", Status: types.PurchaseStatusApproved, OrderDate: now, Revenue: 6000,
	}
	require.NoError(t, db.Create(approved).Error)

	require.True(t, gate.CanGenerateRevenue(ctx, "user-1", 4000, now))
	require.False(t, gate.CanGenerateRevenue(ctx, "user-1", 4001, now))
}

func TestCanCreateOrder_NoSubscriptionIsFalse(t *testing.T) {
	gate, _, _ := newGate(t)
	require.False(t, gate.CanCreateOrder(context.Background(), "nobody", time.Now()))
	require.False(t, gate.CanGenerateRevenue(context.Background(), "nobody", 1, time.Now()))
}
