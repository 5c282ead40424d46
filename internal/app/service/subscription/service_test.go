package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/notify"
	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/tool"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&models.Plan{}, &models.Subscription{}, &models.SubscriptionLog{},
		&models.AdminNotification{},
	)
	require.NoError(t, err)

	cfg := &config.Config{}
	log := zap.NewNop().Sugar()
	return NewService(cfg, db, log, notify.NewBus(cfg, db, log)), db
}

func seedPlan(t *testing.T, db *gorm.DB, cycle types.BillingCycle, trialDays int) *models.Plan {
	plan := &models.Plan{
		ID:           tool.GenerateUUIDV7(),
		Name:         "Basic",
		BillingCycle: cycle,
		TrialDays:    trialDays,
		Active:       true,
	}
	plan.Code = "plan-" + plan.ID
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func TestCreateSubscription(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)

	sub, err := svc.CreateSubscription(context.Background(), "user-1", plan.ID, CreateOptions{ActorID: "admin"})
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, sub.Status)
	require.Equal(t, plan.ID, sub.PlanID)
	require.Equal(t, types.BillingCycleMonthly, sub.BillingInterval)
	require.NotNil(t, sub.EndsAt)
	require.Nil(t, sub.TrialEndsAt)
	require.Equal(t, "admin", sub.Meta["created_by"])
}

func TestCreateSubscription_TrialPlanStartsTrialing(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 14)

	sub, err := svc.CreateSubscription(context.Background(), "user-1", plan.ID, CreateOptions{})
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusTrialing, sub.Status)
	require.NotNil(t, sub.TrialEndsAt)
	require.True(t, sub.Usable(time.Now()))
}

func TestCreateSubscription_ForceCancelsPrior(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	ctx := context.Background()

	first, err := svc.CreateSubscription(ctx, "user-1", plan.ID, CreateOptions{})
	require.NoError(t, err)
	second, err := svc.CreateSubscription(ctx, "user-1", plan.ID, CreateOptions{})
	require.NoError(t, err)

	var reloaded models.Subscription
	require.NoError(t, db.Where("id = ?", first.ID).First(&reloaded).Error)
	require.Equal(t, types.SubscriptionStatusCanceled, reloaded.Status)
	require.NotNil(t, reloaded.CancelledAt)

	var usable int64
	require.NoError(t, db.Model(&models.Subscription{}).
		Where("user_id = ? AND status IN ?", "user-1",
			[]types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusTrialing}).
		Count(&usable).Error)
	require.Equal(t, int64(1), usable)
	require.Equal(t, types.SubscriptionStatusActive, second.Status)
}

func TestCreateSubscription_UnknownPlan(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.CreateSubscription(context.Background(), "user-1", "missing", CreateOptions{})
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCancelSubscription(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, "user-1", plan.ID, CreateOptions{})
	require.NoError(t, err)

	canceled, err := svc.CancelSubscription(ctx, sub.ID, "too expensive", "admin")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCanceled, canceled.Status)
	require.NotNil(t, canceled.CancelledAt)
	require.Equal(t, "too expensive", canceled.Meta["cancellation_reason"])
	require.Equal(t, "admin", canceled.Meta["cancelled_by"])
}

func TestCancelSubscription_AuditSnapshotsDiverge(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, "user-1", plan.ID, CreateOptions{ActorID: "admin"})
	require.NoError(t, err)

	_, err = svc.CancelSubscription(ctx, sub.ID, "too expensive", "admin")
	require.NoError(t, err)

	// the audit row is written asynchronously
	var logRow models.SubscriptionLog
	require.Eventually(t, func() bool {
		return db.Where("user_id = ? AND reason = ?", "user-1", types.SubscriptionChangeReasonCancel).
			First(&logRow).Error == nil
	}, 2*time.Second, 10*time.Millisecond)

	before := logRow.Before.Data()
	after := logRow.After.Data()
	require.Equal(t, types.SubscriptionStatusActive, before.Status)
	require.NotContains(t, before.Meta, "cancellation_reason")
	require.NotContains(t, before.Meta, "cancelled_by")
	require.Equal(t, types.SubscriptionStatusCanceled, after.Status)
	require.Equal(t, "too expensive", after.Meta["cancellation_reason"])
}

func TestResumeSubscription(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, "user-1", plan.ID, CreateOptions{})
	require.NoError(t, err)
	_, err = svc.CancelSubscription(ctx, sub.ID, "", "")
	require.NoError(t, err)

	resumed, err := svc.ResumeSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, resumed.Status)
	require.Nil(t, resumed.CancelledAt)
	require.NotNil(t, resumed.EndsAt)
	require.True(t, resumed.EndsAt.After(time.Now()))
}

func TestChangePlan_Immediate(t *testing.T) {
	svc, db := setupService(t)
	oldPlan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	newPlan := seedPlan(t, db, types.BillingCycleAnnually, 0)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, "user-1", oldPlan.ID, CreateOptions{})
	require.NoError(t, err)

	changed, err := svc.ChangePlan(ctx, sub.ID, newPlan.ID, true)
	require.NoError(t, err)
	require.Equal(t, newPlan.ID, changed.PlanID)
	require.Equal(t, types.BillingCycleAnnually, changed.BillingInterval)
	require.NotContains(t, changed.Meta, "pending_plan_id")
}

func TestChangePlan_Deferred(t *testing.T) {
	svc, db := setupService(t)
	oldPlan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	newPlan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, "user-1", oldPlan.ID, CreateOptions{})
	require.NoError(t, err)
	originalEnds := *sub.EndsAt

	changed, err := svc.ChangePlan(ctx, sub.ID, newPlan.ID, false)
	require.NoError(t, err)

	// deferred change records intent but moves nothing
	require.Equal(t, oldPlan.ID, changed.PlanID)
	require.Equal(t, newPlan.ID, changed.Meta["pending_plan_id"])
	require.Equal(t, originalEnds.Unix(), changed.EndsAt.Unix())
}

func TestExtendSubscription_FromEndDate(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, "user-1", plan.ID, CreateOptions{})
	require.NoError(t, err)
	base := *sub.EndsAt

	extended, err := svc.ExtendSubscription(ctx, sub.ID, 10)
	require.NoError(t, err)
	require.Equal(t, base.AddDate(0, 0, 10).Unix(), extended.EndsAt.Unix())
}

func TestManualActivate(t *testing.T) {
	svc, db := setupService(t)
	plan := seedPlan(t, db, types.BillingCycleMonthly, 0)

	pending := &models.Subscription{
		ID:              tool.GenerateUUIDV7(),
		UserID:          "user-1",
		PlanID:          plan.ID,
		Status:          types.SubscriptionStatusPending,
		BillingInterval: types.BillingCycleMonthly,
		StartsAt:        time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(pending).Error)

	activated, err := svc.ManualActivate(context.Background(), pending.ID, "ops")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, activated.Status)
	require.Equal(t, "ops", activated.Meta["activated_by"])
	require.NotNil(t, activated.EndsAt)
}

func TestMutate_UnknownSubscription(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.ResumeSubscription(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}
