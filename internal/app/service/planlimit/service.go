package planlimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/usage"
	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/logctx"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

// Service evaluates a user's plan against the usage ledger and current data
// and decides whether an action is permitted. It never mutates state.
//
// Assert* methods fail with typed errors callers turn into user-facing
// denials. Can* methods return plain booleans and never error for normal
// policy denial; missing plan or subscription data also yields false.
type Service struct {
	db    *gorm.DB
	usage *usage.Service
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, usageSvc *usage.Service, log *zap.SugaredLogger) *Service {
	return &Service{db: db, usage: usageSvc, log: log}
}

// AssertSubscribed returns the user's current subscription or fails with
// ErrNoSubscription / ErrSubscriptionInactive.
func (s *Service) AssertSubscribed(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.currentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Usable(time.Now()) {
		return nil, ErrSubscriptionInactive
	}
	return sub, nil
}

// AssertCanAddNetwork fails with a LimitExceededError when the user's active
// connection count has reached the plan's network cap.
func (s *Service) AssertCanAddNetwork(ctx context.Context, userID string) error {
	sub, err := s.AssertSubscribed(ctx, userID)
	if err != nil {
		return err
	}
	limit := sub.Plan.ResolvedFeatures().NetworksLimit
	if limit.IsUnlimited() {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.NetworkConnection{}).
		Where("user_id = ? AND status = ?", userID, types.ConnectionStatusActive).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count network connections: %w", err)
	}
	if !limit.Allows(count) {
		return &LimitExceededError{Scope: LimitScopeNetworks, Limit: limit, Used: count}
	}
	return nil
}

// AssertCanSync gates a sync run at now: the plan's time-of-day window must
// be open, and neither the daily nor the monthly sync count may have reached
// its cap. Ledger windows are created on first touch.
func (s *Service) AssertCanSync(ctx context.Context, userID string, now time.Time) error {
	sub, err := s.AssertSubscribed(ctx, userID)
	if err != nil {
		return err
	}
	f := sub.Plan.ResolvedFeatures()

	if !f.SyncWindowOpen(now) {
		return fmt.Errorf("%w (allowed %s-%s)", ErrSyncWindowClosed, f.SyncWindowFrom, f.SyncWindowTo)
	}

	checks := []struct {
		period types.UsagePeriod
		limit  types.Limit
		scope  LimitScope
	}{
		{types.UsagePeriodDaily, f.DailySyncLimit, LimitScopeDailySync},
		{types.UsagePeriodMonthly, f.MonthlySyncLimit, LimitScopeMonthlySync},
	}
	for _, c := range checks {
		if c.limit.IsUnlimited() {
			continue
		}
		w, err := s.usage.GetOrCreateWindow(ctx, userID, c.period, now)
		if err != nil {
			return err
		}
		if !c.limit.Allows(w.SyncCount) {
			return &LimitExceededError{Scope: c.scope, Limit: c.limit, Used: w.SyncCount}
		}
	}
	return nil
}

// CanCreateOrder reports whether the plan's order cap leaves room for one
// more order this month.
func (s *Service) CanCreateOrder(ctx context.Context, userID string, now time.Time) bool {
	f, ok := s.features(ctx, userID, now)
	if !ok {
		return false
	}
	if f.OrdersLimit.IsUnlimited() {
		return true
	}
	count, _, err := s.monthToDatePurchases(ctx, userID, now)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to count month-to-date orders: %v", err)
		return false
	}
	return f.OrdersLimit.Allows(count)
}

// CanGenerateRevenue reports whether adding amount keeps the user under the
// plan's monthly revenue cap.
func (s *Service) CanGenerateRevenue(ctx context.Context, userID string, amount int64, now time.Time) bool {
	f, ok := s.features(ctx, userID, now)
	if !ok {
		return false
	}
	if f.RevenueLimit.IsUnlimited() {
		return true
	}
	_, sum, err := s.monthToDatePurchases(ctx, userID, now)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to sum month-to-date revenue: %v", err)
		return false
	}
	return f.RevenueLimit.AllowsAmount(sum, amount)
}

func (s *Service) features(ctx context.Context, userID string, now time.Time) (types.FeatureSet, bool) {
	sub, err := s.currentSubscription(ctx, userID)
	if err != nil || !sub.Usable(now) || sub.Plan == nil {
		return types.FeatureSet{}, false
	}
	return sub.Plan.ResolvedFeatures(), true
}

func (s *Service) currentSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at desc").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub.Plan == nil {
		return nil, ErrNoSubscription
	}
	return &sub, nil
}

// monthToDatePurchases counts approved purchases and sums their revenue over
// [start of month, now]. This accounting path deliberately reads the
// purchase table rather than the usage ledger so backdated purchases are
// reflected.
func (s *Service) monthToDatePurchases(ctx context.Context, userID string, now time.Time) (int64, int64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var row struct {
		Cnt int64
		Sum int64
	}
	err := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Select("COUNT(*) AS cnt, COALESCE(SUM(revenue), 0) AS sum").
		Where("user_id = ? AND status = ? AND order_date BETWEEN ? AND ?",
			userID, types.PurchaseStatusApproved, monthStart, now).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Cnt, row.Sum, nil
}
