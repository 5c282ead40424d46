package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/notify"
	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/logctx"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/tool"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanNotFound         = errors.New("plan not found")
)

// Service owns every subscription state transition. Each transition is one
// gorm transaction; notifications and audit logs are fired after commit and
// never abort the business mutation.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
	bus *notify.Bus
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, bus *notify.Bus) *Service {
	return &Service{cfg: cfg, db: db, log: log, bus: bus}
}

// CreateOptions carries actor metadata recorded in the subscription's Meta.
type CreateOptions struct {
	ActorID string
	Meta    map[string]any
}

// CreateSubscription subscribes a user to a plan. Within one transaction it
// force-cancels any prior usable subscription, so at most one subscription
// per user is ever active or trialing.
func (s *Service) CreateSubscription(ctx context.Context, userID, planID string, opts CreateOptions) (*models.Subscription, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &models.Subscription{
		ID:              tool.GenerateUUIDV7(),
		UserID:          userID,
		PlanID:          plan.ID,
		Status:          types.SubscriptionStatusActive,
		BillingInterval: plan.BillingCycle,
		StartsAt:        now,
		Meta:            metaFrom(opts.Meta),
	}
	ends := types.CalculateEndDate(now, plan.BillingCycle)
	sub.EndsAt = &ends
	if plan.TrialDays > 0 {
		trialEnds := now.AddDate(0, 0, plan.TrialDays)
		sub.TrialEndsAt = &trialEnds
		sub.Status = types.SubscriptionStatusTrialing
	}
	if opts.ActorID != "" {
		sub.Meta["created_by"] = opts.ActorID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status IN ?", userID, []types.SubscriptionStatus{
				types.SubscriptionStatusTrialing,
				types.SubscriptionStatusActive,
				types.SubscriptionStatusPending,
			}).
			Updates(map[string]any{"status": types.SubscriptionStatusCanceled, "cancelled_at": now}).Error; err != nil {
			return fmt.Errorf("failed to cancel prior subscriptions: %w", err)
		}
		return tx.Create(sub).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logChange(ctx, nil, sub, types.SubscriptionChangeReasonCreate, map[string]any{"actor_id": opts.ActorID})
	s.publish(ctx, "subscription.created", sub,
		fmt.Sprintf("user %s subscribed to plan %s", userID, plan.Name))
	return sub, nil
}

// CancelSubscription sets status=canceled and records who and why in Meta.
// Notification failures never roll the cancellation back.
func (s *Service) CancelSubscription(ctx context.Context, id, reason, actorID string) (*models.Subscription, error) {
	return s.mutate(ctx, id, types.SubscriptionChangeReasonCancel, func(sub *models.Subscription, now time.Time) error {
		sub.Status = types.SubscriptionStatusCanceled
		sub.CancelledAt = &now
		if reason != "" {
			sub.Meta["cancellation_reason"] = reason
		}
		if actorID != "" {
			sub.Meta["cancelled_by"] = actorID
		}
		return nil
	}, "subscription.canceled", func(sub *models.Subscription) string {
		return fmt.Sprintf("subscription %s canceled (%s)", sub.ID, reason)
	})
}

// ResumeSubscription reactivates a canceled subscription and restarts the
// billing cycle from now, not from the original schedule.
func (s *Service) ResumeSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	return s.mutate(ctx, id, types.SubscriptionChangeReasonResume, func(sub *models.Subscription, now time.Time) error {
		sub.Status = types.SubscriptionStatusActive
		ends := types.CalculateEndDate(now, sub.BillingInterval)
		sub.EndsAt = &ends
		sub.CancelledAt = nil
		sub.Meta["resumed_at"] = now.Format(time.RFC3339)
		return nil
	}, "subscription.resumed", func(sub *models.Subscription) string {
		return fmt.Sprintf("subscription %s resumed", sub.ID)
	})
}

// ChangePlan moves the subscription to newPlanID. With immediate=true the
// plan, billing interval and end date change now. Otherwise the change is
// only recorded in Meta as a pending plan change and nothing else moves; the
// legacy behavior of silently switching plan_id on the deferred path is
// intentionally not reproduced.
func (s *Service) ChangePlan(ctx context.Context, id, newPlanID string, immediate bool) (*models.Subscription, error) {
	plan, err := s.getPlan(ctx, newPlanID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, types.SubscriptionChangeReasonPlanChange, func(sub *models.Subscription, now time.Time) error {
		if !immediate {
			sub.Meta["pending_plan_id"] = plan.ID
			sub.Meta["pending_plan_requested_at"] = now.Format(time.RFC3339)
			return nil
		}
		sub.PlanID = plan.ID
		sub.BillingInterval = plan.BillingCycle
		ends := types.CalculateEndDate(now, plan.BillingCycle)
		sub.EndsAt = &ends
		sub.Meta["plan_changed_at"] = now.Format(time.RFC3339)
		delete(sub.Meta, "pending_plan_id")
		delete(sub.Meta, "pending_plan_requested_at")
		return nil
	}, "subscription.plan_changed", func(sub *models.Subscription) string {
		if immediate {
			return fmt.Sprintf("subscription %s moved to plan %s", sub.ID, plan.Name)
		}
		return fmt.Sprintf("subscription %s scheduled for plan %s at next cycle", sub.ID, plan.Name)
	})
}

// ExtendSubscription pushes the end date out by days.
func (s *Service) ExtendSubscription(ctx context.Context, id string, days int) (*models.Subscription, error) {
	return s.mutate(ctx, id, types.SubscriptionChangeReasonExtend, func(sub *models.Subscription, now time.Time) error {
		base := now
		if sub.EndsAt != nil {
			base = *sub.EndsAt
		}
		ends := base.AddDate(0, 0, days)
		sub.EndsAt = &ends
		sub.Meta["extended_days"] = days
		return nil
	}, "subscription.extended", func(sub *models.Subscription) string {
		return fmt.Sprintf("subscription %s extended by %d days", sub.ID, days)
	})
}

// ManualActivate activates a pending subscription by hand, restarting the
// cycle at now. Used while billing capture is manual.
func (s *Service) ManualActivate(ctx context.Context, id, adminName string) (*models.Subscription, error) {
	return s.mutate(ctx, id, types.SubscriptionChangeReasonManualActivate, func(sub *models.Subscription, now time.Time) error {
		sub.Status = types.SubscriptionStatusActive
		sub.StartsAt = now
		ends := types.CalculateEndDate(now, sub.BillingInterval)
		sub.EndsAt = &ends
		sub.Meta["activated_by"] = adminName
		return nil
	}, "subscription.activated", func(sub *models.Subscription) string {
		return fmt.Sprintf("subscription %s manually activated by %s", sub.ID, adminName)
	})
}

// GetSubscription loads one subscription with its plan.
func (s *Service) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Preload("Plan").Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// mutate runs one lifecycle transition inside a transaction and fires the
// audit log and notification after commit.
func (s *Service) mutate(ctx context.Context, id string, reason types.SubscriptionChangeReason,
	change func(sub *models.Subscription, now time.Time) error,
	event string, message func(sub *models.Subscription) string) (*models.Subscription, error) {

	var before, after *models.Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.Where("id = ?", id).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}
		// snapshot with its own Meta map, so in-place mutations below do
		// not leak into the "before" image
		cp := sub
		cp.Meta = metaFrom(sub.Meta)
		before = &cp

		if sub.Meta == nil {
			sub.Meta = datatypes.JSONMap{}
		}
		now := time.Now()
		if err := change(&sub, now); err != nil {
			return err
		}
		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		after = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logChange(ctx, before, after, reason, nil)
	s.publish(ctx, event, after, message(after))
	return after, nil
}

func (s *Service) getPlan(ctx context.Context, planID string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.WithContext(ctx).Where("id = ? AND active = ?", planID, true).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// logChange writes the audit row asynchronously; errors are logged but not
// returned.
func (s *Service) logChange(ctx context.Context, before, after *models.Subscription, reason types.SubscriptionChangeReason, extra map[string]any) {
	go func() {
		log := &models.SubscriptionLog{
			ID:     tool.GenerateUUIDV7(),
			UserID: after.UserID,
			Reason: reason,
			Before: datatypes.NewJSONType(before),
			After:  datatypes.NewJSONType(after),
			Extra:  metaFrom(extra),
		}
		if err := s.db.Save(log).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save subscription log: %v", err)
		}
	}()
}

// publish emits the lifecycle event on the notify bus. Best-effort only.
func (s *Service) publish(ctx context.Context, event string, sub *models.Subscription, message string) {
	s.bus.Publish(ctx, notify.Event{
		Name:    event,
		UserID:  sub.UserID,
		Subject: event,
		Message: message,
		Payload: map[string]any{
			"subscription_id": sub.ID,
			"plan_id":         sub.PlanID,
			"status":          string(sub.Status),
		},
	})
}

func metaFrom(m map[string]any) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range m {
		out[k] = v
	}
	return out
}
