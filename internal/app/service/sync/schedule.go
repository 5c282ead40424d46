package sync

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/logctx"
)

// CanRunSchedule reports whether a schedule is due and unclaimed at now.
func (s *Service) CanRunSchedule(sched *models.SyncSchedule, now time.Time) bool {
	return sched.CanRun(now) && !sched.Claimed(now)
}

// CalculateNextRunTime returns now plus the schedule interval.
func (s *Service) CalculateNextRunTime(sched *models.SyncSchedule, now time.Time) time.Time {
	return now.Add(time.Duration(sched.IntervalMinutes) * time.Minute)
}

// ResetDailyCounters zeroes runs_today across all schedules. Invoked once
// per day by an external trigger.
func (s *Service) ResetDailyCounters(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.SyncSchedule{}).
		Where("runs_today > 0").
		Update("runs_today", 0)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reset daily counters: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ClaimSchedule atomically acquires the run lease for a due schedule. The
// conditional UPDATE guarantees at most one in-flight run per schedule: a
// concurrent claimer matches zero rows and reports false.
func (s *Service) ClaimSchedule(ctx context.Context, scheduleID string, now time.Time) (bool, error) {
	lease := now.Add(time.Duration(s.cfg.Sync.ScheduleLeaseMinutes) * time.Minute)
	res := s.db.WithContext(ctx).Model(&models.SyncSchedule{}).
		Where("id = ? AND active = ? AND runs_today < max_runs_per_day", scheduleID, true).
		Where("next_run_at IS NULL OR next_run_at <= ?", now).
		Where("claimed_until IS NULL OR claimed_until <= ?", now).
		Update("claimed_until", lease)
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim schedule: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSchedule drops the run lease.
func (s *Service) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	return s.db.WithContext(ctx).Model(&models.SyncSchedule{}).
		Where("id = ?", scheduleID).
		Update("claimed_until", nil).Error
}

// ScheduleRunOutcome describes one schedule considered by RunDueSchedules.
type ScheduleRunOutcome struct {
	ScheduleID string       `json:"schedule_id"`
	Skipped    bool         `json:"skipped"`
	Reason     string       `json:"reason,omitempty"`
	Result     *MultiResult `json:"result,omitempty"`
}

// RunDueSchedules claims and executes every due schedule. One failing
// schedule never stops the sweep. The external cron trigger invokes this
// through the admin API.
func (s *Service) RunDueSchedules(ctx context.Context, now time.Time) ([]*ScheduleRunOutcome, error) {
	var due []*models.SyncSchedule
	if err := s.db.WithContext(ctx).
		Where("active = ? AND runs_today < max_runs_per_day", true).
		Where("next_run_at IS NULL OR next_run_at <= ?", now).
		Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to load due schedules: %w", err)
	}

	outcomes := make([]*ScheduleRunOutcome, 0, len(due))
	for _, sched := range due {
		outcomes = append(outcomes, s.runSchedule(ctx, sched, now))
	}
	return outcomes, nil
}

func (s *Service) runSchedule(ctx context.Context, sched *models.SyncSchedule, now time.Time) *ScheduleRunOutcome {
	outcome := &ScheduleRunOutcome{ScheduleID: sched.ID}

	claimed, err := s.ClaimSchedule(ctx, sched.ID, now)
	if err != nil {
		outcome.Skipped, outcome.Reason = true, "claim failed"
		logctx.FromCtx(ctx, s.log).Errorw("schedule claim failed", "schedule_id", sched.ID, "err", err)
		return outcome
	}
	if !claimed {
		outcome.Skipped, outcome.Reason = true, "already claimed"
		return outcome
	}

	if err := s.gate.AssertCanSync(ctx, sched.UserID, now); err != nil {
		outcome.Skipped, outcome.Reason = true, err.Error()
		// Push the schedule forward so a denied user does not hot-loop.
		s.finishSchedule(ctx, sched, now, false)
		return outcome
	}

	from, to := sched.ResolveRange(now)
	req := &Request{DateFrom: &from, DateTo: &to, SyncType: sched.SyncType, ScheduleID: &sched.ID}
	outcome.Result = s.SyncMultipleNetworks(ctx, sched.NetworkIDs, sched.UserID, req)

	s.finishSchedule(ctx, sched, now, true)
	return outcome
}

func (s *Service) finishSchedule(ctx context.Context, sched *models.SyncSchedule, now time.Time, ran bool) {
	updates := map[string]any{
		"next_run_at":   s.CalculateNextRunTime(sched, now),
		"claimed_until": nil,
	}
	if ran {
		// relative increment: a concurrent daily reset must not be clobbered
		// by a count read before the run started
		updates["runs_today"] = gorm.Expr("runs_today + 1")
		updates["last_run_at"] = now
	}
	if err := s.db.WithContext(ctx).Model(&models.SyncSchedule{}).
		Where("id = ?", sched.ID).Updates(updates).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to finish schedule", "schedule_id", sched.ID, "err", err)
	}
}
