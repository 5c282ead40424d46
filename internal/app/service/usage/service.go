package usage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/tool"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

// Service is the usage-window ledger: durable counters bounding a user's
// consumption per rolling period.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Deltas are the counter increments of one ledger write. Zero fields are
// left untouched.
type Deltas struct {
	Sync    int64
	Revenue int64
	Orders  int64
}

func (d Deltas) empty() bool { return d == Deltas{} }

// GetOrCreateWindow returns the ledger row for the window of period
// containing ref, creating it with zero counters on first touch. Concurrent
// first touches are resolved by the unique window index: the insert is
// on-conflict-do-nothing and the row is read back afterwards.
func (s *Service) GetOrCreateWindow(ctx context.Context, userID string, period types.UsagePeriod, ref time.Time) (*models.SyncUsage, error) {
	start, end := period.WindowBounds(ref)

	row := &models.SyncUsage{
		ID:          tool.GenerateUUIDV7(),
		UserID:      userID,
		Period:      period,
		WindowStart: start,
		WindowEnd:   end,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "period"}, {Name: "window_start"}, {Name: "window_end"},
		},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create usage window: %w", err)
	}

	var out models.SyncUsage
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND period = ? AND window_start = ? AND window_end = ?", userID, period, start, end).
		First(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load usage window: %w", err)
	}
	return &out, nil
}

// Increment atomically adds the deltas to the daily and monthly windows
// containing ref. Each counter update runs as a single relative UPDATE so
// concurrent writers never lose increments.
func (s *Service) Increment(ctx context.Context, userID string, ref time.Time, d Deltas) error {
	if d.empty() {
		return nil
	}
	for _, period := range []types.UsagePeriod{types.UsagePeriodDaily, types.UsagePeriodMonthly} {
		if err := s.incrementWindow(ctx, userID, period, ref, d); err != nil {
			return err
		}
	}
	return nil
}

// IncrementPeriod is Increment restricted to one period.
func (s *Service) IncrementPeriod(ctx context.Context, userID string, period types.UsagePeriod, ref time.Time, d Deltas) error {
	if d.empty() {
		return nil
	}
	return s.incrementWindow(ctx, userID, period, ref, d)
}

func (s *Service) incrementWindow(ctx context.Context, userID string, period types.UsagePeriod, ref time.Time, d Deltas) error {
	if _, err := s.GetOrCreateWindow(ctx, userID, period, ref); err != nil {
		return err
	}

	updates := map[string]any{}
	if d.Sync != 0 {
		updates["sync_count"] = gorm.Expr("sync_count + ?", d.Sync)
	}
	if d.Revenue != 0 {
		updates["revenue_sum"] = gorm.Expr("revenue_sum + ?", d.Revenue)
	}
	if d.Orders != 0 {
		updates["orders_count"] = gorm.Expr("orders_count + ?", d.Orders)
	}

	start, end := period.WindowBounds(ref)
	if err := s.db.WithContext(ctx).Model(&models.SyncUsage{}).
		Where("user_id = ? AND period = ? AND window_start = ? AND window_end = ?", userID, period, start, end).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to increment usage window: %w", err)
	}
	return nil
}

// CurrentWindows returns the daily and monthly ledger rows at ref.
func (s *Service) CurrentWindows(ctx context.Context, userID string, ref time.Time) (daily, monthly *models.SyncUsage, err error) {
	if daily, err = s.GetOrCreateWindow(ctx, userID, types.UsagePeriodDaily, ref); err != nil {
		return nil, nil, err
	}
	if monthly, err = s.GetOrCreateWindow(ctx, userID, types.UsagePeriodMonthly, ref); err != nil {
		return nil, nil, err
	}
	return daily, monthly, nil
}
