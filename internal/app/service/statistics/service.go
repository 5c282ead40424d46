package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dashboard statistic types
type StatisticType string

const (
	// Sync activity
	StatisticTypeDailySyncCount   StatisticType = "daily_sync_count"
	StatisticTypeSyncSuccessRate  StatisticType = "sync_success_rate"
	StatisticTypeDailySyncRecords StatisticType = "daily_sync_records"

	// Purchases
	StatisticTypeDailyOrderCount StatisticType = "daily_order_count"
	StatisticTypeDailyRevenue    StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue    StatisticType = "total_revenue"

	// Subscriptions
	StatisticTypeTotalActiveSubscriptions StatisticType = "total_active_subscriptions"
)

// Filter types supported by certain statistic types
type DashboardStatisticFilterType string

const (
	DashboardStatisticFilterTypeNetworkID    DashboardStatisticFilterType = "network_id"
	DashboardStatisticFilterTypePurchaseType DashboardStatisticFilterType = "purchase_type"
	DashboardStatisticFilterTypeIsManual     DashboardStatisticFilterType = "is_manual"
)

var filterTypes = []DashboardStatisticFilterType{
	DashboardStatisticFilterTypeNetworkID,
	DashboardStatisticFilterTypePurchaseType,
	DashboardStatisticFilterTypeIsManual,
}

var validFilters = map[DashboardStatisticFilterType][]StatisticType{
	DashboardStatisticFilterTypeNetworkID: {
		StatisticTypeDailySyncCount, StatisticTypeSyncSuccessRate, StatisticTypeDailySyncRecords,
		StatisticTypeDailyOrderCount, StatisticTypeDailyRevenue, StatisticTypeTotalRevenue,
	},
	DashboardStatisticFilterTypePurchaseType: {
		StatisticTypeDailyOrderCount, StatisticTypeDailyRevenue, StatisticTypeTotalRevenue,
	},
	DashboardStatisticFilterTypeIsManual: {
		StatisticTypeDailySyncCount, StatisticTypeSyncSuccessRate, StatisticTypeDailySyncRecords,
	},
}

type DashboardStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type DashboardStatisticRequest struct {
	UserID    string                        `json:"-"`
	Filters   []*types.CommonFilter         `json:"filters"`
	DataItems []*DashboardStatisticDataItem `json:"data_items"`
}

func (f *DashboardStatisticRequest) GetFilters(statisticType StatisticType) *DashboardStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	result := DashboardStatisticRequest{UserID: f.UserID}
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[DashboardStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause based on provided filters, with custom handling
// for is_manual which maps onto the presence of a schedule reference.
func (f *DashboardStatisticRequest) Build(builder clause.Builder) {
	if len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		switch filter.Field {
		case string(DashboardStatisticFilterTypeIsManual):
			if len(filter.Values) > 0 && fmt.Sprint(filter.Values[0]) == "true" {
				builder.WriteString("sync_schedule_id IS NULL")
			} else {
				builder.WriteString("sync_schedule_id IS NOT NULL")
			}
		default:
			filter.Build(builder)
		}
	}
}

type DashboardStatisticResponseDataItem struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Value2 int64  `json:"value2,omitempty"`
	Value3 int64  `json:"value3,omitempty"`
}

type DashboardStatisticResponse struct {
	DataItems map[StatisticType][]DashboardStatisticResponseDataItem `json:"data_items"`
}

// Service provides statistics operations
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailySyncCount(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SyncLog{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("user_id = ?", request.UserID).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailySyncCount)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getSyncSuccessRate reports, per day, the completed share of finished runs as a
// percentage scaled by 100 (two decimal places), plus total and completed counts.
func (s *Service) getSyncSuccessRate(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SyncLog{}).TableName()).
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date,
CASE WHEN count(*) = 0 THEN 0
     ELSE CAST(ROUND(count(*) FILTER (WHERE status = 'completed') * 100.0 / count(*), 2) * 100 AS INTEGER)
END as value,
count(*) as value2,
count(*) FILTER (WHERE status = 'completed') as value3`).
		Where("user_id = ?", request.UserID).
		Where("status IN ?", []types.SyncLogStatus{types.SyncLogStatusCompleted, types.SyncLogStatusFailed}).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeSyncSuccessRate)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailySyncRecords(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SyncLog{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, sum(campaigns_count + coupons_count + purchases_count) as value").
		Where("user_id = ?", request.UserID).
		Where("status = ?", types.SyncLogStatusCompleted).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailySyncRecords)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyOrderCount(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Purchase{}).TableName()).
		Select("TO_CHAR(order_date, 'YYYY-MM-DD') as date, count(*) as value").
		Where("user_id = ?", request.UserID).
		Where("status IN ?", types.CountablePurchaseStatuses).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyOrderCount)}}).
		Group("TO_CHAR(order_date, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Purchase{}).TableName()).
		Select("TO_CHAR(order_date, 'YYYY-MM-DD') as date, sum(revenue) as value, sum(commission) as value2, sum(order_value) as value3").
		Where("user_id = ?", request.UserID).
		Where("status IN ?", types.CountablePurchaseStatuses).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyRevenue)}}).
		Group("TO_CHAR(order_date, 'YYYY-MM-DD')").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTotalRevenue builds a running revenue total over the full purchase history,
// filling days with no orders from the previous value.
func (s *Service) getTotalRevenue(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(order_date)) as min_date, MAX(DATE(order_date)) as max_date
    FROM purchases
    WHERE user_id = ?
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
revenue_date AS (
    SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, COALESCE(SUM(p.revenue), 0) as value
    FROM distinct_dates d
    LEFT JOIN purchases p
      ON TO_CHAR(p.order_date, 'YYYY-MM-DD') = TO_CHAR(d.date, 'YYYY-MM-DD')
     AND p.user_id = ?
     AND p.status IN ?
    GROUP BY d.date
)
SELECT d.date as date, SUM(s.value) as value
FROM revenue_date d
LEFT JOIN revenue_date s ON s.date <= d.date
GROUP BY d.date
ORDER BY d.date DESC
`, request.UserID, request.UserID, types.CountablePurchaseStatuses).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalActiveSubscriptions(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Select("count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeTotalActiveSubscriptions)}}).
		Where("status IN ?", []types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusTrialing}).
		Where("ends_at IS NULL OR ends_at >= ?", time.Now())
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDashboardStatistic(ctx context.Context, request *DashboardStatisticRequest, dataItem *DashboardStatisticDataItem) ([]DashboardStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailySyncCount:
		return s.getDailySyncCount(ctx, request)
	case StatisticTypeSyncSuccessRate:
		return s.getSyncSuccessRate(ctx, request)
	case StatisticTypeDailySyncRecords:
		return s.getDailySyncRecords(ctx, request)
	case StatisticTypeDailyOrderCount:
		return s.getDailyOrderCount(ctx, request)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, request)
	case StatisticTypeTotalActiveSubscriptions:
		return s.getTotalActiveSubscriptions(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

func (s *Service) GetDashboardStatistic(ctx context.Context, request *DashboardStatisticRequest) (*DashboardStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []DashboardStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DashboardStatisticDataItem) {
			defer wg.Done()
			// check filter applicability
			for _, filter := range request.Filters {
				ft := DashboardStatisticFilterType(filter.Field)
				if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], di.ID) {
					resChan <- &lo.Entry[StatisticType, []DashboardStatisticResponseDataItem]{Key: di.ID, Value: nil}
					return
				}
			}
			res, err := s.getDashboardStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []DashboardStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]DashboardStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &DashboardStatisticResponse{DataItems: results}, nil
}
