package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/planlimit"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/usage"
	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/logctx"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/metrics"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/tool"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

var (
	ErrNetworkNotFound           = errors.New("network not found")
	ErrNoActiveConnection        = errors.New("no active connection for network")
	ErrNetworkServiceUnavailable = errors.New("network service unavailable")
	ErrAdapterFailure            = errors.New("adapter failure")
)

// Request is the caller-supplied scope of a sync run. Nil dates default to
// today; unknown sync types fall back to "all".
type Request struct {
	DateFrom   *time.Time     `json:"date_from"`
	DateTo     *time.Time     `json:"date_to"`
	SyncType   types.SyncType `json:"sync_type"`
	ScheduleID *string        `json:"-"`
}

// NetworkResult is the uniform per-network outcome returned to callers.
type NetworkResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	TotalRecords   int            `json:"total_records"`
	CampaignsCount int            `json:"campaigns_count"`
	CouponsCount   int            `json:"coupons_count"`
	PurchasesCount int            `json:"purchases_count"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	SyncLogID      string         `json:"sync_log_id,omitempty"`
}

// MultiResult aggregates several per-network runs. Partial success is a
// valid outcome, so Success is true even when individual networks failed.
type MultiResult struct {
	Success        bool                      `json:"success"`
	Results        map[string]*NetworkResult `json:"results"`
	TotalRecords   int                       `json:"total_records"`
	CampaignsCount int                       `json:"campaigns_count"`
	CouponsCount   int                       `json:"coupons_count"`
	PurchasesCount int                       `json:"purchases_count"`
}

// Service coordinates per-network synchronization runs.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	registry *Registry
	usage    *usage.Service
	gate     *planlimit.Service
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, registry *Registry, usageSvc *usage.Service, gate *planlimit.Service) *Service {
	return &Service{cfg: cfg, db: db, log: log, registry: registry, usage: usageSvc, gate: gate}
}

// SyncNetwork runs one network sync for a user. Failures are never fatal to
// the caller: any error is logged with the network id and converted into a
// failed result. Adapter internals are not leaked into the message.
func (s *Service) SyncNetwork(ctx context.Context, networkID, userID string, req *Request) *NetworkResult {
	res, err := s.syncNetwork(ctx, networkID, userID, req)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("sync failed",
			"network_id", networkID, "user_id", userID, "err", err)
		return &NetworkResult{Success: false, Message: userFacingMessage(err)}
	}
	return res
}

// SyncMultipleNetworks runs SyncNetwork for each id sequentially and
// accumulates totals across the networks that succeeded.
func (s *Service) SyncMultipleNetworks(ctx context.Context, networkIDs []string, userID string, req *Request) *MultiResult {
	multi := &MultiResult{Success: true, Results: make(map[string]*NetworkResult, len(networkIDs))}
	for _, id := range networkIDs {
		res := s.SyncNetwork(ctx, id, userID, req)
		multi.Results[id] = res
		if res.Success {
			multi.TotalRecords += res.TotalRecords
			multi.CampaignsCount += res.CampaignsCount
			multi.CouponsCount += res.CouponsCount
			multi.PurchasesCount += res.PurchasesCount
		}
	}
	return multi
}

// TestConnection probes a user's stored credentials for a network.
func (s *Service) TestConnection(ctx context.Context, networkID, userID string) (*ConnectionTestResult, error) {
	network, conn, adapter, err := s.resolve(ctx, networkID, userID)
	if err != nil {
		return nil, err
	}
	res, err := adapter.TestConnection(ctx, conn.CredentialMap())
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("connection test failed",
			"network", network.Name, "user_id", userID, "err", err)
		return &ConnectionTestResult{Success: false, Message: "connection test failed"}, nil
	}
	return res, nil
}

func (s *Service) syncNetwork(ctx context.Context, networkID, userID string, req *Request) (*NetworkResult, error) {
	network, conn, adapter, err := s.resolve(ctx, networkID, userID)
	if err != nil {
		return nil, err
	}

	acfg := resolveAdapterConfig(req)

	syncLog := &models.SyncLog{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		NetworkID: network.ID,
		SyncType:  acfg.SyncType,
		Status:    types.SyncLogStatusPending,
	}
	if req != nil {
		syncLog.SyncScheduleID = req.ScheduleID
	}
	if err := s.db.WithContext(ctx).Create(syncLog).Error; err != nil {
		return nil, fmt.Errorf("failed to create sync log: %w", err)
	}

	started := time.Now()
	syncLog.MarkProcessing(started)
	if err := s.saveLog(ctx, syncLog); err != nil {
		return nil, err
	}

	result, err := s.callAdapter(ctx, adapter, conn.CredentialMap(), acfg)
	if err != nil {
		s.failLog(ctx, syncLog, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrAdapterFailure, err)
	}
	if !result.Success {
		s.failLog(ctx, syncLog, result.Message)
		return &NetworkResult{Success: false, Message: result.Message, SyncLogID: syncLog.ID}, nil
	}

	counts, revenue, err := s.ingest(ctx, userID, network.ID, result.Records)
	if err != nil {
		s.failLog(ctx, syncLog, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrAdapterFailure, err)
	}

	finished := time.Now()
	syncLog.MarkCompleted(finished, counts.Campaigns, counts.Coupons, counts.Purchases)
	if err := s.saveLog(ctx, syncLog); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.NetworkConnection{}).
		Where("id = ?", conn.ID).Update("last_synced_at", finished).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("failed to stamp connection", "connection_id", conn.ID, "err", err)
	}

	if err := s.usage.Increment(ctx, userID, finished, usage.Deltas{
		Sync:    1,
		Orders:  int64(counts.Purchases),
		Revenue: revenue,
	}); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to record sync usage", "user_id", userID, "err", err)
	}

	metrics.ObserveBusinessProcess("sync", network.Name, finished.Sub(started))

	return &NetworkResult{
		Success:        true,
		Message:        "sync completed",
		TotalRecords:   syncLog.TotalRecords(),
		CampaignsCount: counts.Campaigns,
		CouponsCount:   counts.Coupons,
		PurchasesCount: counts.Purchases,
		Metadata:       result.Metadata,
		SyncLogID:      syncLog.ID,
	}, nil
}

func (s *Service) resolve(ctx context.Context, networkID, userID string) (*models.Network, *models.NetworkConnection, NetworkAdapter, error) {
	var network models.Network
	if err := s.db.WithContext(ctx).Where("id = ? AND active = ?", networkID, true).First(&network).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNetworkNotFound
		}
		return nil, nil, nil, err
	}

	var conn models.NetworkConnection
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND network_id = ? AND status = ?", userID, network.ID, types.ConnectionStatusActive).
		First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNoActiveConnection
		}
		return nil, nil, nil, err
	}

	adapter, ok := s.registry.Resolve(network.Name)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrNetworkServiceUnavailable, network.Name)
	}
	return &network, &conn, adapter, nil
}

// callAdapter shields the orchestrator from a panicking adapter.
func (s *Service) callAdapter(ctx context.Context, adapter NetworkAdapter, creds Credentials, acfg AdapterConfig) (result *AdapterResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("adapter panicked: %v", r)
		}
	}()
	return adapter.SyncData(ctx, creds, acfg)
}

type ingestCounts struct {
	Campaigns int
	Coupons   int
	Purchases int
}

// ingest upserts the adapter's records and returns counts plus the revenue
// sum of ingested purchases.
func (s *Service) ingest(ctx context.Context, userID, networkID string, recs Records) (ingestCounts, int64, error) {
	var counts ingestCounts
	var revenue int64

	upsertKey := []clause.Column{{Name: "user_id"}, {Name: "network_id"}, {Name: "external_id"}}

	for _, c := range recs.Campaigns {
		c.ID = ensureID(c.ID)
		c.UserID, c.NetworkID = userID, networkID
	}
	if len(recs.Campaigns) > 0 {
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   upsertKey,
			DoUpdates: clause.AssignmentColumns([]string{"name", "status", "track_url", "commission_rate", "payload", "updated_at"}),
		}).Create(recs.Campaigns).Error; err != nil {
			return counts, 0, fmt.Errorf("failed to upsert campaigns: %w", err)
		}
		counts.Campaigns = len(recs.Campaigns)
	}

	for _, c := range recs.Coupons {
		c.ID = ensureID(c.ID)
		c.UserID, c.NetworkID = userID, networkID
	}
	if len(recs.Coupons) > 0 {
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   upsertKey,
			DoUpdates: clause.AssignmentColumns([]string{"code", "description", "status", "usage_limit", "expires_at", "updated_at"}),
		}).Create(recs.Coupons).Error; err != nil {
			return counts, 0, fmt.Errorf("failed to upsert coupons: %w", err)
		}
		counts.Coupons = len(recs.Coupons)
	}

	for _, p := range recs.Purchases {
		p.ID = ensureID(p.ID)
		p.UserID, p.NetworkID = userID, networkID
		revenue += p.Revenue
	}
	if len(recs.Purchases) > 0 {
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   upsertKey,
			DoUpdates: clause.AssignmentColumns([]string{"order_value", "commission", "revenue", "quantity", "status", "updated_at"}),
		}).Create(recs.Purchases).Error; err != nil {
			return counts, 0, fmt.Errorf("failed to upsert purchases: %w", err)
		}
		counts.Purchases = len(recs.Purchases)
	}

	return counts, revenue, nil
}

func (s *Service) saveLog(ctx context.Context, l *models.SyncLog) error {
	if err := s.db.WithContext(ctx).Save(l).Error; err != nil {
		return fmt.Errorf("failed to save sync log: %w", err)
	}
	return nil
}

func (s *Service) failLog(ctx context.Context, l *models.SyncLog, msg string) {
	l.MarkFailed(time.Now(), msg)
	if err := s.db.WithContext(ctx).Save(l).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save failed sync log: %v", err)
	}
}

func resolveAdapterConfig(req *Request) AdapterConfig {
	now := time.Now()
	from, to := types.DateRangeToday.Bounds(now)
	acfg := AdapterConfig{DateFrom: from, DateTo: to, SyncType: types.SyncTypeAll}
	if req == nil {
		return acfg
	}
	if req.DateFrom != nil {
		acfg.DateFrom = *req.DateFrom
	}
	if req.DateTo != nil {
		acfg.DateTo = *req.DateTo
	}
	acfg.SyncType = req.SyncType.Normalize()
	return acfg
}

// userFacingMessage keeps adapter internals out of caller-visible output.
func userFacingMessage(err error) string {
	switch {
	case errors.Is(err, ErrNetworkNotFound),
		errors.Is(err, ErrNoActiveConnection),
		errors.Is(err, ErrNetworkServiceUnavailable):
		return err.Error()
	default:
		return "sync failed"
	}
}

func ensureID(id string) string {
	if id == "" {
		return tool.GenerateUUIDV7()
	}
	return id
}
