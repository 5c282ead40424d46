package handlers

import (
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/statistics"
	syncsvc "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/sync"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespSubscription wraps a subscription in the standard envelope.
type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

// RespSyncNetwork wraps a single-network sync result in the standard envelope.
type RespSyncNetwork struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    syncsvc.NetworkResult    `json:"data"`
}

// RespSyncMulti wraps a multi-network sync result in the standard envelope.
type RespSyncMulti struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    syncsvc.MultiResult      `json:"data"`
}

// RespConnectionTest wraps a connection test result in the standard envelope.
type RespConnectionTest struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    syncsvc.ConnectionTestResult `json:"data"`
}

// RespScheduleRun wraps the outcome of a schedule sweep in the standard envelope.
type RespScheduleRun struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    []syncsvc.ScheduleRunOutcome `json:"data"`
}

// RespResetCounters wraps the reset counter in the standard envelope.
type RespResetCounters struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]int64         `json:"data"`
}

// RespUsage wraps the usage snapshot in the standard envelope.
type RespUsage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    UsageResponse            `json:"data"`
}

// RespDashboardStatistic wraps DashboardStatisticResponse in the standard envelope.
type RespDashboardStatistic struct {
	Code    response.APIResponseCode              `json:"code"`
	Message string                                `json:"message"`
	Data    statistics.DashboardStatisticResponse `json:"data"`
}
