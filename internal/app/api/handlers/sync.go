package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/planlimit"
	syncsvc "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/sync"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/response"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"

	"github.com/gin-gonic/gin"
)

type SyncNetworkRequest struct {
	UserID   string     `json:"user_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	SyncType string     `json:"sync_type"`
}

// @Summary      Sync Network
// @Description  Runs a data sync for one network, subject to the user's plan limits.
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Param        id      path  string             true "Network ID"
// @Param        request body  SyncNetworkRequest true "Sync request"
// @Success      200  {object}  handlers.RespSyncNetwork
// @Router       /api/v1/networks/{id}/sync [post]
func ApiSyncNetwork(svc *syncsvc.Service, gate *planlimit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncNetworkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		if err := gate.AssertCanSync(c.Request.Context(), req.UserID, time.Now()); err != nil {
			c.JSON(http.StatusOK, limitError(err))
			return
		}
		res := svc.SyncNetwork(c.Request.Context(), c.Param("id"), req.UserID, &syncsvc.Request{
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
			SyncType: types.SyncType(req.SyncType).Normalize(),
		})
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type SyncMultipleRequest struct {
	UserID     string     `json:"user_id"`
	NetworkIDs []string   `json:"network_ids"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	SyncType   string     `json:"sync_type"`
}

// @Summary      Sync Multiple Networks
// @Description  Runs a data sync across several networks. One failing network does not abort the rest.
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Param        request body SyncMultipleRequest true "Multi-network sync request"
// @Success      200  {object}  handlers.RespSyncMulti
// @Router       /api/v1/networks/sync [post]
func ApiSyncMultipleNetworks(svc *syncsvc.Service, gate *planlimit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncMultipleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" || len(req.NetworkIDs) == 0 {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id or network_ids"))
			return
		}
		if err := gate.AssertCanSync(c.Request.Context(), req.UserID, time.Now()); err != nil {
			c.JSON(http.StatusOK, limitError(err))
			return
		}
		res := svc.SyncMultipleNetworks(c.Request.Context(), req.NetworkIDs, req.UserID, &syncsvc.Request{
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
			SyncType: types.SyncType(req.SyncType).Normalize(),
		})
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Test Network Connection
// @Description  Probes the user's stored credentials for a network.
// @Tags         Sync
// @Produce      json
// @Param        id      path  string true "Network ID"
// @Param        user_id query string true "User ID"
// @Success      200  {object}  handlers.RespConnectionTest
// @Router       /api/v1/networks/{id}/test_connection [get]
func ApiTestConnection(svc *syncsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		res, err := svc.TestConnection(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Run Due Schedules (Admin)
// @Description  Claims and executes every sync schedule that is due. Invoked by the external cron trigger.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespScheduleRun
// @Router       /api/v1/admin/schedules/run_due [post]
func ApiRunDueSchedules(svc *syncsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcomes, err := svc.RunDueSchedules(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(outcomes))
	}
}

// @Summary      Reset Daily Schedule Counters (Admin)
// @Description  Zeroes runs_today on all schedules. Invoked by the external midnight cron trigger.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespResetCounters
// @Router       /api/v1/admin/schedules/reset_daily [post]
func ApiResetDailyCounters(svc *syncsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.ResetDailyCounters(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int64{"reset": n}))
	}
}

func limitError(err error) *response.APIResponse[any] {
	var limitErr *planlimit.LimitExceededError
	switch {
	case errors.As(err, &limitErr),
		errors.Is(err, planlimit.ErrNoSubscription),
		errors.Is(err, planlimit.ErrSubscriptionInactive),
		errors.Is(err, planlimit.ErrSyncWindowClosed):
		return response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error())
	default:
		return response.ErrorT[any](response.APIResponseCodeError, err.Error())
	}
}

func RegisterSyncRoutes(r gin.IRouter, svc *syncsvc.Service, gate *planlimit.Service) {
	r.POST("/networks/sync", ApiSyncMultipleNetworks(svc, gate))
	r.POST("/networks/:id/sync", ApiSyncNetwork(svc, gate))
	r.GET("/networks/:id/test_connection", ApiTestConnection(svc))
}

func RegisterAdminScheduleRoutes(r gin.IRouter, svc *syncsvc.Service) {
	r.POST("/schedules/run_due", ApiRunDueSchedules(svc))
	r.POST("/schedules/reset_daily", ApiResetDailyCounters(svc))
}
