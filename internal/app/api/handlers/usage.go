package handlers

import (
	"net/http"
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/planlimit"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/usage"
	"github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/response"
	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"

	"github.com/gin-gonic/gin"
)

type UsageResponse struct {
	Daily    *models.SyncUsage `json:"daily"`
	Monthly  *models.SyncUsage `json:"monthly"`
	Features *types.FeatureSet `json:"features,omitempty"`
}

// @Summary      Current Usage
// @Description  Returns the user's current daily and monthly usage windows and plan limits.
// @Tags         Usage
// @Produce      json
// @Param        user_id query string true "User ID"
// @Success      200  {object}  handlers.RespUsage
// @Router       /api/v1/usage [get]
func ApiGetUsage(svc *usage.Service, gate *planlimit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		daily, monthly, err := svc.CurrentWindows(c.Request.Context(), userID, time.Now())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		res := &UsageResponse{Daily: daily, Monthly: monthly}
		// Limits are informational here; a user without a usable
		// subscription still gets their raw windows back.
		if sub, err := gate.AssertSubscribed(c.Request.Context(), userID); err == nil && sub.Plan != nil {
			fs := sub.Plan.ResolvedFeatures()
			res.Features = &fs
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterUsageRoutes(r gin.IRouter, svc *usage.Service, gate *planlimit.Service) {
	r.GET("/usage", ApiGetUsage(svc, gate))
}
