package handlers

import (
	"net/http"

	"github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/statistics"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Get Dashboard Statistics
// @Description  Retrieves daily sync, order and revenue statistics for a user.
// @Tags         Statistics
// @Accept       json
// @Produce      json
// @Param        user_id path string true "User ID"
// @Param        request body statistics.DashboardStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespDashboardStatistic
// @Router       /api/v1/users/{user_id}/statistics [post]
func ApiGetDashboardStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DashboardStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		req.UserID = c.Param("user_id")
		if req.UserID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		res, err := svc.GetDashboardStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterStatisticsRoutes(r gin.IRouter, svc *statistics.Service) {
	r.POST("/users/:user_id/statistics", ApiGetDashboardStatistic(svc))
}
