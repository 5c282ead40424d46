package handlers

import (
	"errors"
	"net/http"

	mw "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/api/middleware"
	subsvc "github.com/code-root/AdvancedCouponSystem-sub002/internal/app/service/subscription"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateSubscriptionRequest struct {
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
}

// @Summary      Create Subscription (Admin)
// @Description  Subscribes a user to a plan, force-cancelling any prior subscription.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body CreateSubscriptionRequest true "Create subscription request"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions [post]
func ApiCreateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" || req.PlanID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id or plan_id"))
			return
		}
		sub, err := svc.CreateSubscription(c.Request.Context(), req.UserID, req.PlanID, subsvc.CreateOptions{
			ActorID: c.GetString(mw.AdminNameKey),
		})
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Cancel Subscription (Admin)
// @Description  Cancels a subscription, recording who cancelled it and why.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id      path  string                    true "Subscription ID"
// @Param        request body  CancelSubscriptionRequest true "Cancel request"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id}/cancel [post]
func ApiCancelSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.CancelSubscription(c.Request.Context(), c.Param("id"), req.Reason, c.GetString(mw.AdminNameKey))
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Resume Subscription (Admin)
// @Description  Resumes a cancelled subscription with a fresh billing period.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id}/resume [post]
func ApiResumeSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.ResumeSubscription(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

type ChangePlanRequest struct {
	PlanID    string `json:"plan_id"`
	Immediate bool   `json:"immediate"`
}

// @Summary      Change Subscription Plan (Admin)
// @Description  Switches a subscription to another plan, immediately or at period end.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id      path  string            true "Subscription ID"
// @Param        request body  ChangePlanRequest true "Change plan request"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id}/change_plan [post]
func ApiChangePlan(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.PlanID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing plan_id"))
			return
		}
		sub, err := svc.ChangePlan(c.Request.Context(), c.Param("id"), req.PlanID, req.Immediate)
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

type ExtendSubscriptionRequest struct {
	Days int `json:"days"`
}

// @Summary      Extend Subscription (Admin)
// @Description  Extends a subscription's end date by a number of days.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id      path  string                    true "Subscription ID"
// @Param        request body  ExtendSubscriptionRequest true "Extend request"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id}/extend [post]
func ApiExtendSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExtendSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Days <= 0 {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "days must be positive"))
			return
		}
		sub, err := svc.ExtendSubscription(c.Request.Context(), c.Param("id"), req.Days)
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Manually Activate Subscription (Admin)
// @Description  Activates a pending subscription on behalf of an admin.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id}/activate [post]
func ApiActivateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.ManualActivate(c.Request.Context(), c.Param("id"), c.GetString(mw.AdminNameKey))
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Get Subscription (Admin)
// @Description  Retrieves a subscription with its plan preloaded.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id} [get]
func ApiGetSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.GetSubscription(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, subscriptionError(err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

func subscriptionError(err error) *response.APIResponse[any] {
	if errors.Is(err, subsvc.ErrSubscriptionNotFound) || errors.Is(err, subsvc.ErrPlanNotFound) {
		return response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error())
	}
	return response.ErrorT[any](response.APIResponseCodeError, err.Error())
}

func RegisterAdminSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(svc))
	r.GET("/subscriptions/:id", ApiGetSubscription(svc))
	r.POST("/subscriptions/:id/cancel", ApiCancelSubscription(svc))
	r.POST("/subscriptions/:id/resume", ApiResumeSubscription(svc))
	r.POST("/subscriptions/:id/change_plan", ApiChangePlan(svc))
	r.POST("/subscriptions/:id/extend", ApiExtendSubscription(svc))
	r.POST("/subscriptions/:id/activate", ApiActivateSubscription(svc))
}
