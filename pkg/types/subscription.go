package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPending  SubscriptionStatus = "pending"
)

// Usable reports whether a subscription in this status grants access at t.
// trialing only counts while the trial has not ended yet.
func (s SubscriptionStatus) Usable(trialEndsAt *time.Time, t time.Time) bool {
	switch s {
	case SubscriptionStatusActive:
		return true
	case SubscriptionStatusTrialing:
		return trialEndsAt != nil && t.Before(*trialEndsAt)
	default:
		return false
	}
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCreate         SubscriptionChangeReason = "create"
	SubscriptionChangeReasonForceCancel    SubscriptionChangeReason = "forceCancel"
	SubscriptionChangeReasonCancel         SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonResume         SubscriptionChangeReason = "resume"
	SubscriptionChangeReasonPlanChange     SubscriptionChangeReason = "planChange"
	SubscriptionChangeReasonExtend         SubscriptionChangeReason = "extend"
	SubscriptionChangeReasonManualActivate SubscriptionChangeReason = "manualActivate"
)
