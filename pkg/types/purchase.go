package types

type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusApproved PurchaseStatus = "approved"
	PurchaseStatusRejected PurchaseStatus = "rejected"
	PurchaseStatusPaid     PurchaseStatus = "paid"
)

// CountablePurchaseStatuses are the statuses that feed order/revenue
// statistics. The plan gate's month-to-date caps are stricter and count
// approved rows only.
var CountablePurchaseStatuses = []PurchaseStatus{PurchaseStatusApproved, PurchaseStatusPaid}

type PurchaseType string

const (
	PurchaseTypeCoupon PurchaseType = "coupon"
	PurchaseTypeLink   PurchaseType = "link"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusUsed     CouponStatus = "used"
	CouponStatusDisabled CouponStatus = "disabled"
)
