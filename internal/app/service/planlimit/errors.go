package planlimit

import (
	"errors"
	"fmt"

	types "github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
)

var (
	ErrNoSubscription       = errors.New("no subscription found")
	ErrSubscriptionInactive = errors.New("subscription is not active")
	ErrSyncWindowClosed     = errors.New("syncing is outside the plan's allowed time window")
)

// LimitScope names the plan cap that was hit.
type LimitScope string

const (
	LimitScopeNetworks    LimitScope = "networks"
	LimitScopeDailySync   LimitScope = "daily_sync"
	LimitScopeMonthlySync LimitScope = "monthly_sync"
	LimitScopeOrders      LimitScope = "orders"
	LimitScopeRevenue     LimitScope = "revenue"
)

// LimitExceededError reports a hit plan cap with a human-readable reason.
type LimitExceededError struct {
	Scope LimitScope
	Limit types.Limit
	Used  int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("plan limit exceeded: %s (used %d of %s)", e.Scope, e.Used, e.Limit)
}

// IsLimitExceeded reports whether err carries a LimitExceededError and
// returns it.
func IsLimitExceeded(err error) (*LimitExceededError, bool) {
	var le *LimitExceededError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
