package types

import "time"

type BillingCycle string

const (
	BillingCycleMonthly      BillingCycle = "monthly"
	BillingCycleQuarterly    BillingCycle = "quarterly"
	BillingCycleSemiAnnually BillingCycle = "semi_annually"
	BillingCycleAnnually     BillingCycle = "annually"
)

// CalculateEndDate returns the end of one billing period starting at start.
// Unknown cycles fall back to one month.
func CalculateEndDate(start time.Time, cycle BillingCycle) time.Time {
	switch cycle {
	case BillingCycleQuarterly:
		return start.AddDate(0, 3, 0)
	case BillingCycleSemiAnnually:
		return start.AddDate(0, 6, 0)
	case BillingCycleAnnually:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}
