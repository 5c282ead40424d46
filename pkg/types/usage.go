package types

import "time"

type UsagePeriod string

const (
	UsagePeriodDaily   UsagePeriod = "daily"
	UsagePeriodMonthly UsagePeriod = "monthly"
)

// WindowBounds returns the inclusive window [start, end] containing ref.
// Daily windows cover the calendar day and monthly windows the calendar
// month, both in ref's location.
func (p UsagePeriod) WindowBounds(ref time.Time) (time.Time, time.Time) {
	switch p {
	case UsagePeriodMonthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		end := start.AddDate(0, 1, 0).Add(-time.Second)
		return start, end
	default:
		start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
		end := start.AddDate(0, 0, 1).Add(-time.Second)
		return start, end
	}
}

func (p UsagePeriod) Valid() bool {
	return p == UsagePeriodDaily || p == UsagePeriodMonthly
}
