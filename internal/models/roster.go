package models

import "time"

// ValidityPeriod is the inclusive date range during which a roster applies.
type ValidityPeriod struct {
	StartDate time.Time
	EndDate   time.Time
}

// ExpiredAt reports whether the period has lapsed by the given moment.
// The comparison is calendar-based: a roster is still valid on its end date.
func (p ValidityPeriod) ExpiredAt(now time.Time) bool {
	return truncateToDay(now).After(truncateToDay(p.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OnDutyRoster is the singleton record naming which pharmacies are on duty
// for the current validity period. It is updated in place, never appended;
// prior periods are not retained.
type OnDutyRoster struct {
	ID          int64
	Period      ValidityPeriod
	PharmacyIDs []int64
	UpdatedAt   time.Time
}
