package services

import (
	"fmt"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/utils"
)

// Period is a reporting window that always ends now and includes all of today.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"  // last 7 days
	PeriodMonth Period = "month" // last 30 days
	PeriodYear  Period = "year"
)

// ParsePeriod validates s, falling back to def when s is empty.
func ParsePeriod(s string, def Period) (Period, error) {
	if s == "" {
		return def, nil
	}
	switch p := Period(s); p {
	case PeriodAll, PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown period %q", s))
}

// Since returns the first instant inside the period. ok is false for PeriodAll.
func (p Period) Since(now time.Time) (start time.Time, ok bool) {
	today := utils.StartOfDay(now)
	switch p {
	case PeriodToday:
		return today, true
	case PeriodWeek:
		return today.AddDate(0, 0, -7), true
	case PeriodMonth:
		return today.AddDate(0, 0, -30), true
	case PeriodYear:
		return today.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}
