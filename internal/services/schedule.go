package services

import (
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

// ScheduleCheck is one evaluation of a recurrence rule. Now is always
// injected by the caller; this function never reads the wall clock.
type ScheduleCheck struct {
	Schedule     models.Schedule
	LastSurveyAt *time.Time
	Now          time.Time
}

// ShouldRunSchedule decides whether a new survey instance is due. It has
// no side effects; the caller creates the instance and records the new
// last-run timestamp when this returns true.
//
// Rules, in order:
//  1. Before StartsOn the schedule never fires.
//  2. A schedule that has never run fires on the first eligible check.
//  3. Weekly: at least 7 days elapsed since the last run and now falls
//     on the configured weekday (time.Weekday, Sunday=0).
//  4. Monthly: now's day-of-month matches and at least one calendar
//     month has elapsed since the last run.
func ShouldRunSchedule(c ScheduleCheck) bool {
	if c.Schedule.StartsOn != nil && c.Now.Before(*c.Schedule.StartsOn) {
		return false
	}
	if c.LastSurveyAt == nil {
		return true
	}
	last := *c.LastSurveyAt
	switch c.Schedule.Frequency {
	case models.FrequencyWeekly:
		return c.Now.Sub(last) >= 7*24*time.Hour && c.Now.Weekday() == c.Schedule.DayOfWeek
	case models.FrequencyMonthly:
		return c.Now.Day() == c.Schedule.DayOfMonth && monthIndex(c.Now) > monthIndex(last)
	default:
		return false
	}
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
