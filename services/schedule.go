package services

import (
	"math"
	"time"

	"paystream/models"
	"paystream/types"
)

// Schedule display states.
const (
	ScheduleStateDue       = "due"
	ScheduleStateUpcoming  = "upcoming"
	ScheduleStateScheduled = "scheduled"
)

// upcomingWindowDays is the display window for the "upcoming" state.
const upcomingWindowDays = 7

// PaymentInterval maps a cadence string to its fixed interval. The
// monthly interval is a flat 30 days, not calendar-month aware; real
// payroll calendars would need month arithmetic here.
func PaymentInterval(schedule string) (time.Duration, error) {
	switch schedule {
	case models.ScheduleWeekly:
		return 7 * 24 * time.Hour, nil
	case models.ScheduleBiweekly:
		return 14 * 24 * time.Hour, nil
	case models.ScheduleMonthly:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, &types.InvalidScheduleError{Schedule: schedule}
	}
}

// NextDueDate computes when the next recurring payment falls. The
// caller resolves lastCompleted to the latest completed payment date,
// or the company's creation date when no payment has completed yet.
func NextDueDate(schedule string, lastCompleted time.Time) (time.Time, error) {
	interval, err := PaymentInterval(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return lastCompleted.Add(interval), nil
}

// IsDue reports whether the next payment date has been reached. Once
// true it stays true until a new completed payment advances
// lastCompleted.
func IsDue(now time.Time, schedule string, lastCompleted time.Time) (bool, error) {
	next, err := NextDueDate(schedule, lastCompleted)
	if err != nil {
		return false, err
	}
	return !now.Before(next), nil
}

// ScheduleState classifies the cycle for display: due when the date
// has passed, upcoming within seven days (days until rounded up),
// scheduled otherwise.
func ScheduleState(now time.Time, schedule string, lastCompleted time.Time) (string, error) {
	next, err := NextDueDate(schedule, lastCompleted)
	if err != nil {
		return "", err
	}
	if !now.Before(next) {
		return ScheduleStateDue, nil
	}

	daysUntil := int(math.Ceil(next.Sub(now).Hours() / 24))
	if daysUntil <= upcomingWindowDays {
		return ScheduleStateUpcoming, nil
	}
	return ScheduleStateScheduled, nil
}
