package models

import (
	"errors"
	"time"
)

// Display statuses consumed by the UI and list filters. These strings are a
// contract surface and must not change without a coordinated UI update.
const (
	DisplayOverdue    = "Overdue"
	DisplayDue        = "Due"
	DisplayUrgent     = "Urgent"
	DisplayActive     = "Active"
	DisplayForReview  = "For Review"
	DisplayCompleted  = "Completed"
	DisplayTerminated = "Terminated"
	DisplayVoid       = "Void"
)

// DefaultUrgentWindowDays is the fallback urgent window when none is configured.
const DefaultUrgentWindowDays = 5

// ErrInvalidDeadline is returned when a pending docket has a missing deadline.
// Guessing a docket's urgency is worse than refusing, so the resolver never defaults.
var ErrInvalidDeadline = errors.New("docket deadline is missing or invalid")

// ErrUnknownStatus is returned when the stored lifecycle value is outside the
// closed set of raw statuses.
var ErrUnknownStatus = errors.New("unknown docket status")

// ResolveStatus maps a docket's deadline and raw stored status to the display
// status used for dashboards, filters and reminder eligibility. Terminal raw
// statuses pass through regardless of the deadline; pending dockets derive their
// status from the whole-day distance to the deadline:
//
//	< 0 days               -> Overdue
//	== 0 days              -> Due
//	1..urgentWindowDays    -> Urgent
//	> urgentWindowDays     -> Active
//
// Pure and safe for concurrent use.
func ResolveStatus(today, deadline time.Time, raw string, urgentWindowDays int) (string, error) {
	switch raw {
	case StatusForReview:
		return DisplayForReview, nil
	case StatusCompleted:
		return DisplayCompleted, nil
	case StatusTerminated:
		return DisplayTerminated, nil
	case StatusVoid:
		return DisplayVoid, nil
	case "", StatusPending:
		// derived below
	default:
		return "", ErrUnknownStatus
	}

	if deadline.IsZero() {
		return "", ErrInvalidDeadline
	}
	if urgentWindowDays <= 0 {
		urgentWindowDays = DefaultUrgentWindowDays
	}

	days := DaysBetween(today, deadline)
	switch {
	case days < 0:
		return DisplayOverdue, nil
	case days == 0:
		return DisplayDue, nil
	case days <= urgentWindowDays:
		return DisplayUrgent, nil
	default:
		return DisplayActive, nil
	}
}

// DaysBetween returns the whole calendar days from one date to the other,
// negative when to precedes from. Both sides are reduced to their civil date
// first so time-of-day and DST transitions never influence the count.
func DaysBetween(from, to time.Time) int {
	return int(midnightUTC(to).Sub(midnightUTC(from)) / (24 * time.Hour))
}

// midnightUTC rebuilds the civil date in UTC, where every day is exactly 24h.
func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
