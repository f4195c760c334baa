package types

import "time"

// Status is the derived display status of a card. It is never stored.
type Status string

// Card statuses, highest precedence first.
const (
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
	StatusDueSoon    Status = "due_soon"
	StatusInProgress Status = "in_progress"
	StatusDefault    Status = "default"
)

// DeriveStatus computes a card status from its dates and completion flag.
//
// Completed wins over everything. A due date in the past is overdue; a due
// date within dueSoonDays of now is due soon. A start date at or before now
// with no due date, or a due date not yet passed, is in progress.
func DeriveStatus(due, start *time.Time, completed bool, now time.Time, dueSoonDays int) Status {
	if completed {
		return StatusCompleted
	}
	if due != nil {
		if due.Before(now) {
			return StatusOverdue
		}
		if due.Sub(now) <= time.Duration(dueSoonDays)*24*time.Hour {
			return StatusDueSoon
		}
	}
	if start != nil && !start.After(now) && (due == nil || !due.Before(now)) {
		return StatusInProgress
	}
	return StatusDefault
}
