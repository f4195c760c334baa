package types

import (
	"fmt"
	"time"
)

// Card is a work item inside a list. ProjectID is a copy of the owning
// list's project and is kept equal to it by the card store.
type Card struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Important   bool       `json:"important"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`

	// Reminder is how long before DueDate the reminder fires, in whole
	// seconds.
	Reminder *time.Duration `json:"reminder,omitempty"`

	Completed bool      `json:"completed"`
	Position  int       `json:"position"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status derives the display status of the card at now.
func (c *Card) Status(now time.Time, dueSoonDays int) Status {
	return DeriveStatus(c.DueDate, c.StartDate, c.Completed, now, dueSoonDays)
}

// ReminderAt returns the instant the reminder fires. ok is false when the
// card has no due date or no reminder.
func (c *Card) ReminderAt() (at time.Time, ok bool) {
	if c.DueDate == nil || c.Reminder == nil {
		return time.Time{}, false
	}
	return c.DueDate.Add(-*c.Reminder), true
}

// NewCard holds the fields accepted by CardStore.Create.
type NewCard struct {
	ListID string

	// ProjectID is optional. When set it must match the list's project.
	ProjectID string

	Title       string
	Description string
	Important   bool
	StartDate   *time.Time
	DueDate     *time.Time
	Reminder    *time.Duration
	Index       *int
}

// Validate checks the required fields.
func (c NewCard) Validate() error {
	if err := requireText("list id", c.ListID); err != nil {
		return err
	}
	if err := requireText("title", c.Title); err != nil {
		return err
	}
	return validateReminder(c.Reminder)
}

// CardUpdate patches a card. Nil fields are left unchanged; the Clear
// flags reset optional fields to absent.
type CardUpdate struct {
	Title       *string
	Description *string
	Important   *bool
	Completed   *bool
	StartDate   *time.Time
	DueDate     *time.Time
	Reminder    *time.Duration

	ClearStartDate bool
	ClearDueDate   bool
	ClearReminder  bool
}

// Validate checks the fields being set.
func (u CardUpdate) Validate() error {
	if u.Title != nil {
		if err := requireText("title", *u.Title); err != nil {
			return err
		}
	}
	return validateReminder(u.Reminder)
}

// Apply copies the set fields of u onto c.
func (u CardUpdate) Apply(c *Card) {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Important != nil {
		c.Important = *u.Important
	}
	if u.Completed != nil {
		c.Completed = *u.Completed
	}
	if u.StartDate != nil {
		t := *u.StartDate
		c.StartDate = &t
	}
	if u.DueDate != nil {
		t := *u.DueDate
		c.DueDate = &t
	}
	if u.Reminder != nil {
		d := *u.Reminder
		c.Reminder = &d
	}
	if u.ClearStartDate {
		c.StartDate = nil
	}
	if u.ClearDueDate {
		c.DueDate = nil
	}
	if u.ClearReminder {
		c.Reminder = nil
	}
}

func validateReminder(d *time.Duration) error {
	if d != nil && *d < 0 {
		return fmt.Errorf("%w: reminder must not be negative", ErrValidation)
	}
	if d != nil && *d%time.Second != 0 {
		return fmt.Errorf("%w: reminder must be a whole number of seconds", ErrValidation)
	}
	return nil
}
