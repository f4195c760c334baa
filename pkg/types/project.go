package types

import (
	"fmt"
	"strings"
	"time"
)

// Project is the top-level container. Projects are ordered among all
// projects of a board.
type Project struct {
	ID          string    `json:"id"`          // UUID v7, generated on creation.
	Title       string    `json:"title"`       // Required, non-empty.
	Description string    `json:"description"` // Optional.
	Position    int       `json:"position"`    // Slot among active projects.
	Archived    bool      `json:"archived"`    // Soft-deleted.
	CreatedAt   time.Time `json:"created_at"`  // Timestamp of creation.
	UpdatedAt   time.Time `json:"updated_at"`  // Timestamp of last modification.
}

// NewProject holds the fields accepted by ProjectStore.Create.
type NewProject struct {
	Title       string
	Description string

	// Index is the slot to insert at. Nil appends.
	Index *int
}

// Validate checks the required fields.
func (p NewProject) Validate() error {
	return requireText("title", p.Title)
}

// ProjectUpdate patches a project. Nil fields are left unchanged.
type ProjectUpdate struct {
	Title       *string
	Description *string
}

// Validate checks the fields being set.
func (u ProjectUpdate) Validate() error {
	if u.Title != nil {
		return requireText("title", *u.Title)
	}
	return nil
}

// requireText returns ErrValidation when value is blank.
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
	}
	return nil
}

// ValidateTitle rejects a blank title.
func ValidateTitle(title string) error {
	return requireText("title", title)
}

// ValidateValue rejects a blank subtask value.
func ValidateValue(value string) error {
	return requireText("value", value)
}
