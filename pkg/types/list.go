package types

import "time"

// List is an ordered column of cards inside one project. A list never
// moves to another project.
type List struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewList holds the fields accepted by ListStore.Create.
type NewList struct {
	ProjectID string
	Title     string
	Index     *int
}

// Validate checks the required fields.
func (l NewList) Validate() error {
	if err := requireText("project id", l.ProjectID); err != nil {
		return err
	}
	return requireText("title", l.Title)
}
