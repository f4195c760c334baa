package types

import "time"

// Subtask is a checklist entry of a card.
type Subtask struct {
	ID        string    `json:"id"`
	CardID    string    `json:"card_id"`
	ProjectID string    `json:"project_id"`
	Value     string    `json:"value"`
	Completed bool      `json:"completed"`
	Position  int       `json:"position"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubtask holds the fields accepted by SubtaskStore.Create.
type NewSubtask struct {
	CardID string
	Value  string
	Index  *int
}

// Validate checks the required fields.
func (s NewSubtask) Validate() error {
	if err := requireText("card id", s.CardID); err != nil {
		return err
	}
	return requireText("value", s.Value)
}
