package types

import "time"

// CardLabel links one card to one label of the same project. It is
// archived independently of both endpoints, so detaching a label from a
// card keeps both.
type CardLabel struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CardID    string    `json:"card_id"`
	LabelID   string    `json:"label_id"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
