package types

import (
	"context"
	"time"
)

// Board defines the interface for backend-agnostic kanban storage.
// Callers attach to a backend, work through the entity stores and detach
// when done. Every position-shifting or cascading call runs in a single
// transaction: it either applies completely or not at all.
type Board interface {
	// Attach connects the Board to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	Projects() ProjectStore
	Lists() ListStore
	Labels() LabelStore
	Cards() CardStore
	CardLabels() CardLabelStore
	Subtasks() SubtaskStore

	// ProjectView assembles the project hierarchy with derived card status.
	ProjectView(ctx context.Context, projectID string) (*ProjectView, error)

	// Overview returns one ProjectView per active project in order.
	Overview(ctx context.Context) ([]*ProjectView, error)

	// Export writes every table to JSONL files in dir.
	Export(ctx context.Context, dir string) error

	// Import replaces the stored data with the JSONL files in dir.
	Import(ctx context.Context, dir string) error

	// Verify checks ordering and denormalization invariants and returns
	// every violation found.
	Verify(ctx context.Context) ([]Violation, error)
}

// ProjectStore manages projects.
type ProjectStore interface {
	Create(ctx context.Context, p NewProject) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, includeArchived bool) ([]*Project, error)
	Update(ctx context.Context, id string, u ProjectUpdate) (*Project, error)
	Move(ctx context.Context, id string, index int) (*Project, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ListStore manages the lists of a project.
type ListStore interface {
	// Create fails with ErrLimitExceeded when the project already holds
	// max_lists active lists.
	Create(ctx context.Context, l NewList) (*List, error)
	Get(ctx context.Context, id string) (*List, error)
	ByProject(ctx context.Context, projectID string, includeArchived bool) ([]*List, error)
	Update(ctx context.Context, id, title string) (*List, error)
	Move(ctx context.Context, id string, index int) (*List, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// LabelStore manages the labels of a project.
type LabelStore interface {
	Create(ctx context.Context, l NewLabel) (*Label, error)
	Get(ctx context.Context, id string) (*Label, error)
	ByProject(ctx context.Context, projectID string, includeArchived bool) ([]*Label, error)
	Update(ctx context.Context, id string, u LabelUpdate) (*Label, error)
	Move(ctx context.Context, id string, index int) (*Label, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CardStore manages the cards of a list.
type CardStore interface {
	Create(ctx context.Context, c NewCard) (*Card, error)
	Get(ctx context.Context, id string) (*Card, error)
	ByList(ctx context.Context, listID string, includeArchived bool) ([]*Card, error)
	Update(ctx context.Context, id string, u CardUpdate) (*Card, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*Card, error)
	SetImportant(ctx context.Context, id string, important bool) (*Card, error)

	// Move places the card at index in listID. The list must belong to the
	// card's project.
	Move(ctx context.Context, id, listID string, index int) (*Card, error)

	// MoveAdjacent moves the card delta lists to the left (negative) or
	// right (positive) and appends it there.
	MoveAdjacent(ctx context.Context, id string, delta int) (*Card, error)

	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	// DueReminders returns active, incomplete cards whose reminder time is
	// at or before now.
	DueReminders(ctx context.Context, now time.Time) ([]*Card, error)
}

// CardLabelStore manages card-label associations.
type CardLabelStore interface {
	// Attach links a label to a card. An active pair fails with
	// ErrDuplicateAssociation; an archived pair is restored.
	Attach(ctx context.Context, cardID, labelID string) (*CardLabel, error)

	// Detach archives the association between the card and the label.
	Detach(ctx context.Context, cardID, labelID string) error

	Get(ctx context.Context, id string) (*CardLabel, error)
	ByCard(ctx context.Context, cardID string, includeArchived bool) ([]*CardLabel, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// SubtaskStore manages the checklist of a card.
type SubtaskStore interface {
	Create(ctx context.Context, s NewSubtask) (*Subtask, error)
	Get(ctx context.Context, id string) (*Subtask, error)
	ByCard(ctx context.Context, cardID string, includeArchived bool) ([]*Subtask, error)
	Update(ctx context.Context, id, value string) (*Subtask, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*Subtask, error)
	Move(ctx context.Context, id string, index int) (*Subtask, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
