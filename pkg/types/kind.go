package types

// Kind identifies an entity type for the lifecycle and position managers.
type Kind string

// Entity kinds.
const (
	KindProject   Kind = "project"
	KindList      Kind = "list"
	KindLabel     Kind = "label"
	KindCard      Kind = "card"
	KindCardLabel Kind = "card_label"
	KindSubtask   Kind = "subtask"
)

// Kinds lists every entity kind, parents before children.
var Kinds = []Kind{
	KindProject,
	KindList,
	KindLabel,
	KindCard,
	KindCardLabel,
	KindSubtask,
}

// Ref names a single entity.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID
}
