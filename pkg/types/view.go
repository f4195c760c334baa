package types

// ProjectView is the hierarchical read model handed to the UI.
type ProjectView struct {
	Project *Project    `json:"project,omitempty"`
	Labels  []*Label    `json:"labels,omitempty"`
	Lists   []*ListView `json:"lists,omitempty"`
}

// ListView is a list with its visible cards in position order.
type ListView struct {
	List  *List       `json:"list,omitempty"`
	Cards []*CardView `json:"cards,omitempty"`
}

// CardView is a card with its visible labels and subtasks and the status
// derived at read time.
type CardView struct {
	Card          *Card      `json:"card,omitempty"`
	Status        Status     `json:"status"`
	Labels        []*Label   `json:"labels,omitempty"`
	Subtasks      []*Subtask `json:"subtasks,omitempty"`
	SubtasksDone  int        `json:"subtasks_done"`
	SubtasksTotal int        `json:"subtasks_total"`
}

// CardCount returns the number of visible cards across all lists.
func (v *ProjectView) CardCount() int {
	n := 0
	for _, l := range v.Lists {
		n += len(l.Cards)
	}
	return n
}

// Violation is one broken invariant reported by Board.Verify.
type Violation struct {
	Kind    Kind   `json:"kind"`
	ScopeID string `json:"scope_id,omitempty"` // Parent id of the affected scope; empty for projects.
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.ScopeID == "" {
		return string(v.Kind) + ": " + v.Message
	}
	return string(v.Kind) + " in " + v.ScopeID + ": " + v.Message
}
