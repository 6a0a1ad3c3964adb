package domain

// ViewMode names how the presentation layer should render a target.
type ViewMode string

const (
	ViewModeList   ViewMode = "list"
	ViewModeKanban ViewMode = "kanban"
	ViewModeForm   ViewMode = "form"
)

// TargetTask is the entity type of the task aggregate in action descriptors.
const TargetTask = "task"

// FilterClause is a single field comparison.
type FilterClause struct {
	Field    string
	Operator string
	Value    any
}

// ActionDescriptor is a request for the presentation layer to open a view.
// Defaults seeds fields of the next record created from that view.
type ActionDescriptor struct {
	Name      string
	Target    string
	ViewModes []ViewMode
	Filter    []FilterClause
	Defaults  map[string]any
}
