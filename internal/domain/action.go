package domain

import "time"

// ActionKind tags the variant held by an Action
type ActionKind int

const (
	ActionCreate ActionKind = iota + 1
	ActionQuery
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionQuery:
		return "query"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Action is the resolved outcome of one utterance. Exactly one of Create,
// Query or Delete is set, matching Kind.
type Action struct {
	Kind        ActionKind
	Category    Category
	NeedConfirm bool

	Create *CreateMemo
	Query  *QueryTasks
	Delete *DeleteTasks
}

// CreateMemo files a new memo
type CreateMemo struct {
	Title      string
	CategoryID int
	Timestamp  time.Time
}

// QueryTasks reads one calendar day of memos
type QueryTasks struct {
	TargetDate time.Time
	IsCustom   bool
	Tasks      []Task
}

// DeleteTasks selects memos for removal. Keyword is nil when the window
// alone identifies the memos.
type DeleteTasks struct {
	StartTime time.Time
	EndTime   time.Time
	Keyword   *string
	Category  Category
}
