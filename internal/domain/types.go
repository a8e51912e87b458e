package domain

import "time"

// Wire formats shared by the API, the store and the CLI.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Memo is a stored reminder owned by a user
type Memo struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"-"`
	UserID    int64     `json:"userID"`
}

// Task is the read-only view of a memo returned by queries
type Task struct {
	ID        int64  `json:"id,omitempty"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
}

// AsTask formats a memo for the wire
func (m Memo) AsTask() Task {
	return Task{
		ID:        m.ID,
		Text:      m.Text,
		Category:  m.Category,
		Timestamp: m.Timestamp.Format(TimestampLayout),
	}
}

// Category is a classifier label
type Category string

const (
	Study          Category = "Study"
	Work           Category = "Work"
	Daily          Category = "Daily"
	DeleteSpecific Category = "Delete_Specific"
	DeleteAll      Category = "Delete_All"
	QueryToday     Category = "Query_Today"
	QueryTomorrow  Category = "Query_Tomorrow"
	QueryCustom    Category = "Query_Custom"
	Others         Category = "Others"
)

// Categories is the fixed label set, in classifier output order.
var Categories = []Category{
	Study, Work, Daily,
	DeleteSpecific, DeleteAll,
	QueryToday, QueryTomorrow, QueryCustom,
	Others,
}

// Known reports whether c belongs to the fixed label set.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// IsDelete reports whether c is a deletion command.
func (c Category) IsDelete() bool {
	return c == DeleteSpecific || c == DeleteAll
}

// IsQuery reports whether c is a query command.
func (c Category) IsQuery() bool {
	return c == QueryToday || c == QueryTomorrow || c == QueryCustom
}

// IsCreate reports whether c files a new memo.
func (c Category) IsCreate() bool {
	return c == Study || c == Work || c == Daily || c == Others
}

// CategoryID maps create labels to their stored id. Everything else,
// Others included, is 4.
func CategoryID(c Category) int {
	switch c {
	case Study:
		return 1
	case Work:
		return 2
	case Daily:
		return 3
	default:
		return 4
	}
}

// CategoryByID is the inverse of CategoryID for the create labels.
func CategoryByID(id int) Category {
	switch id {
	case 1:
		return Study
	case 2:
		return Work
	case 3:
		return Daily
	default:
		return Others
	}
}

// Utterance is a transcript after normalization
type Utterance struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Language   string `json:"language,omitempty"`
}
