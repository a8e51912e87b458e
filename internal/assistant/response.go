package assistant

import (
	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/executor"
)

// isoLayout matches a naive ISO 8601 timestamp.
const isoLayout = "2006-01-02T15:04:05"

// Response is the JSON payload of the pipeline routes. Exactly one of the
// embedded parts is set, matching the action kind.
type Response struct {
	Transcription string          `json:"transcription"`
	Category      domain.Category `json:"category"`
	CategoryID    int             `json:"category_id"`
	IsQuery       bool            `json:"is_query"`
	NeedConfirm   bool            `json:"need_confirm"`
	Language      string          `json:"language"`
	Probability   float64         `json:"probability"`

	*Created
	*Queried
	*DeleteRequested
}

type Created struct {
	Time    string `json:"time"`
	ISOTime string `json:"iso_time"`
	MemoID  int64  `json:"memo_id,omitempty"`
}

type Queried struct {
	QueryDate string        `json:"query_date"`
	Tasks     []domain.Task `json:"tasks"`
}

type DeleteRequested struct {
	PendingDelete PendingDelete `json:"pending_delete"`
	ConfirmToken  string        `json:"confirm_token,omitempty"`
}

// PendingDelete is the deletion filter shown to the user for confirmation.
type PendingDelete struct {
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Keyword   *string         `json:"keyword"`
	Category  domain.Category `json:"category"`
}

// NewResponse renders an analysis and its execution outcome.
func NewResponse(a Analysis, out executor.Outcome) Response {
	act := a.Action
	r := Response{
		Transcription: a.Utterance.Normalized,
		Category:      act.Category,
		NeedConfirm:   act.NeedConfirm,
		Language:      a.Utterance.Language,
		Probability:   a.Classification.Probability,
	}

	switch act.Kind {
	case domain.ActionCreate:
		r.CategoryID = act.Create.CategoryID
		r.Created = &Created{
			Time:    act.Create.Timestamp.Format(domain.TimestampLayout),
			ISOTime: act.Create.Timestamp.Format(isoLayout),
			MemoID:  out.MemoID,
		}
	case domain.ActionQuery:
		r.IsQuery = true
		tasks := out.Tasks
		if tasks == nil {
			tasks = []domain.Task{}
		}
		r.Queried = &Queried{
			QueryDate: act.Query.TargetDate.Format(domain.DateLayout),
			Tasks:     tasks,
		}
	case domain.ActionDelete:
		d := act.Delete
		r.DeleteRequested = &DeleteRequested{
			PendingDelete: PendingDelete{
				StartTime: d.StartTime.Format(domain.TimestampLayout),
				EndTime:   d.EndTime.Format(domain.TimestampLayout),
				Keyword:   d.Keyword,
				Category:  d.Category,
			},
			ConfirmToken: out.ConfirmToken,
		}
	}
	return r
}
