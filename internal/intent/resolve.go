// Package intent turns a classified utterance into the action it asks for.
package intent

import (
	"time"

	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/temporal"
)

// DefaultThreshold is the minimum classifier probability for a create label.
const DefaultThreshold = 0.5

// AllTime returns the window a deletion covers when no date was spoken.
func AllTime(loc *time.Location) (time.Time, time.Time) {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, loc), time.Date(2100, 12, 31, 23, 59, 59, 0, loc)
}

// EffectiveCategory applies the confidence policy to a classifier label.
// Unknown labels, and create labels below threshold, become Others. Query
// and delete labels pass through at any probability.
func EffectiveCategory(label domain.Category, probability, threshold float64) domain.Category {
	switch {
	case !label.Known():
		return domain.Others
	case label.IsDelete() || label.IsQuery():
		return label
	case probability < threshold:
		return domain.Others
	}
	return label
}

// Input carries everything the resolver needs for one utterance.
type Input struct {
	Utterance domain.Utterance
	Category  domain.Category
	// Temporal and HasTime come from temporal.Resolve.
	Temporal temporal.Resolution
	HasTime  bool
	Title    string
	Now      time.Time
}

// ResolveAction builds the action for a classified utterance. It never
// fails: a missing date falls back to the reference time, and a missing
// title to the utterance itself where a filter is still needed.
func ResolveAction(in Input) domain.Action {
	switch {
	case in.Category.IsDelete():
		return resolveDelete(in)
	case in.Category.IsQuery():
		return resolveQuery(in)
	default:
		return resolveCreate(in)
	}
}

func resolveDelete(in Input) domain.Action {
	del := &domain.DeleteTasks{Category: in.Category}

	if in.HasTime {
		day := in.Temporal.Date()
		del.StartTime = day
		del.EndTime = endOfDay(day)
	} else {
		del.StartTime, del.EndTime = AllTime(in.Now.Location())
	}

	// A dated deletion without a title takes the whole day. Without a date
	// the keyword is the only filter, so it falls back to the utterance.
	if in.Category == domain.DeleteSpecific {
		keyword := in.Title
		if keyword == "" && !in.HasTime {
			keyword = utteranceText(in.Utterance)
		}
		if keyword != "" {
			del.Keyword = &keyword
		}
	}

	return domain.Action{
		Kind:        domain.ActionDelete,
		Category:    in.Category,
		NeedConfirm: true,
		Delete:      del,
	}
}

func resolveQuery(in Input) domain.Action {
	q := &domain.QueryTasks{}
	today := startOfDay(in.Now)

	switch in.Category {
	case domain.QueryTomorrow:
		q.TargetDate = today.AddDate(0, 0, 1)
	case domain.QueryCustom:
		q.IsCustom = true
		q.TargetDate = today
		if in.HasTime {
			q.TargetDate = in.Temporal.Date()
		}
	default:
		q.TargetDate = today
	}

	return domain.Action{
		Kind:        domain.ActionQuery,
		Category:    in.Category,
		NeedConfirm: true,
		Query:       q,
	}
}

func resolveCreate(in Input) domain.Action {
	category := in.Category
	if !category.IsCreate() {
		category = domain.Others
	}

	ts := in.Now
	if in.HasTime {
		ts = in.Temporal.Time
	}

	text := in.Title
	if text == "" {
		text = utteranceText(in.Utterance)
	}

	return domain.Action{
		Kind:     domain.ActionCreate,
		Category: category,
		Create: &domain.CreateMemo{
			Title:      text,
			CategoryID: domain.CategoryID(category),
			Timestamp:  ts,
		},
	}
}

func utteranceText(u domain.Utterance) string {
	if u.Normalized != "" {
		return u.Normalized
	}
	return u.Raw
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// DayWindow returns [00:00:00, 23:59:59] of the day containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	return startOfDay(t), endOfDay(t)
}
