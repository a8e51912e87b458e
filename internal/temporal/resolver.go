package temporal

import "time"

// Strategy is one stage of the resolution cascade
type Strategy interface {
	Source() Source
	Attempt(text string, now time.Time) (Resolution, bool)
}

// Resolver tries its strategies in order; the first success wins.
type Resolver struct {
	strategies []Strategy
}

// New returns the standard cascade: explicit Chinese dates, explicit English
// dates, the bilingual phrase search, then the generic parser.
func New() *Resolver {
	return NewWith(explicitZh{}, explicitEn{}, phraseSearch{}, newGenericParser())
}

// NewWith builds a resolver over a custom cascade.
func NewWith(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve finds the moment text refers to, relative to now. The text should
// already be normalized. ok is false when no strategy matched.
func (r *Resolver) Resolve(text string, onlyDate bool, now time.Time) (Resolution, bool) {
	if text == "" {
		return Resolution{}, false
	}
	now = now.Truncate(time.Second)
	for _, s := range r.strategies {
		res, ok := s.Attempt(text, now)
		if !ok {
			continue
		}
		if onlyDate {
			res.Precision = DateOnly
		}
		return res, true
	}
	return Resolution{}, false
}

var std = New()

// Resolve runs the standard cascade.
func Resolve(text string, onlyDate bool, now time.Time) (Resolution, bool) {
	return std.Resolve(text, onlyDate, now)
}
