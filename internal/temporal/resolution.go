// Package temporal resolves spoken date and time expressions in Chinese and
// English into concrete moments relative to a reference clock.
package temporal

import (
	"time"

	"github.com/pbaille/memo/internal/domain"
)

// Source names the strategy that produced a resolution
type Source string

const (
	ExplicitZh      Source = "explicit_zh"
	ExplicitEn      Source = "explicit_en"
	SearchBased     Source = "search_based"
	FallbackGeneric Source = "fallback_generic"
)

// Precision controls how a resolution is rendered
type Precision int

const (
	DateTime Precision = iota
	DateOnly
)

// Resolution is a resolved temporal expression. Values are never mutated
// after a strategy returns them.
type Resolution struct {
	Time            time.Time
	Precision       Precision
	Source          Source
	HadExplicitDate bool
	// Matched is the substring the strategy anchored on.
	Matched string
}

// Date returns the calendar day of the resolution at midnight.
func (r Resolution) Date() time.Time {
	y, m, d := r.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Time.Location())
}

// String renders the resolution in the wire format for its precision.
func (r Resolution) String() string {
	if r.Precision == DateOnly {
		return r.Time.Format(domain.DateLayout)
	}
	return r.Time.Format(domain.TimestampLayout)
}
