package temporal

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// genericParser hands anything the tables above missed to a general natural
// language date parser ("next week", "in 2 hours", "3/4/2026").
type genericParser struct {
	w *when.Parser
}

func newGenericParser() genericParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return genericParser{w: w}
}

func (genericParser) Source() Source { return FallbackGeneric }

func (p genericParser) Attempt(text string, now time.Time) (Resolution, bool) {
	r, err := p.w.Parse(text, now)
	if err != nil || r == nil {
		return Resolution{}, false
	}
	return Resolution{
		Time:    r.Time.In(now.Location()),
		Source:  FallbackGeneric,
		Matched: r.Text,
	}, true
}
