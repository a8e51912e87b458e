package temporal

import (
	"strconv"
	"time"
)

// explicitZh resolves numeric Chinese dates such as 6月23号 or 2026年三月五日.
type explicitZh struct{}

func (explicitZh) Source() Source { return ExplicitZh }

func (explicitZh) Attempt(text string, now time.Time) (Resolution, bool) {
	for _, loc := range ZhDate.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, loc)
		monthText, dayText := g[2], g[3]
		if monthText == "" {
			monthText, dayText = g[4], g[5]
		}
		month, ok1 := parseNumber(monthText)
		day, ok2 := parseNumber(dayText)
		if !ok1 || !ok2 {
			continue
		}
		if r, ok := calendarDate(text, g[1], month, day, g[0], now); ok {
			r.Source = ExplicitZh
			return r, true
		}
	}
	return Resolution{}, false
}

// explicitEn resolves "23rd of June" and "June 23" forms, whichever comes
// first in the text.
type explicitEn struct{}

func (explicitEn) Source() Source { return ExplicitEn }

func (explicitEn) Attempt(text string, now time.Time) (Resolution, bool) {
	type hit struct {
		at                  int
		match, day, mon, yr string
	}
	var hits []hit
	for _, loc := range EnDayMonth.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, loc)
		hits = append(hits, hit{at: loc[0], match: g[0], day: g[1], mon: g[2], yr: g[3]})
	}
	for _, loc := range EnMonthDay.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, loc)
		hits = append(hits, hit{at: loc[0], match: g[0], mon: g[1], day: g[2], yr: g[3]})
	}

	var best *Resolution
	bestAt := -1
	for _, h := range hits {
		if bestAt >= 0 && h.at >= bestAt {
			continue
		}
		month, ok := monthByPrefix(h.mon)
		if !ok {
			continue
		}
		day, err := strconv.Atoi(h.day)
		if err != nil {
			continue
		}
		if r, ok := calendarDate(text, h.yr, month, day, h.match, now); ok {
			r.Source = ExplicitEn
			best, bestAt = &r, h.at
		}
	}
	if best == nil {
		return Resolution{}, false
	}
	return *best, true
}

// calendarDate builds the resolution for a spoken month and day. A spoken
// year is kept as is; otherwise the reference year applies and rolls
// forward for past dates unless the utterance is a deletion. A time of day
// elsewhere in the text sets the clock, else the date stays at midnight.
func calendarDate(text, yearText string, month, day int, matched string, now time.Time) (Resolution, bool) {
	year := now.Year()
	yearGiven := false
	if yearText != "" {
		y, err := strconv.Atoi(yearText)
		if err != nil {
			return Resolution{}, false
		}
		year, yearGiven = y, true
	}
	if !validDate(year, month, day) {
		return Resolution{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if ShouldRollYear(date, now, yearGiven, HasDeleteIntent(text)) {
		next := date.AddDate(1, 0, 0)
		// 2月29号 rolls onto a year that may not have that day.
		if !validDate(year+1, month, day) {
			return Resolution{}, false
		}
		date = next
	}
	if c, ok := findClock(text); ok {
		date = time.Date(date.Year(), date.Month(), date.Day(), c.hour, c.minute, 0, 0, date.Location())
	}

	return Resolution{
		Time:            date,
		HadExplicitDate: true,
		Matched:         matched,
	}, true
}
