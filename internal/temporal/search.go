package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayKind separates phrases counted from today from weekday names and
// phrases that name a calendar day.
type dayKind int

const (
	relativeDay dayKind = iota
	weekdayDay
	calendarDay
)

// dayPhrase is one entry of the bilingual phrase table. resolve receives
// the submatches and returns the day at midnight.
type dayPhrase struct {
	re      *regexp.Regexp
	kind    dayKind
	resolve func(g []string, today time.Time) (day time.Time, yearGiven bool, ok bool)
}

func offset(days int) func([]string, time.Time) (time.Time, bool, bool) {
	return func(_ []string, today time.Time) (time.Time, bool, bool) {
		return today.AddDate(0, 0, days), false, true
	}
}

func afterDays(g []string, today time.Time) (time.Time, bool, bool) {
	n, ok := parseNumber(g[1])
	if !ok {
		return time.Time{}, false, false
	}
	return today.AddDate(0, 0, n), false, true
}

var zhWeekdays = map[string]time.Weekday{
	"一": time.Monday, "二": time.Tuesday, "三": time.Wednesday, "四": time.Thursday,
	"五": time.Friday, "六": time.Saturday, "日": time.Sunday, "天": time.Sunday,
}

var enWeekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

// isoWeekday numbers Monday 1 through Sunday 7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// weekdayDate picks the day named by a weekday word. A bare weekday is its
// next occurrence on or after today, "this" stays inside the current
// Monday-first week, and "next" moves to the following week.
func weekdayDate(today time.Time, target time.Weekday, modifier string) time.Time {
	cur, want := isoWeekday(today.Weekday()), isoWeekday(target)
	switch modifier {
	case "next":
		return today.AddDate(0, 0, 7-cur+want)
	case "this":
		return today.AddDate(0, 0, want-cur)
	default:
		return today.AddDate(0, 0, (want-cur+7)%7)
	}
}

func zhWeekday(g []string, today time.Time) (time.Time, bool, bool) {
	wd, ok := zhWeekdays[g[2]]
	if !ok {
		return time.Time{}, false, false
	}
	modifier := ""
	switch {
	case strings.HasPrefix(g[1], "下"):
		modifier = "next"
	case g[1] != "":
		modifier = "this"
	}
	return weekdayDate(today, wd, modifier), false, true
}

func enWeekday(g []string, today time.Time) (time.Time, bool, bool) {
	wd, ok := enWeekdays[strings.ToLower(g[2])]
	if !ok {
		return time.Time{}, false, false
	}
	return weekdayDate(today, wd, strings.ToLower(g[1])), false, true
}

func isoDate(g []string, today time.Time) (time.Time, bool, bool) {
	y, _ := strconv.Atoi(g[1])
	m, _ := strconv.Atoi(g[2])
	d, _ := strconv.Atoi(g[3])
	if !validDate(y, m, d) {
		return time.Time{}, false, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, today.Location()), true, true
}

func slashDate(g []string, today time.Time) (time.Time, bool, bool) {
	m, _ := strconv.Atoi(g[2])
	d, _ := strconv.Atoi(g[3])
	if !validDate(today.Year(), m, d) {
		return time.Time{}, false, false
	}
	return time.Date(today.Year(), time.Month(m), d, 0, 0, 0, 0, today.Location()), false, true
}

var dayPhrases = []dayPhrase{
	{re: regexp.MustCompile(`大后天`), resolve: offset(3)},
	{re: regexp.MustCompile(`后天`), resolve: offset(2)},
	{re: regexp.MustCompile(`明天|明日|明早|明晚`), resolve: offset(1)},
	{re: regexp.MustCompile(`今天|今日|今晚|今早`), resolve: offset(0)},
	{re: regexp.MustCompile(`昨天|昨日|昨晚`), resolve: offset(-1)},
	{re: regexp.MustCompile(`前天`), resolve: offset(-2)},
	{re: regexp.MustCompile(`(\d{1,2}|` + cnNum + `)天(?:以后|之后|后)`), resolve: afterDays},
	{re: regexp.MustCompile(`(下个?|这个?|本)?(?:周|星期|礼拜)([一二三四五六日天])`), kind: weekdayDay, resolve: zhWeekday},
	{re: regexp.MustCompile(`(?i)\bday after tomorrow\b`), resolve: offset(2)},
	{re: regexp.MustCompile(`(?i)\b(?:tomorrow|tmr)\b`), resolve: offset(1)},
	{re: regexp.MustCompile(`(?i)\b(?:today|tonight)\b`), resolve: offset(0)},
	{re: regexp.MustCompile(`(?i)\byesterday\b`), resolve: offset(-1)},
	{re: regexp.MustCompile(`(?i)\bin (\d{1,2}) days?\b`), resolve: afterDays},
	{re: regexp.MustCompile(`(?i)\b(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), kind: weekdayDay, resolve: enWeekday},
	{re: ISODate, kind: calendarDay, resolve: isoDate},
	{re: SlashDate, kind: calendarDay, resolve: slashDate},
}

// dayMatch is the winning day phrase of a search
type dayMatch struct {
	day       time.Time
	kind      dayKind
	yearGiven bool
	text      string
}

// earliestDay scans every phrase and keeps the leftmost match, preferring
// the longer one on ties.
func earliestDay(text string, today time.Time) (dayMatch, bool) {
	var best dayMatch
	bestAt, bestLen := -1, 0
	for _, p := range dayPhrases {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			at, length := loc[0], loc[1]-loc[0]
			if bestAt >= 0 && (at > bestAt || (at == bestAt && length <= bestLen)) {
				break
			}
			g := groups(text, loc)
			day, yearGiven, ok := p.resolve(g, today)
			if !ok {
				continue
			}
			best = dayMatch{day: day, kind: p.kind, yearGiven: yearGiven, text: strings.TrimSpace(g[0])}
			bestAt, bestLen = at, length
			break
		}
	}
	return best, bestAt >= 0
}

// phraseSearch looks for relative day words, weekdays, calendar dates and
// times of day anywhere in the text.
type phraseSearch struct{}

func (phraseSearch) Source() Source { return SearchBased }

func (phraseSearch) Attempt(text string, now time.Time) (Resolution, bool) {
	today := midnight(now)
	day, hasDay := earliestDay(text, today)
	tod, hasClock := findClock(text)
	if !hasDay && !hasClock {
		return Resolution{}, false
	}

	candidate := onDay(today, now)
	matched := tod.text
	if hasDay {
		candidate = onDay(day.day, now)
		matched = day.text
	}
	if hasClock {
		candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day(), tod.hour, tod.minute, 0, 0, candidate.Location())
	}

	explicit := hasDay
	deleting := HasDeleteIntent(text)
	switch {
	case !explicit:
		// A bare time of day means its next occurrence.
		if candidate.Before(now) && !MentionsToday(text) {
			candidate = candidate.AddDate(0, 0, 1)
		}
	case day.kind == weekdayDay:
		// A weekday already behind us means the same day next week.
		if candidate.Before(now) && !deleting {
			candidate = candidate.AddDate(0, 0, 7)
		}
	case day.kind == calendarDay:
		if ShouldRollYear(candidate, now, day.yearGiven, deleting) {
			candidate = candidate.AddDate(1, 0, 0)
		}
	}

	return Resolution{
		Time:            candidate,
		Source:          SearchBased,
		HadExplicitDate: explicit,
		Matched:         matched,
	}, true
}
