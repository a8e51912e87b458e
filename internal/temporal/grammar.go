package temporal

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	cnNum    = `[零〇一二两三四五六七八九十]{1,3}`
	enMonths = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`
	ordinal  = `(?:st|nd|rd|th)?`
)

// Date and clock grammars. The title extractor strips exactly what these
// match, so both packages agree on what counts as date noise.
var (
	// ZhDate matches [yyyy年]M月D[号|日]; Chinese numerals need the 号/日
	// suffix so phrases like 一月一次 stay text.
	ZhDate = regexp.MustCompile(`(?:(\d{4})年)?(?:(\d{1,2})月(\d{1,2})[号日]?|(` + cnNum + `)月(` + cnNum + `)[号日])`)

	// EnDayMonth matches "23rd of June", "23 Jun 2026".
	EnDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})` + ordinal + `\s+(?:of\s+)?` + enMonths + `\b\.?(?:,?\s+(\d{4})\b)?`)

	// EnMonthDay matches "June 23rd", "Jun. the 5th, 2026".
	EnMonthDay = regexp.MustCompile(`(?i)\b` + enMonths + `\b\.?\s+(?:the\s+)?(\d{1,2})` + ordinal + `\b(?:,?\s+(\d{4})\b)?`)

	// ISODate matches 2025-06-23 and 2025/6/23.
	ISODate = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)

	// SlashDate matches a yearless month/day such as 6/23.
	SlashDate = regexp.MustCompile(`(?:^|[^\d/])((\d{1,2})/(\d{1,2}))(?:$|[^\d/])`)

	// ZhClock matches 下午3点, 3点半, 8点15分, 三点钟.
	ZhClock = regexp.MustCompile(`(早上|上午|中午|下午|晚上|傍晚|凌晨|今晚|明晚|早|晚)?(\d{1,2}|` + cnNum + `)点(钟)?(?:(半)|(\d{1,2})分?|(` + cnNum + `)分)?`)

	// EnClock matches 8pm, 8:30 p.m., 11 am.
	EnClock = regexp.MustCompile(`(?i)\b(\d{1,2})(?::([0-5]\d))?\s*(a\.m\.|p\.m\.|am\b|pm\b)`)

	// EnClock24 matches a bare 20:30.
	EnClock24 = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

var cnDigits = map[rune]int{
	'零': 0, '〇': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseNumber reads Arabic digits or a Chinese numeral below one hundred.
func parseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	runes := []rune(s)
	ten := -1
	for i, r := range runes {
		if r == '十' {
			if ten >= 0 {
				return 0, false
			}
			ten = i
		} else if _, ok := cnDigits[r]; !ok {
			return 0, false
		}
	}
	if ten < 0 {
		if len(runes) != 1 {
			return 0, false
		}
		return cnDigits[runes[0]], true
	}
	tens, ones := 1, 0
	switch ten {
	case 0:
	case 1:
		tens = cnDigits[runes[0]]
	default:
		return 0, false
	}
	switch len(runes) - ten - 1 {
	case 0:
	case 1:
		ones = cnDigits[runes[ten+1]]
	default:
		return 0, false
	}
	return tens*10 + ones, true
}

// monthByPrefix resolves a month name through its first three letters.
func monthByPrefix(name string) (int, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0, false
	}
	switch name[:3] {
	case "jan":
		return 1, true
	case "feb":
		return 2, true
	case "mar":
		return 3, true
	case "apr":
		return 4, true
	case "may":
		return 5, true
	case "jun":
		return 6, true
	case "jul":
		return 7, true
	case "aug":
		return 8, true
	case "sep":
		return 9, true
	case "oct":
		return 10, true
	case "nov":
		return 11, true
	case "dec":
		return 12, true
	}
	return 0, false
}

// clock is a spoken time of day
type clock struct {
	hour, minute int
	text         string
}

// findClock returns the leftmost time-of-day expression in text.
func findClock(text string) (clock, bool) {
	var best clock
	bestAt := -1

	try := func(at int, c clock, ok bool) {
		if ok && (bestAt < 0 || at < bestAt) {
			best, bestAt = c, at
		}
	}

	try(zhClock(text))
	try(enClock(text))
	try(enClock24(text))
	return best, bestAt >= 0
}

func zhClock(text string) (int, clock, bool) {
	for _, loc := range ZhClock.FindAllStringSubmatchIndex(text, -1) {
		g := groups(text, loc)
		marker, hourText := g[1], g[2]
		hour, ok := parseNumber(hourText)
		if !ok || hour > 24 {
			continue
		}
		// 快一点 and 多一点 mean "a little"; a bare 一点 is only a clock next
		// to a day period or a minute part.
		if hourText == "一" && marker == "" && g[3] == "" && g[4] == "" && g[6] == "" {
			continue
		}
		minute := 0
		switch {
		case g[4] != "":
			minute = 30
		case g[5] != "":
			minute, _ = strconv.Atoi(g[5])
		case g[6] != "":
			minute, _ = parseNumber(g[6])
		}
		if minute > 59 {
			minute = 0
		}
		if hour == 24 {
			hour = 0
		}
		return loc[0], clock{hour: To24Hour(hour, marker), minute: minute, text: g[0]}, true
	}
	return 0, clock{}, false
}

func enClock(text string) (int, clock, bool) {
	loc := EnClock.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, clock{}, false
	}
	g := groups(text, loc)
	hour, _ := strconv.Atoi(g[1])
	if hour < 1 || hour > 12 {
		return 0, clock{}, false
	}
	minute, _ := strconv.Atoi(g[2])
	marker := "am"
	if strings.HasPrefix(strings.ToLower(g[3]), "p") {
		marker = "pm"
	}
	return loc[0], clock{hour: To24Hour(hour, marker), minute: minute, text: g[0]}, true
}

func enClock24(text string) (int, clock, bool) {
	loc := EnClock24.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, clock{}, false
	}
	g := groups(text, loc)
	hour, _ := strconv.Atoi(g[1])
	minute, _ := strconv.Atoi(g[2])
	lower := strings.ToLower(text)
	for _, w := range []string{"tonight", "evening", "afternoon"} {
		if strings.Contains(lower, w) {
			hour = To24Hour(hour, w)
			break
		}
	}
	return loc[0], clock{hour: hour, minute: minute, text: g[0]}, true
}

// groups expands a submatch index slice into strings; absent groups are "".
func groups(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
