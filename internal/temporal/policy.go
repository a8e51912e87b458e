package temporal

import (
	"strings"
	"time"
)

// deleteMarkers is the one delete-intent vocabulary shared by every
// strategy. English entries are matched against lowercased text.
var deleteMarkers = []string{
	"删除", "刪除", "删掉", "取消", "移除", "清除",
	"delete", "remove", "cancel", "erase",
}

var todayMarkers = []string{"今天", "今日", "today"}

// HasDeleteIntent reports whether the utterance asks to delete or cancel
// something. Deletions target memos that already exist, so a date they name
// is never moved into the future.
func HasDeleteIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range deleteMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// MentionsToday reports whether the utterance pins itself to today.
func MentionsToday(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range todayMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ShouldRollYear decides whether a yearless calendar date that has already
// passed means the same day next year. The date counts as passed when its
// midnight is strictly before now, so a date said on the day itself rolls
// once that midnight is behind us. Dates with a spoken year and dates inside
// a deletion stay where they are.
func ShouldRollYear(date, now time.Time, yearGiven, deleting bool) bool {
	if yearGiven || deleting {
		return false
	}
	return midnight(date).Before(now)
}

// IsEveningMarker reports whether a day-period word puts a 1-11 o'clock
// hour in the afternoon or evening.
func IsEveningMarker(marker string) bool {
	switch marker {
	case "下午", "晚上", "傍晚", "今晚", "明晚", "晚",
		"pm", "tonight", "evening", "afternoon":
		return true
	}
	return false
}

// To24Hour converts a spoken hour and its day-period marker to a 0-23 hour.
func To24Hour(hour int, marker string) int {
	switch {
	case IsEveningMarker(marker) && hour < 12:
		return hour + 12
	case marker == "中午" && hour < 11:
		return hour + 12
	case (marker == "凌晨" || marker == "am") && hour == 12:
		return 0
	}
	return hour
}

// onDay returns the moment on day d carrying the wall clock of clock.
func onDay(d, clock time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, clock.Hour(), clock.Minute(), clock.Second(), 0, d.Location())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
