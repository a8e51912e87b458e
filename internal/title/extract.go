// Package title reduces an utterance to the words that name the task.
package title

import (
	"regexp"
	"strings"

	"github.com/pbaille/memo/internal/temporal"
)

const cnNum = `[零〇一二两三四五六七八九十]{1,3}`

// Stage 1: explicit dates and clock times, shared with the resolver.
var dateNoise = []*regexp.Regexp{
	temporal.ZhDate,
	temporal.ISODate,
	temporal.EnDayMonth,
	temporal.EnMonthDay,
	// The clock forms the resolver accepts. A bare 一点 is left to
	// bareZhHour below.
	regexp.MustCompile(`\d{1,2}点钟?(?:半|\d{1,2}分?)?`),
	regexp.MustCompile(`(?:早上|上午|中午|下午|晚上|傍晚|凌晨|今晚|明晚)` + cnNum + `点钟?(?:半|` + cnNum + `分)?`),
	regexp.MustCompile(cnNum + `点(?:钟|半|` + cnNum + `分)`),
	regexp.MustCompile(`(?i)\b(?:at\s+)?\d{1,2}(?::[0-5]\d)?\s*(?:a\.m\.|p\.m\.|am\b|pm\b)`),
	regexp.MustCompile(`(?i)\b(?:at\s+)?(?:[01]?\d|2[0-3]):[0-5]\d\b`),
	regexp.MustCompile(`(?:\d{1,2}|` + cnNum + `)天(?:以后|之后|后)`),
	regexp.MustCompile(`(?i)\bin \d{1,2} days?\b`),
}

// Stage 2: fuzzy time words. Longer words precede the words they contain.
var zhTimeWords = []string{
	"大后天", "后天", "明天", "明日", "明早", "明晚", "今天", "今日", "今晚", "今早",
	"昨天", "前天", "早上", "上午", "中午", "下午", "傍晚", "晚上", "凌晨",
}

// bareZhHour is a Chinese numeral hour with nothing around it, as in 两点开会.
var bareZhHour = regexp.MustCompile(cnNum + `点`)

// littleBit is "a little", not one o'clock.
const littleBit = "一点"

var (
	zhWeekdayWords = regexp.MustCompile(`(下个?|这个?|本)?(周|星期|礼拜)[一二三四五六日天]`)
	enTimeWords    = regexp.MustCompile(`(?i)\b(?:(?:next|this)\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|morning|afternoon|evening|tonight|tomorrow|today|day after tomorrow)\b`)
)

// Stage 3: command prefixes, anchored at the start.
var prefixes = []*regexp.Regexp{
	regexp.MustCompile(`^(请)?(帮我)?(把)?(我要)?(删除|取消|移除|删掉|清除)`),
	regexp.MustCompile(`(?i)^(please )?(help me )?(delete|remove|cancel|erase|clear)( the memo of| the)?`),
}

// Stage 4: trailing noise, anchored at the end.
var suffixes = []*regexp.Regexp{
	regexp.MustCompile(`(的)?(任务|事情|安排|行程)?(删掉|删除|取消)?$`),
	regexp.MustCompile(`(?i)(\s+the)?\s+(memo|note|schedule|event)s?$`),
}

const separators = " \t\r\n，,、；;：:"

// Extract strips dates, time words, command prefixes and trailing noise
// from text. An empty result means no distinguishing title was left.
func Extract(text string) string {
	for _, re := range dateNoise {
		text = re.ReplaceAllString(text, "")
	}
	text = bareZhHour.ReplaceAllStringFunc(text, func(m string) string {
		if m == littleBit {
			return m
		}
		return ""
	})

	for _, w := range zhTimeWords {
		text = strings.ReplaceAll(text, w, "")
	}
	text = zhWeekdayWords.ReplaceAllString(text, "")
	text = enTimeWords.ReplaceAllString(text, "")

	text = strings.Trim(text, separators)
	for _, re := range prefixes {
		text = re.ReplaceAllString(text, "")
	}
	// 删除明天的会议 leaves the possessive behind once the date is gone.
	text = strings.TrimPrefix(strings.Trim(text, separators), "的")

	text = strings.Trim(text, separators)
	for _, re := range suffixes {
		text = re.ReplaceAllString(text, "")
	}

	return strings.Trim(strings.Join(strings.Fields(text), " "), separators)
}
