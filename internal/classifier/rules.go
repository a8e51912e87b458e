package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/temporal"
)

// Rules is a weighted keyword classifier. It needs no model files and is
// the default when no LLM is configured.
type Rules struct {
	create    map[domain.Category]map[string]int
	queryCues []string
	allWords  []string
	tomorrow  []string
	today     []string
}

var enAll = regexp.MustCompile(`(?i)\b(?:all|everything|every)\b`)

// NewRules creates a rule classifier with the built-in keyword weights.
func NewRules() *Rules {
	return &Rules{
		// weight 2 for core words, 1 for supporting ones
		create: map[domain.Category]map[string]int{
			domain.Study: {
				"学习": 2, "复习": 2, "考试": 2, "作业": 2, "上课": 2, "课程": 2,
				"论文": 2, "背单词": 2, "预习": 2, "图书馆": 1, "老师": 1, "课": 1,
				"study": 2, "exam": 2, "homework": 2, "lecture": 2, "assignment": 2,
				"revise": 2, "class": 1, "course": 1, "library": 1,
			},
			domain.Work: {
				"工作": 2, "会议": 2, "开会": 2, "报告": 2, "项目": 2, "客户": 2,
				"汇报": 2, "加班": 2, "上班": 1, "老板": 1, "同事": 1, "邮件": 1,
				"work": 2, "meeting": 2, "report": 2, "project": 2, "client": 2,
				"deadline": 2, "office": 1, "email": 1, "boss": 1,
			},
			domain.Daily: {
				"买": 2, "吃饭": 2, "做饭": 2, "健身": 2, "跑步": 2, "购物": 2,
				"洗衣": 2, "打扫": 2, "看医生": 2, "取快递": 2, "逛街": 1, "睡觉": 1,
				"起床": 1, "电影": 1, "朋友": 1,
				"buy": 2, "grocery": 2, "groceries": 2, "gym": 2, "dinner": 2,
				"lunch": 2, "laundry": 2, "doctor": 2, "shopping": 2, "cook": 2,
				"clean": 1, "movie": 1, "friend": 1,
			},
		},
		queryCues: []string{
			"查看", "查询", "有什么", "有哪些", "什么安排", "安排了什么", "看看", "有没有",
			"what", "show", "list", "check", "anything",
		},
		allWords: []string{"所有", "全部", "一切", "清空"},
		tomorrow: []string{"明天", "明日", "tomorrow"},
		today:    []string{"今天", "今日", "today"},
	}
}

// Classify scores every label and returns the normalized distribution.
// Text with no cue at all yields Others with probability 0.
func (r *Rules) Classify(_ context.Context, text, lang string) (Result, error) {
	if !Supported(lang) {
		return Result{Label: domain.Others}, ErrUnknownLanguage
	}

	lower := strings.ToLower(text)
	raw := make(map[domain.Category]int)

	switch {
	case temporal.HasDeleteIntent(lower):
		raw[domain.DeleteSpecific] = 1
		if containsAny(lower, r.allWords) || enAll.MatchString(lower) {
			raw[domain.DeleteAll] += 3
		} else {
			raw[domain.DeleteSpecific] += 3
		}
	case containsAny(lower, r.queryCues):
		switch {
		case containsAny(lower, r.tomorrow):
			raw[domain.QueryTomorrow] = 3
		case mentionsDate(text):
			raw[domain.QueryCustom] = 3
		case containsAny(lower, r.today):
			raw[domain.QueryToday] = 3
		default:
			raw[domain.QueryToday] = 1
		}
	default:
		for label, words := range r.create {
			for w, weight := range words {
				if strings.Contains(lower, w) {
					raw[label] += weight
				}
			}
		}
	}

	total := 0
	for _, s := range raw {
		total += s
	}
	scores := make(map[domain.Category]float64, len(raw))
	if total == 0 {
		return Result{Label: domain.Others, Scores: scores}, nil
	}
	for label, s := range raw {
		if s > 0 {
			scores[label] = float64(s) / float64(total)
		}
	}
	return best(scores), nil
}

func mentionsDate(text string) bool {
	for _, re := range []*regexp.Regexp{
		temporal.ZhDate, temporal.ISODate, temporal.SlashDate,
		temporal.EnDayMonth, temporal.EnMonthDay,
	} {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
