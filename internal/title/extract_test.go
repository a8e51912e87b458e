package title

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6月23号删除会议", "会议"},
		{"please delete the memo of 23rd of June", ""},
		{"明天下午3点要交报告", "要交报告"},
		{"删除明天会议", "会议"},
		{"帮我取消后天健身安排", "健身"},
		{"晚上8点和朋友吃饭", "和朋友吃饭"},
		{"下周一交作业", "交作业"},
		{"submit the report next monday at 3pm", "submit the report"},
		{"buy milk in 3 days", "buy milk"},
		{"2025-02-01 交报告", "交报告"},
		{"delete the meeting notes", "meeting"},
		{"cancel the team memo", "team"},
		{"快一点完成作业", "快一点完成作业"},
		{"多一点耐心", "多一点耐心"},
		{"删除明天的会议", "会议"},
		{"明天的考试要复习", "考试要复习"},
		{"取消明天的任务", ""},
		{"两点开会", "开会"},
		{"明天三点交报告", "交报告"},
		{"十一点睡觉", "睡觉"},
	}
	for _, tt := range tests {
		if got := Extract(tt.in); got != tt.want {
			t.Errorf("Extract(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractNoiseFreeIsTrim(t *testing.T) {
	faker := gofakeit.New(11)
	for i := 0; i < 100; i++ {
		// lower-case nouns carry no date, time word, prefix or suffix noise
		words := []string{faker.Noun(), faker.Noun(), faker.Noun()}
		in := "  " + strings.ToLower(strings.Join(words, " ")) + " "
		if blocked(in) {
			continue
		}
		if got, want := Extract(in), strings.TrimSpace(in); got != want {
			t.Fatalf("Extract(%q) = %q, want %q", in, got, want)
		}
	}
}

// blocked skips generated text that happens to contain a noise word.
func blocked(s string) bool {
	for _, w := range []string{
		"memo", "note", "schedule", "event", "today", "tomorrow", "tonight",
		"morning", "afternoon", "evening", "day", " the", "delete", "remove",
		"cancel", "erase", "clear", "please", "help", "in ", "at ",
	} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
