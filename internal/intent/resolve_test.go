package intent

import (
	"testing"
	"time"

	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/temporal"
)

var cst = time.FixedZone("CST", 8*3600)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, cst)
}

func resolved(t time.Time) temporal.Resolution {
	return temporal.Resolution{Time: t, Source: temporal.ExplicitZh}
}

func TestEffectiveCategory(t *testing.T) {
	tests := []struct {
		label domain.Category
		prob  float64
		want  domain.Category
	}{
		{domain.Work, 0.9, domain.Work},
		{domain.Work, 0.5, domain.Work},
		{domain.Work, 0.49, domain.Others},
		{domain.Study, 0.1, domain.Others},
		{domain.DeleteAll, 0.1, domain.DeleteAll},
		{domain.QueryTomorrow, 0.2, domain.QueryTomorrow},
		{domain.Category("Shopping"), 0.99, domain.Others},
		{domain.Others, 0.0, domain.Others},
	}
	for _, tt := range tests {
		if got := EffectiveCategory(tt.label, tt.prob, DefaultThreshold); got != tt.want {
			t.Errorf("EffectiveCategory(%s, %v) = %s, want %s", tt.label, tt.prob, got, tt.want)
		}
	}
}

func TestResolveCreate(t *testing.T) {
	now := at(2025, 1, 10, 9, 0)
	due := at(2025, 1, 11, 15, 0)

	act := ResolveAction(Input{
		Utterance: domain.Utterance{Raw: "明天下午3点要交报告", Normalized: "明天下午3点要交报告"},
		Category:  domain.Work,
		Temporal:  resolved(due),
		HasTime:   true,
		Title:     "要交报告",
		Now:       now,
	})
	if act.Kind != domain.ActionCreate || act.NeedConfirm {
		t.Fatalf("kind = %v, need confirm = %v", act.Kind, act.NeedConfirm)
	}
	if act.Create.Title != "要交报告" || act.Create.CategoryID != 2 || !act.Create.Timestamp.Equal(due) {
		t.Errorf("create = %+v", act.Create)
	}
}

func TestResolveCreateWithoutDate(t *testing.T) {
	now := at(2025, 4, 2, 20, 15)

	act := ResolveAction(Input{
		Utterance: domain.Utterance{Raw: "复习线性代数", Normalized: "复习线性代数"},
		Category:  domain.Study,
		Title:     "",
		Now:       now,
	})
	if !act.Create.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want now", act.Create.Timestamp)
	}
	if act.Create.Title != "复习线性代数" {
		t.Errorf("title = %q, want the utterance", act.Create.Title)
	}
	if act.Create.CategoryID != 1 {
		t.Errorf("category id = %d, want 1", act.Create.CategoryID)
	}
}

func TestResolveCreateOthers(t *testing.T) {
	act := ResolveAction(Input{
		Utterance: domain.Utterance{Raw: "hmm"},
		Category:  domain.Others,
		Now:       at(2025, 4, 2, 8, 0),
	})
	if act.Category != domain.Others || act.Create.CategoryID != 4 || act.Create.Title != "hmm" {
		t.Errorf("action = %+v create = %+v", act, act.Create)
	}
}

func TestResolveQuery(t *testing.T) {
	now := at(2025, 3, 10, 18, 30)

	tests := []struct {
		name     string
		category domain.Category
		temporal temporal.Resolution
		hasTime  bool
		want     time.Time
		custom   bool
	}{
		{"today", domain.QueryToday, temporal.Resolution{}, false, at(2025, 3, 10, 0, 0), false},
		{"tomorrow", domain.QueryTomorrow, temporal.Resolution{}, false, at(2025, 3, 11, 0, 0), false},
		{"tomorrow ignores date", domain.QueryTomorrow, resolved(at(2025, 5, 1, 0, 0)), true, at(2025, 3, 11, 0, 0), false},
		{"custom", domain.QueryCustom, resolved(at(2025, 6, 23, 14, 0)), true, at(2025, 6, 23, 0, 0), true},
		{"custom without date", domain.QueryCustom, temporal.Resolution{}, false, at(2025, 3, 10, 0, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := ResolveAction(Input{Category: tt.category, Temporal: tt.temporal, HasTime: tt.hasTime, Now: now})
			if act.Kind != domain.ActionQuery || !act.NeedConfirm {
				t.Fatalf("kind = %v, need confirm = %v", act.Kind, act.NeedConfirm)
			}
			if !act.Query.TargetDate.Equal(tt.want) {
				t.Errorf("target = %v, want %v", act.Query.TargetDate, tt.want)
			}
			if act.Query.IsCustom != tt.custom {
				t.Errorf("custom = %v, want %v", act.Query.IsCustom, tt.custom)
			}
		})
	}
}

func TestResolveDeleteAll(t *testing.T) {
	now := at(2025, 3, 10, 9, 0)

	act := ResolveAction(Input{
		Utterance: domain.Utterance{Raw: "删除所有备忘录", Normalized: "删除所有备忘录"},
		Category:  domain.DeleteAll,
		Title:     "所有备忘录",
		Now:       now,
	})
	if act.Kind != domain.ActionDelete || !act.NeedConfirm {
		t.Fatalf("kind = %v, need confirm = %v", act.Kind, act.NeedConfirm)
	}
	start, end := AllTime(cst)
	if !act.Delete.StartTime.Equal(start) || !act.Delete.EndTime.Equal(end) {
		t.Errorf("window = [%v, %v]", act.Delete.StartTime, act.Delete.EndTime)
	}
	if act.Delete.Keyword != nil {
		t.Errorf("keyword = %q, want none", *act.Delete.Keyword)
	}
}

func TestResolveDeleteSpecific(t *testing.T) {
	now := at(2025, 1, 10, 9, 0)
	june23 := at(2025, 6, 23, 9, 0)

	tests := []struct {
		name      string
		raw       string
		title     string
		temporal  temporal.Resolution
		hasTime   bool
		wantStart time.Time
		wantEnd   time.Time
		keyword   string
	}{
		{
			name: "dated with title", raw: "6月23号删除会议", title: "会议",
			temporal: resolved(june23), hasTime: true,
			wantStart: at(2025, 6, 23, 0, 0), wantEnd: time.Date(2025, 6, 23, 23, 59, 59, 0, cst),
			keyword: "会议",
		},
		{
			name: "dated without title takes the whole day", raw: "please delete the memo of 23rd of June",
			temporal: resolved(june23), hasTime: true,
			wantStart: at(2025, 6, 23, 0, 0), wantEnd: time.Date(2025, 6, 23, 23, 59, 59, 0, cst),
		},
		{
			name: "undated falls back to utterance", raw: "删除健身",
			wantStart: time.Date(2000, 1, 1, 0, 0, 0, 0, cst), wantEnd: time.Date(2100, 12, 31, 23, 59, 59, 0, cst),
			keyword: "删除健身",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := ResolveAction(Input{
				Utterance: domain.Utterance{Raw: tt.raw, Normalized: tt.raw},
				Category:  domain.DeleteSpecific,
				Temporal:  tt.temporal,
				HasTime:   tt.hasTime,
				Title:     tt.title,
				Now:       now,
			})
			del := act.Delete
			if !del.StartTime.Equal(tt.wantStart) || !del.EndTime.Equal(tt.wantEnd) {
				t.Errorf("window = [%v, %v], want [%v, %v]", del.StartTime, del.EndTime, tt.wantStart, tt.wantEnd)
			}
			switch {
			case tt.keyword == "" && del.Keyword != nil:
				t.Errorf("keyword = %q, want none", *del.Keyword)
			case tt.keyword != "" && (del.Keyword == nil || *del.Keyword != tt.keyword):
				t.Errorf("keyword = %v, want %q", del.Keyword, tt.keyword)
			}
			if del.Category != domain.DeleteSpecific {
				t.Errorf("category = %s", del.Category)
			}
		})
	}
}

func TestDayWindow(t *testing.T) {
	start, end := DayWindow(at(2025, 3, 11, 17, 42))
	if got := start.Format(domain.TimestampLayout); got != "2025-03-11 00:00:00" {
		t.Errorf("start = %s", got)
	}
	if got := end.Format(domain.TimestampLayout); got != "2025-03-11 23:59:59" {
		t.Errorf("end = %s", got)
	}
}
