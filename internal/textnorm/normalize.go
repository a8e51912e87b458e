// Package textnorm canonicalizes transcripts before any pattern matching.
package textnorm

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// glyphs folds compatibility and full-width forms (６月２３号, ＰＭ, the
// ideographic space) into the forms the pattern tables are written in. A
// chain keeps buffers, so each call gets its own.
func glyphs() transform.Transformer {
	return transform.Chain(norm.NFKC, width.Fold)
}

// simplified holds traditional to simplified substitutions. Phrases come
// before the single characters they contain; no replacement value contains
// a key, so one pass is a fixed point.
var simplified = strings.NewReplacer(
	// phrases
	"備忘錄", "备忘录",
	"會議", "会议",
	"開會", "开会",
	"訊息", "信息",
	"電腦", "电脑",
	"報告", "报告",
	"設計", "设计",
	"刪除", "删除",
	"刪掉", "删掉",
	"活動", "活动",
	"聯絡", "联络",
	"討論", "讨论",
	"報名", "报名",
	"練習", "练习",
	"報到", "报到",
	"系統", "系统",
	"頁面", "页面",
	"分類", "分类",
	"訊號", "信号",
	"開始", "开始",
	"結束", "结束",
	"備份", "备份",
	"簡報", "简报",
	"紀錄", "记录",
	"備註", "备注",
	"檔案", "文件",
	"選項", "选项",
	"設定", "设置",
	"日曆", "日历",
	"標題", "标题",
	"檢查", "检查",
	"郵件", "邮件",
	"客戶", "客户",
	"任務", "任务",
	"禮拜", "礼拜",
	"查詢", "查询",
	"後天", "后天",
	// characters
	"讀", "读",
	"學", "学",
	"寫", "写",
	"說", "说",
	"聽", "听",
	"書", "书",
	"請", "请",
	"號", "号",
	"報", "报",
	"點", "点",
	"週", "周",
	"後", "后",
	"時", "时",
	"間", "间",
	"鐘", "钟",
	"習", "习",
	"課", "课",
	"買", "买",
	"東", "东",
	"車", "车",
	"見", "见",
	"個", "个",
	"們", "们",
	"這", "这",
	"麼", "么",
	"嗎", "吗",
	"問", "问",
	"題", "题",
	"幫", "帮",
	"給", "给",
	"錄", "录",
	"記", "记",
	"沒", "没",
	"還", "还",
	"務", "务",
	"議", "议",
	"會", "会",
	"開", "开",
	"動", "动",
	"刪", "删",
	"準", "准",
	"備", "备",
	"飯", "饭",
	"媽", "妈",
	"醫", "医",
	"藥", "药",
	"銀", "银",
	"場", "场",
	"電", "电",
	"話", "话",
	"語", "语",
	"試", "试",
	"與", "与",
	"業", "业",
	"愛", "爱",
	"發", "发",
	"對", "对",
	"邊", "边",
	"樓", "楼",
	"節", "节",
	"歲", "岁",
	"誕", "诞",
)

// Normalize returns the canonical simplified form of text. It never fails
// and Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded, _, err := transform.String(glyphs(), text)
	if err != nil {
		folded = text
	}
	return simplified.Replace(folded)
}
