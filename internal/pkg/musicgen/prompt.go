package musicgen

import "strings"

// DefaultPromptBudget 提示词最大字符数
const DefaultPromptBudget = 2000

// TruncatePrompt 把提示词截断到 budget 个字符以内
// 若最后一个句号落在后 40% 内，则在句号处截断以保持语义完整
func TruncatePrompt(prompt string, budget int) string {
	if budget <= 0 {
		return ""
	}
	runes := []rune(prompt)
	if len(runes) <= budget {
		return prompt
	}

	cut := string(runes[:budget])
	if idx := strings.LastIndex(cut, "."); idx >= 0 {
		// idx 是字节偏移，换算成字符位置
		pos := len([]rune(cut[:idx]))
		if float64(pos) > float64(budget)*0.6 {
			return cut[:idx+1]
		}
	}
	return cut
}

// ComposePrompt 截断基础提示词并追加后缀，保证总长度不超过 budget
// 后缀（风格、重试修饰）总是完整保留
func ComposePrompt(base string, budget int, suffixes ...string) string {
	tail := strings.Join(suffixes, "")
	room := budget - len([]rune(tail))
	if room < 0 {
		return TruncatePrompt(base+tail, budget)
	}
	return TruncatePrompt(base, room) + tail
}

// RetryModifiers 策略拒绝后依次追加的修饰语
var RetryModifiers = []string{
	"with unique original composition style",
	"featuring unconventional rhythm patterns",
	"with experimental sound design elements",
	"in a fresh contemporary arrangement",
	"with distinctive melodic progression",
	"using creative and novel instrumentation choices",
}

// RetryModifier 第 attempt 次尝试（从 1 开始）使用的修饰语；首次尝试为空
func RetryModifier(attempt int) string {
	if attempt <= 1 {
		return ""
	}
	return RetryModifiers[(attempt-2)%len(RetryModifiers)]
}

// Style 风格变体
type Style struct {
	Label    string `json:"label"`
	Modifier string `json:"modifier"`
}

// OriginalStyle 原始提示词，不追加修饰
var OriginalStyle = Style{Label: "Original"}

// BuiltinStyles 没有 AI 风格建议时使用的备选风格
var BuiltinStyles = []Style{
	{
		Label: "Lo-fi",
		Modifier: "Completely reimagine this as lo-fi chill. Use ONLY: mellow Rhodes piano, soft vinyl-crackle texture, " +
			"tape-saturated drums at half tempo, warm sub bass. Remove all sharp or bright sounds. " +
			"Downtempo, dreamy, bedroom-producer aesthetic.",
	},
	{
		Label: "Hype",
		Modifier: "Completely reimagine this as high-energy hype music. Use ONLY: hard-hitting 808 bass, " +
			"aggressive trap hi-hats, stadium synth leads, build-ups with risers and drops. " +
			"Maximum energy, festival-ready, designed to make people stop scrolling.",
	},
}

// PlanStyles 生成的风格列表：Original + 最多 variants-1 个备选
// 提供两个及以上建议时使用建议，否则使用内置风格
func PlanStyles(suggestions []Style, variants int) []Style {
	if variants <= 0 {
		variants = 1
	}
	alternates := BuiltinStyles
	if len(suggestions) >= 2 {
		alternates = suggestions
	}

	plan := []Style{OriginalStyle}
	for _, s := range alternates {
		if len(plan) >= variants {
			break
		}
		if s.Label == "" {
			s.Label = "Alt"
		}
		plan = append(plan, s)
	}
	return plan
}
