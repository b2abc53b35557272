package assist

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/qiwen/shopguide/retrieval"
)

// Each mode owns a fixed instruction template with named slots: structured
// facts, enrichment output, caller-supplied free text and the current
// date. Composition is pure; handlers fill the slots and execute.

const birthdayPromptText = `你是生日祝福生成助手，请根据顾客信息生成一段生日祝福。
- 第一步，理解顾客信息。
1.顾客信息：{{.MemberInfo}}
2.附加信息：{{.Message}}
3.当前日期：{{.Date}}
- 第二步，理解生成规则。
1.请输出中文生日祝福。
2.可以结合顾客年龄添加emoji表情符号。
3.祝福内容可以结合季节特点、顾客年龄、性别喜好等。
4.不要输出解释或者无关内容。
- 第三步，请直接输出生日祝福。`

const weatherPromptText = `你是天气提醒生成助手，请根据天气信息生成一段天气提醒。
- 第一步，理解天气信息。
1.天气信息：{{.Weather}}
2.附加信息：{{.Message}}
3.当前日期：{{.Date}}
- 第二步，理解生成规则。
1.天气提醒的对象是顾客。
2.可以结合天气情况添加emoji表情符号。
3.提醒内容可以结合出行建议、穿着建议、健康提醒、安全提示、平安祝福等。
4.不要输出解释或者无关内容。
- 第三步，请直接输出天气提醒。`

// An empty holiday name tells the generator to pick the nearest upcoming
// holiday itself (rule 3). This is prompt wording only, not validated
// server-side.
const holidayPromptText = `你是节日祝福生成助手，请根据节日信息生成一段节日祝福。
- 第一步，理解节日信息。
1.顾客信息：{{.MemberInfo}}
2.节日名称：{{.Message}}
3.当前日期：{{.Date}}
- 第二步，理解生成规则。
1.可以结合节日风格添加emoji表情符号。
2.节日祝福可以结合顾客信息、季节特点、节日风俗等。
3.如果节日名称为空，请输出离当前日期最近的节日祝福，可以包含小众节日。
4.不要输出解释或者无关内容。
- 第三步，请直接输出节日祝福。`

const matchPromptText = `你是商品推荐助手，请向导购推荐适合顾客的商品方向，如类别、颜色、厚薄、风格等。
1.顾客信息：{{.Name}},{{.MemberInfo}}
2.相似记录：{{.Matches}}
3.当前日期：{{.Date}}
4.品牌信息：{{.Brand}}。`

var promptTemplates = map[Mode]*template.Template{
	ModeBirthday: template.Must(template.New("birthday").Parse(birthdayPromptText)),
	ModeWeather:  template.Must(template.New("weather").Parse(weatherPromptText)),
	ModeHoliday:  template.Must(template.New("holiday").Parse(holidayPromptText)),
	ModeMatch:    template.Must(template.New("match").Parse(matchPromptText)),
}

// promptData carries the named slots of the prompt templates. Unused slots
// stay empty for a given mode.
type promptData struct {
	Name       string
	MemberInfo string
	Weather    string
	Matches    string
	Message    string
	Date       string
	Brand      string
}

// composePrompt renders the instruction template of a mode. It is the only
// way prompts are produced; the result is passed opaquely to generation.
func composePrompt(mode Mode, data promptData) (string, error) {
	tmpl, ok := promptTemplates[mode]
	if !ok {
		return "", fmt.Errorf("no prompt template for mode %q", mode)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("compose prompt for mode %q: %w", mode, err)
	}
	return sb.String(), nil
}

// formatMatches renders similarity hits as an ordered (id, distance) list.
func formatMatches(matches []retrieval.Match) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("(%s, %.4f)", m.ID, m.Distance)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
