// Package assist implements the mode-dispatch retrieval and generation
// pipeline: resolve facts for a lookup code, enrich them per mode, compose
// a prompt and stream the generated reply.
package assist

// Mode is the caller-selected task category.
type Mode string

const (
	// ModeBirthday generates a birthday greeting for a member.
	ModeBirthday Mode = "0"
	// ModeWeather generates a weather reminder for a shop's city.
	ModeWeather Mode = "1"
	// ModeHoliday generates a holiday greeting for a member.
	ModeHoliday Mode = "2"
	// ModeMatch recommends product directions for a member.
	ModeMatch Mode = "3"
)

// Canned responses for terminal non-error outcomes.
const (
	NotFoundText        = "未找到该会员的信息。"
	UnsupportedModeText = "不支持的模式，请使用 '0'（生日）或 '1'（天气）或 '2'（节日）或 '3'（匹配）。"
)

// ParseMode validates a raw mode tag.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModeBirthday, ModeWeather, ModeHoliday, ModeMatch:
		return Mode(raw), true
	}
	return "", false
}

// String returns the wire value of the mode.
func (m Mode) String() string {
	return string(m)
}

// Name returns a human-readable label, used in logs and metrics.
func (m Mode) Name() string {
	switch m {
	case ModeBirthday:
		return "birthday"
	case ModeWeather:
		return "weather"
	case ModeHoliday:
		return "holiday"
	case ModeMatch:
		return "match"
	}
	return "unknown"
}
