package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw  string
		want Mode
		ok   bool
	}{
		{"0", ModeBirthday, true},
		{"1", ModeWeather, true},
		{"2", ModeHoliday, true},
		{"3", ModeMatch, true},
		{"4", "", false},
		{"9", "", false},
		{"", "", false},
		{"birthday", "", false},
	}

	for _, tt := range tests {
		mode, ok := ParseMode(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, mode, "raw=%q", tt.raw)
	}
}

func TestModeName(t *testing.T) {
	assert.Equal(t, "birthday", ModeBirthday.Name())
	assert.Equal(t, "weather", ModeWeather.Name())
	assert.Equal(t, "holiday", ModeHoliday.Name())
	assert.Equal(t, "match", ModeMatch.Name())
	assert.Equal(t, "unknown", Mode("9").Name())
}

func TestTruncateAreaCode(t *testing.T) {
	assert.Equal(t, "440300", truncateAreaCode("440300XYZ"))
	assert.Equal(t, "440300", truncateAreaCode("440300"))
	assert.Equal(t, "4403", truncateAreaCode("4403"))
	assert.Equal(t, "", truncateAreaCode(""))
}
