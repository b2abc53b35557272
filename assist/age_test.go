package assist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(value string) time.Time {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeriveAge(t *testing.T) {
	tests := []struct {
		name     string
		birthday string
		now      string
		want     int
	}{
		{"day before birthday", "20000615", "20240614", 23},
		{"on birthday", "20000615", "20240615", 24},
		{"day after birthday", "20000615", "20240616", 24},
		{"earlier month", "20000615", "20240501", 23},
		{"later month", "20000615", "20241201", 24},
		{"same year", "20240101", "20240615", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveAge(tt.birthday, date(tt.now))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveAgeInvalid(t *testing.T) {
	_, err := DeriveAge("not-a-date", date("20240615"))
	assert.Error(t, err)

	_, err = DeriveAge("", date("20240615"))
	assert.Error(t, err)
}
