package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name     string
		windows  []Interval
		duration int
		want     []int
	}{
		{"exact fit", []Interval{iv(480, 720)}, 60, []int{480, 540, 600, 660}},
		{"remainder dropped", []Interval{iv(540, 590)}, 60, []int{}},
		{"aligned to window start", []Interval{iv(485, 620)}, 45, []int{485, 530, 575}},
		{"multiple windows", []Interval{iv(480, 600), iv(780, 900)}, 60, []int{480, 540, 780, 840}},
		{"no windows", nil, 30, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSlots(tt.windows, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSlots_NonPositiveDuration(t *testing.T) {
	for _, d := range []int{0, -15} {
		_, err := GenerateSlots([]Interval{iv(480, 720)}, d)
		var invalid *InvalidConfigurationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, d, invalid.Value)
	}
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinute(0))
	assert.Equal(t, "08:05", FormatMinute(485))
	assert.Equal(t, "23:59", FormatMinute(1439))
	assert.Equal(t, []string{"08:00", "13:30"}, FormatSlots([]int{480, 810}))
}

func TestCeilMinuteOfDay(t *testing.T) {
	at := func(h, m, s int) time.Time {
		return time.Date(2026, 3, 2, h, m, s, 0, time.UTC)
	}
	assert.Equal(t, 570, CeilMinuteOfDay(at(9, 30, 0)))
	assert.Equal(t, 571, CeilMinuteOfDay(at(9, 30, 20)))
	assert.Equal(t, 570, MinuteOfDay(at(9, 30, 59)))
}

func TestParseMinute(t *testing.T) {
	for _, m := range []int{0, 485, 1439} {
		got, err := ParseMinute(FormatMinute(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMinute("25:00")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	got := StartOfDay(time.Date(2026, 3, 2, 17, 45, 12, 9, loc))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), got)
}
