package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyExclusions(t *testing.T) {
	lunch := iv(720, 780)

	tests := []struct {
		name    string
		windows []Interval
		lunch   *Interval
		want    []Interval
	}{
		{"no lunch", []Interval{iv(480, 1020)}, nil, []Interval{iv(480, 1020)}},
		{"empty lunch", []Interval{iv(480, 1020)}, &Interval{Start: 720, End: 720}, []Interval{iv(480, 1020)}},
		{"lunch splits window", []Interval{iv(480, 1020)}, &lunch, []Interval{iv(480, 720), iv(780, 1020)}},
		{"lunch already outside", []Interval{iv(480, 720), iv(780, 1020)}, &lunch, []Interval{iv(480, 720), iv(780, 1020)}},
		{"lunch equals window", []Interval{iv(720, 780), iv(900, 960)}, &lunch, []Interval{iv(900, 960)}},
		{"lunch larger than window", []Interval{iv(730, 770)}, &lunch, []Interval{}},
		{"no windows", nil, &lunch, []Interval{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyExclusions(tt.windows, tt.lunch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyExclusions_ReversedLunch(t *testing.T) {
	_, err := ApplyExclusions([]Interval{iv(480, 1020)}, &Interval{Start: 780, End: 720})
	var invalid *InvalidIntervalError
	assert.ErrorAs(t, err, &invalid)
}
