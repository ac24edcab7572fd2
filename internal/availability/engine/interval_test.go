package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(start, end int) Interval {
	return Interval{Start: start, End: end}
}

func TestNewInterval(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		end     int
		wantErr bool
	}{
		{"regular", 480, 720, false},
		{"whole day", 0, MinutesPerDay, false},
		{"single minute", 10, 11, false},
		{"empty", 600, 600, true},
		{"reversed", 700, 600, true},
		{"negative start", -1, 60, true},
		{"past midnight", 1400, MinutesPerDay + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInterval(tt.start, tt.end)
			if tt.wantErr {
				var invalid *InvalidIntervalError
				require.Error(t, err)
				assert.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.start, invalid.Start)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, iv(tt.start, tt.end), got)
		})
	}
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", iv(0, 60), iv(120, 180), false},
		{"touching is not overlapping", iv(0, 60), iv(60, 120), false},
		{"partial", iv(0, 60), iv(30, 90), true},
		{"nested", iv(0, 120), iv(30, 60), true},
		{"identical", iv(30, 60), iv(30, 60), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestInterval_Contains(t *testing.T) {
	outer := iv(480, 720)
	assert.True(t, outer.Contains(iv(480, 720)))
	assert.True(t, outer.Contains(iv(500, 600)))
	assert.False(t, outer.Contains(iv(470, 600)))
	assert.False(t, outer.Contains(iv(700, 730)))
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name string
		base Interval
		cut  Interval
		want []Interval
	}{
		{"disjoint keeps base", iv(480, 600), iv(700, 800), []Interval{iv(480, 600)}},
		{"adjacent keeps base", iv(480, 600), iv(600, 700), []Interval{iv(480, 600)}},
		{"cut covers base", iv(480, 600), iv(400, 700), []Interval{}},
		{"identical", iv(480, 600), iv(480, 600), []Interval{}},
		{"cut head", iv(480, 600), iv(400, 500), []Interval{iv(500, 600)}},
		{"cut tail", iv(480, 600), iv(550, 700), []Interval{iv(480, 550)}},
		{"cut middle", iv(480, 1020), iv(720, 780), []Interval{iv(480, 720), iv(780, 1020)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subtract(tt.base, tt.cut)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubtract_InvalidInput(t *testing.T) {
	var invalid *InvalidIntervalError

	_, err := Subtract(iv(600, 500), iv(0, 60))
	assert.ErrorAs(t, err, &invalid)

	_, err = Subtract(iv(0, 60), iv(30, 30))
	assert.ErrorAs(t, err, &invalid)
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{"empty", nil, []Interval{}},
		{"single", []Interval{iv(60, 120)}, []Interval{iv(60, 120)}},
		{"unsorted disjoint", []Interval{iv(780, 1020), iv(480, 720)}, []Interval{iv(480, 720), iv(780, 1020)}},
		{"overlapping", []Interval{iv(480, 600), iv(540, 720)}, []Interval{iv(480, 720)}},
		{"adjacent", []Interval{iv(480, 600), iv(600, 720)}, []Interval{iv(480, 720)}},
		{"nested", []Interval{iv(480, 1020), iv(600, 700)}, []Interval{iv(480, 1020)}},
		{"chain", []Interval{iv(0, 10), iv(50, 60), iv(5, 55)}, []Interval{iv(0, 60)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []Interval{iv(600, 700), iv(100, 200)}
	_, err := Merge(in)
	require.NoError(t, err)
	assert.Equal(t, []Interval{iv(600, 700), iv(100, 200)}, in)
}

func TestMerge_RejectsDegenerate(t *testing.T) {
	_, err := Merge([]Interval{iv(100, 200), iv(300, 300)})
	var invalid *InvalidIntervalError
	assert.ErrorAs(t, err, &invalid)
}
