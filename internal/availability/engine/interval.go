package engine

import (
	"sort"

	"sisagenda/pkg/model"
)

const MinutesPerDay = model.MinutesPerDay

// Interval is a half-open range [Start, End) of minutes from local midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func NewInterval(start, end int) (Interval, error) {
	i := Interval{Start: start, End: end}
	if err := i.Validate(); err != nil {
		return Interval{}, err
	}
	return i, nil
}

func (i Interval) Validate() error {
	if i.Start < 0 || i.End > MinutesPerDay || i.Start >= i.End {
		return &InvalidIntervalError{Start: i.Start, End: i.End}
	}
	return nil
}

func (i Interval) Duration() int {
	return i.End - i.Start
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

func (i Interval) Contains(inner Interval) bool {
	return i.Start <= inner.Start && inner.End <= i.End
}

// Subtract removes cut from base and returns what is left: nothing when cut
// covers base, base itself when they are disjoint, otherwise one or two pieces.
func Subtract(base, cut Interval) ([]Interval, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if err := cut.Validate(); err != nil {
		return nil, err
	}

	if !base.Overlaps(cut) {
		return []Interval{base}, nil
	}

	remaining := make([]Interval, 0, 2)
	if base.Start < cut.Start {
		remaining = append(remaining, Interval{Start: base.Start, End: cut.Start})
	}
	if cut.End < base.End {
		remaining = append(remaining, Interval{Start: cut.End, End: base.End})
	}
	return remaining, nil
}

// Merge sorts intervals and joins the ones that overlap or touch.
func Merge(intervals []Interval) ([]Interval, error) {
	if len(intervals) == 0 {
		return []Interval{}, nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	for _, i := range sorted {
		if err := i.Validate(); err != nil {
			return nil, err
		}
	}
	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].Start == sorted[b].Start {
			return sorted[a].End < sorted[b].End
		}
		return sorted[a].Start < sorted[b].Start
	})

	merged := []Interval{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if next.Start <= last.End {
			last.End = max(last.End, next.End)
			continue
		}
		merged = append(merged, next)
	}
	return merged, nil
}

// SubtractAll removes cut from every window.
func SubtractAll(windows []Interval, cut Interval) ([]Interval, error) {
	result := make([]Interval, 0, len(windows))
	for _, w := range windows {
		pieces, err := Subtract(w, cut)
		if err != nil {
			return nil, err
		}
		result = append(result, pieces...)
	}
	return result, nil
}
