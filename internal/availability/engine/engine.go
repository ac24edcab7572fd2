// Package engine computes bookable slots for one calendar day from weekly
// rules, overrides, a lunch exclusion and existing appointments. It performs
// no I/O; callers load the inputs and hand them over as a Day.
package engine

import "sisagenda/pkg/model"

type Day struct {
	Rules           []*model.WeeklyRule
	Overrides       []*model.Override
	Lunch           *Interval
	SlotDuration    int
	Busy            []Busy
	NotBeforeMinute int
}

// Compute runs the resolver, the exclusion applier, the slot generator and
// the conflict filter in that order and returns ascending slot starts.
func Compute(day Day) ([]int, error) {
	if day.SlotDuration <= 0 {
		return nil, &InvalidConfigurationError{Field: "slot duration", Value: day.SlotDuration}
	}

	windows, err := ResolveWindows(day.Rules, day.Overrides)
	if err != nil {
		return nil, err
	}

	windows, err = ApplyExclusions(windows, day.Lunch)
	if err != nil {
		return nil, err
	}

	slots, err := GenerateSlots(windows, day.SlotDuration)
	if err != nil {
		return nil, err
	}

	return FilterConflicts(slots, day.SlotDuration, day.Busy, day.NotBeforeMinute), nil
}
