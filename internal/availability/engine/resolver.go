package engine

import "sisagenda/pkg/model"

// ResolveWindows layers the day's overrides on top of its weekly rules.
// Rules are merged, ADD overrides are unioned in, then every BLOCK override
// is cut out. Applying all ADDs before any BLOCK keeps the result independent
// of override ordering. No rules and no ADDs yields an empty, valid result.
func ResolveWindows(rules []*model.WeeklyRule, overrides []*model.Override) ([]Interval, error) {
	base := make([]Interval, 0, len(rules))
	for _, r := range rules {
		if r.DeletedAt != nil {
			continue
		}
		base = append(base, Interval{Start: r.StartMinute, End: r.EndMinute})
	}

	windows, err := Merge(base)
	if err != nil {
		return nil, err
	}

	adds, blocks, err := splitOverrides(overrides)
	if err != nil {
		return nil, err
	}

	if len(adds) > 0 {
		windows, err = Merge(append(windows, adds...))
		if err != nil {
			return nil, err
		}
	}

	for _, block := range blocks {
		windows, err = SubtractAll(windows, block)
		if err != nil {
			return nil, err
		}
	}

	return windows, nil
}

func splitOverrides(overrides []*model.Override) (adds, blocks []Interval, err error) {
	for _, o := range overrides {
		start, end, ok := o.Bounds()
		if !ok {
			return nil, nil, &InvalidIntervalError{Start: derefOr(o.StartMinute, -1), End: derefOr(o.EndMinute, -1)}
		}
		i := Interval{Start: start, End: end}
		if err := i.Validate(); err != nil {
			return nil, nil, err
		}

		switch o.Kind {
		case model.OverrideAdd:
			adds = append(adds, i)
		case model.OverrideBlock:
			blocks = append(blocks, i)
		}
	}
	return adds, blocks, nil
}

func derefOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
