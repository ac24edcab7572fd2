package engine

// ApplyExclusions cuts the lunch break out of every window. A nil or
// zero-length lunch leaves the windows untouched apart from normalization.
func ApplyExclusions(windows []Interval, lunch *Interval) ([]Interval, error) {
	if lunch == nil || lunch.Start == lunch.End {
		return Merge(windows)
	}

	remaining, err := SubtractAll(windows, *lunch)
	if err != nil {
		return nil, err
	}
	return Merge(remaining)
}
