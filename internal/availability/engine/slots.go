package engine

import (
	"fmt"
	"time"
)

// GenerateSlots walks every window from its start in steps of duration and
// emits each start whose full slot still fits. Trailing remainders are dropped.
func GenerateSlots(windows []Interval, duration int) ([]int, error) {
	if duration <= 0 {
		return nil, &InvalidConfigurationError{Field: "slot duration", Value: duration}
	}

	slots := make([]int, 0)
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		for cursor := w.Start; cursor+duration <= w.End; cursor += duration {
			slots = append(slots, cursor)
		}
	}
	return slots, nil
}

// FormatMinute renders a minute offset as HH:MM.
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// FormatSlots renders slot starts as HH:MM strings, keeping their order.
func FormatSlots(slots []int) []string {
	formatted := make([]string, len(slots))
	for i, s := range slots {
		formatted[i] = FormatMinute(s)
	}
	return formatted
}

// MinuteOfDay returns the minutes elapsed since midnight in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// CeilMinuteOfDay is MinuteOfDay rounded up when t carries seconds, so a slot
// starting at 09:30 is already past at 09:30:20.
func CeilMinuteOfDay(t time.Time) int {
	m := MinuteOfDay(t)
	if t.Second() > 0 || t.Nanosecond() > 0 {
		m++
	}
	return m
}

// ParseMinute is the inverse of FormatMinute.
func ParseMinute(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid HH:MM value %q: %w", s, err)
	}
	return MinuteOfDay(t), nil
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
