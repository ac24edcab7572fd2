package engine

import (
	"time"

	"sisagenda/pkg/model"
)

// Busy is an appointment projected onto the queried day.
type Busy struct {
	Interval Interval
	Status   model.AppointmentStatus
}

// ProjectAppointment clips an appointment to the day starting at dayStart.
// The second result is false when the appointment does not touch that day.
// Minutes are read from the wall clock of dayStart's location, the same way
// slots are, so the projection holds on days the clock shifts.
func ProjectAppointment(a *model.Appointment, dayStart time.Time) (Busy, bool) {
	dayEnd := dayStart.AddDate(0, 0, 1)
	start, end := a.Date, a.End()
	if !start.Before(dayEnd) || !end.After(dayStart) {
		return Busy{}, false
	}

	loc := dayStart.Location()
	localStart, localEnd := start.In(loc), end.In(loc)
	startsToday := sameDate(localStart, dayStart)

	startMin := 0
	if startsToday {
		startMin = MinuteOfDay(localStart)
	}
	endMin := MinutesPerDay
	if sameDate(localEnd, dayStart) {
		endMin = CeilMinuteOfDay(localEnd)
		if startsToday {
			// A repeated hour can put the wall-clock end at or before the start.
			endMin = max(endMin, min(startMin+ceilMinutes(end.Sub(start)), MinutesPerDay))
		}
	}
	if startMin >= endMin {
		return Busy{}, false
	}

	return Busy{
		Interval: Interval{Start: startMin, End: endMin},
		Status:   a.Status,
	}, true
}

func ceilMinutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FilterConflicts drops slots that overlap an occupying appointment and slots
// starting before notBefore. Pass notBefore 0 for days after today.
func FilterConflicts(slots []int, duration int, busy []Busy, notBefore int) []int {
	free := make([]int, 0, len(slots))
	for _, start := range slots {
		slot := Interval{Start: start, End: start + duration}
		if overlapsAny(slot, busy) {
			continue
		}
		if start < notBefore {
			continue
		}
		free = append(free, start)
	}
	return free
}

func overlapsAny(slot Interval, busy []Busy) bool {
	for _, b := range busy {
		if !b.Status.Occupies() {
			continue
		}
		if slot.Overlaps(b.Interval) {
			return true
		}
	}
	return false
}
