package interpreter

import (
	"time"

	"github.com/minhyannv/timebot-go/pkg/query"
)

// NormalizeHour applies the am/pm marker. 12pm stays 12 and, matching the
// behaviour users already rely on, 12am also stays 12.
func NormalizeHour(hour int, m query.Meridiem) int {
	if m == query.PM && hour != 12 {
		return hour + 12
	}
	return hour
}

// Localize builds hour:minute on now's calendar date in loc.
//
// With preferDST set, a wall time that occurs twice in loc resolves to the
// daylight-saving instant, and a wall time skipped by a forward transition is
// read with the daylight offset. Otherwise time.Date picks the offset.
func Localize(now time.Time, hour, minute int, loc *time.Location, preferDST bool) (time.Time, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, &CalendarError{Hour: hour, Minute: minute}
	}
	year, month, day := now.Date()
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if !preferDST {
		return t, nil
	}
	skipped := t.Hour() != hour || t.Minute() != minute
	if t.IsDST() && !skipped {
		return t, nil
	}

	wall := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	for _, probe := range []time.Time{t.Add(-3 * time.Hour), t.Add(3 * time.Hour)} {
		probe = probe.In(loc)
		if !probe.IsDST() {
			continue
		}
		_, offset := probe.Zone()
		candidate := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if skipped || (candidate.Hour() == hour && candidate.Minute() == minute) {
			return candidate, nil
		}
	}
	return t, nil
}
