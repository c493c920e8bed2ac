// Package timeutil implements the minute-precise time-of-day arithmetic the
// rest of the engine is built on: parsing and rendering "HH:MM", adding
// minutes, overnight-aware duration and overlap, and rest-period math.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is minutes since local midnight, in [0, 1440). A value that
// conceptually wraps past midnight (an overnight shift's end) is still
// stored in [0, 1440); wrap is handled by Duration and Overlaps, which
// know the shift crossed a day boundary because end <= start.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// Parse converts "HH:MM" or "HH:MM:SS" into a TimeOfDay. Both forms appear
// on the wire and from storage; seconds, if present, are discarded.
func Parse(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timeutil: invalid time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("timeutil: time %q out of range", s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustParse is Parse, panicking on error. Reserved for constants and tests.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String renders "HH:MM", the wire format.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Hour returns the hour-of-day component, used by the Availability Resolver
// to key hourly availability records.
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// AddMinutes returns t shifted by n minutes, wrapped into [0, 1440).
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	m := (int(t) + n) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return TimeOfDay(m)
}

// Duration computes the minutes between start and end, treating end <= start
// as an overnight wrap (adding a full day). A zero-length shift (start ==
// end) is always treated as a full 24h wrap, never zero — callers that need
// to reject zero-duration shifts check the SHIFT_INVALID condition upstream
// using the raw datetimes, not this function.
func Duration(start, end TimeOfDay) time.Duration {
	delta := int(end) - int(start)
	if delta <= 0 {
		delta += MinutesPerDay
	}
	return time.Duration(delta) * time.Minute
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) share any
// minute, both normalized for overnight wrap using Duration's rule.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	aLen := Duration(aStart, aEnd)
	bLen := Duration(bStart, bEnd)
	aEndAbs := int(aStart) + int(aLen.Minutes())
	bEndAbs := int(bStart) + int(bLen.Minutes())
	bStartAbs := int(bStart)
	if bStartAbs < int(aStart) {
		bStartAbs += MinutesPerDay
		bEndAbs += MinutesPerDay
	}
	return int(aStart) < bEndAbs && bStartAbs < aEndAbs
}

// Within reports whether point t lies within [start,end), with the same
// overnight-wrap treatment as Duration.
func Within(t, start, end TimeOfDay) bool {
	length := int(Duration(start, end).Minutes())
	offset := int(t) - int(start)
	if offset < 0 {
		offset += MinutesPerDay
	}
	return offset < length
}

// RestBetween returns the rest period, in hours, between the end of a prior
// shift and the start of the next, both full datetimes (date + time-of-day
// already combined by the caller).
func RestBetween(prevEnd, nextStart time.Time) float64 {
	return nextStart.Sub(prevEnd).Hours()
}

// Weekday returns the Monday=0..Sunday=6 index for d, since Go's
// time.Weekday is Sunday=0.
func Weekday(d time.Time) int {
	wd := int(d.Weekday())
	return (wd + 6) % 7
}

// ISOWeekStart returns the Monday that begins the ISO week containing d.
func ISOWeekStart(d time.Time) time.Time {
	offset := Weekday(d)
	y, m, day := d.Date()
	return time.Date(y, m, day-offset, 0, 0, 0, 0, d.Location())
}

// Intervals partitions a day into fixed-length intervals of the given
// granularity, returned as their start TimeOfDay values in chronological
// order starting at 00:00.
func Intervals(granularityMinutes int) []TimeOfDay {
	if granularityMinutes <= 0 || MinutesPerDay%granularityMinutes != 0 {
		panic(fmt.Sprintf("timeutil: granularity %d does not evenly divide a day", granularityMinutes))
	}
	out := make([]TimeOfDay, 0, MinutesPerDay/granularityMinutes)
	for m := 0; m < MinutesPerDay; m += granularityMinutes {
		out = append(out, TimeOfDay(m))
	}
	return out
}

// CombineDateTime builds a full datetime from a calendar date and a
// time-of-day, normalizing to UTC the way the loader's snapshot does.
func CombineDateTime(date time.Time, t TimeOfDay) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), int(t)%60, 0, 0, time.UTC)
}
