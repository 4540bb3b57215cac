// Package interval models half-open time-of-day intervals on a single
// calendar day. Clock values are fixed-width "HH:MM" strings, so lexical
// comparison is temporal comparison and no parsing is needed on the hot path.
package interval

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClock is returned when a time-of-day string is not a
	// zero-padded 24-hour "HH:MM" value.
	ErrInvalidClock = errors.New("interval: invalid clock value")
	// ErrInvalidRange is returned when an interval's start is not strictly
	// before its end.
	ErrInvalidRange = errors.New("interval: start must be before end")
)

// Clock is a wall-clock time of day in zero-padded 24-hour "HH:MM" form.
type Clock string

// ParseClock validates a candidate time-of-day string.
func ParseClock(value string) (Clock, error) {
	if len(value) != 5 || value[2] != ':' {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return Clock(value), nil
}

// ClockFromHour renders a whole hour as a Clock value.
func ClockFromHour(hour int) Clock {
	return ClockFromMinutes(hour * 60)
}

// ClockFromMinutes renders minutes since midnight as a Clock value.
func ClockFromMinutes(minutes int) Clock {
	return Clock(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
}

// Interval is a half-open time range [Start, End) within one day.
type Interval struct {
	Start Clock
	End   Clock
}

// New validates both bounds and their ordering before constructing an interval.
func New(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, s, e)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open intervals share any instant.
// Intervals that touch only at a boundary do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}
