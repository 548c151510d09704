package timeutil

import (
	"fmt"
	"time"

	"timebot/duration"
)

// Clock is a normalized wall-clock time: Hour in 0..23, Minute in 0..59.
type Clock struct {
	Hour   int
	Minute int
}

// String formats c as "15:04".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns c on the calendar day of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Add applies d to c on a zone-independent clock face, wrapping at 24 hours.
func (c Clock) Add(d duration.Duration) Clock {
	t := time.Date(1970, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Add(d.Std())
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// Meridiem is the normalized AM/PM marker.
type Meridiem string

const (
	NoMeridiem Meridiem = ""
	AM         Meridiem = "am"
	PM         Meridiem = "pm"
)

// AmbiguousHour is a 12-hour reading that has not been converted to 24-hour
// form yet. Hour is in 1..12, or 0 after rolling back from one o'clock.
type AmbiguousHour struct {
	Hour     int
	Minute   int
	Meridiem Meridiem
}

// Clock converts h to 24-hour form. Without a marker the hour is kept.
func (h AmbiguousHour) Clock() Clock {
	hour := h.Hour
	switch h.Meridiem {
	case AM:
		if hour == 12 {
			hour = 0
		}
	case PM:
		if hour != 12 {
			hour += 12
		}
	}
	return Clock{Hour: hour, Minute: h.Minute}
}

// Daypart is a named period of the day. Start and End bound a half-open
// hour range [Start, End).
type Daypart struct {
	Name        string
	DefaultHour int
	Start       int
	End         int
}

// Contains reports whether hour falls in [Start, End).
func (d Daypart) Contains(hour int) bool {
	return hour >= d.Start && hour < d.End
}

// Dayparts are the periods recognized after " in the ".
var Dayparts = []Daypart{
	{Name: "morning", DefaultHour: 8, Start: 0, End: 12},
	{Name: "afternoon", DefaultHour: 12, Start: 12, End: 24},
	{Name: "evening", DefaultHour: 17, Start: 12, End: 24},
	{Name: "night", DefaultHour: 20, Start: 12, End: 24},
}

// Value is what the Time phrase resolves to: either an absolute Clock or an
// Offset relative to an implicit now.
type Value struct {
	Clock    Clock
	Offset   duration.Duration
	Relative bool
}

// ClockAt resolves v to a wall-clock time using now for relative values.
func (v Value) ClockAt(now time.Time) Clock {
	if !v.Relative {
		return v.Clock
	}
	return Clock{Hour: now.Hour(), Minute: now.Minute()}.Add(v.Offset)
}

// TimeAt anchors v to a full timestamp. Absolute values land on now's day.
func (v Value) TimeAt(now time.Time) time.Time {
	if !v.Relative {
		return v.Clock.On(now)
	}
	return now.Add(v.Offset.Std())
}
