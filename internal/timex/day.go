// Package timex groups the calendar helpers the views rely on: day-keys in
// the configured zone, day and period bounds, and a JSON duration type for
// configuration files.
package timex

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the zone used to bucket notes and diagnostics by day.
const DefaultZone = "America/Mexico_City"

// DayKeyLayout formats a day-key.
const DayKeyLayout = "2006-01-02"

// Clock returns the current time. Views take one so tests can pin "now".
type Clock func() time.Time

// LoadLocation resolves name, defaulting to DefaultZone when name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// DayKey is the calendar date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// StartOfDay is local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59 local of the day containing t.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 0, loc)
}

// DayBounds returns [local midnight, next local midnight) around t.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// StartOfWeek is Monday 00:00 local of the week containing t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	start := StartOfDay(t, loc)
	offset := (int(start.Weekday()) + 6) % 7
	return start.AddDate(0, 0, -offset)
}

// StartOfMonth is the 1st at 00:00 local of the month containing t.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), 1, 0, 0, 0, 0, loc)
}

// ParseDay parses a YYYY-MM-DD string as local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, s, loc)
}
