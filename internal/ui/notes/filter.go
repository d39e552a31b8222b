// Package notes is the notes screen: a filterable list of the user's notes
// grouped by calendar day, with edit and delete restricted to notes
// written today.
package notes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindfulplus/mindful/internal/mindful"
	"github.com/mindfulplus/mindful/internal/timex"
)

type FilterKind string

const (
	FilterAll    FilterKind = "all"
	FilterToday  FilterKind = "today"
	FilterWeek   FilterKind = "week"
	FilterMonth  FilterKind = "month"
	FilterCustom FilterKind = "custom"
)

// Filter is the active notes filter. Start and End are inclusive and only
// meaningful when Kind is not FilterAll.
type Filter struct {
	Kind  FilterKind
	Start time.Time
	End   time.Time
	Label string
}

var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrMissingDate   = fmt.Errorf("%w: missing date", ErrInvalidRange)
	ErrBadDate       = fmt.Errorf("%w: bad date format", ErrInvalidRange)
	ErrStartAfterEnd = fmt.Errorf("%w: start after end", ErrInvalidRange)

	ErrUnknownFilter = errors.New("unknown filter")
)

// RangeMessage is the user-facing text for a custom range error.
func RangeMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingDate):
		return "Enter both dates"
	case errors.Is(err, ErrStartAfterEnd):
		return "The start date must be before the end date"
	case errors.Is(err, ErrBadDate):
		return "Invalid date format. Use YYYY-MM-DD"
	default:
		return "Invalid date range"
	}
}

func AllNotes() Filter { return Filter{Kind: FilterAll, Label: "All notes"} }

// QuickFilter builds one of the preset filters. Each runs from the start of
// its period up to now.
func QuickFilter(kind FilterKind, now time.Time, loc *time.Location) (Filter, error) {
	now = now.In(loc)
	switch kind {
	case FilterAll:
		return AllNotes(), nil
	case FilterToday:
		return Filter{Kind: kind, Start: timex.StartOfDay(now, loc), End: now, Label: "Today"}, nil
	case FilterWeek:
		return Filter{Kind: kind, Start: timex.StartOfWeek(now, loc), End: now, Label: "This week"}, nil
	case FilterMonth:
		return Filter{Kind: kind, Start: timex.StartOfMonth(now, loc), End: now, Label: "This month"}, nil
	}
	return Filter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, kind)
}

// ParseCustomRange turns two YYYY-MM-DD strings into a filter covering
// start 00:00:00 through end 23:59:59 in loc.
func ParseCustomRange(start, end string, loc *time.Location) (Filter, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return Filter{}, ErrMissingDate
	}
	s, err := timex.ParseDay(start, loc)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %q", ErrBadDate, start)
	}
	e, err := timex.ParseDay(end, loc)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: %q", ErrBadDate, end)
	}
	if s.After(e) {
		return Filter{}, ErrStartAfterEnd
	}
	return Filter{
		Kind:  FilterCustom,
		Start: timex.StartOfDay(s, loc),
		End:   timex.EndOfDay(e, loc),
		Label: start + " → " + end,
	}, nil
}

// Query is the notes query for f on field, capped at mindful.MaxNoteQuery
// and ordered by field, newest first.
func Query(f Filter, field string) mindful.NoteQuery {
	q := mindful.NoteQuery{Field: field, Limit: mindful.MaxNoteQuery}
	if f.Kind != FilterAll && !f.Start.IsZero() && !f.End.IsZero() {
		q.From = f.Start.UTC()
		q.To = f.End.UTC()
	}
	return q
}
