package notes

import (
	"sort"
	"time"

	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/timex"
)

const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

type Group struct {
	Key   string
	Label string
	Notes []models.Note
}

// fieldTime reads the timestamp a note is filtered or grouped by.
func fieldTime(n models.Note, field string) time.Time {
	if field == FieldUpdatedAt {
		return n.UpdatedAt
	}
	return n.CreatedAt
}

// dayKey is the day-key of t; a missing timestamp belongs to today.
func dayKey(t, now time.Time, loc *time.Location) string {
	if t.IsZero() {
		return timex.DayKey(now, loc)
	}
	return timex.DayKey(t, loc)
}

// CreatedKey is the creation day-key of n.
func CreatedKey(n models.Note, now time.Time, loc *time.Location) string {
	return dayKey(n.CreatedAt, now, loc)
}

// CanModify reports whether n was created today, the only day it may be
// edited or deleted.
func CanModify(n models.Note, now time.Time, loc *time.Location) bool {
	return CreatedKey(n, now, loc) == timex.DayKey(now, loc)
}

// GroupNotes buckets notes by the day-key of field. Groups come newest day
// first; notes keep their input order inside a group.
func GroupNotes(notes []models.Note, field string, now time.Time, loc *time.Location) []Group {
	byKey := make(map[string]*Group)
	var keys []string
	for _, n := range notes {
		k := dayKey(fieldTime(n, field), now, loc)
		g, ok := byKey[k]
		if !ok {
			g = &Group{Key: k, Label: DayLabel(k, now, loc)}
			byKey[k] = g
			keys = append(keys, k)
		}
		g.Notes = append(g.Notes, n)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// DayLabel renders a day-key as "Today", "Yesterday" or "2 January".
func DayLabel(key string, now time.Time, loc *time.Location) string {
	d, err := timex.ParseDay(key, loc)
	if err != nil {
		return key
	}
	switch key {
	case timex.DayKey(now, loc):
		return "Today"
	case timex.DayKey(timex.StartOfDay(now, loc).AddDate(0, 0, -1), loc):
		return "Yesterday"
	}
	return d.Format("2 January")
}
