package notes

import (
	"testing"
	"time"

	"github.com/mindfulplus/mindful/internal/mindful"
	"github.com/mindfulplus/mindful/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mexico(t *testing.T) *time.Location {
	t.Helper()
	loc, err := timex.LoadLocation(timex.DefaultZone)
	require.NoError(t, err)
	return loc
}

func TestParseCustomRange_Localizes(t *testing.T) {
	loc := mexico(t)

	f, err := ParseCustomRange("2024-03-01", "2024-03-31", loc)
	require.NoError(t, err)

	assert.Equal(t, FilterCustom, f.Kind)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), f.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, loc), f.End)
	assert.Equal(t, "2024-03-01T00:00:00", f.Start.In(loc).Format("2006-01-02T15:04:05"))
	assert.Equal(t, "2024-03-31T23:59:59", f.End.In(loc).Format("2006-01-02T15:04:05"))
	assert.Equal(t, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), f.Start.UTC())
}

func TestParseCustomRange_Rejects(t *testing.T) {
	loc := mexico(t)
	tests := []struct {
		name       string
		start, end string
		want       error
		msg        string
	}{
		{name: "start after end", start: "2024-03-10", end: "2024-03-05", want: ErrStartAfterEnd, msg: "The start date must be before the end date"},
		{name: "empty start", start: "", end: "2024-03-05", want: ErrMissingDate, msg: "Enter both dates"},
		{name: "blank end", start: "2024-03-05", end: "   ", want: ErrMissingDate, msg: "Enter both dates"},
		{name: "bad format", start: "05/03/2024", end: "2024-03-10", want: ErrBadDate, msg: "Invalid date format. Use YYYY-MM-DD"},
		{name: "impossible date", start: "2024-02-30", end: "2024-03-10", want: ErrBadDate, msg: "Invalid date format. Use YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCustomRange(tt.start, tt.end, loc)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, ErrInvalidRange)
			assert.Equal(t, tt.msg, RangeMessage(err))
		})
	}
}

func TestParseCustomRange_SameDay(t *testing.T) {
	loc := mexico(t)
	f, err := ParseCustomRange("2024-03-05", "2024-03-05", loc)
	require.NoError(t, err)
	assert.True(t, f.Start.Before(f.End))
}

func TestQuickFilter(t *testing.T) {
	loc := mexico(t)
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, loc)

	today, err := QuickFilter(FilterToday, now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, loc), today.Start)
	assert.True(t, today.End.Equal(now))
	assert.Equal(t, "Today", today.Label)

	week, err := QuickFilter(FilterWeek, now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, loc), week.Start)

	month, err := QuickFilter(FilterMonth, now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), month.Start)

	all, err := QuickFilter(FilterAll, now, loc)
	require.NoError(t, err)
	assert.Equal(t, AllNotes(), all)

	_, err = QuickFilter("year", now, loc)
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestQuery(t *testing.T) {
	loc := mexico(t)
	f, err := ParseCustomRange("2024-03-01", "2024-03-31", loc)
	require.NoError(t, err)

	q := Query(f, FieldUpdatedAt)
	assert.Equal(t, FieldUpdatedAt, q.Field)
	assert.Equal(t, mindful.MaxNoteQuery, q.Limit)
	assert.Equal(t, time.UTC, q.From.Location())
	assert.True(t, q.From.Equal(f.Start))
	assert.True(t, q.To.Equal(f.End))

	all := Query(AllNotes(), FieldUpdatedAt)
	assert.True(t, all.From.IsZero())
	assert.True(t, all.To.IsZero())
	assert.Equal(t, 500, all.Limit)
}
