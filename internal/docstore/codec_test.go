package docstore

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeTime_SortsChronologically(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 3, 4, 5, 600000000, time.UTC),
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)),
		time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC),
	}
	enc := make([]string, len(times))
	for i, tm := range times {
		enc[i] = encodeTime(tm)
	}
	sort.Strings(enc)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, tm := range times {
		require.Equal(t, encodeTime(tm), enc[i])
	}
}

func TestDecode_UntagsNestedTimes(t *testing.T) {
	data, err := decode([]byte(`{"a":{"$time":"2025-05-01T10:00:00.000000Z"},"list":[{"$time":"2025-05-02T00:00:00.000000Z"}],"obj":{"$time":"x","other":1}}`))
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), data["a"])
	require.Equal(t, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), data["list"].([]any)[0])
	require.Equal(t, map[string]any{"$time": "x", "other": float64(1)}, data["obj"])
}

func TestDecode_Empty(t *testing.T) {
	data, err := decode(nil)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestMergeInto_ReplacesNonMaps(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1}, "list": []any{1, 2}, "s": "old"}
	got := mergeInto(dst, map[string]any{"a": map[string]any{"y": 2}, "list": []any{3}, "s": map[string]any{"now": "map"}})
	require.Equal(t, map[string]any{
		"a":    map[string]any{"x": 1, "y": 2},
		"list": []any{3},
		"s":    map[string]any{"now": "map"},
	}, got)
}

func TestResolve_ReplacesServerTimestamps(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := resolve(map[string]any{"a": ServerTimestamp, "n": map[string]any{"b": ServerTimestamp}, "l": []any{ServerTimestamp}}, now)
	require.Equal(t, now, got["a"])
	require.Equal(t, now, got["n"].(map[string]any)["b"])
	require.Equal(t, now, got["l"].([]any)[0])
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
		ok   bool
	}{
		{"ints and floats", 1, 2.5, -1, true},
		{"strings", "b", "a", 1, true},
		{"bools", true, true, 0, true},
		{"string vs number", "1", 1, 0, false},
		{"nil", nil, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compare(tt.a, tt.b)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}
