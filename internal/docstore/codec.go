package docstore

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// timeLayout is fixed-width UTC so encoded timestamps sort lexically in
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const timeTag = "$time"

// encodeTime is the string form used both in stored JSON and in SQL
// comparisons against it.
func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// resolve replaces ServerTimestamp sentinels with now and returns a copy.
func resolve(data map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = resolveValue(v, now)
	}
	return out
}

func resolveValue(v any, now time.Time) any {
	switch value := v.(type) {
	case serverTimestamp:
		return now
	case map[string]any:
		return resolve(value, now)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = resolveValue(item, now)
		}
		return out
	default:
		return v
	}
}

func encode(data map[string]any) ([]byte, error) {
	return json.Marshal(tagTimes(data))
}

func tagTimes(v any) any {
	switch value := v.(type) {
	case time.Time:
		return map[string]any{timeTag: encodeTime(value)}
	case *time.Time:
		if value == nil {
			return nil
		}
		return map[string]any{timeTag: encodeTime(*value)}
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = tagTimes(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = tagTimes(item)
		}
		return out
	default:
		return v
	}
}

func decode(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return untagTimes(data).(map[string]any), nil
}

func untagTimes(v any) any {
	switch value := v.(type) {
	case map[string]any:
		if len(value) == 1 {
			if s, ok := value[timeTag].(string); ok {
				if t, err := time.Parse(timeLayout, s); err == nil {
					return t
				}
			}
		}
		for k, item := range value {
			value[k] = untagTimes(item)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = untagTimes(item)
		}
		return value
	default:
		return v
	}
}

// mergeInto deep-merges src into dst. Nested maps merge; everything else,
// including slices, is replaced.
func mergeInto(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = mergeInto(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// lookup reads a possibly dotted field path ("professional.type").
func lookup(data map[string]any, field string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// compare orders a and b when they share a type family. ok is false for
// mismatched or unordered types.
func compare(a, b any) (cmp int, ok bool) {
	switch av := a.(type) {
	case time.Time:
		bv, isTime := b.(time.Time)
		if !isTime {
			return 0, false
		}
		return av.Compare(bv), true
	case string:
		bv, isString := b.(string)
		if !isString {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, isBool := b.(bool)
		if !isBool || av == bv {
			return 0, isBool
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func matches(data map[string]any, f Filter) bool {
	v, ok := lookup(data, f.Field)
	if !ok {
		return false
	}
	c, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEQ:
		return c == 0
	case OpGT:
		return c > 0
	case OpGTE:
		return c >= 0
	case OpLT:
		return c < 0
	case OpLTE:
		return c <= 0
	}
	return false
}
