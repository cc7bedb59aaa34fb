// Package fields extracts values from loosely-shaped JSON documents decoded into
// map[string]any / []any trees. Every lookup goes through an ordered alias list so
// that a new upstream field name is a configuration change, not a code change.
package fields

import (
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var nonNumeric = regexp.MustCompile(`[^\d\-]`)

// Lookup resolves a dotted path ("event_entry.rank") inside obj.
func Lookup(obj map[string]any, path string) (any, bool) {
	if obj == nil || path == "" {
		return nil, false
	}
	cur := any(obj)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// First returns the value of the first alias present with a non-null value.
func First(obj map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := Lookup(obj, alias); ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any alias resolves to a non-null value.
func Has(obj map[string]any, aliases []string) bool {
	_, ok := First(obj, aliases)
	return ok
}

// String returns the first alias that yields a non-empty string.
// Numbers are rendered without a fractional part when integral.
func String(obj map[string]any, aliases []string) (string, bool) {
	for _, alias := range aliases {
		v, ok := Lookup(obj, alias)
		if !ok {
			continue
		}
		if s := ToString(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// Int returns the coerced value of the first alias present. The second result is
// false when no alias is present or the present value cannot be coerced.
func Int(obj map[string]any, aliases []string) (int, bool) {
	v, ok := First(obj, aliases)
	if !ok {
		return 0, false
	}
	return ToInt(v)
}

func ToString(v any) string {
	switch t := v.(type) {
	case nil, map[string]any, []any:
		return ""
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			v = int64(t)
		}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// ToInt coerces numbers, numeric strings and display strings such as "1,234pt".
// The value is first cast as a float; failing that, every character other than
// digits and '-' is stripped and the remainder cast again.
func ToInt(v any) (int, bool) {
	switch t := v.(type) {
	case nil, bool, map[string]any, []any:
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if n, ok := castInt(s); ok {
			return n, true
		}
		digits := nonNumeric.ReplaceAllString(s, "")
		if digits == "" {
			return 0, false
		}
		return castInt(digits)
	}
	return castInt(v)
}

func castInt(v any) (int, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Point coerces to a non-negative point total; anything unusable is 0.
func Point(obj map[string]any, aliases []string) int {
	n, ok := Int(obj, aliases)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// Rank coerces to a non-negative rank; anything unusable is nil.
func Rank(obj map[string]any, aliases []string) *int {
	n, ok := Int(obj, aliases)
	if !ok || n < 0 {
		return nil
	}
	return &n
}
