package ledger

import (
	"sort"
	"strconv"
	"strings"
)

// Canonicalize renders a payload into the single canonical form used for the
// whole ledger: keys sorted, "key=value" pairs joined by "|", nested maps
// canonicalized recursively. Two logically identical payloads always produce
// byte-identical output; the signature, the persisted context blob and
// offline verification all use this one encoding.
func Canonicalize(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+canonicalValue(payload[k]))
	}
	return strings.Join(parts, "|")
}

func canonicalValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case *int64:
		if val == nil {
			return ""
		}
		return strconv.FormatInt(*val, 10)
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case map[string]any:
		return Canonicalize(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return Canonicalize(m)
	default:
		// The payload vocabulary is closed; anything else is a programming
		// error surfaced as an empty, stable value rather than a panic.
		return ""
	}
}
