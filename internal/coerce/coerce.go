// Package coerce provides typed extractors over loosely typed decoded JSON
// (map[string]any), plus the three query-string builders venues disagree on,
// per spec.md §4.1. It generalizes the ad hoc `.(float64)`/`.(string)`
// walking the teacher's market/api_client.go does inline (parseKline,
// handleHyperliquidMessage) into reusable, default-falling-back helpers.
package coerce

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// M is a decoded JSON object: the semi-structured value type spec.md §9
// recommends modeling dynamic payload access around, instead of
// proliferating per-venue DTOs.
type M map[string]any

// present reports whether key's value should be treated as present: not
// missing, not explicit null, not the empty string.
func present(m M, key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}

// Float extracts a float64, accepting JSON numbers or numeric strings;
// returns def on absence or parse failure.
func Float(m M, key string, def float64) float64 {
	v, ok := present(m, key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// FloatPtr is Float, but returns nil instead of a default so absent
// optional fields surface as "undefined" per spec.md §4.10, never 0.
func FloatPtr(m M, key string) *float64 {
	v, ok := present(m, key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Int extracts an int64, accepting JSON numbers or numeric strings.
func Int(m M, key string, def int64) int64 {
	v, ok := present(m, key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return def
		}
		return i
	default:
		return def
	}
}

// Str extracts a string, stringifying JSON numbers/bools if necessary.
func Str(m M, key string, def string) string {
	v, ok := present(m, key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return def
	}
}

// Upper is Str case-folded to upper.
func Upper(m M, key string, def string) string {
	return strings.ToUpper(Str(m, key, def))
}

// Lower is Str case-folded to lower.
func Lower(m M, key string, def string) string {
	return strings.ToLower(Str(m, key, def))
}

// Str2 is the two-key fallback variant: returns the first of keyA/keyB
// that is present, else def.
func Str2(m M, keyA, keyB string, def string) string {
	if _, ok := present(m, keyA); ok {
		return Str(m, keyA, def)
	}
	return Str(m, keyB, def)
}

// Float2 is the two-key fallback variant for Float.
func Float2(m M, keyA, keyB string, def float64) float64 {
	if _, ok := present(m, keyA); ok {
		return Float(m, keyA, def)
	}
	return Float(m, keyB, def)
}

// Bool extracts a bool, accepting JSON booleans or the strings
// "true"/"false".
func Bool(m M, key string, def bool) bool {
	v, ok := present(m, key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Sub returns m[key] as an M, or an empty M if it is not an object.
func Sub(m M, key string) M {
	v, ok := present(m, key)
	if !ok {
		return M{}
	}
	if sub, ok := v.(map[string]any); ok {
		return M(sub)
	}
	return M{}
}

// ISODatetime formats a millisecond Unix timestamp as an RFC 3339 string
// with millisecond precision, per spec.md §3 ("ISO datetime").
func ISODatetime(timestampMs int64) string {
	return msToTime(timestampMs).UTC().Format("2006-01-02T15:04:05.000Z")
}

// EncodedQuery alphabetizes params by key and percent-encodes them,
// "&"-joined — the general URL-composition query builder of spec.md §4.1.
func EncodedQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	v := url.Values{}
	for _, k := range keys {
		v.Set(k, params[k])
	}
	return v.Encode()
}

// RawQuery joins params in the given key order with no percent-encoding —
// the Binance-style signature-string query builder of spec.md §4.1. Keys
// not present in order are appended afterward, alphabetized, so callers can
// pass a partial explicit order (e.g. just ["timestamp"]) and still get a
// deterministic result for the rest.
func RawQuery(params map[string]string, order []string) string {
	seen := make(map[string]bool, len(order))
	parts := make([]string, 0, len(params))
	for _, k := range order {
		if v, ok := params[k]; ok && !seen[k] {
			parts = append(parts, k+"="+v)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(params))
	for k := range params {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, "&")
}

// AlphabetizedRaw joins every param in key-alphabetized order, unencoded
// ("k=v&..." — the LBank pre-signature string shape of spec.md §4.4).
func AlphabetizedRaw(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, "&")
}
