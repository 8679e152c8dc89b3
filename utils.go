package telemock

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Coercion helpers for request parameters. A value can arrive as a JSON
// number, a JSON string or a form string depending on the client, so every
// helper accepts all of them and falls back to the zero value.

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	}
	return 0
}

func asInt(v any) int {
	return int(asInt64(v))
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// asStringSlice handles both a decoded JSON array and the form encoding
// where the array itself is sent as a JSON string.
func asStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, asString(e))
		}
		return out
	case string:
		var out []string
		if json.Unmarshal([]byte(t), &out) == nil {
			return out
		}
	}
	return nil
}

func asAnySlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case string:
		var out []any
		if json.Unmarshal([]byte(t), &out) == nil {
			return out
		}
	}
	return nil
}

// asRawJSON keeps a structured parameter (like reply_markup) verbatim so
// it round-trips back to the client untouched.
func asRawJSON(v any) json.RawMessage {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if json.Valid([]byte(t)) {
			return json.RawMessage(t)
		}
		return nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return raw
	}
}
