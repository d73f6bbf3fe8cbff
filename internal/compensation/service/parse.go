package service

import (
	"encoding/json"
	"strconv"
	"strings"
)

// truthy reports whether a loosely typed flag means "yes". Booleans pass
// through; strings accept the tokens the field has historically carried,
// case-insensitively. Everything else is false.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "sim":
			return true
		}
	}
	return false
}

// stringField returns the named field as a trimmed string; absent, null
// or non-string values come back empty.
func stringField(item map[string]any, key string) string {
	raw, ok := item[key]
	if !ok || raw == nil {
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// intValue coerces a JSON value to an integer. Numbers are truncated
// toward zero; strings must parse as a plain integer.
func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		parsed, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// floatValue coerces a JSON value to a float64.
func floatValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
