package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

var cardStringFields = []string{"email", "agent_name", "company_name"}

var webPresenceFields = []string{"website", "facebook", "instagram", "twitter"}

// NormalizeContactJSON brings a decoded completion into the envelope shape:
//   - a missing "data" wrapper is added around a bare card
//   - blank strings and "null"/"none"/"n/a" placeholders become null
//   - numbers in string fields are rendered as strings
//   - phone_numbers given as one string becomes a one-element list; null becomes []
//   - a null or missing web_presence becomes an object of nulls
//
// It returns the re-encoded envelope and the list of adjustments made.
func NormalizeContactJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changed := make([]string, 0, 4)
	card, ok := m["data"].(map[string]any)
	if !ok {
		if _, present := m["data"]; present {
			return nil, nil, fmt.Errorf("sanitize: data is %T, want object", m["data"])
		}
		card = m
		changed = append(changed, "data(wrapped)")
	}

	for _, k := range cardStringFields {
		if note := normalizeString(card, k); note != "" {
			changed = append(changed, note)
		}
	}

	switch v := card["phone_numbers"].(type) {
	case nil:
		card["phone_numbers"] = []any{}
		changed = append(changed, "phone_numbers(null)")
	case string:
		if s := strings.TrimSpace(v); s != "" && !isPlaceholder(s) {
			card["phone_numbers"] = []any{s}
		} else {
			card["phone_numbers"] = []any{}
		}
		changed = append(changed, "phone_numbers(string)")
	case []any:
		list := make([]any, 0, len(v))
		for _, item := range v {
			if s, ok := scalarString(item); ok && s != "" && !isPlaceholder(s) {
				list = append(list, s)
			}
		}
		if len(list) != len(v) {
			changed = append(changed, "phone_numbers(items)")
		}
		card["phone_numbers"] = list
	}

	switch v := card["web_presence"].(type) {
	case nil:
		wp := make(map[string]any, len(webPresenceFields))
		for _, k := range webPresenceFields {
			wp[k] = nil
		}
		card["web_presence"] = wp
		changed = append(changed, "web_presence(null)")
	case map[string]any:
		for _, k := range webPresenceFields {
			if note := normalizeString(v, k); note != "" {
				changed = append(changed, "web_presence."+note)
			}
		}
	}

	out, err := json.Marshal(map[string]any{"data": card})
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("llm.parse.normalize_sanitize", "changed", changed)
	}
	return out, changed, nil
}

// normalizeString rewrites m[k] in place and returns a note when it changed anything.
func normalizeString(m map[string]any, k string) string {
	v, present := m[k]
	if !present {
		m[k] = nil
		return k + "(missing)"
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if s == "" || isPlaceholder(s) {
			m[k] = nil
			return k + "(empty)"
		}
		if s != t {
			m[k] = s
			return k + "(trimmed)"
		}
		return ""
	case float64, bool:
		s, _ := scalarString(t)
		m[k] = s
		return k + "(coerced)"
	default:
		m[k] = nil
		return k + "(type)"
	}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(s) {
	case "null", "none", "n/a", "na", "-":
		return true
	}
	return false
}
