package logging

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

const (
	// RedactedValue replaces the value of any sensitive field.
	RedactedValue = "[REDACTED]"
	// MaxValueLength bounds string values written to logs (in runes).
	MaxValueLength = 256

	truncatedSuffix = "...(truncated)"
)

// SensitiveTerms are matched case-insensitively against field keys.
var SensitiveTerms = []string{"password", "token", "key", "secret", "credential", "authorization"}

// IsSensitiveKey reports whether a field key names a credential-like value.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, term := range SensitiveTerms {
		if strings.Contains(k, term) {
			return true
		}
	}
	return false
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr that redacts sensitive keys and truncates
// long string values.
func ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey, slog.SourceKey:
			return a
		}
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, RedactedValue)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, truncate(v.String()))
	case slog.KindAny:
		switch raw := v.Any().(type) {
		case map[string]any:
			return slog.Any(a.Key, RedactFields(raw))
		case error:
			return slog.String(a.Key, truncate(raw.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// RedactFields returns a copy of fields with sensitive keys redacted and long strings
// truncated, descending into nested maps and slices.
func RedactFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if IsSensitiveKey(k) {
			out[k] = RedactedValue
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return truncate(val)
	case error:
		return truncate(val.Error())
	case map[string]any:
		return RedactFields(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxValueLength {
		return s
	}
	return string([]rune(s)[:MaxValueLength]) + truncatedSuffix
}
