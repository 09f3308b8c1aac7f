package util

import "strings"

// Str pulls a string field out of a raw vendor record, tolerating absent
// keys and non-string values.
func Str(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// StrList pulls a list of strings, dropping non-string elements.
func StrList(raw map[string]any, key string) []string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// CleanText collapses whitespace runs (including non-breaking spaces) to
// single spaces and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
