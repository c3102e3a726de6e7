package model

import (
	"encoding/json"
	"strings"
)

// StringList is a []string that tolerates the shapes models actually emit:
// a native JSON array, a JSON-encoded array inside a string, or plain text
// split on commas (ASCII and fullwidth), enumeration commas, and newlines.
type StringList []string

// UnmarshalJSON accepts arrays, stringified arrays, and delimited text.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = fromAnySlice(arr)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = CoerceStringList(s)
		return nil
	}

	// Unknown scalar (number, bool); keep its text form.
	*l = StringList{strings.TrimSpace(string(data))}
	return nil
}

// CoerceStringList converts free text to a list: a JSON array string is
// parsed, anything else is split on comma variants and newlines.
func CoerceStringList(text string) StringList {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(text), &arr); err == nil {
			return fromAnySlice(arr)
		}
	}

	replaced := strings.NewReplacer("，", ",", "、", ",", "\n", ",").Replace(text)
	var out StringList
	for _, part := range strings.Split(replaced, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fromAnySlice(arr []any) StringList {
	var out StringList
	for _, item := range arr {
		var s string
		switch v := item.(type) {
		case string:
			s = strings.TrimSpace(v)
		case json.Number:
			s = v.String()
		case float64:
			s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(jsonNumber(v), ".0"), ".00"))
		default:
			b, err := json.Marshal(item)
			if err == nil {
				s = strings.Trim(strings.TrimSpace(string(b)), `"`)
			}
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
