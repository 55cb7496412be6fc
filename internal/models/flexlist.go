package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexList is a list field that upstream writers store either as a JSON array or
// as a single delimited string. It is normalized as soon as it is decoded.
type FlexList []string

// listDelimiters split a plain string into items. Commas are not delimiters:
// category names such as "Food, Beverage" contain them.
var listDelimiters = []string{";", "|", "\n"}

// NormalizeList flattens v into trimmed, lowercased, de-duplicated items.
// v may be nil, a string (plain, delimited, or JSON-encoded array), a []string,
// a []interface{}, a FlexList or any scalar.
func NormalizeList(v interface{}) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	appendNormalized(&out, seen, v)
	return out
}

func appendNormalized(out *[]string, seen map[string]struct{}, v interface{}) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		appendString(out, seen, val)
	case []byte:
		appendString(out, seen, string(val))
	case []string:
		for _, item := range val {
			appendString(out, seen, item)
		}
	case FlexList:
		for _, item := range val {
			appendString(out, seen, item)
		}
	case []interface{}:
		for _, item := range val {
			appendNormalized(out, seen, item)
		}
	default:
		appendString(out, seen, fmt.Sprint(val))
	}
}

func appendString(out *[]string, seen map[string]struct{}, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var items []interface{}
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			for _, item := range items {
				appendNormalized(out, seen, item)
			}
			return
		}
	}

	parts := []string{s}
	for _, d := range listDelimiters {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, d)...)
		}
		parts = next
	}

	for _, p := range parts {
		item := strings.ToLower(strings.TrimSpace(p))
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		*out = append(*out, item)
	}
}

// UnmarshalJSON accepts null, a string or an array.
func (l *FlexList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode list field: %w", err)
	}
	*l = NormalizeList(raw)
	return nil
}

// Scan implements sql.Scanner for text, varchar and json/jsonb columns.
func (l *FlexList) Scan(src interface{}) error {
	*l = NormalizeList(src)
	return nil
}

// Value stores the list as a JSON array.
func (l FlexList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains reports whether the normalized form of item is in the list.
func (l FlexList) Contains(item string) bool {
	needle := strings.ToLower(strings.TrimSpace(item))
	for _, v := range l {
		if v == needle {
			return true
		}
	}
	return false
}
