package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a raw announcement as returned by the list API.
// Every field is optional and must be read through OptString.Or.
type Record struct {
	ProjectName OptString `json:"projectName"`
	ID          OptString `json:"id"`
	PublishDate OptString `json:"publishDate"`
}

// OptString is an optional scalar JSON value.
// Strings are kept as is, numbers are kept in their literal form, null counts as absent.
type OptString struct {
	Value string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = OptString{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode string: %w", err)
		}
		*o = OptString{Value: s, Set: true}
	case '{', '[':
		return fmt.Errorf("unexpected composite value %.20s", data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			// true/false
			*o = OptString{Value: string(data), Set: true}
			return nil //nolint:nilerr // booleans are kept in literal form
		}
		*o = OptString{Value: n.String(), Set: true}
	}
	return nil
}

// Or returns the value, or def if the field is absent or blank
func (o OptString) Or(def string) string {
	if !o.Set || strings.TrimSpace(o.Value) == "" {
		return def
	}
	return o.Value
}
