package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FieldID is a select-input value. The dashboard sends ids as either JSON
// numbers or strings; "" means nothing is selected.
type FieldID string

// UnmarshalJSON accepts numbers, strings and null.
func (f *FieldID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FieldID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FieldID(n.String())
	return nil
}

// IDFromInt converts a stored id into a field value; zero means unset.
func IDFromInt(id int64) FieldID {
	if id == 0 {
		return ""
	}
	return FieldID(strconv.FormatInt(id, 10))
}

// IsSet reports whether a value was selected.
func (f FieldID) IsSet() bool {
	return strings.TrimSpace(string(f)) != ""
}

// Int parses the value as a positive id.
func (f FieldID) Int() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(string(f)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Ptr returns the parsed id or nil when unset or malformed.
func (f FieldID) Ptr() *int64 {
	id, ok := f.Int()
	if !ok {
		return nil
	}
	return &id
}
