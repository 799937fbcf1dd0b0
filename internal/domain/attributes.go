package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes is a free-form per-record attribute map, stored as jsonb.
type Attributes map[string]any

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *Attributes) Scan(src any) error {
	if src == nil {
		*a = Attributes{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Attributes", src)
	}
	if len(data) == 0 {
		*a = Attributes{}
		return nil
	}
	return json.Unmarshal(data, a)
}

// GetString returns a string attribute or "" when absent or non-string.
func (a Attributes) GetString(key string) string {
	if a == nil {
		return ""
	}
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// GetInt reads an int attribute, tolerating the float64 that json decoding
// produces for numbers.
func (a Attributes) GetInt(key string) (int, bool) {
	if a == nil {
		return 0, false
	}
	switch v := a[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
