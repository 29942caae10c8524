package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMetadata is returned when a metadata value is not a string, number, boolean or null.
var ErrInvalidMetadata = errors.New("metadata values must be string, number, boolean or null")

// Metadata is an open key/value bag restricted to scalar values. Decoding normalizes
// numbers to float64 and rejects nested arrays and objects.
type Metadata map[string]interface{}

// Validate checks that every value is one of the allowed scalar kinds.
func (m Metadata) Validate() error {
	for k, v := range m {
		switch v.(type) {
		case nil, string, bool, float64, float32, int, int32, int64:
		default:
			return fmt.Errorf("%w (key %q)", ErrInvalidMetadata, k)
		}
	}
	return nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Metadata(raw)
	if err := out.Validate(); err != nil {
		return err
	}
	*m = out
	return nil
}

// Scan implements sql.Scanner for the json column.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported type for Metadata")
	}
	if len(b) == 0 {
		*m = nil
		return nil
	}
	return m.UnmarshalJSON(b)
}

// Value implements driver.Valuer; a nil bag is stored as {}.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
