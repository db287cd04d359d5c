package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Identity keys inside raw_data. The canonical layout nests them under
// raw_data.user; older submissions kept them at the top level.
const (
	UserKey    = "user"
	FieldFIO   = "fio"
	FieldEmail = "email"
	FieldPhone = "phone"
)

// IdentityFields are the submitter fields that may never change once stored.
var IdentityFields = []string{FieldFIO, FieldEmail, FieldPhone}

// RawData is the schema-less submission document. Numbers are kept as
// json.Number so values survive storage without float rounding.
type RawData map[string]any

func (d *RawData) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("raw_data: %w", err)
	}
	*d = m
	return nil
}

// Identity looks a submitter field up under raw_data.user first and falls back
// to the legacy top-level placement. A JSON null counts as absent, matching
// the COALESCE used by the SQL email filter.
func (d RawData) Identity(field string) (any, bool) {
	if u, ok := asObject(d[UserKey]); ok {
		if v := u[field]; v != nil {
			return v, true
		}
	}
	if v := d[field]; v != nil {
		return v, true
	}
	return nil, false
}

// Email returns the submitter email, or "" when absent or not a string.
func (d RawData) Email() string {
	v, _ := d.Identity(FieldEmail)
	s, _ := v.(string)
	return s
}

// Value stores the document as JSON text.
func (d RawData) Value() (driver.Value, error) {
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("encode raw_data: %w", err)
	}
	return string(b), nil
}

func (d *RawData) Scan(src any) error {
	b, err := scanBytes(src)
	if err != nil {
		return fmt.Errorf("scan raw_data: %w", err)
	}
	if b == nil {
		*d = nil
		return nil
	}
	return d.UnmarshalJSON(b)
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case RawData:
		return m, true
	default:
		return nil, false
	}
}

func scanBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
