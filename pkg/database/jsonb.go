package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB maps a jsonb column to a typed Go value. Similarity factors and
// extracted business profiles are stored this way so their sub-fields stay
// queryable in Postgres.
type JSONB[T any] struct {
	Data T
}

func (p *JSONB[T]) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("JSONB.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, &p.Data)
}

func (p JSONB[T]) Value() (driver.Value, error) {
	return json.Marshal(p.Data)
}

// MarshalJSON serializes the wrapped value directly so API responses
// don't expose the wrapper.
func (p JSONB[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Data)
}

func (p *JSONB[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &p.Data)
}
