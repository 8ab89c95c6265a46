package models

import (
	"encoding/json"
	"math"
)

// Value is a measurement value. NaN marks a reading whose payload was not
// numeric; encoding/json rejects NaN and +/-Inf, so those serialize as null
// instead of failing the whole response.
type Value float64

// MarshalJSON renders non-finite values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON reads null back as NaN.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}
