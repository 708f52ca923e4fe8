package cbordump

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Vector is one DASL-style test case: a hex-encoded CBOR payload, its
// expected outcome ("roundtrip", "invalid_in", or "invalid_out"), and
// a set of filter tags.
type Vector struct {
	Type string   `json:"Type"`
	Data string   `json:"Data"`
	Tags []string `json:"Tags"`
	Name string   `json:"Name"`
}

// Bytes decodes the vector's hex Data field.
func (v *Vector) Bytes() ([]byte, error) {
	b, err := hex.DecodeString(v.Data)
	if err != nil {
		return nil, fmt.Errorf("cbordump: vector %q: bad hex data: %w", v.Name, err)
	}
	return b, nil
}

// LoadVectors parses a JSON array of test vectors, the same shape used
// by the upstream DASL CBOR test-vector fixtures.
func LoadVectors(data []byte) ([]Vector, error) {
	var vectors []Vector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("cbordump: parsing vectors: %w", err)
	}
	return vectors, nil
}

// HasTag reports whether v carries the given tag.
func (v *Vector) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
