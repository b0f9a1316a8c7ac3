package reco

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Algorithm tags which tier produced a recommendation. The zero value is invalid.
type Algorithm uint8

const (
	AlgorithmInference Algorithm = iota + 1
	AlgorithmCollaborative
	AlgorithmTrending
)

// Algorithms lists every valid tag in fallback order.
var Algorithms = []Algorithm{AlgorithmInference, AlgorithmCollaborative, AlgorithmTrending}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmInference:
		return "inference"
	case AlgorithmCollaborative:
		return "collaborative"
	case AlgorithmTrending:
		return "trending"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

func (a Algorithm) Valid() bool {
	return a >= AlgorithmInference && a <= AlgorithmTrending
}

func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(strings.TrimSpace(s), a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(b []byte) error {
	parsed, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the tag as its lowercase name.
func (a Algorithm) Value() (driver.Value, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", uint8(a))
	}
	return a.String(), nil
}

func (a *Algorithm) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Algorithm", src)
	}
}
