package domain

import (
	"encoding/json"
	"math/big"
	"strings"
	"unicode/utf8"
)

// MaxCityLen is the longest accepted city name, in characters, after trimming.
const MaxCityLen = 100

// City is the only persisted entity. Name is already normalized and doubles as
// the document id.
type City struct {
	Name       string `json:"city"`
	Population int64  `json:"population"`
}

// NormalizeCity converts city input to normalized form for storage and querying.
// "  New York " and "NEW YORK" both become "new york".
func NormalizeCity(input string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	if normalized == "" {
		return "", ErrValidationMeta("invalid city", map[string]string{
			"city": "must not be empty or whitespace only",
		})
	}
	if utf8.RuneCountInString(normalized) > MaxCityLen {
		return "", ErrValidationMeta("invalid city", map[string]string{
			"city": "must be at most 100 characters",
		})
	}
	return normalized, nil
}

func ValidatePopulation(population int64) error {
	if population < 0 {
		return ErrValidationMeta("invalid population", map[string]string{
			"population": "must be a non-negative integer",
		})
	}
	return nil
}

// ParsePopulation accepts a JSON number and rejects anything that is not a
// non-negative integer representable as int64. "1e3" is accepted, "1.5" is not.
func ParsePopulation(n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, ErrValidationMeta("invalid population", map[string]string{
			"population": "is required",
		})
	}

	if v, err := n.Int64(); err == nil {
		return v, ValidatePopulation(v)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, ErrValidationMeta("invalid population", map[string]string{
			"population": "must be a non-negative integer",
		})
	}
	v := r.Num().Int64()
	return v, ValidatePopulation(v)
}
