package evaluation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ValueKind uint8

const (
	ValueMissing ValueKind = iota
	ValueNumeric
	ValueCategorical
)

const (
	MinOrdinal = 1.0
	MaxOrdinal = 5.0
)

// CompetencyValue is Numeric(f64) | Categorical(Category) | Missing.
type CompetencyValue struct {
	Kind     ValueKind
	Number   float64
	Category Category
}

func Numeric(v float64) CompetencyValue {
	return CompetencyValue{Kind: ValueNumeric, Number: v}
}

func Categorical(c Category) CompetencyValue {
	return CompetencyValue{Kind: ValueCategorical, Category: c}
}

func Missing() CompetencyValue {
	return CompetencyValue{}
}

// Score coerces the value onto the 1..5 scale.
func (v CompetencyValue) Score() (float64, bool) {
	switch v.Kind {
	case ValueNumeric:
		if math.IsNaN(v.Number) || v.Number < MinOrdinal || v.Number > MaxOrdinal {
			return math.NaN(), false
		}
		return v.Number, true
	case ValueCategorical:
		if ordinal, ok := v.Category.Ordinal(); ok {
			return ordinal, true
		}
	}
	return math.NaN(), false
}

func (v CompetencyValue) String() string {
	switch v.Kind {
	case ValueNumeric:
		return formatNumber(v.Number)
	case ValueCategorical:
		return string(v.Category)
	}
	return ""
}

func (v CompetencyValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumeric:
		return json.Marshal(NullableFloat(v.Number))
	case ValueCategorical:
		return json.Marshal(string(v.Category))
	}
	return []byte("null"), nil
}

// ParseCompetencyValue reads a competency cell. ok is false when a non-blank cell
// could not be coerced; the value is then Missing.
func (r Rules) ParseCompetencyValue(raw string) (CompetencyValue, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Missing(), true
	}
	if number, ok := ParseDecimal(value); ok {
		if number < MinOrdinal || number > MaxOrdinal {
			return Missing(), false
		}
		return Numeric(number), true
	}
	// Pendiente has no ordinal and counts as a coercion failure.
	if category, ok := r.Canonicalize(value); ok {
		if _, scored := category.Ordinal(); scored {
			return Categorical(category), true
		}
	}
	return Missing(), false
}

// ParseDecimal accepts both decimal comma and decimal point.
func ParseDecimal(raw string) (float64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return math.NaN(), false
	}
	value = strings.ReplaceAll(value, ",", ".")
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return math.NaN(), false
	}
	return parsed, true
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
