package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"perfdash/internal/domain/evaluation"
)

// Unassigned labels the group of records whose grouping field is blank.
const Unassigned = "Sin asignar"

// Uncategorized is the distribution row for records whose category is blank or
// not one of the canonical values.
const Uncategorized evaluation.Category = "Sin categoría"

var (
	ErrUnknownDimension   = errors.New("unknown grouping dimension")
	ErrUnknownPercentBase = errors.New("unknown percentage base")
)

type Dimension string

const (
	DimensionDirection Dimension = "direction"
	DimensionArea      Dimension = "area"
	DimensionSubArea   Dimension = "sub_area"
	DimensionEvaluator Dimension = "evaluator"
)

var Dimensions = []Dimension{DimensionDirection, DimensionArea, DimensionSubArea, DimensionEvaluator}

func ParseDimension(value string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "direction", "direccion", "dirección":
		return DimensionDirection, nil
	case "area", "área":
		return DimensionArea, nil
	case "sub_area", "subarea", "sub-area", "sub-área":
		return DimensionSubArea, nil
	case "evaluator", "evaluador":
		return DimensionEvaluator, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, value)
}

// Key returns the record's group key, or Unassigned when the field is blank.
func (d Dimension) Key(record evaluation.Record) string {
	var value string
	switch d {
	case DimensionDirection:
		value = record.Org.Direction
	case DimensionArea:
		value = record.Org.Area
	case DimensionSubArea:
		value = record.Org.SubArea
	case DimensionEvaluator:
		value = record.Evaluator
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Unassigned
	}
	return value
}

type PercentBase string

const (
	// PercentOfGroup divides by every row in the group, null categories included.
	PercentOfGroup PercentBase = "group"
	// PercentOfCategorized divides by rows that carry a canonical category.
	PercentOfCategorized PercentBase = "categorized"
)

func ParsePercentBase(value string) (PercentBase, error) {
	switch PercentBase(strings.ToLower(strings.TrimSpace(value))) {
	case "", PercentOfGroup:
		return PercentOfGroup, nil
	case PercentOfCategorized:
		return PercentOfCategorized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPercentBase, value)
}

// GroupStats summarizes score for one group. Mean, Min and Max are NaN when no
// record in the group has a score.
type GroupStats struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Scored int     `json:"scored"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func (g GroupStats) MarshalJSON() ([]byte, error) {
	type alias GroupStats
	return json.Marshal(struct {
		alias
		Mean *float64 `json:"mean"`
		Min  *float64 `json:"min"`
		Max  *float64 `json:"max"`
	}{
		alias: alias(g),
		Mean:  evaluation.NullableFloat(g.Mean),
		Min:   evaluation.NullableFloat(g.Min),
		Max:   evaluation.NullableFloat(g.Max),
	})
}

type CategoryShare struct {
	Key        string              `json:"key"`
	Category   evaluation.Category `json:"category"`
	Count      int                 `json:"count"`
	Percentage float64             `json:"percentage"`
}
