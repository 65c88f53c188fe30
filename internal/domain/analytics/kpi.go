package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"perfdash/internal/domain/evaluation"
)

// KPI is the headline block of the dashboard for the current selection.
type KPI struct {
	Records      int             `json:"records"`
	People       int             `json:"people"`
	Scored       int             `json:"scored"`
	Pending      int             `json:"pending"`
	Leaders      int             `json:"leaders"`
	Mean         float64         `json:"mean"`
	Median       float64         `json:"median"`
	Min          float64         `json:"min"`
	Max          float64         `json:"max"`
	Distribution []CategoryShare `json:"distribution"`
}

func (k KPI) MarshalJSON() ([]byte, error) {
	type alias KPI
	return json.Marshal(struct {
		alias
		Mean   *float64 `json:"mean"`
		Median *float64 `json:"median"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
	}{
		alias:  alias(k),
		Mean:   evaluation.NullableFloat(k.Mean),
		Median: evaluation.NullableFloat(k.Median),
		Min:    evaluation.NullableFloat(k.Min),
		Max:    evaluation.NullableFloat(k.Max),
	})
}

func BuildKPI(records []evaluation.Record, keywords []string, base PercentBase) KPI {
	stats := Summarize("", records)
	kpi := KPI{
		Records:      len(records),
		Scored:       stats.Scored,
		Mean:         stats.Mean,
		Min:          stats.Min,
		Max:          stats.Max,
		Median:       median(records),
		Distribution: OverallDistribution(records, base),
	}
	people := map[string]struct{}{}
	for _, record := range records {
		if name := strings.ToLower(strings.TrimSpace(record.Person)); name != "" {
			people[name] = struct{}{}
		}
		if record.Category.IsPending() {
			kpi.Pending++
		}
		if IsLeader(record.Role, keywords) {
			kpi.Leaders++
		}
	}
	kpi.People = len(people)
	return kpi
}

func median(records []evaluation.Record) float64 {
	scores := make([]float64, 0, len(records))
	for _, record := range records {
		if record.HasScore() {
			scores = append(scores, record.Score)
		}
	}
	if len(scores) == 0 {
		return math.NaN()
	}
	sort.Float64s(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		return scores[mid]
	}
	return (scores[mid-1] + scores[mid]) / 2
}
