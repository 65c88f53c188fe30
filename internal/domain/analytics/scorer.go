package analytics

import (
	"encoding/json"
	"math"
	"strings"

	"perfdash/internal/domain/evaluation"
)

// IsLeader reports whether a role title contains any leadership keyword,
// case-insensitively. A nil keyword list falls back to the default list.
func IsLeader(role string, keywords []string) bool {
	if keywords == nil {
		keywords = evaluation.DefaultLeadershipKeywords
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(role, keyword) {
			return true
		}
	}
	return false
}

// Vector holds one mean per competency, in Competencies order. Values[i] is NaN
// when no record contributed a usable value; Counts[i] is the denominator.
type Vector struct {
	Competencies []evaluation.Competency
	Values       []float64
	Counts       []int
}

func (v *Vector) Value(competency evaluation.Competency) (float64, bool) {
	if v == nil {
		return math.NaN(), false
	}
	for i, c := range v.Competencies {
		if c == competency {
			return v.Values[i], !math.IsNaN(v.Values[i])
		}
	}
	return math.NaN(), false
}

func (v *Vector) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	type entry struct {
		Competency evaluation.Competency `json:"competency"`
		Value      *float64              `json:"value"`
		Count      int                   `json:"count"`
	}
	out := make([]entry, 0, len(v.Competencies))
	for i, competency := range v.Competencies {
		out = append(out, entry{Competency: competency, Value: evaluation.NullableFloat(v.Values[i]), Count: v.Counts[i]})
	}
	return json.Marshal(out)
}

// MeanVector averages each competency over the records that carry a usable value
// for it. Records whose overall category is Pendiente are skipped. An empty
// subset yields one absent entry per competency.
func MeanVector(records []evaluation.Record, competencies []evaluation.Competency) *Vector {
	vector := &Vector{
		Competencies: append([]evaluation.Competency(nil), competencies...),
		Values:       make([]float64, len(competencies)),
		Counts:       make([]int, len(competencies)),
	}
	sums := make([]float64, len(competencies))
	for _, record := range records {
		if record.Category.IsPending() {
			continue
		}
		for i, competency := range competencies {
			value, ok := record.Competencies[competency]
			if !ok {
				continue
			}
			score, ok := value.Score()
			if !ok {
				continue
			}
			sums[i] += score
			vector.Counts[i]++
		}
	}
	for i := range competencies {
		if vector.Counts[i] == 0 {
			vector.Values[i] = math.NaN()
			continue
		}
		vector.Values[i] = sums[i] / float64(vector.Counts[i])
	}
	return vector
}

// Comparison lines up the organization, a group and one individual on the same
// competency axis. A baseline is nil when its selection matched no records.
type Comparison struct {
	Competencies []evaluation.Competency `json:"competencies"`
	Organization *Vector                 `json:"organization"`
	Group        *Vector                 `json:"group"`
	Individual   *Vector                 `json:"individual"`
}

// Compare builds the three baselines. A nil predicate leaves its baseline nil.
func Compare(records []evaluation.Record, competencies []evaluation.Competency, group, individual Predicate) Comparison {
	comparison := Comparison{
		Competencies: append([]evaluation.Competency(nil), competencies...),
		Organization: baseline(records, competencies),
	}
	if group != nil {
		comparison.Group = baseline(Select(records, group), competencies)
	}
	if individual != nil {
		comparison.Individual = baseline(Select(records, individual), competencies)
	}
	return comparison
}

func baseline(records []evaluation.Record, competencies []evaluation.Competency) *Vector {
	if len(records) == 0 {
		return nil
	}
	return MeanVector(records, competencies)
}
