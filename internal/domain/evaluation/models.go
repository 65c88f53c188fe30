package evaluation

import (
	"encoding/json"
	"math"
)

type OrgPath struct {
	Direction string `json:"direction"`
	Area      string `json:"area"`
	SubArea   string `json:"subArea"`
}

type YearResult struct {
	Year     int      `json:"year"`
	Score    float64  `json:"score"`
	Category Category `json:"category"`
}

func (y YearResult) MarshalJSON() ([]byte, error) {
	type alias YearResult
	return json.Marshal(struct {
		alias
		Score *float64 `json:"score"`
	}{alias: alias(y), Score: NullableFloat(y.Score)})
}

// Record is one evaluation row. Score is NaN when the source value was blank or unparsable.
type Record struct {
	Row          int                            `json:"row"`
	Person       string                         `json:"person"`
	Role         string                         `json:"role"`
	Org          OrgPath                        `json:"org"`
	Evaluator    string                         `json:"evaluator"`
	Score        float64                        `json:"score"`
	ScoreText    string                         `json:"scoreText"`
	Category     Category                       `json:"category"`
	Competencies map[Competency]CompetencyValue `json:"competencies"`
	History      []YearResult                   `json:"history,omitempty"`
	Action       string                         `json:"action,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	type alias Record
	return json.Marshal(struct {
		alias
		Score *float64 `json:"score"`
	}{alias: alias(r), Score: NullableFloat(r.Score)})
}

func (r Record) HasScore() bool {
	return !math.IsNaN(r.Score)
}

type FieldMatch struct {
	Column     string   `json:"column"`
	Index      int      `json:"index"`
	Candidates []string `json:"candidates,omitempty"`
}

func (m FieldMatch) Found() bool {
	return m.Index >= 0
}

var noMatch = FieldMatch{Index: -1}

// Resolution records which source column won for every canonical field.
type Resolution struct {
	Score        FieldMatch                `json:"score"`
	Category     FieldMatch                `json:"category"`
	Person       FieldMatch                `json:"person"`
	Role         FieldMatch                `json:"role"`
	Direction    FieldMatch                `json:"direction"`
	Area         FieldMatch                `json:"area"`
	SubArea      FieldMatch                `json:"subArea"`
	Evaluator    FieldMatch                `json:"evaluator"`
	Action       FieldMatch                `json:"action"`
	Competencies map[Competency]FieldMatch `json:"competencies"`
	History      []HistoryColumns          `json:"history,omitempty"`
}

type HistoryColumns struct {
	Year     int `json:"year"`
	Score    int `json:"score"`
	Category int `json:"category"`
}

// QualityReport counts per-row recoverable problems found while normalizing.
type QualityReport struct {
	Rows                 int            `json:"rows"`
	ScoreMissing         int            `json:"scoreMissing"`
	ScoreInvalid         int            `json:"scoreInvalid"`
	CategoryMissing      int            `json:"categoryMissing"`
	CategoryUnrecognized int            `json:"categoryUnrecognized"`
	UnrecognizedLabels   map[string]int `json:"unrecognizedLabels,omitempty"`
	CompetencyInvalid    int            `json:"competencyInvalid"`
}

func (q QualityReport) CoercionFailures() int {
	return q.ScoreInvalid + q.CategoryUnrecognized + q.CompetencyInvalid
}

type Table struct {
	Records      []Record      `json:"records"`
	Resolution   Resolution    `json:"resolution"`
	Competencies []Competency  `json:"competencies"`
	Years        []int         `json:"years,omitempty"`
	Report       QualityReport `json:"report"`
}

// Clone copies the record slice so annotations can be applied without touching
// a cached table. Competency maps and history are shared; they are never mutated.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := *t
	out.Records = make([]Record, len(t.Records))
	copy(out.Records, t.Records)
	return &out
}

func (t *Table) Record(row int) (Record, bool) {
	if t == nil || row < 0 || row >= len(t.Records) {
		return Record{}, false
	}
	return t.Records[row], true
}

// NullableFloat maps NaN and infinities to nil for JSON output.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
