package analytics

import (
	"strings"

	"perfdash/internal/domain/evaluation"
)

// Predicate selects records for a baseline or a view.
type Predicate func(evaluation.Record) bool

// Filter is the cross-filter shared by every dashboard view. Empty fields match
// anything; text fields compare case-insensitively after trimming, and the
// Unassigned label matches blank values.
type Filter struct {
	Direction   string
	Area        string
	SubArea     string
	Evaluator   string
	Person      string
	Categories  []evaluation.Category
	LeadersOnly bool
	Keywords    []string
}

func (f Filter) Match(record evaluation.Record) bool {
	if !fieldMatches(f.Direction, record.Org.Direction) ||
		!fieldMatches(f.Area, record.Org.Area) ||
		!fieldMatches(f.SubArea, record.Org.SubArea) ||
		!fieldMatches(f.Evaluator, record.Evaluator) ||
		!fieldMatches(f.Person, record.Person) {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, category := range f.Categories {
			if record.Category == category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.LeadersOnly && !IsLeader(record.Role, f.Keywords) {
		return false
	}
	return true
}

func (f Filter) Apply(records []evaluation.Record) []evaluation.Record {
	return Select(records, f.Match)
}

func Select(records []evaluation.Record, keep Predicate) []evaluation.Record {
	out := make([]evaluation.Record, 0, len(records))
	for _, record := range records {
		if keep == nil || keep(record) {
			out = append(out, record)
		}
	}
	return out
}

// ByPerson matches one evaluated individual.
func ByPerson(person string) Predicate {
	return func(record evaluation.Record) bool {
		return fieldMatches(person, record.Person)
	}
}

// ByGroup matches one value of a grouping dimension.
func ByGroup(dim Dimension, key string) Predicate {
	return func(record evaluation.Record) bool {
		return strings.EqualFold(dim.Key(record), strings.TrimSpace(key))
	}
}

func fieldMatches(want, got string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	got = strings.TrimSpace(got)
	if want == Unassigned {
		return got == ""
	}
	return strings.EqualFold(want, got)
}
