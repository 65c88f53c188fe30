package analytics

import (
	"math"
	"sort"
	"strings"

	"perfdash/internal/domain/evaluation"
)

// Trend returns the year-by-year results of one person, oldest first, with the
// current score appended under year when year is non-zero and not already present.
func Trend(records []evaluation.Record, person string, year int) []evaluation.YearResult {
	var out []evaluation.YearResult
	seen := map[int]bool{}
	for _, record := range Select(records, ByPerson(person)) {
		for _, result := range record.History {
			if seen[result.Year] {
				continue
			}
			seen[result.Year] = true
			out = append(out, result)
		}
		if year != 0 && !seen[year] {
			seen[year] = true
			out = append(out, evaluation.YearResult{Year: year, Score: record.Score, Category: record.Category})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// YearMeans averages every person's score per history year.
func YearMeans(records []evaluation.Record) []evaluation.YearResult {
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, record := range records {
		for _, result := range record.History {
			if _, ok := counts[result.Year]; !ok {
				counts[result.Year] = 0
			}
			if math.IsNaN(result.Score) {
				continue
			}
			sums[result.Year] += result.Score
			counts[result.Year]++
		}
	}
	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Ints(years)
	out := make([]evaluation.YearResult, 0, len(years))
	for _, year := range years {
		mean := math.NaN()
		if counts[year] > 0 {
			mean = sums[year] / float64(counts[year])
		}
		out = append(out, evaluation.YearResult{Year: year, Score: mean})
	}
	return out
}

// People lists distinct evaluated names in first-seen order.
func People(records []evaluation.Record) []string {
	seen := map[string]bool{}
	var out []string
	for _, record := range records {
		name := strings.TrimSpace(record.Person)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
