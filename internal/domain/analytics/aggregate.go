package analytics

import (
	"math"
	"sort"

	"perfdash/internal/domain/evaluation"
)

// Summarize computes count and score statistics. Records without a score count
// towards Count only.
func Summarize(key string, records []evaluation.Record) GroupStats {
	stats := GroupStats{Key: key, Count: len(records), Mean: math.NaN(), Min: math.NaN(), Max: math.NaN()}
	sum := 0.0
	for _, record := range records {
		if !record.HasScore() {
			continue
		}
		if stats.Scored == 0 || record.Score < stats.Min {
			stats.Min = record.Score
		}
		if stats.Scored == 0 || record.Score > stats.Max {
			stats.Max = record.Score
		}
		sum += record.Score
		stats.Scored++
	}
	if stats.Scored > 0 {
		stats.Mean = sum / float64(stats.Scored)
	}
	return stats
}

// Partition splits records by dimension key. Keys are sorted with Unassigned last;
// records keep input order inside a group.
func Partition(records []evaluation.Record, dim Dimension) ([]string, map[string][]evaluation.Record) {
	groups := map[string][]evaluation.Record{}
	for _, record := range records {
		key := dim.Key(record)
		groups[key] = append(groups[key], record)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == Unassigned) != (keys[j] == Unassigned) {
			return keys[j] == Unassigned
		}
		return keys[i] < keys[j]
	})
	return keys, groups
}

func GroupBy(records []evaluation.Record, dim Dimension) []GroupStats {
	keys, groups := Partition(records, dim)
	out := make([]GroupStats, 0, len(keys))
	for _, key := range keys {
		out = append(out, Summarize(key, groups[key]))
	}
	return out
}

// Distribution returns, per group, one row for each canonical category in display
// order, zero-filled, followed by the Uncategorized row.
func Distribution(records []evaluation.Record, dim Dimension, base PercentBase) []CategoryShare {
	keys, groups := Partition(records, dim)
	out := make([]CategoryShare, 0, len(keys)*(len(evaluation.Categories)+1))
	for _, key := range keys {
		out = append(out, shares(key, groups[key], base)...)
	}
	return out
}

// OverallDistribution is Distribution over the whole selection under an empty key.
func OverallDistribution(records []evaluation.Record, base PercentBase) []CategoryShare {
	return shares("", records, base)
}

// shares counts blank and unmapped labels together as Uncategorized. Under
// PercentOfCategorized that row sits outside the base and reports no percentage.
func shares(key string, records []evaluation.Record, base PercentBase) []CategoryShare {
	counts := map[evaluation.Category]int{}
	categorized := 0
	for _, record := range records {
		if !record.Category.Valid() {
			continue
		}
		counts[record.Category]++
		categorized++
	}
	total := len(records)
	if base == PercentOfCategorized {
		total = categorized
	}

	out := make([]CategoryShare, 0, len(evaluation.Categories)+1)
	for _, category := range evaluation.Categories {
		out = append(out, share(key, category, counts[category], total))
	}
	rest := share(key, Uncategorized, len(records)-categorized, total)
	if base == PercentOfCategorized {
		rest.Percentage = 0
	}
	return append(out, rest)
}

func share(key string, category evaluation.Category, count, total int) CategoryShare {
	out := CategoryShare{Key: key, Category: category, Count: count}
	if total > 0 {
		out.Percentage = round1(float64(count) / float64(total) * 100)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
