package analytics

import (
	"sort"

	"perfdash/internal/domain/evaluation"
)

// Ranking sizes offered by the dashboard.
var RankingSizes = []int{5, 10, 20}

type RankOrder string

const (
	RankTop    RankOrder = "top"
	RankBottom RankOrder = "bottom"
)

// Top returns up to n scored records, best first. Equal scores keep input order.
func Top(records []evaluation.Record, n int) []evaluation.Record {
	return rank(records, n, true)
}

// Bottom returns up to n scored records, worst first. Equal scores keep input order.
func Bottom(records []evaluation.Record, n int) []evaluation.Record {
	return rank(records, n, false)
}

func Rank(records []evaluation.Record, order RankOrder, n int) []evaluation.Record {
	if order == RankBottom {
		return Bottom(records, n)
	}
	return Top(records, n)
}

func rank(records []evaluation.Record, n int, descending bool) []evaluation.Record {
	scored := make([]evaluation.Record, 0, len(records))
	for _, record := range records {
		if record.HasScore() {
			scored = append(scored, record)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if descending {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Score < scored[j].Score
	})
	if n < 0 {
		n = 0
	}
	if n < len(scored) {
		scored = scored[:n]
	}
	return scored
}
