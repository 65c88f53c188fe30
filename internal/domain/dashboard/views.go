package dashboard

import (
	"errors"
	"fmt"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/evaluation"
)

var ErrUnknownCompetencySet = errors.New("unknown competency set")

// Summary is the overview shown for a dataset and a grouping dimension.
type Summary struct {
	Dataset      Info                      `json:"dataset"`
	KPI          analytics.KPI             `json:"kpi"`
	Dimension    analytics.Dimension       `json:"dimension"`
	Groups       []analytics.GroupStats    `json:"groups"`
	Distribution []analytics.CategoryShare `json:"distribution"`
	Resolution   evaluation.Resolution     `json:"resolution"`
}

func BuildSummary(ds *Dataset, records []evaluation.Record, dim analytics.Dimension, base analytics.PercentBase, keywords []string) Summary {
	return Summary{
		Dataset:      ds.Info(),
		KPI:          analytics.BuildKPI(records, keywords, base),
		Dimension:    dim,
		Groups:       analytics.GroupBy(records, dim),
		Distribution: analytics.Distribution(records, dim, base),
		Resolution:   ds.Table.Resolution,
	}
}

// Competencies picks the radar axis. A blank set name means every competency
// found in the table; a named set is taken as configured.
func Competencies(rules evaluation.Rules, table *evaluation.Table, set string) ([]evaluation.Competency, error) {
	if set == "" {
		return table.Competencies, nil
	}
	competencies, ok := rules.CompetencySet(set)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompetencySet, set)
	}
	return competencies, nil
}

// RankingRow is one line of a top or bottom list.
type RankingRow struct {
	Position int               `json:"position"`
	Record   evaluation.Record `json:"record"`
}

func Ranking(records []evaluation.Record, order analytics.RankOrder, n int) []RankingRow {
	ranked := analytics.Rank(records, order, n)
	out := make([]RankingRow, 0, len(ranked))
	for i, record := range ranked {
		out = append(out, RankingRow{Position: i + 1, Record: record})
	}
	return out
}
