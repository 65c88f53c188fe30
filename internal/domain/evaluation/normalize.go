package evaluation

import (
	"math"
	"strings"

	"perfdash/internal/domain/dataset"
)

type Options struct {
	// Year pins the score/category year; zero picks the most recent one present.
	Year           int
	CategoryPolicy CategoryPolicy
	Rules          Rules
}

func DefaultOptions() Options {
	return Options{CategoryPolicy: CategoryPolicyLenient, Rules: DefaultRules()}
}

// Normalize maps a raw table onto the canonical schema. It fails only when the
// score or category column family is absent, or when the strict category policy
// meets an unmapped label; every other problem is counted in Table.Report.
func Normalize(raw *dataset.RawTable, opts Options) (*Table, error) {
	if raw == nil || len(raw.Header) == 0 {
		return nil, ErrEmptyTable
	}
	rules := opts.Rules.orDefault()
	policy := opts.CategoryPolicy
	if policy == "" {
		policy = CategoryPolicyLenient
	}

	res, err := resolveColumns(raw.Header, opts.Year, rules)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Records:    make([]Record, 0, len(raw.Rows)),
		Resolution: res,
	}
	for _, competency := range rules.AllCompetencies() {
		if _, ok := res.Competencies[competency]; ok {
			table.Competencies = append(table.Competencies, competency)
		}
	}
	for _, hist := range res.History {
		table.Years = append(table.Years, hist.Year)
	}

	report := &table.Report
	for i, row := range raw.Rows {
		record := Record{
			Row:       i,
			Person:    cell(row, res.Person),
			Role:      cell(row, res.Role),
			Evaluator: cell(row, res.Evaluator),
			Action:    cell(row, res.Action),
			Org: OrgPath{
				Direction: cell(row, res.Direction),
				Area:      cell(row, res.Area),
				SubArea:   cell(row, res.SubArea),
			},
			ScoreText: cell(row, res.Score),
		}

		score, ok := ParseDecimal(record.ScoreText)
		switch {
		case record.ScoreText == "":
			report.ScoreMissing++
		case !ok:
			report.ScoreInvalid++
		}
		record.Score = score

		category, outcome, err := rules.applyCategory(cell(row, res.Category), policy, i)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case categoryBlank:
			report.CategoryMissing++
		case categoryUnmapped:
			report.CategoryUnrecognized++
			if report.UnrecognizedLabels == nil {
				report.UnrecognizedLabels = map[string]int{}
			}
			report.UnrecognizedLabels[strings.TrimSpace(cell(row, res.Category))]++
			if category == "" {
				report.CategoryMissing++
			}
		}
		record.Category = category

		record.Competencies = make(map[Competency]CompetencyValue, len(table.Competencies))
		for _, competency := range table.Competencies {
			value, ok := rules.ParseCompetencyValue(cellAt(row, res.Competencies[competency].Index))
			if !ok {
				report.CompetencyInvalid++
			}
			record.Competencies[competency] = value
		}

		if len(res.History) > 0 {
			record.History = make([]YearResult, 0, len(res.History))
			for _, hist := range res.History {
				entry := YearResult{Year: hist.Year, Score: math.NaN()}
				entry.Score, _ = ParseDecimal(cellAt(row, hist.Score))
				entry.Category, _, err = rules.applyCategory(cellAt(row, hist.Category), policy, i)
				if err != nil {
					return nil, err
				}
				record.History = append(record.History, entry)
			}
		}

		table.Records = append(table.Records, record)
	}
	report.Rows = len(table.Records)
	return table, nil
}

func cell(row []string, match FieldMatch) string {
	return cellAt(row, match.Index)
}

func cellAt(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
