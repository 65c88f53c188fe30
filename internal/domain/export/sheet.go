package export

import (
	"fmt"
	"strconv"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/evaluation"
)

// Sheet is a plain table ready to be written as CSV, a workbook sheet or a PDF.
// Cells in Numeric columns are written as numbers by the workbook writer when
// they parse.
type Sheet struct {
	Name    string
	Header  []string
	Rows    [][]string
	Numeric map[int]bool
}

// RecordsSheet dumps records under the table's canonical header.
func RecordsSheet(name string, table *evaluation.Table, records []evaluation.Record) Sheet {
	header := table.Header()
	sheet := Sheet{Name: name, Header: header, Rows: make([][]string, 0, len(records)), Numeric: map[int]bool{}}
	for i, column := range header {
		if column == evaluation.ColumnScore || isYearScore(column) {
			sheet.Numeric[i] = true
		}
	}
	for _, record := range records {
		sheet.Rows = append(sheet.Rows, table.Row(record))
	}
	return sheet
}

func isYearScore(column string) bool {
	var year int
	n, err := fmt.Sscanf(column, evaluation.ColumnScore+" %d", &year)
	return err == nil && n == 1
}

// RankingSheet lists ranked records with their position and the Acciones column.
func RankingSheet(name string, records []evaluation.Record) Sheet {
	sheet := Sheet{
		Name: name,
		Header: []string{"#", evaluation.ColumnPerson, evaluation.ColumnRole, evaluation.ColumnDirection,
			evaluation.ColumnArea, evaluation.ColumnScore, evaluation.ColumnCategory, evaluation.ColumnAction},
		Numeric: map[int]bool{0: true, 5: true},
	}
	for i, record := range records {
		sheet.Rows = append(sheet.Rows, []string{
			strconv.Itoa(i + 1),
			record.Person,
			record.Role,
			record.Org.Direction,
			record.Org.Area,
			formatFloat(record.Score, -1),
			string(record.Category),
			record.Action,
		})
	}
	return sheet
}

func GroupsSheet(name string, dim analytics.Dimension, groups []analytics.GroupStats) Sheet {
	sheet := Sheet{
		Name:    name,
		Header:  []string{string(dim), "count", "scored", "mean", "min", "max"},
		Numeric: map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
	}
	for _, group := range groups {
		sheet.Rows = append(sheet.Rows, []string{
			group.Key,
			strconv.Itoa(group.Count),
			strconv.Itoa(group.Scored),
			formatFloat(group.Mean, 2),
			formatFloat(group.Min, -1),
			formatFloat(group.Max, -1),
		})
	}
	return sheet
}

func DistributionSheet(name string, dim analytics.Dimension, shares []analytics.CategoryShare) Sheet {
	sheet := Sheet{
		Name:    name,
		Header:  []string{string(dim), "category", "count", "percentage"},
		Numeric: map[int]bool{2: true, 3: true},
	}
	for _, share := range shares {
		sheet.Rows = append(sheet.Rows, []string{
			share.Key,
			string(share.Category),
			strconv.Itoa(share.Count),
			formatFloat(share.Percentage, 1),
		})
	}
	return sheet
}

// ComparisonSheet writes one row per competency and one column per baseline.
func ComparisonSheet(name string, comparison analytics.Comparison) Sheet {
	sheet := Sheet{
		Name:    name,
		Header:  []string{"competency", "organization", "group", "individual"},
		Numeric: map[int]bool{1: true, 2: true, 3: true},
	}
	for _, competency := range comparison.Competencies {
		row := []string{string(competency)}
		for _, vector := range []*analytics.Vector{comparison.Organization, comparison.Group, comparison.Individual} {
			value, _ := vector.Value(competency)
			row = append(row, formatFloat(value, 2))
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func formatFloat(v float64, precision int) string {
	if evaluation.NullableFloat(v) == nil {
		return ""
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
