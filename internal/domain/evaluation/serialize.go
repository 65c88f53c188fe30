package evaluation

import (
	"fmt"
	"math"

	"perfdash/internal/domain/dataset"
)

// Header returns the canonical column order used by Raw and the exporters.
func (t *Table) Header() []string {
	header := []string{ColumnPerson, ColumnRole, ColumnDirection, ColumnArea, ColumnSubArea, ColumnEvaluator}
	for _, hist := range t.Resolution.History {
		if hist.Score >= 0 {
			header = append(header, fmt.Sprintf("%s %d", ColumnScore, hist.Year))
		}
		if hist.Category >= 0 {
			header = append(header, fmt.Sprintf("%s %d", ColumnCategory, hist.Year))
		}
	}
	header = append(header, ColumnScore, ColumnCategory)
	for _, competency := range t.Competencies {
		header = append(header, string(competency))
	}
	return append(header, ColumnAction)
}

// Row renders one record in Header order.
func (t *Table) Row(record Record) []string {
	row := []string{
		record.Person,
		record.Role,
		record.Org.Direction,
		record.Org.Area,
		record.Org.SubArea,
		record.Evaluator,
	}
	for _, hist := range t.Resolution.History {
		entry := YearResult{Year: hist.Year, Score: math.NaN()}
		for _, candidate := range record.History {
			if candidate.Year == hist.Year {
				entry = candidate
				break
			}
		}
		// Only families that had a dated column are written back.
		if hist.Score >= 0 {
			row = append(row, formatNumber(entry.Score))
		}
		if hist.Category >= 0 {
			row = append(row, string(entry.Category))
		}
	}
	row = append(row, formatNumber(record.Score), string(record.Category))
	for _, competency := range t.Competencies {
		row = append(row, record.Competencies[competency].String())
	}
	return append(row, record.Action)
}

// Raw re-serializes the table under canonical headers. Normalizing the result
// with the same options yields the same records.
func (t *Table) Raw() *dataset.RawTable {
	raw := &dataset.RawTable{
		Header:    t.Header(),
		Rows:      make([][]string, 0, len(t.Records)),
		Delimiter: ';',
		Encoding:  dataset.EncodingUTF8,
	}
	for _, record := range t.Records {
		raw.Rows = append(raw.Rows, t.Row(record))
	}
	return raw
}
