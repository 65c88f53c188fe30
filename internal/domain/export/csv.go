package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the sheet as semicolon-delimited UTF-8 with a header row, the
// first format the loader tries.
func WriteCSV(w io.Writer, sheet Sheet) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(sheet.Header); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
