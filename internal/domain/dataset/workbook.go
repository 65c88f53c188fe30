package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads the first worksheet of an xlsx file. Short rows are padded
// to the header width because excelize drops trailing empty cells.
func LoadWorkbook(data []byte) (*RawTable, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w: %w", ErrUnreadable, err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}
	table := &RawTable{Header: header, Encoding: EncodingXLSX}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		padded := make([]string, len(header))
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}
	return table, nil
}

// LoadFile picks the workbook reader for .xlsx files and the delimited-text
// loader for everything else.
func LoadFile(path string) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadNamed(filepath.Base(path), data)
}

func LoadNamed(name string, data []byte) (*RawTable, error) {
	if IsWorkbook(name) {
		return LoadWorkbook(data)
	}
	return LoadBytes(data)
}

func IsWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".xlsm"
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
