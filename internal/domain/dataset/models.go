package dataset

import (
	"errors"
	"strings"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
	EncodingXLSX   = "xlsx"
)

var (
	ErrUnreadable   = errors.New("input is not readable as delimited text")
	ErrEmptyInput   = errors.New("input is empty")
	ErrInvalidUTF8  = errors.New("input is not valid utf-8")
	ErrSingleColumn = errors.New("header did not split into columns")
	ErrWideRow      = errors.New("row has more fields than the header")
	ErrNoWorksheet  = errors.New("workbook has no worksheet")
)

// RawTable is the loader's output: a header plus ordered rows, untouched apart
// from header whitespace.
type RawTable struct {
	Header    []string
	Rows      [][]string
	Delimiter rune
	Encoding  string
}

// LoadError is the single user-facing failure of the loader.
type LoadError struct {
	Attempts []string
	Cause    error
}

func (e *LoadError) Error() string {
	return "could not read the file as delimited text (tried " + strings.Join(e.Attempts, ", ") + ")"
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrUnreadable, e.Cause}
}
