package evaluation

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTable            = errors.New("table has no header")
	ErrMissingScoreColumn    = errors.New("no score column found (expected 'Nota' or 'Nota YYYY')")
	ErrMissingCategoryColumn = errors.New("no category column found (expected 'Categoría' or 'Categoría YYYY')")
	ErrUnrecognizedCategory  = errors.New("unrecognized category")
	ErrUnknownPolicy         = errors.New("unknown category policy")
)

// ColumnError reports a required column family that is absent from the header.
type ColumnError struct {
	Family string
	Header []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing %s column family; header was %q", e.Family, e.Header)
}

func (e *ColumnError) Unwrap() error {
	if e.Family == FamilyCategory {
		return ErrMissingCategoryColumn
	}
	return ErrMissingScoreColumn
}

// CategoryError is returned under the strict policy for a label outside the dictionary.
type CategoryError struct {
	Row   int
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("unrecognized category %q in data row %d", e.Value, e.Row+1)
}

func (e *CategoryError) Unwrap() error {
	return ErrUnrecognizedCategory
}
