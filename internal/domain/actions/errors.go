package actions

import "errors"

var (
	ErrNotFound        = errors.New("action not found")
	ErrDatasetRequired = errors.New("dataset id is required")
	ErrInvalidRow      = errors.New("row is out of range")
	ErrTextTooLong     = errors.New("action text is too long")
)
