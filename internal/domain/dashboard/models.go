package dashboard

import (
	"errors"
	"time"

	"perfdash/internal/domain/evaluation"
)

var (
	ErrNotFound  = errors.New("dataset not found")
	ErrEmptyFile = errors.New("uploaded file is empty")
)

// Dataset is one normalized upload. ID is the hex SHA-256 of the source bytes,
// so the same file always maps to the same dataset and its stored actions.
type Dataset struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Delimiter string            `json:"delimiter,omitempty"`
	Encoding  string            `json:"encoding"`
	Size      int               `json:"size"`
	LoadedAt  time.Time         `json:"loadedAt"`
	Table     *evaluation.Table `json:"-"`
}

// Info is the listing view of a dataset.
type Info struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Encoding     string                   `json:"encoding"`
	Delimiter    string                   `json:"delimiter,omitempty"`
	Size         int                      `json:"size"`
	Rows         int                      `json:"rows"`
	Years        []int                    `json:"years,omitempty"`
	Competencies []evaluation.Competency  `json:"competencies"`
	Report       evaluation.QualityReport `json:"report"`
	LoadedAt     time.Time                `json:"loadedAt"`
}

func (d *Dataset) Info() Info {
	return Info{
		ID:           d.ID,
		Name:         d.Name,
		Encoding:     d.Encoding,
		Delimiter:    d.Delimiter,
		Size:         d.Size,
		Rows:         len(d.Table.Records),
		Years:        d.Table.Years,
		Competencies: d.Table.Competencies,
		Report:       d.Table.Report,
		LoadedAt:     d.LoadedAt,
	}
}
