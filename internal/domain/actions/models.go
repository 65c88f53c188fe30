package actions

import "time"

// MaxTextLength bounds a single follow-up note, in runes.
const MaxTextLength = 2000

// Action is a free-text follow-up note attached to one record of a dataset.
type Action struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"datasetId"`
	Row       int       `json:"row"`
	Person    string    `json:"person"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
