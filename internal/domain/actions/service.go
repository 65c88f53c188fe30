package actions

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"perfdash/internal/domain/evaluation"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

// Annotate sets the follow-up text of one record. Blank text removes the note.
func (s *Service) Annotate(ctx context.Context, datasetID string, table *evaluation.Table, row int, text, author string) (Action, error) {
	if strings.TrimSpace(datasetID) == "" {
		return Action{}, ErrDatasetRequired
	}
	record, ok := table.Record(row)
	if !ok {
		return Action{}, ErrInvalidRow
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Action{}, ErrTextTooLong
	}
	if text == "" {
		if err := s.store.Delete(ctx, datasetID, row); err != nil && !errors.Is(err, ErrNotFound) {
			return Action{}, err
		}
		return Action{DatasetID: datasetID, Row: row, Person: record.Person, Author: author, UpdatedAt: s.now().UTC()}, nil
	}

	action, err := s.store.Upsert(ctx, Action{
		ID:        uuid.NewString(),
		DatasetID: datasetID,
		Row:       row,
		Person:    record.Person,
		Text:      text,
		Author:    author,
		UpdatedAt: s.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return Action{}, err
	}
	slog.Info("action saved", "dataset", datasetID, "row", row, "author", author)
	return action, nil
}

func (s *Service) List(ctx context.Context, datasetID string) ([]Action, error) {
	if strings.TrimSpace(datasetID) == "" {
		return nil, ErrDatasetRequired
	}
	return s.store.List(ctx, datasetID)
}

// Apply returns a copy of table with stored notes written into Record.Action.
// Notes whose row no longer exists, or whose person changed, are skipped.
func (s *Service) Apply(ctx context.Context, datasetID string, table *evaluation.Table) (*evaluation.Table, error) {
	stored, err := s.List(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	out := table.Clone()
	if len(stored) == 0 {
		return out, nil
	}
	for _, action := range stored {
		if action.Row < 0 || action.Row >= len(out.Records) {
			slog.Warn("action row out of range", "dataset", datasetID, "row", action.Row)
			continue
		}
		if action.Person != "" && !strings.EqualFold(action.Person, out.Records[action.Row].Person) {
			slog.Warn("action person mismatch", "dataset", datasetID, "row", action.Row)
			continue
		}
		out.Records[action.Row].Action = action.Text
	}
	return out, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
