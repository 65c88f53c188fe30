package actions

import (
	"context"
	"database/sql"
	"time"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS actions (
  id TEXT PRIMARY KEY,
  dataset_id TEXT NOT NULL,
  row_index INTEGER NOT NULL,
  person TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  author TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL,
  UNIQUE (dataset_id, row_index)
);
`

// SQLStore keeps actions in an embedded SQLite database.
type SQLStore struct {
	DB *sql.DB
}

// NewSQLStore creates the table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return nil, err
	}
	return &SQLStore{DB: db}, nil
}

func (s *SQLStore) Upsert(ctx context.Context, action Action) (Action, error) {
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO actions (id, dataset_id, row_index, person, body, author, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(dataset_id, row_index) DO UPDATE SET
  person=excluded.person,
  body=excluded.body,
  author=excluded.author,
  updated_at=excluded.updated_at
RETURNING id`,
		action.ID, action.DatasetID, action.Row, action.Person, action.Text, action.Author, action.UpdatedAt.UnixMilli(),
	).Scan(&action.ID)
	if err != nil {
		return Action{}, err
	}
	return action, nil
}

func (s *SQLStore) List(ctx context.Context, datasetID string) ([]Action, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, dataset_id, row_index, person, body, author, updated_at
FROM actions
WHERE dataset_id = ?
ORDER BY row_index`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		var updated int64
		if err := rows.Scan(&a.ID, &a.DatasetID, &a.Row, &a.Person, &a.Text, &a.Author, &updated); err != nil {
			return nil, err
		}
		a.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, datasetID string, row int) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM actions WHERE dataset_id = ? AND row_index = ?", datasetID, row)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLStore) Close() {
	_ = s.DB.Close()
}
