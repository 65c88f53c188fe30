package actions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps actions in Postgres. The schema comes from migrations/.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Upsert(ctx context.Context, action Action) (Action, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO actions (id, dataset_id, row_index, person, body, author, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (dataset_id, row_index) DO UPDATE
    SET person = EXCLUDED.person, body = EXCLUDED.body, author = EXCLUDED.author, updated_at = EXCLUDED.updated_at
    RETURNING id
  `, action.ID, action.DatasetID, action.Row, action.Person, action.Text, action.Author, action.UpdatedAt).Scan(&action.ID)
	if err != nil {
		return Action{}, err
	}
	return action, nil
}

func (s *PGStore) List(ctx context.Context, datasetID string) ([]Action, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, dataset_id, row_index, person, body, author, updated_at
    FROM actions
    WHERE dataset_id = $1
    ORDER BY row_index
  `, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.DatasetID, &a.Row, &a.Person, &a.Text, &a.Author, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, datasetID string, row int) error {
	var id string
	err := s.DB.QueryRow(ctx, "DELETE FROM actions WHERE dataset_id = $1 AND row_index = $2 RETURNING id", datasetID, row).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

func (s *PGStore) Close() {
	s.DB.Close()
}
