package actions

import "context"

type StoreAPI interface {
	Upsert(ctx context.Context, action Action) (Action, error)
	List(ctx context.Context, datasetID string) ([]Action, error)
	Delete(ctx context.Context, datasetID string, row int) error
	Ping(ctx context.Context) error
	Close()
}
