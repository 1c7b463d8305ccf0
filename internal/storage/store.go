package storage

import (
	"context"

	"hopwalk/internal/model"
)

// Store defines persistence for simulation runs and their energy-keyed
// tables, so histograms and weights survive between runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveTables(ctx context.Context, tables model.RunTables) error
	GetTables(ctx context.Context, runID string) (model.RunTables, bool, error)
}
