package database

import (
	"context"
)

type RunStore interface {
	RecordRun(ctx context.Context, run Run) error
	GetRunCount(ctx context.Context) (int, error)
	GetSourceStats(ctx context.Context) ([]SourceStats, error)
}
