package confdiff

import (
	"context"

	"github.com/google/uuid"

	"conftrail/archive"
)

// SnapshotSource fetches archived configuration text by exact timestamp.
// Both archive.Memory and database.DBClient satisfy it.
type SnapshotSource interface {
	Snapshot(ctx context.Context, deviceID uuid.UUID, ts archive.Timestamp) (string, error)
}

// Engine computes diffs between two archived configurations of a device.
type Engine struct {
	source SnapshotSource
}

func NewEngine(source SnapshotSource) *Engine {
	return &Engine{source: source}
}

// Diff fetches both snapshots and computes their line diff. A missing
// timestamp fails with archive.ErrSnapshotNotFound from the source; the
// engine never substitutes a nearest version. Purely a query.
func (e *Engine) Diff(ctx context.Context, deviceID uuid.UUID, tsA, tsB archive.Timestamp) (*Result, error) {
	first, err := e.source.Snapshot(ctx, deviceID, tsA)
	if err != nil {
		return nil, err
	}
	second, err := e.source.Snapshot(ctx, deviceID, tsB)
	if err != nil {
		return nil, err
	}
	result := Compute(first, second)
	return &result, nil
}
