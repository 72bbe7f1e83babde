package ingest

import (
	"context"

	"github.com/opentraffic/citysim/internal/wire"
)

// ColdStore appends decoded records for later batched persistence. Batcher
// is the production implementation backed by pgx; tests substitute a fake.
type ColdStore interface {
	Add(ctx context.Context, p wire.VehiclePosition) error
}

// HotStore dual-writes a record into the live geo index, its TTL metadata,
// and the pub/sub notification channel. HotPath is the production
// implementation backed by go-redis; tests substitute a fake.
type HotStore interface {
	Upsert(ctx context.Context, p wire.VehiclePosition) error
}
