// Package ingest implements the Ingest Core: a raw-telemetry consumer that
// decodes records and dual-writes them to a batched cold store and a
// real-time hot store.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opentraffic/citysim/internal/errs"
	"github.com/opentraffic/citysim/internal/obs"
	"github.com/opentraffic/citysim/internal/wire"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS vehicle_positions (
	time TIMESTAMPTZ NOT NULL,
	vehicle_id TEXT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	speed DOUBLE PRECISION
)`

// Batcher buffers decoded records and flushes them to the cold store in one
// transaction once the buffer reaches batchSize. A transaction error leaves
// the buffer intact so the next Add retries the same rows.
type Batcher struct {
	pool      *pgxpool.Pool
	batchSize int
	metrics   *obs.IngestMetrics

	mu  sync.Mutex
	buf []wire.VehiclePosition
}

// NewBatcher opens a pool against url and idempotently creates the
// vehicle_positions table.
func NewBatcher(ctx context.Context, url string, batchSize int, metrics *obs.IngestMetrics) (*Batcher, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errs.Store("connect cold store", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, errs.Store("bootstrap schema", err)
	}
	return &Batcher{pool: pool, batchSize: batchSize, metrics: metrics}, nil
}

// Add appends p to the buffer, flushing when the buffer reaches batchSize.
func (b *Batcher) Add(ctx context.Context, p wire.VehiclePosition) error {
	b.mu.Lock()
	b.buf = append(b.buf, p)
	shouldFlush := len(b.buf) >= b.batchSize
	b.mu.Unlock()

	if shouldFlush {
		return b.Flush(ctx)
	}
	return nil
}

// Flush commits every buffered row in one transaction and clears the
// buffer. On error the buffer is left untouched for the next Add to retry.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.buf) == 0 {
		return nil
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return errs.Store("begin transaction", err)
	}

	batch := &pgx.Batch{}
	for _, p := range b.buf {
		batch.Queue(
			`INSERT INTO vehicle_positions (time, vehicle_id, latitude, longitude, speed) VALUES (to_timestamp($1), $2, $3, $4, $5)`,
			float64(p.Timestamp), p.VehicleID, p.Latitude, p.Longitude, p.Speed,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range b.buf {
		if _, err := br.Exec(); err != nil {
			br.Close()
			tx.Rollback(ctx)
			return errs.Store("insert batch row", err)
		}
	}
	if err := br.Close(); err != nil {
		tx.Rollback(ctx)
		return errs.Store("close batch results", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Store("commit transaction", err)
	}

	if b.metrics != nil {
		b.metrics.BatchesFlushed.Inc()
		b.metrics.RowsInserted.Add(float64(len(b.buf)))
	}

	b.buf = b.buf[:0]
	return nil
}

// Close flushes any remaining buffered rows and closes the pool. Called on
// graceful shutdown to force a final flush.
func (b *Batcher) Close(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err := b.Flush(flushCtx)
	b.pool.Close()
	return err
}
