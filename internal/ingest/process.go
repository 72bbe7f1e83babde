package ingest

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/obs"
	"github.com/opentraffic/citysim/internal/wire"
)

// Processor runs the per-record pipeline: decode, cold-path batch append,
// hot-path upsert.
type Processor struct {
	Batcher ColdStore
	Hot     HotStore
	Log     *log.Entry
	Metrics *obs.IngestMetrics
}

// Process decodes raw and dual-writes it. A decode failure is a poison
// message: it is logged and Process returns nil so the caller commits the
// offset and moves on. Any other failure is returned so the caller withholds
// the commit and the broker redelivers raw on the next consumer restart.
func (p *Processor) Process(ctx context.Context, raw []byte) error {
	pos, err := wire.Decode(raw)
	if err != nil {
		p.Log.WithError(err).Warn("dropping malformed record")
		if p.Metrics != nil {
			p.Metrics.PoisonMessages.Inc()
		}
		return nil
	}

	if err := p.Batcher.Add(ctx, pos); err != nil {
		p.Log.WithError(err).Error("cold path append failed")
		return err
	}

	if err := p.Hot.Upsert(ctx, pos); err != nil {
		p.Log.WithError(err).Error("hot path upsert failed")
		if p.Metrics != nil {
			p.Metrics.HotPathFailures.Inc()
		}
		return err
	}

	return nil
}
