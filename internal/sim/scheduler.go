package sim

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/graph"
	"github.com/opentraffic/citysim/internal/obs"
)

const tickPeriod = 16 * time.Millisecond

// Scheduler runs the fixed system schedule (movement, sync, broadcast) at a
// ~60Hz real-time rate scaled by TimeScale. It never catches up: an
// overrunning tick simply makes the next tick's measured delta longer.
type Scheduler struct {
	Graph          *graph.RoadGraph
	Vehicles       *Vehicles
	Producer       *Producer
	TimeScale      float64
	BroadcastEvery int
	Log            *log.Entry
	Metrics        *obs.SimMetrics
}

// Run executes ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if s.BroadcastEvery < 1 {
		s.BroadcastEvery = 1
	}

	last := time.Now()
	tickCount := 0

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("simulation loop stopping")
			return
		default:
		}

		start := time.Now()
		dtReal := start.Sub(last)
		last = start
		dt := dtReal.Seconds() * s.TimeScale

		movementSystem(s.Graph, s.Vehicles, dt)
		syncPositionSystem(s.Graph, s.Vehicles)

		tickCount++
		if tickCount%s.BroadcastEvery == 0 {
			broadcastSystem(s.Vehicles, s.Producer)
		}

		if s.Metrics != nil {
			s.Metrics.TicksRun.Inc()
		}

		elapsed := time.Since(start)
		if elapsed < tickPeriod {
			select {
			case <-ctx.Done():
				s.Log.Info("simulation loop stopping")
				return
			case <-time.After(tickPeriod - elapsed):
			}
		}
	}
}
