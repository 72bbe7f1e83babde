package sim

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/graph"
)

// Spawn places count vehicles onto uniformly random edges with non-empty
// geometry, each starting at distance 0 with a target speed drawn from
// Uniform(10, 20) m/s. An empty graph logs and spawns nothing.
func Spawn(g *graph.RoadGraph, count int, logger *log.Entry) *Vehicles {
	v := NewVehicles()

	candidates := make([]int, 0, len(g.Edges))
	for i, e := range g.Edges {
		if len(e.Geometry) > 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		logger.Warn("road graph has no edges with geometry, spawning no vehicles")
		return v
	}

	for i := 0; i < count; i++ {
		edgeIdx := candidates[rand.Intn(len(candidates))]
		targetSpeed := float32(10 + rand.Float64()*10)
		v.Spawn(fmt.Sprintf("car_%d", i), edgeIdx, 0, targetSpeed)
	}

	logger.WithField("count", v.Len()).Info("spawned vehicles")
	return v
}
