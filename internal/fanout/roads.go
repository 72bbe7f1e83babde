package fanout

import "github.com/opentraffic/citysim/internal/graph"

// RoadSegment is one drivable edge's geometry, as served by GET /map.
type RoadSegment struct {
	ID       uint64       `json:"id"`
	Geometry [][2]float64 `json:"geometry"`
}

// BuildRoadSnapshot computes the /map payload once from the loaded graph.
// The result is immutable and meant to be cached by the caller for the
// lifetime of the process.
func BuildRoadSnapshot(g *graph.RoadGraph) []RoadSegment {
	snapshot := make([]RoadSegment, 0, len(g.Edges))
	for i, e := range g.Edges {
		geom := make([][2]float64, len(e.Geometry))
		for j, p := range e.Geometry {
			geom[j] = [2]float64{p[0], p[1]}
		}
		snapshot = append(snapshot, RoadSegment{ID: uint64(i), Geometry: geom})
	}
	return snapshot
}
