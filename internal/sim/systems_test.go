package sim

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentraffic/citysim/internal/graph"
)

func twoEdgeGraph() *graph.RoadGraph {
	nodes := map[int64]graph.Node{
		1: {ID: 1, Pos: orb.Point{0, 0}},
		2: {ID: 2, Pos: orb.Point{0.0009, 0}},
		3: {ID: 3, Pos: orb.Point{0.0009, 0.00045}},
	}
	edges := []graph.Edge{
		{WayID: 1, StartNodeID: 1, EndNodeID: 2, LengthM: 100, Geometry: []orb.Point{nodes[1].Pos, nodes[2].Pos}, HighwayClass: "residential"},
		{WayID: 2, StartNodeID: 2, EndNodeID: 3, LengthM: 50, Geometry: []orb.Point{nodes[2].Pos, nodes[3].Pos}, HighwayClass: "residential"},
	}
	return graph.New(nodes, edges)
}

func TestMovementSystemTransitionsAtEdgeEnd(t *testing.T) {
	g := twoEdgeGraph()
	v := NewVehicles()
	idx := v.Spawn("car_1", 0, 0, 25)

	for tick := 0; tick < 4; tick++ {
		movementSystem(g, v, 1.0)
	}
	edgeIdx, dist := v.GraphPosition(idx)
	assert.Equal(t, 1, edgeIdx)
	assert.Equal(t, 0.0, dist)

	movementSystem(g, v, 1.0)
	_, dist = v.GraphPosition(idx)
	assert.Equal(t, 25.0, dist)
	_ = idx
}

func TestMovementSystemClampsAtDeadEnd(t *testing.T) {
	nodes := map[int64]graph.Node{
		1: {ID: 1, Pos: orb.Point{0, 0}},
		2: {ID: 2, Pos: orb.Point{0.0009, 0}},
	}
	edges := []graph.Edge{
		{StartNodeID: 1, EndNodeID: 2, LengthM: 10, Geometry: []orb.Point{nodes[1].Pos, nodes[2].Pos}},
	}
	g := graph.New(nodes, edges)
	v := NewVehicles()
	idx := v.Spawn("car_1", 0, 0, 25)

	movementSystem(g, v, 1.0)
	edgeIdx, dist := v.GraphPosition(idx)
	require.Equal(t, 0, edgeIdx)
	assert.Equal(t, 10.0, dist)
}

func TestSyncPositionSnapsToEdgeStartAfterTransition(t *testing.T) {
	g := twoEdgeGraph()
	v := NewVehicles()
	v.Spawn("car_1", 1, 0, 0)

	syncPositionSystem(g, v)
	lon, lat := v.Position(0)
	assert.InDelta(t, 0.0009, float64(lon), 1e-6)
	assert.InDelta(t, 0.0, float64(lat), 1e-6)
}
