package fanout

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"github.com/opentraffic/citysim/internal/graph"
)

func TestBuildRoadSnapshotEmptyGraph(t *testing.T) {
	g := graph.New(map[int64]graph.Node{}, nil)
	snapshot := BuildRoadSnapshot(g)
	assert.Empty(t, snapshot)
}

func TestBuildRoadSnapshotCarriesGeometry(t *testing.T) {
	nodes := map[int64]graph.Node{
		1: {ID: 1, Pos: orb.Point{0, 0}},
		2: {ID: 2, Pos: orb.Point{1, 1}},
	}
	edges := []graph.Edge{
		{StartNodeID: 1, EndNodeID: 2, LengthM: 1, Geometry: []orb.Point{nodes[1].Pos, nodes[2].Pos}, HighwayClass: "residential"},
	}
	g := graph.New(nodes, edges)

	snapshot := BuildRoadSnapshot(g)
	assert.Len(t, snapshot, 1)
	assert.Equal(t, uint64(0), snapshot[0].ID)
	assert.Equal(t, [2]float64{0, 0}, snapshot[0].Geometry[0])
	assert.Equal(t, [2]float64{1, 1}, snapshot[0].Geometry[1])
}
