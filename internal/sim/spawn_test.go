package sim

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/opentraffic/citysim/internal/graph"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestSpawnPlacesVehiclesOnEdges(t *testing.T) {
	g := twoEdgeGraph()
	v := Spawn(g, 10, discardLogger())

	assert.Equal(t, 10, v.Len())
	for i := 0; i < v.Len(); i++ {
		edgeIdx, dist := v.GraphPosition(i)
		assert.GreaterOrEqual(t, edgeIdx, 0)
		assert.Less(t, edgeIdx, len(g.Edges))
		assert.Equal(t, 0.0, dist)
		assert.GreaterOrEqual(t, v.TargetSpeed(i), float32(10))
		assert.LessOrEqual(t, v.TargetSpeed(i), float32(20))
	}
}

func TestSpawnEmptyGraphSpawnsNothing(t *testing.T) {
	g := graph.New(map[int64]graph.Node{}, nil)
	v := Spawn(g, 10, discardLogger())
	assert.Equal(t, 0, v.Len())
}
