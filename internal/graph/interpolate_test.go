package graph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestInterpolateTwoPointEndpoints(t *testing.T) {
	pts := []orb.Point{{0, 0}, {0.001, 0}}
	assert.Equal(t, pts[0], Interpolate(pts, 0))
	assert.Equal(t, pts[1], Interpolate(pts, 1))

	mid := Interpolate(pts, 0.5)
	assert.InDelta(t, 0.0005, mid[0], 1e-9)
	assert.InDelta(t, 0, mid[1], 1e-9)
}

func TestInterpolateThreePointPicksCorrectSegment(t *testing.T) {
	// Roughly a 3-unit then 4-unit leg near the equator, where degree
	// distances in lon and lat are comparable.
	pts := []orb.Point{{0, 0}, {0.00003, 0}, {0.00003, 0.00004}}

	start := Interpolate(pts, 0)
	assert.Equal(t, pts[0], start)

	end := Interpolate(pts, 1)
	assert.Equal(t, pts[2], end)

	mid := Interpolate(pts, 0.5)
	// Past the first segment entirely (that covers ~3/7 of the path),
	// partway into the second.
	assert.InDelta(t, pts[1][0], mid[0], 1e-9)
	assert.Greater(t, mid[1], 0.0)
	assert.Less(t, mid[1], pts[2][1])
}

func TestInterpolateSinglePoint(t *testing.T) {
	pts := []orb.Point{{1, 2}}
	assert.Equal(t, pts[0], Interpolate(pts, 0.7))
}
