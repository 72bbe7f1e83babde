package graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Interpolate walks a polyline by arc length and returns the point at the
// given progress in [0, 1]. It handles geometry with any number of points
// (>= 2) by locating the sub-segment that contains progress*totalLength and
// linearly interpolating within it.
func Interpolate(pts []orb.Point, progress float64) orb.Point {
	if len(pts) == 1 {
		return pts[0]
	}
	if progress <= 0 {
		return pts[0]
	}
	if progress >= 1 {
		return pts[len(pts)-1]
	}

	segLens := make([]float64, len(pts)-1)
	total := 0.0
	for i := 0; i < len(pts)-1; i++ {
		segLens[i] = geo.Distance(pts[i], pts[i+1])
		total += segLens[i]
	}
	if total == 0 {
		return pts[0]
	}

	target := progress * total
	covered := 0.0
	for i, segLen := range segLens {
		if segLen == 0 {
			continue
		}
		if covered+segLen >= target {
			localT := (target - covered) / segLen
			return lerpPoint(pts[i], pts[i+1], localT)
		}
		covered += segLen
	}
	return pts[len(pts)-1]
}

func lerpPoint(a, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}
