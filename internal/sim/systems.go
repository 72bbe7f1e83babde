package sim

import (
	"math/rand"
	"time"

	"github.com/opentraffic/citysim/internal/graph"
	"github.com/opentraffic/citysim/internal/wire"
)

// movementSystem advances each vehicle's GraphPosition by target_speed*dt.
// On reaching the end of its edge it picks a uniformly random outgoing edge
// from out_edges[end_node]; with none available it clamps to the edge's end
// and stalls there (spec's baseline does not carry over leftover distance
// on a transition, and does not reassign a stalled vehicle later).
func movementSystem(g *graph.RoadGraph, v *Vehicles, dt float64) {
	for idx := 0; idx < v.Len(); idx++ {
		if !v.Alive(idx) {
			continue
		}
		edgeIdx, dist := v.GraphPosition(idx)
		if edgeIdx < 0 || edgeIdx >= len(g.Edges) {
			continue
		}
		e := g.Edges[edgeIdx]
		dist += float64(v.TargetSpeed(idx)) * dt

		if dist >= e.LengthM {
			out := g.OutEdges[e.EndNodeID]
			if len(out) > 0 {
				next := out[rand.Intn(len(out))]
				v.SetGraphPosition(idx, next, 0)
				continue
			}
			dist = e.LengthM
		}
		v.SetGraphPosition(idx, edgeIdx, dist)
	}
}

// syncPositionSystem mirrors each vehicle's derived visual Position from its
// GraphPosition by arc-length interpolation along the current edge's
// geometry.
func syncPositionSystem(g *graph.RoadGraph, v *Vehicles) {
	for idx := 0; idx < v.Len(); idx++ {
		if !v.Alive(idx) {
			continue
		}
		edgeIdx, dist := v.GraphPosition(idx)
		if edgeIdx < 0 || edgeIdx >= len(g.Edges) {
			continue
		}
		e := g.Edges[edgeIdx]
		progress := 0.0
		if e.LengthM > 0 {
			progress = dist / e.LengthM
		}
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
		p := graph.Interpolate(e.Geometry, progress)
		v.SetPosition(idx, float32(p[0]), float32(p[1]))
	}
}

// broadcastSystem emits one VehiclePosition per vehicle to the producer.
// Called by the scheduler only on every broadcastEvery-th tick to limit bus
// pressure; every call here is a publish.
func broadcastSystem(v *Vehicles, p *Producer) {
	now := time.Now().Unix()
	for idx := 0; idx < v.Len(); idx++ {
		if !v.Alive(idx) {
			continue
		}
		lon, lat := v.Position(idx)
		p.Publish(wire.VehiclePosition{
			VehicleID: v.ID(idx),
			Latitude:  float64(lat),
			Longitude: float64(lon),
			Speed:     float64(v.TargetSpeed(idx)),
			Timestamp: now,
		})
	}
}
