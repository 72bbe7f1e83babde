// Package graph holds the immutable road network the simulator drives
// vehicles over: nodes, directed edges, and the adjacency derived from them.
package graph

import "github.com/paulmach/orb"

// Node is an intersection or endpoint with a geographic position.
type Node struct {
	ID  int64
	Pos orb.Point // (lon, lat)
}

// Lon returns the node's longitude.
func (n Node) Lon() float64 { return n.Pos[0] }

// Lat returns the node's latitude.
func (n Node) Lat() float64 { return n.Pos[1] }

// Edge is a single directed road segment. Geometry always has at least two
// points and its endpoints coincide with the start/end node positions.
type Edge struct {
	WayID        int64
	StartNodeID  int64
	EndNodeID    int64
	LengthM      float64
	Geometry     []orb.Point
	HighwayClass string
}

// RoadGraph is the immutable loaded road network. Callers must not mutate
// Nodes or Edges after Load/LoadFromFile returns.
type RoadGraph struct {
	Nodes    map[int64]Node
	Edges    []Edge
	OutEdges map[int64][]int // node id -> indices into Edges, start_node_id == that node
}

// New builds a RoadGraph from already-materialized nodes and edges,
// deriving OutEdges by grouping edge indices on StartNodeID.
func New(nodes map[int64]Node, edges []Edge) *RoadGraph {
	out := make(map[int64][]int, len(nodes))
	for i, e := range edges {
		out[e.StartNodeID] = append(out[e.StartNodeID], i)
	}
	return &RoadGraph{Nodes: nodes, Edges: edges, OutEdges: out}
}

// GraphStats summarizes a loaded RoadGraph, backing /health's counters.
type GraphStats struct {
	NodeCount      int
	EdgeCount      int
	EdgesByHighway map[string]int
}

// Stats computes summary counters over the graph by walking every edge on
// each call; the result is not cached.
func (g *RoadGraph) Stats() GraphStats {
	s := GraphStats{
		NodeCount:      len(g.Nodes),
		EdgeCount:      len(g.Edges),
		EdgesByHighway: make(map[string]int),
	}
	for _, e := range g.Edges {
		s.EdgesByHighway[e.HighwayClass]++
	}
	return s
}
