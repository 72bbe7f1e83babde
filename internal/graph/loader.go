package graph

import (
	"context"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/errs"
)

// drivable lists the highway tag values the simulator will route vehicles
// over. Anything else (footways, cycleways, paths, ...) is ignored.
var drivable = map[string]bool{
	"motorway":      true,
	"trunk":         true,
	"primary":       true,
	"secondary":     true,
	"tertiary":      true,
	"residential":   true,
	"service":       true,
	"living_street": true,
}

type wayInfo struct {
	wayID    int64
	nodeIDs  []osm.NodeID
	highway  string
}

// LoadFromFile reads an OSM PBF extract at path and builds a RoadGraph.
// It scans the file twice: once for drivable ways (recording which node ids
// they reference), seeking back to the start, then once more for the
// coordinates of exactly those referenced nodes.
func LoadFromFile(path string) (*RoadGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Load("open road network file", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses an OSM PBF stream. rs must support seeking back to the start
// for the second pass.
func Load(rs io.ReadSeeker) (*RoadGraph, error) {
	ctx := context.Background()

	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		hw := w.Tags.Find("highway")
		if !drivable[hw] {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, n := range w.Nodes {
			ids[i] = n.ID
			referenced[n.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{wayID: int64(w.ID), nodeIDs: ids, highway: hw})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, errs.Load("scan ways", err)
	}
	scanner.Close()

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Load("seek for node pass", err)
	}

	nodes := make(map[int64]Node, len(referenced))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, want := referenced[n.ID]; !want {
			continue
		}
		nodes[int64(n.ID)] = Node{ID: int64(n.ID), Pos: orb.Point{n.Lon, n.Lat}}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, errs.Load("scan nodes", err)
	}
	scanner.Close()

	var edges []Edge
	var missingRefs int
	for _, w := range ways {
		for i := 0; i < len(w.nodeIDs)-1; i++ {
			a, aok := nodes[int64(w.nodeIDs[i])]
			b, bok := nodes[int64(w.nodeIDs[i+1])]
			if !aok || !bok {
				missingRefs++
				continue
			}
			edges = append(edges, Edge{
				WayID:        w.wayID,
				StartNodeID:  a.ID,
				EndNodeID:    b.ID,
				LengthM:      geo.Distance(a.Pos, b.Pos),
				Geometry:     []orb.Point{a.Pos, b.Pos},
				HighwayClass: w.highway,
			})
		}
	}

	if missingRefs > 0 {
		log.WithField("missing_node_refs", missingRefs).Warn("dropped edges referencing unresolved nodes")
	}

	g := New(nodes, edges)
	log.WithFields(log.Fields{
		"nodes": len(g.Nodes),
		"edges": len(g.Edges),
	}).Info("road network loaded")
	return g, nil
}
