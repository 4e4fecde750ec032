// Package roadgraph implements the route planner over a road graph
// exported to JSON. Shortest paths minimize travel time: each edge is
// weighted by its length divided by its speed limit, with a default for
// unposted roads.
package roadgraph

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultSpeedKmh is assumed for edges without a posted speed.
const DefaultSpeedKmh = 40.0

type graphFile struct {
	Nodes []nodeRecord `json:"nodes"`
	Edges []edgeRecord `json:"edges"`
}

type nodeRecord struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type edgeRecord struct {
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	LengthM  float64 `json:"lengthM"`
	SpeedKmh float64 `json:"speedKmh,omitempty"`
	Oneway   bool    `json:"oneway,omitempty"`
}

type node struct {
	id       int64
	lat, lon float64
}

type edge struct {
	to       int
	lengthM  float64
	speedKmh float64
}

// graph is an adjacency-list road network. Node ids from the file are
// mapped to dense indexes at load time.
type graph struct {
	nodes   []node
	adj     [][]edge
	indexOf map[int64]int
}

func loadGraph(path string) (*graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read road graph: %w", err)
	}

	var file graphFile
	if err = json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse road graph: %w", err)
	}
	if len(file.Nodes) == 0 {
		return nil, fmt.Errorf("road graph has no nodes")
	}

	g := &graph{
		nodes:   make([]node, 0, len(file.Nodes)),
		adj:     make([][]edge, len(file.Nodes)),
		indexOf: make(map[int64]int, len(file.Nodes)),
	}

	for _, rec := range file.Nodes {
		if _, ok := g.indexOf[rec.ID]; ok {
			return nil, fmt.Errorf("road graph has duplicate node %d", rec.ID)
		}
		g.indexOf[rec.ID] = len(g.nodes)
		g.nodes = append(g.nodes, node{id: rec.ID, lat: rec.Lat, lon: rec.Lon})
	}

	for _, rec := range file.Edges {
		from, ok := g.indexOf[rec.From]
		if !ok {
			return nil, fmt.Errorf("road graph edge references unknown node %d", rec.From)
		}
		to, ok := g.indexOf[rec.To]
		if !ok {
			return nil, fmt.Errorf("road graph edge references unknown node %d", rec.To)
		}
		if rec.LengthM <= 0 {
			return nil, fmt.Errorf("road graph edge %d->%d has non-positive length", rec.From, rec.To)
		}

		speed := rec.SpeedKmh
		if speed <= 0 {
			speed = DefaultSpeedKmh
		}

		g.adj[from] = append(g.adj[from], edge{to: to, lengthM: rec.LengthM, speedKmh: speed})
		if !rec.Oneway {
			g.adj[to] = append(g.adj[to], edge{to: from, lengthM: rec.LengthM, speedKmh: speed})
		}
	}

	return g, nil
}

// nearestIndex snaps a coordinate to the closest graph node by squared
// coordinate distance. A linear scan is fine at city scale.
func (g *graph) nearestIndex(lat, lon float64) int {
	best := 0
	bestDist := squared(g.nodes[0], lat, lon)
	for i := 1; i < len(g.nodes); i++ {
		if d := squared(g.nodes[i], lat, lon); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func squared(n node, lat, lon float64) float64 {
	dLat := n.lat - lat
	dLon := n.lon - lon
	return dLat*dLat + dLon*dLon
}
