package roadgraph

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// Planner implements ports.RoutePlanner over a JSON road graph. The graph
// loads lazily on first use and is then shared by all calls; Planner is
// safe for concurrent use.
type Planner struct {
	path string

	once    sync.Once
	graph   *graph
	loadErr error
}

// NewPlanner creates a planner over the graph file at path. The file is
// not touched until the first route request.
func NewPlanner(path string) *Planner {
	return &Planner{path: path}
}

func (p *Planner) load() (*graph, error) {
	p.once.Do(func() {
		p.graph, p.loadErr = loadGraph(p.path)
	})
	if p.loadErr != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrGraphUnavailable, p.loadErr)
	}
	return p.graph, nil
}

// ComputeRoute finds the fastest road path between two points, both
// snapped to their nearest graph nodes.
func (p *Planner) ComputeRoute(ctx context.Context, origin, destination kernel.GeoPoint) (ports.Route, error) {
	if err := ctx.Err(); err != nil {
		return ports.Route{}, err
	}

	g, err := p.load()
	if err != nil {
		return ports.Route{}, err
	}

	from := g.nearestIndex(origin.Lat(), origin.Lon())
	to := g.nearestIndex(destination.Lat(), destination.Lon())

	return dijkstra(g, from, to)
}

// ComputeVisitOrder orders stops greedily: from the origin, always the
// remaining stop with the shortest road route, ties broken by the lowest
// stop index. Returns ErrNoRouteFound when some stop cannot be reached.
func (p *Planner) ComputeVisitOrder(
	ctx context.Context,
	origin kernel.GeoPoint,
	stops []kernel.GeoPoint,
) (ports.VisitPlan, error) {
	if err := ctx.Err(); err != nil {
		return ports.VisitPlan{}, err
	}
	if len(stops) == 0 {
		return ports.VisitPlan{}, nil
	}

	g, err := p.load()
	if err != nil {
		return ports.VisitPlan{}, err
	}

	stopNodes := make([]int, len(stops))
	for i, stop := range stops {
		stopNodes[i] = g.nearestIndex(stop.Lat(), stop.Lon())
	}

	remaining := make([]int, len(stops))
	for i := range remaining {
		remaining[i] = i
	}

	plan := ports.VisitPlan{Order: make([]int, 0, len(stops))}
	current := g.nearestIndex(origin.Lat(), origin.Lon())
	for len(remaining) > 0 {
		best := -1
		var bestLeg ports.Route
		for i, candidate := range remaining {
			leg, err := dijkstra(g, current, stopNodes[candidate])
			if err != nil {
				if errors.Is(err, ports.ErrNoRouteFound) {
					continue
				}
				return ports.VisitPlan{}, err
			}
			if best == -1 || leg.DistanceKm < bestLeg.DistanceKm {
				best = i
				bestLeg = leg
			}
		}
		if best == -1 {
			return ports.VisitPlan{}, ports.ErrNoRouteFound
		}

		chosen := remaining[best]
		plan.Order = append(plan.Order, chosen)
		plan.DistanceKm += bestLeg.DistanceKm
		plan.TimeMin += bestLeg.TimeMin
		current = stopNodes[chosen]
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return plan, nil
}

// dijkstra finds the minimum-travel-time path between two node indexes.
// Edge weight is length over speed, so a longer but faster road can win.
func dijkstra(g *graph, from, to int) (ports.Route, error) {
	const unvisited = -1

	dist := make([]float64, len(g.nodes))
	prev := make([]int, len(g.nodes))
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = unvisited
	}
	dist[from] = 0

	pq := &nodeQueue{{index: from, priority: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*queueItem)
		if item.index == to {
			break
		}
		if item.priority > dist[item.index] {
			continue
		}

		for _, e := range g.adj[item.index] {
			candidate := dist[item.index] + e.lengthM/e.speedKmh
			if candidate < dist[e.to] {
				dist[e.to] = candidate
				prev[e.to] = item.index
				heap.Push(pq, &queueItem{index: e.to, priority: candidate})
			}
		}
	}

	if math.IsInf(dist[to], 1) {
		return ports.Route{}, ports.ErrNoRouteFound
	}

	// Walk predecessors back to the origin.
	var indexes []int
	for at := to; at != unvisited; at = prev[at] {
		indexes = append(indexes, at)
		if at == from {
			break
		}
	}

	route := ports.Route{Path: make([]int64, 0, len(indexes))}
	for i := len(indexes) - 1; i >= 0; i-- {
		route.Path = append(route.Path, g.nodes[indexes[i]].id)
	}

	for i := len(indexes) - 1; i > 0; i-- {
		step, err := edgeBetween(g, indexes[i], indexes[i-1])
		if err != nil {
			return ports.Route{}, err
		}
		route.DistanceKm += step.lengthM / 1000
		route.TimeMin += step.lengthM / 1000 / step.speedKmh * 60
	}

	return route, nil
}

// edgeBetween returns the fastest edge linking two adjacent path nodes.
func edgeBetween(g *graph, from, to int) (edge, error) {
	var best edge
	found := false
	for _, e := range g.adj[from] {
		if e.to != to {
			continue
		}
		if !found || e.lengthM/e.speedKmh < best.lengthM/best.speedKmh {
			best = e
			found = true
		}
	}
	if !found {
		return edge{}, ports.ErrNoRouteFound
	}
	return best, nil
}

type queueItem struct {
	index    int
	priority float64
}

type nodeQueue []*queueItem

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)        { *q = append(*q, x.(*queueItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
