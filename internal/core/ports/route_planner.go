package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
)

var (
	// ErrNoRouteFound is returned when the road graph holds no path between
	// the requested points.
	ErrNoRouteFound = errors.New("no route found between the given points")

	// ErrGraphUnavailable is returned when the road graph cannot be loaded.
	ErrGraphUnavailable = errors.New("road graph is unavailable")
)

// Route is a computed shortest path between two points, snapped to the
// road graph.
type Route struct {
	// Path is the sequence of graph node ids the route traverses.
	Path []int64
	// DistanceKm is the total road distance.
	DistanceKm float64
	// TimeMin is the estimated travel time in minutes, per-edge speeds
	// applied.
	TimeMin float64
}

// VisitPlan is an ordering of delivery stops produced by the route planner.
type VisitPlan struct {
	// Order holds indexes into the caller's stop slice, in visit order.
	Order []int
	// DistanceKm is the road distance of the full tour, origin to last stop.
	DistanceKm float64
	// TimeMin is the estimated travel time of the full tour in minutes.
	TimeMin float64
}

// RoutePlanner computes road routes and stop orderings over a road graph.
type RoutePlanner interface {
	// ComputeRoute finds the shortest road path from origin to destination.
	ComputeRoute(ctx context.Context, origin, destination kernel.GeoPoint) (Route, error)

	// ComputeVisitOrder orders the stops by repeated nearest-neighbor over
	// road distance, starting from the origin.
	ComputeVisitOrder(ctx context.Context, origin kernel.GeoPoint, stops []kernel.GeoPoint) (VisitPlan, error)
}
