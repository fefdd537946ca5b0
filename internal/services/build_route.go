package services

import (
	"context"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"math"
)

// BuildRouteInstance asks the oracle for travel between every ordered pair
// of (start, tasks...) and returns a route instance for OptimalRoute.
// Tasks without a location are placed at the start location. Pairs the
// oracle cannot answer are left as +Inf, which the optimizer treats as a
// missing edge.
func BuildRouteInstance(
	ctx context.Context,
	oracle ports.TravelTimeOracle,
	startLocation string,
	tasks []domain.FlexibleTask,
	opts PackerOptions,
) (domain.RouteInstance, error) {
	if oracle == nil {
		return domain.RouteInstance{}, errors.New("build route instance: travel oracle must be non-nil")
	}
	if startLocation == "" {
		return domain.RouteInstance{}, fmt.Errorf("build route instance: start location must be non-empty: %w", ErrInvalidRoute)
	}
	if len(tasks)+1 > MaxRouteNodes {
		return domain.RouteInstance{}, fmt.Errorf("build route instance: %d nodes: %w", len(tasks)+1, ErrRouteTooLarge)
	}

	nodes := make([]domain.RouteNode, 0, len(tasks)+1)
	locations := make([]string, 0, len(tasks)+1)

	nodes = append(nodes, domain.RouteNode{ID: "start", Name: startLocation})
	locations = append(locations, startLocation)

	for _, t := range tasks {
		loc := t.Location
		if loc == "" {
			loc = startLocation
		}
		nodes = append(nodes, domain.RouteNode{ID: t.ID, Name: t.DisplayName(), WorkMinutes: float64(t.DurationMinutes)})
		locations = append(locations, loc)
	}

	n := len(nodes)
	queries := make([]ports.TravelQuery, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			queries = append(queries, ports.TravelQuery{From: locations[i], To: locations[j], IncludeBuffer: opts.IncludeBuffer})
		}
	}

	cache := NewTravelCache(oracle)
	found, _, err := cache.LookupMany(ctx, queries, opts.Parallelism)
	if err != nil {
		return domain.RouteInstance{}, fmt.Errorf("build route instance: %w", err)
	}

	travel := make([][]float64, n)
	for i := range travel {
		travel[i] = make([]float64, n)
		for j := range travel[i] {
			if i == j {
				continue
			}
			q := ports.TravelQuery{From: locations[i], To: locations[j], IncludeBuffer: opts.IncludeBuffer}
			if v, ok := found[q]; ok {
				travel[i][j] = float64(v)
			} else {
				travel[i][j] = math.Inf(1)
			}
		}
	}

	return domain.RouteInstance{Nodes: nodes, Travel: travel}, nil
}
