package services

import (
	"daystack/internal/domain"
	"fmt"
	"math"
)

// MaxRouteNodes caps exact optimization. The DP table holds 2^n * n states.
const MaxRouteNodes = 18

// dpState is one cell of the Held–Karp table. set is false for states
// that have not been reached; such cells are skipped, never read as zero.
type dpState struct {
	cost   float64
	parent int8
	set    bool
}

// OptimalRoute finds the visiting order of all nodes that starts at node 0,
// does not return, and minimizes total travel, using Held–Karp dynamic
// programming over node subsets.
//
// dp[mask][j] is the least travel that visits exactly the nodes in mask
// (which always contains node 0) and ends at j. Only reachable states are
// populated. Travel entries that are NaN, negative or infinite are treated
// as missing edges; self-loops are never taken.
//
// Time complexity:  O(2^n · n^2)
// Memory complexity: O(2^n · n)
func OptimalRoute(inst domain.RouteInstance) (domain.RouteResult, error) {
	if err := validateRoute(inst); err != nil {
		return domain.RouteResult{}, err
	}

	n := len(inst.Nodes)
	if n == 0 {
		return domain.RouteResult{Order: []int{}}, nil
	}

	size := 1 << n
	table := make([]dpState, size*n)
	at := func(mask, j int) *dpState { return &table[mask*n+j] }

	*at(1, 0) = dpState{cost: 0, parent: -1, set: true}

	// Every mask that contains node 0 is odd. Successor masks are strictly
	// larger, so ascending order finalizes each state before it is extended.
	for mask := 1; mask < size; mask += 2 {
		for j := 0; j < n; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			cur := at(mask, j)
			if !cur.set {
				continue
			}

			for k := 0; k < n; k++ {
				if mask&(1<<k) != 0 {
					continue
				}
				w := inst.Travel[j][k]
				if !usableEdge(w) {
					continue
				}

				next := at(mask|1<<k, k)
				cand := cur.cost + w
				if !next.set || cand < next.cost {
					*next = dpState{cost: cand, parent: int8(j), set: true}
				}
			}
		}
	}

	full := size - 1
	best := -1
	for j := 0; j < n; j++ {
		s := at(full, j)
		if !s.set {
			continue
		}
		if best < 0 || s.cost < at(full, best).cost {
			best = j
		}
	}
	if best < 0 {
		return domain.RouteResult{}, fmt.Errorf("optimal route: %d nodes: %w", n, ErrUnreachableTour)
	}

	order := make([]int, n)
	mask, j := full, best
	for i := n - 1; i >= 0; i-- {
		order[i] = j
		p := int(at(mask, j).parent)
		mask &^= 1 << j
		j = p
	}

	travel := at(full, best).cost
	work := 0.0
	for _, idx := range order {
		work += inst.Nodes[idx].WorkMinutes
	}

	return domain.RouteResult{
		Order:       order,
		TotalTravel: travel,
		TotalWork:   work,
		TotalTime:   travel + work,
	}, nil
}

func usableEdge(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0
}

func validateRoute(inst domain.RouteInstance) error {
	n := len(inst.Nodes)
	if n > MaxRouteNodes {
		return fmt.Errorf("optimal route: %d nodes exceeds %d: %w", n, MaxRouteNodes, ErrRouteTooLarge)
	}
	if len(inst.Travel) != n {
		return fmt.Errorf("optimal route: matrix has %d rows, want %d: %w", len(inst.Travel), n, ErrInvalidRoute)
	}
	for i, row := range inst.Travel {
		if len(row) != n {
			return fmt.Errorf("optimal route: row %d has length %d, want %d: %w", i, len(row), n, ErrInvalidRoute)
		}
	}
	for i, node := range inst.Nodes {
		if node.WorkMinutes < 0 || math.IsNaN(node.WorkMinutes) || math.IsInf(node.WorkMinutes, 0) {
			return fmt.Errorf("optimal route: node %d work %v: %w", i, node.WorkMinutes, ErrInvalidRoute)
		}
	}
	return nil
}
