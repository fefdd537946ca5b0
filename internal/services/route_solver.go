package services

import (
	"daystack/internal/domain"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

const maxSolvedRoutes = 8

type solvedRoute struct {
	nodes  []domain.RouteNode
	travel [][]float64
	result domain.RouteResult
}

// RouteSolver owns a route instance whose travel times may change and
// memoizes Held–Karp results keyed by the exact matrix and node set they
// were computed for. Any change to a matrix entry changes the key, so a
// result computed before an update is never returned after it.
//
// A RouteSolver is not safe for concurrent use.
type RouteSolver struct {
	inst   domain.RouteInstance
	solved map[uint64]solvedRoute
}

// NewRouteSolver copies inst; later changes to the caller's slices do not
// affect the solver.
func NewRouteSolver(inst domain.RouteInstance) *RouteSolver {
	return &RouteSolver{
		inst:   cloneInstance(inst),
		solved: make(map[uint64]solvedRoute),
	}
}

// UpdateMoveTime sets the travel time from node i to node j.
func (s *RouteSolver) UpdateMoveTime(i, j int, minutes float64) error {
	n := len(s.inst.Nodes)
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("update move time: index (%d, %d) out of range for %d nodes: %w", i, j, n, ErrInvalidRoute)
	}
	s.inst.Travel[i][j] = minutes
	return nil
}

// Instance returns a copy of the current instance.
func (s *RouteSolver) Instance() domain.RouteInstance { return cloneInstance(s.inst) }

// Solve returns the optimal route for the current matrix.
func (s *RouteSolver) Solve() (domain.RouteResult, error) {
	key := fingerprint(s.inst)
	if hit, ok := s.solved[key]; ok && sameInstance(hit, s.inst) {
		return cloneResult(hit.result), nil
	}

	res, err := OptimalRoute(s.inst)
	if err != nil {
		return domain.RouteResult{}, err
	}

	if len(s.solved) >= maxSolvedRoutes {
		clear(s.solved)
	}
	snap := cloneInstance(s.inst)
	s.solved[key] = solvedRoute{nodes: snap.Nodes, travel: snap.Travel, result: cloneResult(res)}

	return res, nil
}

// ComputeOptimalSchedule returns the nodes in optimal order together with
// total travel, total work and their sum.
func (s *RouteSolver) ComputeOptimalSchedule() ([]domain.RouteNode, float64, float64, float64, error) {
	res, err := s.Solve()
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return res.OrderedNodes(s.inst), res.TotalTravel, res.TotalWork, res.TotalTime, nil
}

func fingerprint(inst domain.RouteInstance) uint64 {
	h := xxhash.New()
	var buf [8]byte

	for _, node := range inst.Nodes {
		_, _ = h.WriteString(node.ID)
		_, _ = h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(node.WorkMinutes))
		_, _ = h.Write(buf[:])
	}
	for _, row := range inst.Travel {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

func sameInstance(hit solvedRoute, inst domain.RouteInstance) bool {
	if !slices.Equal(hit.nodes, inst.Nodes) {
		return false
	}
	return slices.EqualFunc(hit.travel, inst.Travel, func(a, b []float64) bool {
		return slices.EqualFunc(a, b, func(x, y float64) bool {
			return math.Float64bits(x) == math.Float64bits(y)
		})
	})
}

func cloneInstance(inst domain.RouteInstance) domain.RouteInstance {
	travel := make([][]float64, len(inst.Travel))
	for i, row := range inst.Travel {
		travel[i] = slices.Clone(row)
	}
	return domain.RouteInstance{Nodes: slices.Clone(inst.Nodes), Travel: travel}
}

func cloneResult(r domain.RouteResult) domain.RouteResult {
	r.Order = slices.Clone(r.Order)
	return r
}
