package handlers

import (
	"daystack/internal/api/dto"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"daystack/internal/services"
	"fmt"
	"math"
	"net/http"
	"strings"
)

// RouteHandler solves small exact routing problems with Held–Karp.
type RouteHandler struct {
	Oracle ports.TravelTimeOracle
	Packer services.PackerOptions
}

func (h *RouteHandler) Route(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodPost) {
		return
	}

	var req dto.RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts := h.Packer
	if req.IncludeBuffer != nil {
		opts.IncludeBuffer = *req.IncludeBuffer
	}

	var (
		inst domain.RouteInstance
		err  error
	)
	if req.Travel != nil {
		inst, err = instanceFromMatrix(req.Nodes, req.Travel)
	} else {
		inst, err = services.BuildRouteInstance(r.Context(), h.Oracle, strings.TrimSpace(req.Start), fromTaskDTOs(req.Tasks), opts)
	}
	if err != nil {
		writeServiceError(w, r, "build route", err)
		return
	}

	order, travel, work, total, err := services.NewRouteSolver(inst).ComputeOptimalSchedule()
	if err != nil {
		writeServiceError(w, r, "optimal route", err)
		return
	}

	res := dto.RouteResponse{
		Order:       make([]dto.RouteNodeDTO, 0, len(order)),
		TotalTravel: travel,
		TotalWork:   work,
		TotalTime:   total,
	}
	for _, n := range order {
		res.Order = append(res.Order, dto.RouteNodeDTO{ID: n.ID, Name: n.Name, WorkMinutes: n.WorkMinutes})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// instanceFromMatrix maps null entries to +Inf, the optimizer's missing edge.
func instanceFromMatrix(nodes []dto.RouteNodeDTO, travel [][]*float64) (domain.RouteInstance, error) {
	if len(nodes) != len(travel) {
		return domain.RouteInstance{}, fmt.Errorf("%d nodes but %d travel rows: %w", len(nodes), len(travel), services.ErrInvalidRoute)
	}

	inst := domain.RouteInstance{
		Nodes:  make([]domain.RouteNode, 0, len(nodes)),
		Travel: make([][]float64, len(travel)),
	}
	for _, n := range nodes {
		inst.Nodes = append(inst.Nodes, domain.RouteNode{ID: n.ID, Name: n.Name, WorkMinutes: n.WorkMinutes})
	}
	for i, row := range travel {
		inst.Travel[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				inst.Travel[i][j] = math.Inf(1)
				continue
			}
			inst.Travel[i][j] = *v
		}
	}
	return inst, nil
}
