package handlers

import (
	"daystack/internal/api/dto"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"daystack/internal/services"
	"log"
	"net/http"
	"strings"
	"time"
)

type PlanHandler struct {
	Tasks  ports.TaskRepository
	Events ports.EventSource
	Oracle ports.TravelTimeOracle
	Packer services.PackerOptions
	// Location interprets request dates; nil means UTC.
	Location *time.Location
}

// Plan builds a travel-aware plan for one day from the request's events and
// tasks, falling back to the configured calendar and backlog.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts := h.Packer
	switch strings.ToLower(strings.TrimSpace(req.UnlocatedPolicy)) {
	case "":
	case "cursor":
		opts.Policy = services.CursorLocation
	case "agnostic":
		opts.Policy = services.LocationAgnostic
	default:
		writeError(w, r, http.StatusBadRequest, "unlocated_policy must be cursor or agnostic")
		return
	}
	if req.IncludeBuffer != nil {
		opts.IncludeBuffer = *req.IncludeBuffer
	}

	ctx := r.Context()

	events := fromEventDTOs(req.Events)
	if req.Events == nil {
		if h.Events == nil {
			writeError(w, r, http.StatusBadRequest, "events are required")
			return
		}

		loc := h.Location
		if loc == nil {
			loc = time.UTC
		}
		day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(req.Date), loc)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD when events are omitted")
			return
		}

		events, err = h.Events.EventsOn(ctx, day)
		if err != nil {
			log.Printf("load events failed: %v", err)
			writeError(w, r, http.StatusBadGateway, "calendar source unavailable")
			return
		}
	}

	tasks := fromTaskDTOs(req.Tasks)
	if req.Tasks == nil && h.Tasks != nil {
		var err error
		tasks, err = h.Tasks.ListTasks(ctx)
		if err != nil {
			log.Printf("list tasks failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	svcReq := services.PlanDayRequest{
		Events: events,
		Tasks:  tasks,
		Bounds: services.DayBounds{
			Start:         req.DayStart,
			StartLocation: strings.TrimSpace(req.StartLocation),
			End:           req.DayEnd,
			EndLocation:   strings.TrimSpace(req.EndLocation),
		},
		Packer: opts,
	}

	plan, err := services.PlanDay(ctx, svcReq, h.Oracle)
	if err != nil {
		writeServiceError(w, r, "plan day", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

func fromEventDTOs(events []dto.EventDTO) []domain.FixedEvent {
	out := make([]domain.FixedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, domain.FixedEvent{
			ID:       e.ID,
			Name:     e.Name,
			Start:    e.Start,
			End:      e.End,
			Location: e.Location,
		})
	}
	return out
}

func toPlanResponse(plan *domain.DayPlan) dto.PlanResponse {
	res := dto.PlanResponse{
		Entries:  make([]dto.PlanEntryResponse, 0, len(plan.Entries)),
		Gaps:     make([]dto.GapResponse, 0, len(plan.Gaps)),
		Unplaced: toTaskDTOs(plan.Unplaced),
	}

	for _, e := range plan.Entries {
		switch {
		case e.Event != nil:
			res.Entries = append(res.Entries, dto.PlanEntryResponse{
				Kind:     string(domain.EntryEvent),
				ID:       e.Event.ID,
				Name:     e.Event.Name,
				Start:    e.Event.Start,
				End:      e.Event.End,
				Location: e.Event.Location,
			})
		case e.Block != nil:
			b := *e.Block
			res.Entries = append(res.Entries, dto.PlanEntryResponse{
				Kind:         string(domain.EntryTask),
				ID:           b.TaskID,
				Name:         b.TaskName,
				Start:        &b.Start,
				End:          &b.End,
				Location:     b.Location,
				TravelBefore: &b.TravelBefore,
				TravelAfter:  &b.TravelAfter,
			})
		}
	}

	for _, g := range plan.Gaps {
		placed := make([]string, 0, len(g.Blocks))
		for _, b := range g.Blocks {
			placed = append(placed, b.TaskID)
		}
		res.Gaps = append(res.Gaps, dto.GapResponse{
			Index:        g.Gap.Index,
			PrevID:       g.Gap.PrevID,
			NextID:       g.Gap.NextID,
			Start:        g.Gap.Start,
			Deadline:     g.Gap.Deadline,
			Minutes:      g.Gap.Minutes(),
			From:         g.Gap.FromLocation,
			To:           g.Gap.ToLocation,
			DirectTravel: g.DirectTravel,
			Placed:       placed,
			Blocked:      g.Blocked,
			SlackAfter:   g.SlackAfter,
		})
	}

	return res
}
