package services

import (
	"context"
	"daystack/internal/domain"
	"daystack/internal/platform/obs"
	"daystack/internal/ports"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
)

type PlanDayRequest struct {
	Events []domain.FixedEvent
	Tasks  []domain.FlexibleTask
	Bounds DayBounds
	Packer PackerOptions
}

// PlanDay extracts the gaps of a day and packs flexible tasks into them,
// gap by gap, sharing one travel cache for the whole run.
//
// Partial oracle failures and tasks that do not fit never fail the run;
// they show up in the returned plan's Unplaced list. Only an empty or
// malformed calendar, invalid tasks and cancellation are errors.
// Cancellation is checked before each gap.
func PlanDay(
	ctx context.Context,
	req PlanDayRequest,
	oracle ports.TravelTimeOracle,
) (_ *domain.DayPlan, err error) {
	defer obs.Time(ctx, "services.PlanDay")(&err)

	if len(req.Events) == 0 {
		return nil, fmt.Errorf("plan day: %w", ErrEmptyCalendar)
	}
	if oracle == nil {
		return nil, errors.New("plan day: travel oracle must be non-nil")
	}
	if err := validateEvents(req.Events); err != nil {
		return nil, fmt.Errorf("plan day: %w", err)
	}
	if err := validateTasks(req.Tasks); err != nil {
		return nil, fmt.Errorf("plan day: %w", err)
	}

	events, gaps := ExtractGaps(req.Events, req.Bounds)

	cache := NewTravelCache(oracle)
	packer := NewGapPacker(cache, req.Packer)
	remaining := slices.Clone(req.Tasks)
	reports := make([]domain.GapReport, 0, len(gaps))

	for _, gap := range gaps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("plan day: before gap %d: %w", gap.Index, err)
		}

		report := domain.GapReport{Gap: gap, Blocks: []domain.TaskBlock{}}

		if gap.Degenerate() {
			log.Printf("plan day: gap=%d prev=%q next=%q minutes=%d skipped=degenerate", gap.Index, gap.PrevID, gap.NextID, gap.Minutes())
			reports = append(reports, report)
			continue
		}

		direct, err := cache.Lookup(ctx, ports.TravelQuery{
			From:          gap.FromLocation,
			To:            gap.ToLocation,
			IncludeBuffer: req.Packer.IncludeBuffer,
		})
		switch {
		case err == nil:
			report.DirectTravel = &direct
		case ctx.Err() != nil:
			return nil, fmt.Errorf("plan day: gap %d: %w", gap.Index, ctx.Err())
		default:
			log.Printf("plan day: gap=%d direct travel unknown err=%v", gap.Index, err)
		}

		res, err := packer.PackGap(ctx, gap, remaining)
		if err != nil {
			return nil, fmt.Errorf("plan day: gap %d: %w", gap.Index, err)
		}
		remaining = res.Remaining

		report.Blocks = res.Blocks
		report.Blocked = res.Blocked
		report.SlackAfter = res.SlackAfter
		reports = append(reports, report)

		log.Printf(
			"plan day: gap=%d from=%q to=%q minutes=%d direct_travel=%s placed=%d blocked=%t slack=%d",
			gap.Index, gap.FromLocation, gap.ToLocation, gap.Minutes(), fmtMinutes(report.DirectTravel),
			len(res.Blocks), res.Blocked, res.SlackAfter,
		)
	}

	plan, err := AssembleSchedule(events, reports, remaining)
	if err != nil {
		return nil, fmt.Errorf("plan day: %w", err)
	}

	hits, misses := cache.Stats()
	log.Printf("plan day: events=%d gaps=%d placed=%d unplaced=%d cache_hits=%d cache_misses=%d",
		len(events), len(gaps), len(req.Tasks)-len(remaining), len(remaining), hits, misses)

	return plan, nil
}

func validateEvents(events []domain.FixedEvent) error {
	for i, ev := range events {
		if ev.Start == nil && ev.End == nil {
			return fmt.Errorf("event %d (%q) has neither start nor end: %w", i, ev.ID, ErrInvalidEvent)
		}
		if ev.Start != nil && ev.End != nil && !ev.Start.Before(*ev.End) {
			return fmt.Errorf("event %d (%q) starts at or after its end: %w", i, ev.ID, ErrInvalidEvent)
		}
	}
	return nil
}

func validateTasks(tasks []domain.FlexibleTask) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fmt.Errorf("task %d has empty id: %w", i, ErrInvalidTask)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("task %d has duplicate id %q: %w", i, id, ErrInvalidTask)
		}
		seen[id] = struct{}{}

		if t.DurationMinutes <= 0 {
			return fmt.Errorf("task %q duration %d must be positive: %w", id, t.DurationMinutes, ErrInvalidTask)
		}
	}
	return nil
}

func fmtMinutes(v *int) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *v)
}
