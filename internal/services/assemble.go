package services

import (
	"daystack/internal/domain"
	"fmt"
	"slices"
)

// AssembleSchedule merges the sorted fixed events with the blocks placed in
// each gap into one ordered plan. Blocks of a gap follow the event that
// opens it; a leading gap's blocks precede the first event. Nothing is
// recomputed here.
func AssembleSchedule(
	events []domain.FixedEvent,
	gaps []domain.GapReport,
	unplaced []domain.FlexibleTask,
) (*domain.DayPlan, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("assemble schedule: %w", ErrEmptyCalendar)
	}

	after := make(map[int][]domain.TaskBlock, len(gaps))
	total := len(events)
	for _, g := range gaps {
		if g.Gap.PrevIndex < -1 || g.Gap.PrevIndex >= len(events) {
			return nil, fmt.Errorf("assemble schedule: gap %d references event %d of %d", g.Gap.Index, g.Gap.PrevIndex, len(events))
		}
		after[g.Gap.PrevIndex] = append(after[g.Gap.PrevIndex], g.Blocks...)
		total += len(g.Blocks)
	}

	entries := make([]domain.PlanEntry, 0, total)
	appendBlocks := func(idx int) {
		for _, b := range after[idx] {
			entries = append(entries, domain.PlanEntry{Kind: domain.EntryTask, Block: &b})
		}
	}

	appendBlocks(-1)
	for i := range events {
		ev := events[i]
		entries = append(entries, domain.PlanEntry{Kind: domain.EntryEvent, Event: &ev})
		appendBlocks(i)
	}

	return &domain.DayPlan{
		Entries:  entries,
		Gaps:     slices.Clone(gaps),
		Unplaced: slices.Clone(unplaced),
	}, nil
}
