package services

import (
	"daystack/internal/domain"
	"slices"
	"time"
)

// Optional outer bounds of the planned day. When Start is set a leading
// gap is produced before the first event; when End is set a trailing gap
// is produced after the last one. Empty locations default to the location
// of the adjacent event.
type DayBounds struct {
	Start         *time.Time
	StartLocation string
	End           *time.Time
	EndLocation   string
}

// ExtractGaps sorts events chronologically and returns them together with
// the ordered gaps between consecutive events.
//
// Events sort by start time, or by end time for markers that only carry an
// end. Equal keys keep their input order. Overlapping events are not
// rejected: the gap between them simply has non-positive length.
func ExtractGaps(events []domain.FixedEvent, bounds DayBounds) ([]domain.FixedEvent, []domain.Gap) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.FixedEvent) int {
		ka, okA := a.SortKey()
		kb, okB := b.SortKey()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return ka.Compare(kb)
	})

	if len(sorted) == 0 {
		return sorted, nil
	}

	gaps := make([]domain.Gap, 0, len(sorted)+1)

	first := sorted[0]
	if bounds.Start != nil && first.Start != nil {
		from := bounds.StartLocation
		if from == "" {
			from = first.Location
		}
		gaps = append(gaps, domain.Gap{
			PrevIndex:    -1,
			NextID:       first.ID,
			Start:        *bounds.Start,
			Deadline:     *first.Start,
			FromLocation: from,
			ToLocation:   first.Location,
		})
	}

	for i := 0; i < len(sorted)-1; i++ {
		prev, next := sorted[i], sorted[i+1]
		start, deadline := gapBounds(prev, next)
		gaps = append(gaps, domain.Gap{
			PrevIndex:    i,
			PrevID:       prev.ID,
			NextID:       next.ID,
			Start:        start,
			Deadline:     deadline,
			FromLocation: prev.Location,
			ToLocation:   next.Location,
		})
	}

	last := sorted[len(sorted)-1]
	if bounds.End != nil && last.End != nil {
		to := bounds.EndLocation
		if to == "" {
			to = last.Location
		}
		gaps = append(gaps, domain.Gap{
			PrevIndex:    len(sorted) - 1,
			PrevID:       last.ID,
			Start:        *last.End,
			Deadline:     *bounds.End,
			FromLocation: last.Location,
			ToLocation:   to,
		})
	}

	for i := range gaps {
		gaps[i].Index = i
	}

	return sorted, gaps
}

// gapBounds returns prev.End and next.Start. When either is missing the
// interval collapses to zero length so the gap is skipped.
func gapBounds(prev, next domain.FixedEvent) (time.Time, time.Time) {
	if prev.End != nil && next.Start != nil {
		return *prev.End, *next.Start
	}
	if prev.End != nil {
		return *prev.End, *prev.End
	}
	k, _ := next.SortKey()
	return k, k
}
