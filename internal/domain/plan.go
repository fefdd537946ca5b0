package domain

import "time"

type EntryKind string

const (
	EntryEvent EntryKind = "event"
	EntryTask  EntryKind = "task"
)

// A single line of the assembled day plan: either a fixed event or a
// placed task block. Exactly one of Event and Block is set.
type PlanEntry struct {
	Kind  EntryKind
	Event *FixedEvent
	Block *TaskBlock
}

// Start returns the entry's start, or its end for an event that only has one.
func (e PlanEntry) Start() (time.Time, bool) {
	if e.Block != nil {
		return e.Block.Start, true
	}
	if e.Event != nil {
		return e.Event.SortKey()
	}
	return time.Time{}, false
}

// Summary of the packing decisions taken for one gap.
// DirectTravel is nil when the oracle could not answer for the pair.
type GapReport struct {
	Gap          Gap
	DirectTravel *int
	Blocks       []TaskBlock
	Blocked      bool
	SlackAfter   int
}

// The output of one planning run.
// It is immutable planning data and contains no side effects.
type DayPlan struct {
	Entries  []PlanEntry
	Gaps     []GapReport
	Unplaced []FlexibleTask
}

// Placed returns every task block in plan order.
func (p DayPlan) Placed() []TaskBlock {
	out := make([]TaskBlock, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.Block != nil {
			out = append(out, *e.Block)
		}
	}
	return out
}
