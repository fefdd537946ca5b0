package services

import (
	"context"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"log"
	"slices"
	"time"
)

// LocationPolicy decides how a task without a location is costed.
type LocationPolicy int

const (
	// CursorLocation performs the task wherever the cursor is; the oracle is
	// still asked for cursor -> cursor.
	CursorLocation LocationPolicy = iota
	// LocationAgnostic charges zero travel to reach the task without asking
	// the oracle. The return leg to the next event is still charged.
	LocationAgnostic
)

type PackerOptions struct {
	Policy LocationPolicy
	// IncludeBuffer is passed through to every oracle query.
	IncludeBuffer bool
	// Parallelism bounds concurrent oracle lookups within one scan step.
	// Values below 2 keep lookups sequential.
	Parallelism int
	// RespectDeadlines rejects a task whose block would end after its own
	// deadline. Off by default: deadlines are informational.
	RespectDeadlines bool
}

func DefaultPackerOptions() PackerOptions {
	return PackerOptions{
		Policy:        CursorLocation,
		IncludeBuffer: true,
		Parallelism:   1,
	}
}

// GapResult is the outcome of packing one gap. Remaining holds the input
// tasks minus exactly the ones placed, in their original order.
type GapResult struct {
	Blocks    []domain.TaskBlock
	Remaining []domain.FlexibleTask
	// Blocked is set when time and tasks were left but no candidate fit.
	Blocked bool
	// SlackAfter is the time left before the deadline once the trip from
	// the last placed block to the next event is paid for.
	SlackAfter int
}

// GapPacker places flexible tasks into gaps with a greedy, travel-aware rule.
// It shares one run-scoped TravelCache across all gaps of a run.
type GapPacker struct {
	cache *TravelCache
	opts  PackerOptions
}

func NewGapPacker(cache *TravelCache, opts PackerOptions) *GapPacker {
	return &GapPacker{cache: cache, opts: opts}
}

type candidate struct {
	task       domain.FlexibleTask
	location   string
	travelTo   int
	travelFrom int
	ok         bool
}

// PackGap repeatedly picks, among the remaining tasks, the one whose
// travel-to + duration + travel-to-next-event fits in the time left before
// the gap deadline, preferring the least slack and then the least travel.
// Equal scores keep the earliest task in input order.
//
// A task whose travel cannot be computed is not eligible for the rest of the
// gap and is not queried again; it stays in Remaining for later gaps.
// Only context cancellation is returned as an error.
func (p *GapPacker) PackGap(
	ctx context.Context,
	gap domain.Gap,
	tasks []domain.FlexibleTask,
) (GapResult, error) {
	remaining := slices.Clone(tasks)
	result := GapResult{Blocks: []domain.TaskBlock{}}

	cursorAt := gap.Start
	cursorLoc := gap.FromLocation
	returnLeg := 0
	ineligible := make(map[string]struct{})

	for len(remaining) > 0 {
		minutesLeft := int(gap.Deadline.Sub(cursorAt) / time.Minute)
		if minutesLeft <= 0 {
			break
		}

		candidates, err := p.evaluate(ctx, gap, cursorLoc, remaining, ineligible)
		if err != nil {
			result.Remaining = remaining
			return result, err
		}

		best := -1
		bestSlack, bestPenalty := 0, 0
		for i, c := range candidates {
			if !c.ok {
				continue
			}

			cost := c.travelTo + c.task.DurationMinutes + c.travelFrom
			if cost > minutesLeft {
				continue
			}

			if p.opts.RespectDeadlines && c.task.Deadline != nil {
				end := cursorAt.Add(time.Duration(c.travelTo)*time.Minute + c.task.Duration())
				if end.After(*c.task.Deadline) {
					continue
				}
			}

			slack := minutesLeft - cost
			penalty := c.travelTo + c.travelFrom
			// Strict comparison keeps the first candidate on full ties.
			if best < 0 || slack < bestSlack || (slack == bestSlack && penalty < bestPenalty) {
				best = i
				bestSlack = slack
				bestPenalty = penalty
			}
		}

		if best < 0 {
			result.Blocked = true
			break
		}

		chosen := candidates[best]
		start := cursorAt.Add(time.Duration(chosen.travelTo) * time.Minute)
		end := start.Add(chosen.task.Duration())

		result.Blocks = append(result.Blocks, domain.TaskBlock{
			TaskID:       chosen.task.ID,
			TaskName:     chosen.task.DisplayName(),
			Start:        start,
			End:          end,
			Location:     chosen.location,
			TravelBefore: chosen.travelTo,
			TravelAfter:  chosen.travelFrom,
		})

		cursorAt = end
		cursorLoc = chosen.location
		returnLeg = chosen.travelFrom
		remaining = slices.Delete(remaining, best, best+1)
	}

	result.Remaining = remaining
	result.SlackAfter = max(0, int(gap.Deadline.Sub(cursorAt)/time.Minute)-returnLeg)
	return result, nil
}

// evaluate resolves travel for every eligible task from the current cursor.
// All lookups of one step finish before any candidate is scored. Tasks with a
// failed lookup are added to ineligible.
func (p *GapPacker) evaluate(
	ctx context.Context,
	gap domain.Gap,
	cursorLoc string,
	tasks []domain.FlexibleTask,
	ineligible map[string]struct{},
) ([]candidate, error) {
	candidates := make([]candidate, len(tasks))
	queries := make([]ports.TravelQuery, 0, 2*len(tasks))

	for i, t := range tasks {
		loc := t.Location
		if loc == "" {
			loc = cursorLoc
		}
		candidates[i] = candidate{task: t, location: loc}
		if _, skip := ineligible[t.ID]; skip {
			continue
		}

		if !p.agnostic(t) {
			queries = append(queries, p.query(cursorLoc, loc))
		}
		queries = append(queries, p.query(loc, gap.ToLocation))
	}

	found, failed, err := p.cache.LookupMany(ctx, queries, p.opts.Parallelism)
	if err != nil {
		return nil, err
	}

	for q, e := range failed {
		log.Printf("pack gap: gap=%d travel lookup failed from=%q to=%q err=%v", gap.Index, q.From, q.To, e)
	}

	for i := range candidates {
		c := &candidates[i]
		if _, skip := ineligible[c.task.ID]; skip {
			continue
		}

		if !p.agnostic(c.task) {
			v, ok := found[p.query(cursorLoc, c.location)]
			if !ok {
				ineligible[c.task.ID] = struct{}{}
				continue
			}
			c.travelTo = v
		}

		v, ok := found[p.query(c.location, gap.ToLocation)]
		if !ok {
			ineligible[c.task.ID] = struct{}{}
			continue
		}
		c.travelFrom = v
		c.ok = true
	}

	return candidates, nil
}

func (p *GapPacker) agnostic(t domain.FlexibleTask) bool {
	return p.opts.Policy == LocationAgnostic && !t.HasLocation()
}

func (p *GapPacker) query(from, to string) ports.TravelQuery {
	return ports.TravelQuery{From: from, To: to, IncludeBuffer: p.opts.IncludeBuffer}
}
