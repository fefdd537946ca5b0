package services

import (
	"context"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"sync"
	"time"
)

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func clock(hour, min int) *time.Time {
	t := testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	return &t
}

func event(id string, start, end *time.Time, loc string) domain.FixedEvent {
	return domain.FixedEvent{ID: id, Name: id, Start: start, End: end, Location: loc}
}

func task(id string, minutes int, loc string) domain.FlexibleTask {
	return domain.FlexibleTask{ID: id, Name: id, DurationMinutes: minutes, Location: loc}
}

func taskIDs(tasks []domain.FlexibleTask) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func blockIDs(blocks []domain.TaskBlock) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.TaskID)
	}
	return out
}

type oracleFunc func(ctx context.Context, from, to string, includeBuffer bool) (int, error)

func (f oracleFunc) TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
	return f(ctx, from, to, includeBuffer)
}

// countingOracle records every query it forwards.
type countingOracle struct {
	next ports.TravelTimeOracle

	mu    sync.Mutex
	calls map[ports.TravelQuery]int
}

func newCountingOracle(next ports.TravelTimeOracle) *countingOracle {
	return &countingOracle{next: next, calls: make(map[ports.TravelQuery]int)}
}

func (c *countingOracle) TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
	c.mu.Lock()
	c.calls[ports.TravelQuery{From: from, To: to, IncludeBuffer: includeBuffer}]++
	c.mu.Unlock()
	return c.next.TravelMinutes(ctx, from, to, includeBuffer)
}

func (c *countingOracle) snapshot() map[ports.TravelQuery]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ports.TravelQuery]int, len(c.calls))
	for k, v := range c.calls {
		out[k] = v
	}
	return out
}
