package travel

import (
	"context"
	"daystack/internal/ports"
	"fmt"
	"strings"
	"sync"
)

type StaticPair struct {
	From, To string
	Minutes  int
}

// StaticOracle answers from a fixed table. Unlisted identical locations cost
// zero with or without the buffer; other unknown pairs fail with
// ErrOracleUnavailable. Calls are
// counted per query so callers can check memoization.
type StaticOracle struct {
	m             map[string]int
	bufferMinutes int

	mu    sync.Mutex
	calls map[ports.TravelQuery]int
}

func NewStaticOracle(pairs []StaticPair) *StaticOracle {
	m := make(map[string]int, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Minutes
	}
	return &StaticOracle{m: m, calls: make(map[ports.TravelQuery]int)}
}

// Symmetric adds the reverse of every pair that has no explicit reverse.
func (o *StaticOracle) Symmetric() *StaticOracle {
	for k, v := range o.m {
		from, to, _ := strings.Cut(k, "|")
		if _, ok := o.m[to+"|"+from]; !ok {
			o.m[to+"|"+from] = v
		}
	}
	return o
}

// WithBuffer sets the minutes added when a caller asks for a buffer.
func (o *StaticOracle) WithBuffer(minutes int) *StaticOracle {
	o.bufferMinutes = minutes
	return o
}

func (o *StaticOracle) TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	o.mu.Lock()
	o.calls[ports.TravelQuery{From: from, To: to, IncludeBuffer: includeBuffer}]++
	o.mu.Unlock()

	v, ok := o.m[from+"|"+to]
	if !ok {
		if from != to {
			return 0, fmt.Errorf("missing pair %q -> %q: %w", from, to, ports.ErrOracleUnavailable)
		}
		return 0, nil
	}
	if includeBuffer {
		v += o.bufferMinutes
	}
	return v, nil
}

// Calls returns how many times q was asked.
func (o *StaticOracle) Calls(q ports.TravelQuery) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[q]
}

// TotalCalls returns the number of oracle invocations.
func (o *StaticOracle) TotalCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.calls {
		n += c
	}
	return n
}
