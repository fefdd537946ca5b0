package travel

import (
	"context"
	"daystack/internal/ports"
)

// AliasOracle resolves location nicknames before delegating, so that
// "학교" and its full address share one upstream lookup.
type AliasOracle struct {
	next    ports.TravelTimeOracle
	resolve func(string) string
}

func NewAliasOracle(next ports.TravelTimeOracle, resolve func(string) string) *AliasOracle {
	return &AliasOracle{next: next, resolve: resolve}
}

func (o *AliasOracle) TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
	return o.next.TravelMinutes(ctx, o.resolve(from), o.resolve(to), includeBuffer)
}
