package travel

import (
	"context"
	"daystack/internal/platform/obs"
	"daystack/internal/ports"
	"encoding/json"
	"fmt"
	"net/http"
)

type directionsResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Route   map[string][]struct {
		Summary struct {
			Duration int64 `json:"duration"`
			Distance int64 `json:"distance"`
		} `json:"summary"`
	} `json:"route"`
}

// NaverOracle implements TravelTimeOracle with the Naver Directions API.
//
// It coordinates:
//   - Address normalization
//   - Geocoding through a ports.Geocoder
//   - Driving directions with retry/backoff
//   - The optional safety buffer
//
// The oracle is safe for concurrent use.
type NaverOracle struct {
	client        *NaverClient
	geocoder      ports.Geocoder
	endpoint      string
	option        string
	bufferMinutes int
}

func NewNaverOracle(client *NaverClient, geocoder ports.Geocoder, bufferMinutes int) *NaverOracle {
	return &NaverOracle{
		client:        client,
		geocoder:      geocoder,
		endpoint:      defaultDirectionsURL,
		option:        "trafast",
		bufferMinutes: bufferMinutes,
	}
}

// WithEndpoint overrides the directions endpoint.
func (o *NaverOracle) WithEndpoint(url string) *NaverOracle {
	o.endpoint = url
	return o
}

// TravelMinutes returns driving minutes between two locations. Identical
// locations cost zero and never hit the network.
func (o *NaverOracle) TravelMinutes(
	ctx context.Context,
	from string,
	to string,
	includeBuffer bool,
) (_ int, err error) {
	defer obs.Time(ctx, "naver.TravelMinutes")(&err)

	normFrom, normTo := normalize(from), normalize(to)
	if normFrom == "" || normTo == "" {
		return 0, fmt.Errorf("naver travel: origin and destination must be non-empty: %w", ports.ErrOracleUnavailable)
	}
	if normFrom == normTo {
		return 0, nil
	}

	start, err := o.geocoder.Geocode(ctx, normFrom)
	if err != nil {
		return 0, fmt.Errorf("naver travel: geocode origin: %w: %w", ports.ErrOracleUnavailable, err)
	}
	goal, err := o.geocoder.Geocode(ctx, normTo)
	if err != nil {
		return 0, fmt.Errorf("naver travel: geocode destination: %w: %w", ports.ErrOracleUnavailable, err)
	}

	resp, err := o.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.client.newRequest(ctx, http.MethodGet, o.endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("start", start.String())
		q.Set("goal", goal.String())
		q.Set("option", o.option)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("naver travel: directions request: %w: %w", ports.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("naver travel: decode directions: %w: %w", ports.ErrOracleUnavailable, err)
	}

	if decoded.Code != 0 {
		return 0, fmt.Errorf("naver travel: api code %d (%s): %w", decoded.Code, decoded.Message, ports.ErrOracleUnavailable)
	}

	routes := decoded.Route[o.option]
	if len(routes) == 0 {
		return 0, fmt.Errorf("naver travel: no %s route %q -> %q: %w", o.option, normFrom, normTo, ports.ErrOracleUnavailable)
	}

	// Naver reports milliseconds; whole minutes are truncated.
	minutes := int(routes[0].Summary.Duration / 1000 / 60)
	if includeBuffer {
		minutes += o.bufferMinutes
	}

	return minutes, nil
}
