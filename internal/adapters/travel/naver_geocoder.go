package travel

import (
	"context"
	"daystack/internal/domain"
	"daystack/internal/platform/obs"
	"daystack/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
)

type geocodeResponse struct {
	Addresses []struct {
		X string `json:"x"`
		Y string `json:"y"`
	} `json:"addresses"`
}

// Pinned returns known coordinates for a location without a network call.
type Pinned func(name string) (domain.Coordinates, bool)

// NaverGeocoder resolves addresses with the Naver geocoding API, consulting
// pinned coordinates and a persistent cache first.
type NaverGeocoder struct {
	client   *NaverClient
	endpoint string
	cache    ports.GeocodeCache
	pinned   Pinned
}

func NewNaverGeocoder(client *NaverClient, cache ports.GeocodeCache, pinned Pinned) *NaverGeocoder {
	return &NaverGeocoder{
		client:   client,
		endpoint: defaultGeocodeURL,
		cache:    cache,
		pinned:   pinned,
	}
}

// WithEndpoint overrides the geocoding endpoint.
func (g *NaverGeocoder) WithEndpoint(url string) *NaverGeocoder {
	g.endpoint = url
	return g
}

func (g *NaverGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "naver.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if g.pinned != nil {
		if c, ok := g.pinned(norm); ok {
			return c, nil
		}
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{norm})
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	resp, err := g.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.client.newRequest(ctx, http.MethodGet, g.endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("query", norm)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: execute request: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: decode response: %w", norm, err)
	}

	if len(decoded.Addresses) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: no results", norm)
	}

	lon, errX := strconv.ParseFloat(decoded.Addresses[0].X, 64)
	lat, errY := strconv.ParseFloat(decoded.Addresses[0].Y, 64)
	if errX != nil || errY != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: invalid coordinate format", norm)
	}

	coords := domain.Coordinates{Lon: lon, Lat: lat}

	if g.cache != nil {
		if err := g.cache.PutMany(ctx, map[string]domain.Coordinates{norm: coords}); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return coords, nil
}
