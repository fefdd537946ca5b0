package travel

import (
	"context"
	"daystack/internal/ports"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// HaversineOracle estimates travel from straight-line distance at a fixed
// average speed, scaled by a detour factor. It needs no network access
// beyond what its geocoder does.
type HaversineOracle struct {
	geocoder      ports.Geocoder
	speedKmh      float64
	detourFactor  float64
	bufferMinutes int
}

func NewHaversineOracle(geocoder ports.Geocoder, speedKmh float64, bufferMinutes int) *HaversineOracle {
	if speedKmh <= 0 {
		speedKmh = 30
	}
	return &HaversineOracle{
		geocoder:      geocoder,
		speedKmh:      speedKmh,
		detourFactor:  1.3,
		bufferMinutes: bufferMinutes,
	}
}

func (o *HaversineOracle) TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error) {
	normFrom, normTo := normalize(from), normalize(to)
	if normFrom == normTo {
		return 0, nil
	}

	a, err := o.geocoder.Geocode(ctx, normFrom)
	if err != nil {
		return 0, fmt.Errorf("haversine travel: geocode %q: %w: %w", normFrom, ports.ErrOracleUnavailable, err)
	}
	b, err := o.geocoder.Geocode(ctx, normTo)
	if err != nil {
		return 0, fmt.Errorf("haversine travel: geocode %q: %w: %w", normTo, ports.ErrOracleUnavailable, err)
	}

	km := haversineKm(a.Lat, a.Lon, b.Lat, b.Lon) * o.detourFactor
	minutes := int(math.Ceil(km / o.speedKmh * 60))
	if includeBuffer {
		minutes += o.bufferMinutes
	}
	return minutes, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
