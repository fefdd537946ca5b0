package config

import (
	"daystack/internal/domain"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnownPlace pins a location name to coordinates so it never needs geocoding.
type KnownPlace struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Locations maps nicknames to addresses and names to coordinates.
//
//	aliases:
//	  학교: 분당구 불정로 6
//	known:
//	  강남역: {lat: 37.497952, lng: 127.027926}
type Locations struct {
	Aliases map[string]string     `yaml:"aliases"`
	Known   map[string]KnownPlace `yaml:"known"`
}

func LoadLocations(path string) (*Locations, error) {
	if path == "" {
		return nil, errors.New("locations path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load locations: read %q: %w", path, err)
	}

	return ParseLocations(data)
}

func ParseLocations(data []byte) (*Locations, error) {
	var locs Locations
	if err := yaml.Unmarshal(data, &locs); err != nil {
		return nil, fmt.Errorf("load locations: parse yaml: %w", err)
	}
	if locs.Aliases == nil {
		locs.Aliases = map[string]string{}
	}
	if locs.Known == nil {
		locs.Known = map[string]KnownPlace{}
	}
	return &locs, nil
}

// Resolve maps an alias to its address. Unknown names and aliases with an
// empty target resolve to themselves.
func (l *Locations) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if l == nil {
		return name
	}
	if addr := strings.TrimSpace(l.Aliases[name]); addr != "" {
		return addr
	}
	return name
}

// Coordinates returns pinned coordinates for name or its alias target.
func (l *Locations) Coordinates(name string) (domain.Coordinates, bool) {
	if l == nil {
		return domain.Coordinates{}, false
	}
	for _, key := range []string{strings.TrimSpace(name), l.Resolve(name)} {
		if p, ok := l.Known[key]; ok {
			return domain.Coordinates{Lon: p.Lng, Lat: p.Lat}, true
		}
	}
	return domain.Coordinates{}, false
}
