package domain

import "fmt"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as "lon,lat", the form the Naver Directions API expects.
func (c Coordinates) String() string { return fmt.Sprintf("%f,%f", c.Lon, c.Lat) }
