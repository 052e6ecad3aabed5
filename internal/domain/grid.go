package domain

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds returned by grid loaders. Callers match them with errors.Is.
var (
	// ErrRead means the source could not be opened or is not a NetCDF file.
	ErrRead = errors.New("grid read error")
	// ErrMetadata means a required attribute or variable is missing or mistyped.
	ErrMetadata = errors.New("grid metadata error")
	// ErrShapeMismatch means the declared bounds and steps disagree with the array dimensions.
	ErrShapeMismatch = errors.New("grid shape mismatch")
)

// SpatialBounds restricts a grid to a latitude/longitude box.
//
// Both axes are half-open: LatMin <= lat < LatMax and LonMin <= lon < LonMax.
// This differs from DateRange, which is closed on both ends.
type SpatialBounds struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Validate checks that the bounds describe a non-empty box.
func (b SpatialBounds) Validate() error {
	for _, v := range []float64{b.LatMin, b.LatMax, b.LonMin, b.LonMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("spatial bounds must be finite")
		}
	}
	if b.LatMin >= b.LatMax {
		return fmt.Errorf("lat_min (%.4f) must be less than lat_max (%.4f)", b.LatMin, b.LatMax)
	}
	if b.LonMin >= b.LonMax {
		return fmt.Errorf("lon_min (%.4f) must be less than lon_max (%.4f)", b.LonMin, b.LonMax)
	}
	return nil
}

// ContainsLat reports whether lat lies in [LatMin, LatMax).
func (b SpatialBounds) ContainsLat(lat float64) bool {
	return lat >= b.LatMin && lat < b.LatMax
}

// ContainsLon reports whether lon lies in [LonMin, LonMax).
func (b SpatialBounds) ContainsLon(lon float64) bool {
	return lon >= b.LonMin && lon < b.LonMax
}

// GridMeta describes the spatial bounds actually applied to a slice and the
// native resolution of the source grid.
type GridMeta struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
	LatRes float64 `json:"lat_res"`
	LonRes float64 `json:"lon_res"`
}

// Bounds returns the effective bounds recorded in the metadata.
func (m GridMeta) Bounds() SpatialBounds {
	return SpatialBounds{LatMin: m.LatMin, LatMax: m.LatMax, LonMin: m.LonMin, LonMax: m.LonMax}
}

// GridSlice is a subset of a WFMD XCH4 grid.
// XCH4, XCH4Err and N are indexed [lat][lon][day] and parallel Lat, Lon and Day.
type GridSlice struct {
	XCH4          [][][]float64
	XCH4Err       [][][]float64
	N             [][][]int
	Lat           []float64
	Lon           []float64
	Day           []int
	Meta          GridMeta
	ProductType   string
	ReferenceTime string
}

// Shape returns (lat, lon, day) lengths.
func (g *GridSlice) Shape() [3]int {
	return [3]int{len(g.Lat), len(g.Lon), len(g.Day)}
}

// ValidCells returns, per day, the number of cells with at least one sample
// and a finite XCH4 value.
func (g *GridSlice) ValidCells() []int {
	counts := make([]int, len(g.Day))
	for i := range g.XCH4 {
		for j := range g.XCH4[i] {
			for k, v := range g.XCH4[i][j] {
				if g.N[i][j][k] > 0 && !math.IsNaN(v) {
					counts[k]++
				}
			}
		}
	}
	return counts
}

// LoadRequest is the input of a grid load.
// A nil Bounds selects the full extent declared by the source file.
type LoadRequest struct {
	Range  DateRange
	Path   string
	Bounds *SpatialBounds
}
