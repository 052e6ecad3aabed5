package interp

import (
	"fmt"
	"math"
	"sort"

	"go.ngs.io/xch4-api/internal/domain"
)

// Cell is one rectangle of a regular lon/lat grid with the field values at
// its four corners.
type Cell struct {
	Lon0, Lon1 float64
	Lat0, Lat1 float64

	// V00 at (Lon0, Lat0), V10 at (Lon1, Lat0), V01 at (Lon0, Lat1), V11 at (Lon1, Lat1).
	V00, V10, V01, V11 float64
}

// Bilinear interpolates inside a cell:
//
//	f(x,y) ≈ (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u V01 + tu V11
//
// with t = (lon-Lon0)/(Lon1-Lon0) and u = (lat-Lat0)/(Lat1-Lat0).
// A NaN corner makes the result NaN.
func Bilinear(c Cell, lon, lat float64) (float64, error) {
	// Validate cell.
	if c.Lon1 <= c.Lon0 {
		return 0, fmt.Errorf("invalid cell: Lon1 must be > Lon0")
	}
	if c.Lat1 <= c.Lat0 {
		return 0, fmt.Errorf("invalid cell: Lat1 must be > Lat0")
	}

	// Check the point is inside the cell (with tolerance for floating point).
	const epsilon = 1e-9
	if lon < c.Lon0-epsilon || lon > c.Lon1+epsilon {
		return 0, fmt.Errorf("lon %.6f is outside cell [%.6f, %.6f]", lon, c.Lon0, c.Lon1)
	}
	if lat < c.Lat0-epsilon || lat > c.Lat1+epsilon {
		return 0, fmt.Errorf("lat %.6f is outside cell [%.6f, %.6f]", lat, c.Lat0, c.Lat1)
	}

	// A missing corner leaves the point undefined.
	if math.IsNaN(c.V00) || math.IsNaN(c.V10) || math.IsNaN(c.V01) || math.IsNaN(c.V11) {
		return math.NaN(), nil
	}

	// Normalised coordinates, clamped to [0, 1] for points on the tolerance margin.
	t := math.Max(0, math.Min(1, (lon-c.Lon0)/(c.Lon1-c.Lon0)))
	u := math.Max(0, math.Min(1, (lat-c.Lat0)/(c.Lat1-c.Lat0)))

	// Bilinear interpolation formula.
	return (1-t)*(1-u)*c.V00 +
		t*(1-u)*c.V10 +
		(1-t)*u*c.V01 +
		t*u*c.V11, nil
}

// Grid2D is one day of a field on cell-centre coordinates.
type Grid2D struct {
	Lon    []float64
	Lat    []float64
	Values [][]float64 // Values[i][j] is the value at (Lon[j], Lat[i]).
}

// Validate checks the grid is at least 2x2, rectangular, and strictly
// increasing on both axes.
func (g *Grid2D) Validate() error {
	if len(g.Lon) < 2 {
		return fmt.Errorf("grid must have at least 2 longitudes")
	}
	if len(g.Lat) < 2 {
		return fmt.Errorf("grid must have at least 2 latitudes")
	}
	if len(g.Values) != len(g.Lat) {
		return fmt.Errorf("number of value rows (%d) must match latitudes (%d)", len(g.Values), len(g.Lat))
	}
	for i, row := range g.Values {
		if len(row) != len(g.Lon) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.Lon))
		}
	}
	// Coordinates must be sorted and unique for the binary search.
	if !strictlyIncreasing(g.Lon) {
		return fmt.Errorf("longitudes must be strictly increasing")
	}
	if !strictlyIncreasing(g.Lat) {
		return fmt.Errorf("latitudes must be strictly increasing")
	}
	return nil
}

// InterpolateAt samples the grid at (lon, lat). Points outside the span of
// cell centres are an error.
func (g *Grid2D) InterpolateAt(lon, lat float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}

	// Find the cell containing (lon, lat).
	j, ok := bracket(g.Lon, lon)
	if !ok {
		return 0, fmt.Errorf("lon %.6f is outside grid range [%.6f, %.6f]", lon, g.Lon[0], g.Lon[len(g.Lon)-1])
	}
	i, ok := bracket(g.Lat, lat)
	if !ok {
		return 0, fmt.Errorf("lat %.6f is outside grid range [%.6f, %.6f]", lat, g.Lat[0], g.Lat[len(g.Lat)-1])
	}

	return Bilinear(Cell{
		Lon0: g.Lon[j],
		Lon1: g.Lon[j+1],
		Lat0: g.Lat[i],
		Lat1: g.Lat[i+1],
		V00:  g.Values[i][j],
		V10:  g.Values[i][j+1],
		V01:  g.Values[i+1][j],
		V11:  g.Values[i+1][j+1],
	}, lon, lat)
}

// InterpolatePair samples a value grid and its uncertainty grid at the same point.
func InterpolatePair(values, errs *Grid2D, lon, lat float64) (float64, float64, error) {
	if len(values.Lon) != len(errs.Lon) || len(values.Lat) != len(errs.Lat) {
		return 0, 0, fmt.Errorf("grids must have the same dimensions")
	}

	// Same cell lookup for both grids.
	v, err := values.InterpolateAt(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to interpolate values: %w", err)
	}
	e, err := errs.InterpolateAt(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to interpolate uncertainty: %w", err)
	}
	return v, e, nil
}

// LayerAt extracts day k of a slice as XCH4 and XCH4 uncertainty grids on
// cell centres (lower edge plus half a step).
func LayerAt(g *domain.GridSlice, k int) (*Grid2D, *Grid2D, error) {
	shape := g.Shape()
	if k < 0 || k >= shape[2] {
		return nil, nil, fmt.Errorf("day index %d out of range [0, %d)", k, shape[2])
	}

	// Shift lower edges to cell centres.
	lon := make([]float64, len(g.Lon))
	for j, v := range g.Lon {
		lon[j] = v + g.Meta.LonRes/2
	}
	lat := make([]float64, len(g.Lat))
	for i, v := range g.Lat {
		lat[i] = v + g.Meta.LatRes/2
	}

	// Copy out day k.
	values := &Grid2D{Lon: lon, Lat: lat, Values: make([][]float64, len(lat))}
	errs := &Grid2D{Lon: lon, Lat: lat, Values: make([][]float64, len(lat))}
	for i := range lat {
		values.Values[i] = make([]float64, len(lon))
		errs.Values[i] = make([]float64, len(lon))
		for j := range lon {
			values.Values[i][j] = g.XCH4[i][j][k]
			errs.Values[i][j] = g.XCH4Err[i][j][k]
		}
	}
	return values, errs, nil
}

// bracket returns i such that xs[i] <= x <= xs[i+1].
func bracket(xs []float64, x float64) (int, bool) {
	if math.IsNaN(x) || x < xs[0] || x > xs[len(xs)-1] {
		return 0, false
	}
	// First index with xs[i] >= x; step back to the lower node.
	i := sort.SearchFloat64s(xs, x)
	if i == 0 {
		return 0, true
	}
	return i - 1, true
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}
