// Package subset selects lat/lon/day index ranges from a WFMD grid and gathers
// the selected cells out of hyperslab buffers.
package subset

import (
	"fmt"
	"math"

	"go.ngs.io/xch4-api/internal/domain"
)

// Header holds the global attributes of a WFMD grid file.
type Header struct {
	ProductType   string
	LatLow        float64
	LatHigh       float64
	LonLow        float64
	LonHigh       float64
	LatRes        float64
	LonRes        float64
	ReferenceTime string
}

// Bounds returns the caller's bounds if given, else the declared extent.
func (h Header) Bounds(override *domain.SpatialBounds) domain.SpatialBounds {
	if override != nil {
		return *override
	}
	return domain.SpatialBounds{LatMin: h.LatLow, LatMax: h.LatHigh, LonMin: h.LonLow, LonMax: h.LonHigh}
}

// Meta builds the metadata record for the effective bounds.
func (h Header) Meta(effective domain.SpatialBounds) domain.GridMeta {
	return domain.GridMeta{
		LatMin: effective.LatMin,
		LatMax: effective.LatMax,
		LonMin: effective.LonMin,
		LonMax: effective.LonMax,
		LatRes: h.LatRes,
		LonRes: h.LonRes,
	}
}

// CheckShape verifies that the declared extent and steps agree with the
// coordinate lengths read from the file.
func (h Header) CheckShape(nLat, nLon int) error {
	want, err := binCount("lat", h.LatLow, h.LatHigh, h.LatRes)
	if err != nil {
		return err
	}
	if want != nLat {
		return fmt.Errorf("%w: lat_low=%g lat_high=%g lat_res=%g gives %d bins, lat has %d",
			domain.ErrShapeMismatch, h.LatLow, h.LatHigh, h.LatRes, want, nLat)
	}
	want, err = binCount("lon", h.LonLow, h.LonHigh, h.LonRes)
	if err != nil {
		return err
	}
	if want != nLon {
		return fmt.Errorf("%w: lon_low=%g lon_high=%g lon_res=%g gives %d bins, lon has %d",
			domain.ErrShapeMismatch, h.LonLow, h.LonHigh, h.LonRes, want, nLon)
	}
	return nil
}

func binCount(axis string, low, high, res float64) (int, error) {
	if !isFinite(low) || !isFinite(high) || !isFinite(res) || res <= 0 {
		return 0, fmt.Errorf("%w: invalid %s extent [%g, %g) step %g", domain.ErrShapeMismatch, axis, low, high, res)
	}
	bins := (high - low) / res
	rounded := math.Round(bins)
	if rounded < 0 || math.Abs(bins-rounded) > 1e-6 {
		return 0, fmt.Errorf("%w: %s extent [%g, %g) is not a whole number of %g steps",
			domain.ErrShapeMismatch, axis, low, high, res)
	}
	return int(rounded), nil
}

// CheckDims verifies that a 3-D variable is laid out (lat, lon, day).
func CheckDims(name string, dims []int, nLat, nLon, nDay int) error {
	if len(dims) != 3 {
		return fmt.Errorf("%w: %s: expected 3D (lat, lon, day), got %dD", domain.ErrShapeMismatch, name, len(dims))
	}
	if dims[0] != nLat || dims[1] != nLon || dims[2] != nDay {
		return fmt.Errorf("%w: %s is [%d, %d, %d], expected [%d, %d, %d]",
			domain.ErrShapeMismatch, name, dims[0], dims[1], dims[2], nLat, nLon, nDay)
	}
	return nil
}

// Selection holds the indices chosen along each axis, in file order.
type Selection struct {
	Lat []int
	Lon []int
	Day []int
}

// Select applies the half-open spatial masks and the closed day mask.
func Select(lat, lon []float64, day []int, bounds domain.SpatialBounds, dateMin, dateMax int) Selection {
	sel := Selection{
		Lat: make([]int, 0, len(lat)),
		Lon: make([]int, 0, len(lon)),
		Day: make([]int, 0, len(day)),
	}
	for i, v := range lat {
		if bounds.ContainsLat(v) {
			sel.Lat = append(sel.Lat, i)
		}
	}
	for i, v := range lon {
		if bounds.ContainsLon(v) {
			sel.Lon = append(sel.Lon, i)
		}
	}
	for i, v := range day {
		if v >= dateMin && v <= dateMax {
			sel.Day = append(sel.Day, i)
		}
	}
	return sel
}

// Box is the bounding hyperslab of a selection.
type Box struct {
	Start [3]int
	Count [3]int
}

// Size returns the number of elements in the box.
func (b Box) Size() int {
	return b.Count[0] * b.Count[1] * b.Count[2]
}

// Empty reports whether the box holds no elements.
func (b Box) Empty() bool {
	return b.Size() == 0
}

// Box returns the smallest hyperslab containing every selected cell.
func (s Selection) Box() Box {
	var b Box
	for axis, idx := range [3][]int{s.Lat, s.Lon, s.Day} {
		if len(idx) == 0 {
			return Box{}
		}
		lo, hi := idx[0], idx[0]
		for _, i := range idx[1:] {
			lo = min(lo, i)
			hi = max(hi, i)
		}
		b.Start[axis] = lo
		b.Count[axis] = hi - lo + 1
	}
	return b
}

// Pick copies the selected elements of a coordinate array.
func Pick[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

// Gather3D copies the selected cells out of a flat box buffer laid out
// [lat][lon][day]. The result always has shape (len(Lat), len(Lon), len(Day)).
func Gather3D[T any](flat []T, box Box, sel Selection) [][][]T {
	nLon, nDay := box.Count[1], box.Count[2]
	out := make([][][]T, len(sel.Lat))
	for i, li := range sel.Lat {
		out[i] = make([][]T, len(sel.Lon))
		for j, lj := range sel.Lon {
			row := make([]T, len(sel.Day))
			base := ((li-box.Start[0])*nLon + (lj - box.Start[1])) * nDay
			for k, dk := range sel.Day {
				row[k] = flat[base+dk-box.Start[2]]
			}
			out[i][j] = row
		}
	}
	return out
}

// ApplyFill replaces fill values with NaN in place.
func ApplyFill(values []float64, fill float64, ok bool) {
	for i, v := range values {
		if ok && v == fill {
			values[i] = math.NaN()
		}
	}
}

// Counts converts sample counts to ints; fill values and NaN become 0.
func Counts(values []float64, fill float64, ok bool) []int {
	out := make([]int, len(values))
	for i, v := range values {
		if (ok && v == fill) || math.IsNaN(v) || v < 0 {
			continue
		}
		out[i] = int(v)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
