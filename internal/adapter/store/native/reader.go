// Package native reads and writes WFMD XCH4 grid files without libnetcdf, using
// go-native-netcdf. It reads classic CDF and NetCDF-4/HDF5 and writes classic CDF.
package native

import (
	"fmt"
	"os"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"go.ngs.io/xch4-api/internal/adapter/subset"
	"go.ngs.io/xch4-api/internal/domain"
)

// Store loads grid slices with the pure-Go NetCDF reader.
type Store struct{}

// NewStore creates a new pure-Go grid store.
func NewStore() *Store {
	return &Store{}
}

// LoadGrid implements store.GridLoader.
func (s *Store) LoadGrid(req domain.LoadRequest) (*domain.GridSlice, error) {
	return LoadGrid(req.Range.Start, req.Range.End, req.Path, req.Bounds)
}

// LoadGrid reads the cells of a WFMD grid file inside the closed date range
// [start, end] and the half-open spatial bounds, with the same results and
// error kinds as the libnetcdf loader. A nil bounds selects the declared extent.
func LoadGrid(start, end domain.Date, path string, bounds *domain.SpatialBounds) (*domain.GridSlice, error) {
	dateMin, dateMax := start.DayOffset(), end.DayOffset()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRead, err)
	}

	// Open CDF or HDF5 file.
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file %s: %w", domain.ErrRead, path, err)
	}
	defer nc.Close()

	// Read global attributes and coordinate axes.
	header, err := readHeader(nc.Attributes())
	if err != nil {
		return nil, err
	}

	lat, err := readCoord(nc, subset.VarLat)
	if err != nil {
		return nil, err
	}
	lon, err := readCoord(nc, subset.VarLon)
	if err != nil {
		return nil, err
	}
	dayValues, err := readCoord(nc, subset.VarDay)
	if err != nil {
		return nil, err
	}
	day := make([]int, len(dayValues))
	for i, v := range dayValues {
		day[i] = int(v)
	}

	if err := header.CheckShape(len(lat), len(lon)); err != nil {
		return nil, err
	}

	// Select indices and the covering box.
	effective := header.Bounds(bounds)
	sel := subset.Select(lat, lon, day, effective, dateMin, dateMax)
	box := sel.Box()
	dims := [3]int{len(lat), len(lon), len(day)}

	// Read fields; fill values become NaN, or 0 for counts.
	xch4, fill, hasFill, err := readBox(nc, subset.VarXCH4, box, dims)
	if err != nil {
		return nil, err
	}
	subset.ApplyFill(xch4, fill, hasFill)

	xch4Err, fill, hasFill, err := readBox(nc, subset.VarXCH4Err, box, dims)
	if err != nil {
		return nil, err
	}
	subset.ApplyFill(xch4Err, fill, hasFill)

	rawCounts, fill, hasFill, err := readBox(nc, subset.VarN, box, dims)
	if err != nil {
		return nil, err
	}
	counts := subset.Counts(rawCounts, fill, hasFill)

	return &domain.GridSlice{
		XCH4:          subset.Gather3D(xch4, box, sel),
		XCH4Err:       subset.Gather3D(xch4Err, box, sel),
		N:             subset.Gather3D(counts, box, sel),
		Lat:           subset.Pick(lat, sel.Lat),
		Lon:           subset.Pick(lon, sel.Lon),
		Day:           subset.Pick(day, sel.Day),
		Meta:          header.Meta(effective),
		ProductType:   header.ProductType,
		ReferenceTime: header.ReferenceTime,
	}, nil
}

func readHeader(attrs api.AttributeMap) (subset.Header, error) {
	var h subset.Header
	var err error

	if h.ProductType, err = textAttr(attrs, subset.AttrProductType); err != nil {
		return h, err
	}
	if h.ReferenceTime, err = textAttr(attrs, subset.AttrReferenceTime); err != nil {
		return h, err
	}

	numeric := []struct {
		name string
		dst  *float64
	}{
		{subset.AttrLatLow, &h.LatLow},
		{subset.AttrLatHigh, &h.LatHigh},
		{subset.AttrLonLow, &h.LonLow},
		{subset.AttrLonHigh, &h.LonHigh},
		{subset.AttrLatRes, &h.LatRes},
		{subset.AttrLonRes, &h.LonRes},
	}
	for _, attr := range numeric {
		val, ok := attrs.Get(attr.name)
		if !ok {
			return h, fmt.Errorf("%w: attribute %s not found", domain.ErrMetadata, attr.name)
		}
		if *attr.dst, err = firstNumber(val); err != nil {
			return h, fmt.Errorf("%w: attribute %s: %w", domain.ErrMetadata, attr.name, err)
		}
	}
	return h, nil
}

func textAttr(attrs api.AttributeMap, name string) (string, error) {
	val, ok := attrs.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: attribute %s not found", domain.ErrMetadata, name)
	}
	switch s := val.(type) {
	case string:
		return strings.TrimRight(s, "\x00 "), nil
	case []string:
		if len(s) > 0 {
			return strings.TrimRight(s[0], "\x00 "), nil
		}
	}
	return "", fmt.Errorf("%w: attribute %s: expected text, got %T", domain.ErrMetadata, name, val)
}

// fillValue returns the variable's _FillValue or missing_value if present.
func fillValue(attrs api.AttributeMap) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	for _, name := range subset.FillAttrs {
		if val, ok := attrs.Get(name); ok {
			if fv, err := firstNumber(val); err == nil {
				return fv, true
			}
		}
	}
	return 0, false
}

func readCoord(nc api.Group, name string) ([]float64, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %s not found: %w", domain.ErrMetadata, name, err)
	}
	if len(v.Dimensions) != 1 {
		return nil, fmt.Errorf("%w: variable %s: expected 1D, got %dD", domain.ErrShapeMismatch, name, len(v.Dimensions))
	}
	out, err := toFloat64s(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %s: %w", domain.ErrMetadata, name, err)
	}
	return out, nil
}

// readBox reads the box of a 3D variable. The reader slices along the leading
// (lat) axis; lon and day are cut out in memory.
func readBox(nc api.Group, name string, box subset.Box, dims [3]int) ([]float64, float64, bool, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, 0, false, fmt.Errorf("%w: variable %s not found: %w", domain.ErrMetadata, name, err)
	}
	if n := len(vg.Dimensions()); n != 3 {
		return nil, 0, false, fmt.Errorf("%w: %s: expected 3D (lat, lon, day), got %dD", domain.ErrShapeMismatch, name, n)
	}
	if vg.Len() != int64(dims[0]) {
		return nil, 0, false, fmt.Errorf("%w: %s has %d lat rows, expected %d", domain.ErrShapeMismatch, name, vg.Len(), dims[0])
	}
	fill, hasFill := fillValue(vg.Attributes())
	if box.Empty() {
		return nil, fill, hasFill, nil
	}

	raw, err := vg.GetSlice(int64(box.Start[0]), int64(box.Start[0]+box.Count[0]))
	if err != nil {
		return nil, 0, false, fmt.Errorf("%w: variable %s: %w", domain.ErrMetadata, name, err)
	}

	// GetSlice returns nested slices of the stored type.
	var flat []float64
	switch rows := raw.(type) {
	case [][][]float32:
		flat, err = cutBox(rows, box, dims)
	case [][][]float64:
		flat, err = cutBox(rows, box, dims)
	case [][][]int32:
		flat, err = cutBox(rows, box, dims)
	case [][][]int16:
		flat, err = cutBox(rows, box, dims)
	case [][][]int64:
		flat, err = cutBox(rows, box, dims)
	case [][][]int8:
		flat, err = cutBox(rows, box, dims)
	case [][][]uint8:
		flat, err = cutBox(rows, box, dims)
	case [][][]uint16:
		flat, err = cutBox(rows, box, dims)
	case [][][]uint32:
		flat, err = cutBox(rows, box, dims)
	default:
		return nil, 0, false, fmt.Errorf("%w: variable %s: unsupported data type %T", domain.ErrMetadata, name, raw)
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("%s: %w", name, err)
	}
	return flat, fill, hasFill, nil
}

// number covers the numeric types the CDF and HDF5 decoders return.
type number interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// cutBox flattens the lon/day part of the box out of whole lat rows.
func cutBox[T number](rows [][][]T, box subset.Box, dims [3]int) ([]float64, error) {
	if len(rows) != box.Count[0] {
		return nil, fmt.Errorf("%w: got %d lat rows, expected %d", domain.ErrShapeMismatch, len(rows), box.Count[0])
	}
	flat := make([]float64, 0, box.Size())
	for _, row := range rows {
		if len(row) != dims[1] {
			return nil, fmt.Errorf("%w: got %d lon columns, expected %d", domain.ErrShapeMismatch, len(row), dims[1])
		}
		for _, cell := range row[box.Start[1] : box.Start[1]+box.Count[1]] {
			if len(cell) != dims[2] {
				return nil, fmt.Errorf("%w: got %d days, expected %d", domain.ErrShapeMismatch, len(cell), dims[2])
			}
			for _, v := range cell[box.Start[2] : box.Start[2]+box.Count[2]] {
				flat = append(flat, float64(v))
			}
		}
	}
	return flat, nil
}

func toFloat64s(values any) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []float32:
		return convert(v), nil
	case []int32:
		return convert(v), nil
	case []int16:
		return convert(v), nil
	case []int64:
		return convert(v), nil
	case []int8:
		return convert(v), nil
	case []uint16:
		return convert(v), nil
	case []uint32:
		return convert(v), nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", values)
	}
}

func convert[T number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// firstNumber accepts both scalar and single-element attribute values.
func firstNumber(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	}
	values, err := toFloat64s(val)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("attribute is empty")
	}
	return values[0], nil
}
