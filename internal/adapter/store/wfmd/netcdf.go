//go:build cgo

package wfmd

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/xch4-api/internal/adapter/subset"
	"go.ngs.io/xch4-api/internal/domain"
)

// libnetcdf is not thread-safe.
var libMu sync.Mutex

// Store loads grid slices from NetCDF files using libnetcdf.
type Store struct{}

// NewStore creates a new libnetcdf-backed grid store.
func NewStore() *Store {
	return &Store{}
}

// LoadGrid implements store.GridLoader.
func (s *Store) LoadGrid(req domain.LoadRequest) (*domain.GridSlice, error) {
	return LoadGrid(req.Range.Start, req.Range.End, req.Path, req.Bounds)
}

// LoadGrid reads the cells of a WFMD grid file that fall inside the closed
// date range [start, end] and the half-open spatial bounds. A nil bounds
// selects the extent declared in the file's global attributes.
//
// The file is closed before LoadGrid returns, on every path.
func LoadGrid(start, end domain.Date, path string, bounds *domain.SpatialBounds) (*domain.GridSlice, error) {
	dateMin, dateMax := start.DayOffset(), end.DayOffset()

	// Check the file exists before taking the library lock.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRead, err)
	}

	libMu.Lock()
	defer libMu.Unlock()

	// Open NetCDF file.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file %s: %w", domain.ErrRead, path, err)
	}
	defer func() { _ = nc.Close() }()

	// Read global attributes.
	header, err := readHeader(nc)
	if err != nil {
		return nil, err
	}

	// Read coordinate axes.
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

	// Declared extent and resolution must agree with the axes.
	if err := header.CheckShape(len(lat), len(lon)); err != nil {
		return nil, err
	}

	// Select indices and the hyperslab that covers them.
	effective := header.Bounds(bounds)
	sel := subset.Select(lat, lon, day, effective, dateMin, dateMax)
	box := sel.Box()

	// Read measurement fields over the same box.
	xch4, err := readField(nc, subset.VarXCH4, box, len(lat), len(lon), len(day))
	if err != nil {
		return nil, err
	}
	xch4Err, err := readField(nc, subset.VarXCH4Err, box, len(lat), len(lon), len(day))
	if err != nil {
		return nil, err
	}
	counts, err := readCounts(nc, box, len(lat), len(lon), len(day))
	if err != nil {
		return nil, err
	}

	// Gather selected cells out of the box.
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

// readHeader reads the global attributes describing the grid.
func readHeader(nc netcdf.Dataset) (subset.Header, error) {
	var h subset.Header
	var err error

	// Text attributes.
	if h.ProductType, err = readTextAttr(nc.Attr(subset.AttrProductType)); err != nil {
		return h, fmt.Errorf("%w: attribute %s: %w", domain.ErrMetadata, subset.AttrProductType, err)
	}
	if h.ReferenceTime, err = readTextAttr(nc.Attr(subset.AttrReferenceTime)); err != nil {
		return h, fmt.Errorf("%w: attribute %s: %w", domain.ErrMetadata, subset.AttrReferenceTime, err)
	}

	// Extent and resolution.
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
		if *attr.dst, err = readNumericAttr(nc.Attr(attr.name)); err != nil {
			return h, fmt.Errorf("%w: attribute %s: %w", domain.ErrMetadata, attr.name, err)
		}
	}

	return h, nil
}

// readTextAttr reads a CHAR attribute as a string.
func readTextAttr(a netcdf.Attr) (string, error) {
	t, err := a.Type()
	if err != nil {
		return "", err
	}
	if t != netcdf.CHAR {
		return "", fmt.Errorf("expected text attribute, got %v", t)
	}
	n, err := a.Len()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", err
	}
	// Strip NUL padding left by fixed-width writers.
	return strings.TrimRight(string(buf), "\x00 "), nil
}

// readNumericAttr reads the first value of a numeric attribute as float64.
func readNumericAttr(a netcdf.Attr) (float64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("attribute is empty")
	}
	t, err := a.Type()
	if err != nil {
		return 0, err
	}

	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := a.ReadFloat64s(buf); err != nil {
			return 0, err
		}
		return buf[0], nil
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := a.ReadFloat32s(buf); err != nil {
			return 0, err
		}
		return float64(buf[0]), nil
	case netcdf.INT:
		buf := make([]int32, n)
		if err := a.ReadInt32s(buf); err != nil {
			return 0, err
		}
		return float64(buf[0]), nil
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := a.ReadInt16s(buf); err != nil {
			return 0, err
		}
		return float64(buf[0]), nil
	case netcdf.BYTE, netcdf.CHAR, netcdf.UBYTE, netcdf.USHORT, netcdf.UINT, netcdf.INT64, netcdf.UINT64, netcdf.STRING:
		return 0, fmt.Errorf("unsupported attribute type: %v", t)
	default:
		return 0, fmt.Errorf("unsupported attribute type: %v", t)
	}
}

// readCoord reads a 1D coordinate variable as float64.
func readCoord(nc netcdf.Dataset, name string) ([]float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %s not found: %w", domain.ErrMetadata, name, err)
	}
	dims, err := varDims(v)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %s: %w", domain.ErrMetadata, name, err)
	}

	// Coordinates must be 1D.
	if len(dims) != 1 {
		return nil, fmt.Errorf("%w: variable %s: expected 1D, got %dD", domain.ErrShapeMismatch, name, len(dims))
	}
	data, err := readSlice(v, []uint64{0}, []uint64{uint64(dims[0])}, dims[0])
	if err != nil {
		return nil, fmt.Errorf("%w: variable %s: %w", domain.ErrMetadata, name, err)
	}
	return data, nil
}

// readField reads the box of a 3D measurement variable; fill values become NaN.
func readField(nc netcdf.Dataset, name string, box subset.Box, nLat, nLon, nDay int) ([]float64, error) {
	v, flat, err := readBox(nc, name, box, nLat, nLon, nDay)
	if err != nil {
		return nil, err
	}
	fill, ok := getFillValue(v)
	subset.ApplyFill(flat, fill, ok)
	return flat, nil
}

// readCounts reads the box of the sample-count variable.
func readCounts(nc netcdf.Dataset, box subset.Box, nLat, nLon, nDay int) ([]int, error) {
	v, flat, err := readBox(nc, subset.VarN, box, nLat, nLon, nDay)
	if err != nil {
		return nil, err
	}
	fill, ok := getFillValue(v)
	return subset.Counts(flat, fill, ok), nil
}

func readBox(nc netcdf.Dataset, name string, box subset.Box, nLat, nLon, nDay int) (netcdf.Var, []float64, error) {
	v, err := nc.Var(name)
	if err != nil {
		return v, nil, fmt.Errorf("%w: variable %s not found: %w", domain.ErrMetadata, name, err)
	}
	dims, err := varDims(v)
	if err != nil {
		return v, nil, fmt.Errorf("%w: variable %s: %w", domain.ErrMetadata, name, err)
	}
	// Validate (lat, lon, day) layout.
	if err := subset.CheckDims(name, dims, nLat, nLon, nDay); err != nil {
		return v, nil, err
	}
	// Nothing selected: skip the read.
	if box.Empty() {
		return v, nil, nil
	}

	//nolint:gosec // G115: box indices are non-negative.
	start := []uint64{uint64(box.Start[0]), uint64(box.Start[1]), uint64(box.Start[2])}
	//nolint:gosec // G115: box counts are non-negative.
	count := []uint64{uint64(box.Count[0]), uint64(box.Count[1]), uint64(box.Count[2])}
	// Read hyperslab.
	flat, err := readSlice(v, start, count, box.Size())
	if err != nil {
		return v, nil, fmt.Errorf("%w: variable %s: %w", domain.ErrMetadata, name, err)
	}
	return v, flat, nil
}

func varDims(v netcdf.Var) ([]int, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	out := make([]int, len(dims))
	for i, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dim%d length: %w", i, err)
		}
		out[i] = int(n)
	}
	return out, nil
}

// readSlice reads a hyperslab of any supported numeric type as float64.
func readSlice(v netcdf.Var, start, count []uint64, total int) ([]float64, error) {
	if total == 0 {
		return []float64{}, nil
	}
	varType, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get variable type: %w", err)
	}

	// Read in the stored type and widen to float64.
	out := make([]float64, total)
	switch varType {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64Slice(out, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float64: %w", err)
		}
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read float32: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int32: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int16: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT64:
		tmp := make([]int64, total)
		if err := v.ReadInt64Slice(tmp, start, count); err != nil {
			return nil, fmt.Errorf("failed to read int64: %w", err)
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.BYTE, netcdf.UBYTE, netcdf.CHAR, netcdf.USHORT, netcdf.UINT, netcdf.UINT64, netcdf.STRING:
		return nil, fmt.Errorf("unsupported data type: %v (expected DOUBLE, FLOAT, INT, SHORT or INT64)", varType)
	default:
		return nil, fmt.Errorf("unsupported data type: %v", varType)
	}
	return out, nil
}

// getFillValue returns the _FillValue or missing_value attribute if present.
func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range subset.FillAttrs {
		if fv, err := readNumericAttr(v.Attr(name)); err == nil {
			return fv, true
		}
	}
	return 0, false
}
