//go:build cgo

package wfmd

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/xch4-api/internal/adapter/subset"
	"go.ngs.io/xch4-api/internal/domain"
)

// CreateOptions controls the on-disk format of Create.
type CreateOptions struct {
	// NetCDF4 writes an HDF5-based NetCDF-4 file instead of classic format.
	NetCDF4 bool
}

// Create writes g as a WFMD grid file. The grid's metadata becomes the
// declared extent (lat_low, lat_high, ...) of the file; NaN cells are written
// as subset.FillValue.
func Create(path string, g *domain.GridSlice, opts CreateOptions) error {
	shape := g.Shape()
	if shape[0] == 0 || shape[1] == 0 || shape[2] == 0 {
		return fmt.Errorf("cannot write grid with empty axis: %v", shape)
	}

	mode := netcdf.CLOBBER
	if opts.NetCDF4 {
		mode |= netcdf.NETCDF4
	}

	libMu.Lock()
	defer libMu.Unlock()

	ds, err := netcdf.CreateFile(path, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	// Global attributes.
	if err := writeText(ds.Attr(subset.AttrProductType), g.ProductType); err != nil {
		return fmt.Errorf("write %s: %w", subset.AttrProductType, err)
	}
	if err := writeText(ds.Attr(subset.AttrReferenceTime), g.ReferenceTime); err != nil {
		return fmt.Errorf("write %s: %w", subset.AttrReferenceTime, err)
	}
	for name, val := range map[string]float64{
		subset.AttrLatLow:  g.Meta.LatMin,
		subset.AttrLatHigh: g.Meta.LatMax,
		subset.AttrLonLow:  g.Meta.LonMin,
		subset.AttrLonHigh: g.Meta.LonMax,
		subset.AttrLatRes:  g.Meta.LatRes,
		subset.AttrLonRes:  g.Meta.LonRes,
	} {
		if err := ds.Attr(name).WriteFloat64s([]float64{val}); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	// Dimensions.
	latDim, err := ds.AddDim(subset.VarLat, uint64(shape[0]))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim(subset.VarLon, uint64(shape[1]))
	if err != nil {
		return err
	}
	dayDim, err := ds.AddDim(subset.VarDay, uint64(shape[2]))
	if err != nil {
		return err
	}
	cube := []netcdf.Dim{latDim, lonDim, dayDim}

	// Variables.
	latVar, err := ds.AddVar(subset.VarLat, netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	lonVar, err := ds.AddVar(subset.VarLon, netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	dayVar, err := ds.AddVar(subset.VarDay, netcdf.INT, []netcdf.Dim{dayDim})
	if err != nil {
		return err
	}
	if err := writeText(dayVar.Attr("units"), "days since 1970-01-01"); err != nil {
		return err
	}
	xch4Var, err := ds.AddVar(subset.VarXCH4, netcdf.FLOAT, cube)
	if err != nil {
		return err
	}
	errVar, err := ds.AddVar(subset.VarXCH4Err, netcdf.FLOAT, cube)
	if err != nil {
		return err
	}
	for _, v := range []netcdf.Var{xch4Var, errVar} {
		if err := v.Attr("_FillValue").WriteFloat32s([]float32{subset.FillValue}); err != nil {
			return fmt.Errorf("write _FillValue: %w", err)
		}
		if err := writeText(v.Attr("units"), "ppb"); err != nil {
			return err
		}
	}
	nVar, err := ds.AddVar(subset.VarN, netcdf.INT, cube)
	if err != nil {
		return err
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("enddef: %w", err)
	}

	if err := latVar.WriteFloat64s(g.Lat); err != nil {
		return fmt.Errorf("write lat: %w", err)
	}
	if err := lonVar.WriteFloat64s(g.Lon); err != nil {
		return fmt.Errorf("write lon: %w", err)
	}
	days := make([]int32, len(g.Day))
	for i, d := range g.Day {
		days[i] = int32(d) //nolint:gosec // G115: epoch days fit in int32.
	}
	if err := dayVar.WriteInt32s(days); err != nil {
		return fmt.Errorf("write day: %w", err)
	}
	if err := xch4Var.WriteFloat32s(flattenFloat(g.XCH4)); err != nil {
		return fmt.Errorf("write xch4: %w", err)
	}
	if err := errVar.WriteFloat32s(flattenFloat(g.XCH4Err)); err != nil {
		return fmt.Errorf("write xch4_err: %w", err)
	}
	if err := nVar.WriteInt32s(flattenInt(g.N)); err != nil {
		return fmt.Errorf("write N: %w", err)
	}

	return nil
}

func writeText(a netcdf.Attr, s string) error {
	if s == "" {
		s = " "
	}
	return a.WriteBytes([]byte(s))
}

func flattenFloat(cube [][][]float64) []float32 {
	var out []float32
	for i := range cube {
		for j := range cube[i] {
			for _, v := range cube[i][j] {
				if math.IsNaN(v) {
					out = append(out, subset.FillValue)
					continue
				}
				out = append(out, float32(v))
			}
		}
	}
	return out
}

func flattenInt(cube [][][]int) []int32 {
	var out []int32
	for i := range cube {
		for j := range cube[i] {
			for _, v := range cube[i][j] {
				out = append(out, int32(v)) //nolint:gosec // G115: sample counts fit in int32.
			}
		}
	}
	return out
}
