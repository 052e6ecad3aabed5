package native

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"go.ngs.io/xch4-api/internal/adapter/subset"
	"go.ngs.io/xch4-api/internal/domain"
)

// Create writes g as a classic-format WFMD grid file without libnetcdf. The
// grid's metadata becomes the declared extent of the file; NaN cells are
// written as subset.FillValue.
func Create(path string, g *domain.GridSlice) (err error) {
	shape := g.Shape()
	if shape[0] == 0 || shape[1] == 0 || shape[2] == 0 {
		return fmt.Errorf("cannot write grid with empty axis: %v", shape)
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	// Close writes the data; its error matters.
	defer func() {
		if cerr := cw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write file: %w", cerr)
		}
	}()

	// Global attributes.
	global, err := util.NewOrderedMap(
		[]string{
			subset.AttrProductType, subset.AttrReferenceTime,
			subset.AttrLatLow, subset.AttrLatHigh, subset.AttrLonLow, subset.AttrLonHigh,
			subset.AttrLatRes, subset.AttrLonRes,
		},
		map[string]interface{}{
			subset.AttrProductType:   text(g.ProductType),
			subset.AttrReferenceTime: text(g.ReferenceTime),
			subset.AttrLatLow:        g.Meta.LatMin,
			subset.AttrLatHigh:       g.Meta.LatMax,
			subset.AttrLonLow:        g.Meta.LonMin,
			subset.AttrLonHigh:       g.Meta.LonMax,
			subset.AttrLatRes:        g.Meta.LatRes,
			subset.AttrLonRes:        g.Meta.LonRes,
		})
	if err != nil {
		return err
	}
	if err := cw.AddGlobalAttrs(global); err != nil {
		return fmt.Errorf("write global attributes: %w", err)
	}

	// Coordinates.
	days := make([]int32, len(g.Day))
	for i, d := range g.Day {
		days[i] = int32(d) //nolint:gosec // G115: epoch days fit in int32.
	}
	dayAttrs, err := util.NewOrderedMap([]string{"units"}, map[string]interface{}{"units": "days since 1970-01-01"})
	if err != nil {
		return err
	}
	coords := []struct {
		name   string
		values interface{}
		attrs  api.AttributeMap
	}{
		{subset.VarLat, append([]float64(nil), g.Lat...), nil},
		{subset.VarLon, append([]float64(nil), g.Lon...), nil},
		{subset.VarDay, days, dayAttrs},
	}
	for _, c := range coords {
		if err := cw.AddVar(c.name, api.Variable{Values: c.values, Dimensions: []string{c.name}, Attributes: c.attrs}); err != nil {
			return fmt.Errorf("write %s: %w", c.name, err)
		}
	}

	// Measurement fields on (lat, lon, day).
	cube := []string{subset.VarLat, subset.VarLon, subset.VarDay}
	for _, field := range []struct {
		name   string
		values [][][]float64
	}{
		{subset.VarXCH4, g.XCH4},
		{subset.VarXCH4Err, g.XCH4Err},
	} {
		attrs, err := util.NewOrderedMap(
			[]string{"_FillValue", "units"},
			map[string]interface{}{"_FillValue": subset.FillValue, "units": "ppb"})
		if err != nil {
			return err
		}
		v := api.Variable{Values: toFloat32Cube(field.values), Dimensions: cube, Attributes: attrs}
		if err := cw.AddVar(field.name, v); err != nil {
			return fmt.Errorf("write %s: %w", field.name, err)
		}
	}
	if err := cw.AddVar(subset.VarN, api.Variable{Values: toInt32Cube(g.N), Dimensions: cube}); err != nil {
		return fmt.Errorf("write %s: %w", subset.VarN, err)
	}

	return nil
}

// text keeps empty strings readable as CHAR attributes.
func text(s string) string {
	if s == "" {
		return " "
	}
	return s
}

func toFloat32Cube(cube [][][]float64) [][][]float32 {
	out := make([][][]float32, len(cube))
	for i := range cube {
		out[i] = make([][]float32, len(cube[i]))
		for j := range cube[i] {
			out[i][j] = make([]float32, len(cube[i][j]))
			for k, v := range cube[i][j] {
				if math.IsNaN(v) {
					out[i][j][k] = subset.FillValue
					continue
				}
				out[i][j][k] = float32(v)
			}
		}
	}
	return out
}

func toInt32Cube(cube [][][]int) [][][]int32 {
	out := make([][][]int32, len(cube))
	for i := range cube {
		out[i] = make([][]int32, len(cube[i]))
		for j := range cube[i] {
			out[i][j] = make([]int32, len(cube[i][j]))
			for k, v := range cube[i][j] {
				out[i][j][k] = int32(v) //nolint:gosec // G115: sample counts fit in int32.
			}
		}
	}
	return out
}
