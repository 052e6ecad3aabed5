package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.ngs.io/xch4-api/internal/adapter/store"
	"go.ngs.io/xch4-api/internal/adapter/store/synthetic"
	"go.ngs.io/xch4-api/internal/config"
	"go.ngs.io/xch4-api/internal/domain"
	"go.ngs.io/xch4-api/internal/exitcode"
)

// region returns the bounds and resolution for a named region preset.
func region(name string, custom domain.SpatialBounds, res float64) (domain.SpatialBounds, float64, error) {
	switch name {
	case "global":
		return domain.SpatialBounds{LatMin: -90, LatMax: 90, LonMin: -180, LonMax: 180}, 2, nil
	case "tropics":
		return domain.SpatialBounds{LatMin: -30, LatMax: 30, LonMin: -180, LonMax: 180}, 1, nil
	case "custom":
		if err := custom.Validate(); err != nil {
			return domain.SpatialBounds{}, 0, err
		}
		return custom, res, nil
	}
	return domain.SpatialBounds{}, 0, fmt.Errorf("unknown region: %s (use global, tropics, or custom)", name)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	outPath := flag.String("out", "./data/wfmd_synthetic.nc", "Output NetCDF file")
	regionName := flag.String("region", "global", "Region: global, tropics, or custom")
	latMin := flag.Float64("lat-min", -10, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 10, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", 20, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 60, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 1, "Grid resolution in degrees (custom region)")
	startStr := flag.String("start", "2018-01-01", "First day (YYYY-MM-DD)")
	endStr := flag.String("end", "2018-12-31", "Last day, inclusive (YYYY-MM-DD)")
	gapEvery := flag.Int("gap-every", 7, "Leave every n-th cell without a retrieval (0 disables)")
	productType := flag.String("product-type", "XCH4_WFMD_v4", "product_type attribute")
	netcdf4 := flag.Bool("netcdf4", false, "Write NetCDF-4 (HDF5) instead of classic format (netcdf-c only)")
	backend := flag.String("backend", config.BackendNetCDFC, "NetCDF writer: netcdf-c or native")
	flag.Parse()

	if _, err := store.Lookup(*backend); err != nil {
		slog.Error("invalid backend", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	custom := domain.SpatialBounds{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax}
	bounds, res, err := region(*regionName, custom, *resolution)
	if err != nil {
		slog.Error("invalid region", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	start, err := domain.ParseDate(*startStr)
	if err != nil {
		slog.Error("invalid start", "error", err)
		os.Exit(exitcode.ConfigError)
	}
	end, err := domain.ParseDate(*endStr)
	if err != nil {
		slog.Error("invalid end", "error", err)
		os.Exit(exitcode.ConfigError)
	}
	dates := domain.DateRange{Start: start, End: end}
	if dates.Days() == 0 {
		slog.Error("start is after end", "start", start.String(), "end", end.String())
		os.Exit(exitcode.ConfigError)
	}

	cfg := synthetic.Config{
		ProductType:   *productType,
		ReferenceTime: "1970-01-01T00:00:00Z",
		Bounds:        bounds,
		LatRes:        res,
		LonRes:        res,
		Range:         dates,
		GapEvery:      *gapEvery,
	}

	slog.Info("generating synthetic WFMD grid",
		"region", *regionName,
		"lat", fmt.Sprintf("%.1f..%.1f", bounds.LatMin, bounds.LatMax),
		"lon", fmt.Sprintf("%.1f..%.1f", bounds.LonMin, bounds.LonMax),
		"resolution", res,
		"start", start.String(),
		"end", end.String(),
	)

	g := synthetic.Grid(cfg)
	shape := g.Shape()
	if shape[0] == 0 || shape[1] == 0 {
		slog.Error("resolution leaves an empty grid", "shape", shape)
		os.Exit(exitcode.ConfigError)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(exitcode.OutputError)
	}
	if err := store.Create(*backend, *outPath, g, *netcdf4); err != nil {
		slog.Error("failed to write grid", "path", *outPath, "backend", *backend, "error", err)
		os.Exit(exitcode.OutputError)
	}

	// xch4 and xch4_err as float32, N as int32.
	totalMB := float64(shape[0]*shape[1]*shape[2]*12) / 1024 / 1024
	slog.Info("generation complete",
		"path", *outPath,
		"shape", shape,
		"size_mb", fmt.Sprintf("~%.1f", totalMB),
	)
	os.Exit(exitcode.Success)
}
