// Command xch4-series reduces a WFMD XCH4 grid file to an area-weighted daily
// mean and prints it as CSV.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"go.ngs.io/xch4-api/internal/adapter/store"
	"go.ngs.io/xch4-api/internal/config"
	"go.ngs.io/xch4-api/internal/domain"
	"go.ngs.io/xch4-api/internal/exitcode"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	file := flag.String("file", "", "Path to WFMD XCH4 NetCDF file")
	startStr := flag.String("start", "", "First day (YYYY-MM-DD)")
	endStr := flag.String("end", "", "Last day, inclusive (YYYY-MM-DD)")
	latMin := flag.Float64("lat-min", math.NaN(), "Minimum latitude (inclusive)")
	latMax := flag.Float64("lat-max", math.NaN(), "Maximum latitude (exclusive)")
	lonMin := flag.Float64("lon-min", math.NaN(), "Minimum longitude (inclusive)")
	lonMax := flag.Float64("lon-max", math.NaN(), "Maximum longitude (exclusive)")
	backend := flag.String("backend", config.BackendNetCDFC, "NetCDF reader: netcdf-c or native")
	flag.Parse()

	req, err := buildRequest(*file, *startStr, *endStr, [4]float64{*latMin, *latMax, *lonMin, *lonMax})
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		fmt.Fprintf(os.Stderr, "Usage: xch4-series -file wfmd.nc -start 2018-01-01 -end 2018-12-31 [-lat-min ... -lon-max ...]\n")
		os.Exit(exitcode.ConfigError)
	}

	loader, err := store.New(*backend)
	if err != nil {
		slog.Error("failed to create grid loader", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	g, err := loader.LoadGrid(req)
	if err != nil {
		slog.Error("failed to load grid", "file", req.Path, "error", err)
		os.Exit(exitCodeFor(err))
	}
	slog.Info("grid loaded", "file", req.Path, "shape", g.Shape(), "product_type", g.ProductType)

	if err := writeSeries(os.Stdout, domain.GlobalMean(g)); err != nil {
		slog.Error("failed to write series", "error", err)
		os.Exit(exitcode.OutputError)
	}
	os.Exit(exitcode.Success)
}

// buildRequest validates the flags. bounds holds lat-min, lat-max, lon-min,
// lon-max; all NaN means the file's declared extent.
func buildRequest(file, startStr, endStr string, bounds [4]float64) (domain.LoadRequest, error) {
	var req domain.LoadRequest
	if file == "" {
		return req, errors.New("-file is required")
	}
	req.Path = file

	start, err := domain.ParseDate(startStr)
	if err != nil {
		return req, fmt.Errorf("-start: %w", err)
	}
	end, err := domain.ParseDate(endStr)
	if err != nil {
		return req, fmt.Errorf("-end: %w", err)
	}
	if end.DayOffset() < start.DayOffset() {
		return req, fmt.Errorf("-start %s is after -end %s", start, end)
	}
	req.Range = domain.DateRange{Start: start, End: end}

	set := 0
	for _, v := range bounds {
		if !math.IsNaN(v) {
			set++
		}
	}
	switch set {
	case 0:
		return req, nil
	case len(bounds):
	default:
		return req, errors.New("-lat-min, -lat-max, -lon-min and -lon-max must be given together")
	}

	b := domain.SpatialBounds{LatMin: bounds[0], LatMax: bounds[1], LonMin: bounds[2], LonMax: bounds[3]}
	if err := b.Validate(); err != nil {
		return req, err
	}
	req.Bounds = &b
	return req, nil
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRead):
		return exitcode.ReadError
	case errors.Is(err, domain.ErrMetadata), errors.Is(err, domain.ErrShapeMismatch):
		return exitcode.DataError
	default:
		return exitcode.ApplicationError
	}
}

// writeSeries writes one CSV row per day. Days without data leave the value
// columns empty.
func writeSeries(w io.Writer, ts domain.TimeSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "date", "xch4", "xch4_err", "cells"}); err != nil {
		return err
	}
	for i := 0; i < ts.Len(); i++ {
		row := []string{
			strconv.Itoa(ts.Day[i]),
			domain.DateFromOffset(ts.Day[i]).String(),
			formatValue(ts.XCH4[i]),
			formatValue(ts.XCH4Err[i]),
			strconv.Itoa(ts.Cells[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
