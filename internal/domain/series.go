package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimeSeries is a daily global XCH4 series. All slices are parallel.
type TimeSeries struct {
	Day     []int
	XCH4    []float64 // NaN when no cell contributed.
	XCH4Err []float64 // NaN when no cell contributed.
	Cells   []int
}

// Len returns the number of days in the series.
func (s TimeSeries) Len() int {
	return len(s.Day)
}

// GlobalMean reduces a grid slice to an area-weighted daily mean.
//
// A cell contributes when it has at least one sample and finite value and error.
// Its weight is the cosine of the cell-centre latitude. The error is propagated
// as sqrt(Σ(w·err)²) / Σw.
func GlobalMean(g *GridSlice) TimeSeries {
	nDay := len(g.Day)
	ts := TimeSeries{
		Day:     append([]int(nil), g.Day...),
		XCH4:    make([]float64, nDay),
		XCH4Err: make([]float64, nDay),
		Cells:   make([]int, nDay),
	}

	latWeights := make([]float64, len(g.Lat))
	for i, lat := range g.Lat {
		latWeights[i] = math.Cos((lat + g.Meta.LatRes/2) * math.Pi / 180.0)
	}

	capacity := len(g.Lat) * len(g.Lon)
	values := make([]float64, 0, capacity)
	errs := make([]float64, 0, capacity)
	weights := make([]float64, 0, capacity)

	for k := 0; k < nDay; k++ {
		values, errs, weights = values[:0], errs[:0], weights[:0]
		for i := range g.Lat {
			for j := range g.Lon {
				if g.N[i][j][k] <= 0 {
					continue
				}
				v, e := g.XCH4[i][j][k], g.XCH4Err[i][j][k]
				if !isFinite(v) || !isFinite(e) {
					continue
				}
				values = append(values, v)
				errs = append(errs, e)
				weights = append(weights, latWeights[i])
			}
		}

		sumW := floats.Sum(weights)
		if len(values) == 0 || sumW <= 0 {
			ts.XCH4[k] = math.NaN()
			ts.XCH4Err[k] = math.NaN()
			continue
		}

		weighted := make([]float64, len(errs))
		floats.MulTo(weighted, weights, errs)

		ts.XCH4[k] = stat.Mean(values, weights)
		ts.XCH4Err[k] = math.Sqrt(floats.Dot(weighted, weighted)) / sumW
		ts.Cells[k] = len(values)
	}

	return ts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
