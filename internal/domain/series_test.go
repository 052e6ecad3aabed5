package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLatitudeSlice() *GridSlice {
	nan := math.NaN()
	return &GridSlice{
		Lat: []float64{0, 60},
		Lon: []float64{10},
		Day: []int{17532, 17533, 17534},
		XCH4: [][][]float64{
			{{1800, 1801, 1805}},
			{{1830, 1831, nan}},
		},
		XCH4Err: [][][]float64{
			{{3, 3, 4}},
			{{3, 3, 4}},
		},
		N: [][][]int{
			{{5, 0, 2}},
			{{7, 0, 3}},
		},
	}
}

func TestGlobalMean_AreaWeighted(t *testing.T) {
	ts := GlobalMean(twoLatitudeSlice())
	require.Equal(t, 3, ts.Len())
	assert.Equal(t, []int{17532, 17533, 17534}, ts.Day)

	// Weights are cos(0)=1 and cos(60°)=0.5.
	assert.InDelta(t, 1810.0, ts.XCH4[0], 1e-9)
	assert.InDelta(t, math.Sqrt(5), ts.XCH4Err[0], 1e-9)
	assert.Equal(t, 2, ts.Cells[0])
}

func TestGlobalMean_DayWithoutSamples(t *testing.T) {
	ts := GlobalMean(twoLatitudeSlice())

	assert.True(t, math.IsNaN(ts.XCH4[1]))
	assert.True(t, math.IsNaN(ts.XCH4Err[1]))
	assert.Zero(t, ts.Cells[1])
}

func TestGlobalMean_SkipsNaNCells(t *testing.T) {
	ts := GlobalMean(twoLatitudeSlice())

	assert.InDelta(t, 1805.0, ts.XCH4[2], 1e-9)
	assert.InDelta(t, 4.0, ts.XCH4Err[2], 1e-9)
	assert.Equal(t, 1, ts.Cells[2])
}

func TestGlobalMean_UsesCellCentre(t *testing.T) {
	g := &GridSlice{
		Lat:     []float64{-90, 0},
		Lon:     []float64{0},
		Day:     []int{0},
		XCH4:    [][][]float64{{{1700}}, {{1900}}},
		XCH4Err: [][][]float64{{{1}}, {{1}}},
		N:       [][][]int{{{1}}, {{1}}},
		Meta:    GridMeta{LatRes: 90},
	}
	// Centres at -45 and 45 carry equal weight.
	ts := GlobalMean(g)
	assert.InDelta(t, 1800.0, ts.XCH4[0], 1e-9)
}

func TestGlobalMean_EmptyDayAxis(t *testing.T) {
	g := &GridSlice{
		Lat:     []float64{0},
		Lon:     []float64{0},
		Day:     []int{},
		XCH4:    [][][]float64{{{}}},
		XCH4Err: [][][]float64{{{}}},
		N:       [][][]int{{{}}},
	}
	ts := GlobalMean(g)
	assert.Zero(t, ts.Len())
}

func TestValidCells(t *testing.T) {
	g := twoLatitudeSlice()
	assert.Equal(t, []int{2, 0, 1}, g.ValidCells())
	assert.Equal(t, [3]int{2, 1, 3}, g.Shape())
}
