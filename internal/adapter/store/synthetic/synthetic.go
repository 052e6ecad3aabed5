// Package synthetic builds WFMD-like XCH4 grids for development data and
// test fixtures.
package synthetic

import (
	"math"

	"go.ngs.io/xch4-api/internal/domain"
)

// Config describes a generated grid.
type Config struct {
	ProductType   string
	ReferenceTime string
	Bounds        domain.SpatialBounds
	LatRes        float64
	LonRes        float64
	Range         domain.DateRange

	// GapEvery leaves every n-th cell (by flat index) without a retrieval.
	// Zero disables gaps.
	GapEvery int
}

// Grid builds a full-extent grid with a smooth XCH4 field: a linear
// trend of roughly 11 ppb/yr, an annual cycle, and a weak latitude gradient.
// Coordinates are the lower edges of each bin.
func Grid(cfg Config) *domain.GridSlice {
	nLat := int(math.Round((cfg.Bounds.LatMax - cfg.Bounds.LatMin) / cfg.LatRes))
	nLon := int(math.Round((cfg.Bounds.LonMax - cfg.Bounds.LonMin) / cfg.LonRes))
	dayMin, _ := cfg.Range.Offsets()
	nDay := cfg.Range.Days()

	g := &domain.GridSlice{
		Lat:           make([]float64, nLat),
		Lon:           make([]float64, nLon),
		Day:           make([]int, nDay),
		XCH4:          make([][][]float64, nLat),
		XCH4Err:       make([][][]float64, nLat),
		N:             make([][][]int, nLat),
		ProductType:   cfg.ProductType,
		ReferenceTime: cfg.ReferenceTime,
		Meta: domain.GridMeta{
			LatMin: cfg.Bounds.LatMin,
			LatMax: cfg.Bounds.LatMax,
			LonMin: cfg.Bounds.LonMin,
			LonMax: cfg.Bounds.LonMax,
			LatRes: cfg.LatRes,
			LonRes: cfg.LonRes,
		},
	}

	for i := range g.Lat {
		g.Lat[i] = cfg.Bounds.LatMin + float64(i)*cfg.LatRes
	}
	for j := range g.Lon {
		g.Lon[j] = cfg.Bounds.LonMin + float64(j)*cfg.LonRes
	}
	for k := range g.Day {
		g.Day[k] = dayMin + k
	}

	flat := 0
	for i, lat := range g.Lat {
		g.XCH4[i] = make([][]float64, nLon)
		g.XCH4Err[i] = make([][]float64, nLon)
		g.N[i] = make([][]int, nLon)
		for j := range g.Lon {
			values := make([]float64, nDay)
			errs := make([]float64, nDay)
			counts := make([]int, nDay)
			for k, day := range g.Day {
				flat++
				if cfg.GapEvery > 0 && flat%cfg.GapEvery == 0 {
					values[k] = math.NaN()
					errs[k] = math.NaN()
					continue
				}
				values[k] = XCH4(lat, day)
				errs[k] = 8 + 0.02*math.Abs(lat)
				counts[k] = 1 + (i+j+k)%5
			}
			g.XCH4[i][j] = values
			g.XCH4Err[i][j] = errs
			g.N[i][j] = counts
		}
	}

	return g
}

// XCH4 is the field value used by Grid at a latitude and epoch day.
func XCH4(lat float64, day int) float64 {
	years := float64(day-17532) / 365.25
	return 1850 + 11*years + 6*math.Sin(2*math.Pi*years) - 0.1*lat
}
