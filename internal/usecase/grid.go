package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.ngs.io/xch4-api/internal/adapter/interp"
	"go.ngs.io/xch4-api/internal/adapter/store"
	"go.ngs.io/xch4-api/internal/domain"
)

// MaxRangeDays caps a request at twenty years of days.
const MaxRangeDays = 7305

const productExt = ".nc"

var (
	// ErrInvalidRequest marks request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoData is returned when a request selects no retrievals at all.
	ErrNoData = errors.New("no data")
)

// GridRequest selects a product, a closed date range and optional bounds.
type GridRequest struct {
	Product string
	Start   domain.Date
	End     domain.Date
	Bounds  *domain.SpatialBounds
}

// Validate checks dates, range length, bounds and the product name.
func (r *GridRequest) Validate() error {
	if err := validateProduct(r.Product); err != nil {
		return err
	}
	if err := r.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %w", ErrInvalidRequest, err)
	}
	if err := r.End.Validate(); err != nil {
		return fmt.Errorf("%w: end: %w", ErrInvalidRequest, err)
	}

	days := r.End.DayOffset() - r.Start.DayOffset() + 1
	if days < 1 {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRequest, r.Start, r.End)
	}
	if days > MaxRangeDays {
		return fmt.Errorf("%w: date range must be at most %d days, got %d", ErrInvalidRequest, MaxRangeDays, days)
	}

	if r.Bounds != nil {
		if err := r.Bounds.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	return nil
}

// PointRequest samples one product on one day at a location.
type PointRequest struct {
	Product string
	Date    domain.Date
	Lat     float64
	Lon     float64
}

// Validate checks the product name, date and coordinate ranges.
func (r *PointRequest) Validate() error {
	if err := validateProduct(r.Product); err != nil {
		return err
	}
	if err := r.Date.Validate(); err != nil {
		return fmt.Errorf("%w: date: %w", ErrInvalidRequest, err)
	}
	if math.IsNaN(r.Lat) || r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidRequest)
	}
	if math.IsNaN(r.Lon) || r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidRequest)
	}
	return nil
}

// GridResponse describes a loaded subset without the cell values.
type GridResponse struct {
	Product       string          `json:"product"`
	ProductType   string          `json:"product_type"`
	ReferenceTime string          `json:"reference_time"`
	Shape         [3]int          `json:"shape"`
	Lat           []float64       `json:"lat"`
	Lon           []float64       `json:"lon"`
	Day           []int           `json:"day"`
	Dates         []string        `json:"dates"`
	ValidCells    []int           `json:"valid_cells"`
	Meta          domain.GridMeta `json:"meta"`
}

// SeriesPoint is one day of an area-weighted series.
type SeriesPoint struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	XCH4    Float  `json:"xch4"`
	XCH4Err Float  `json:"xch4_err"`
	Cells   int    `json:"cells"`
}

// SeriesResponse is the area-weighted daily mean over a subset.
type SeriesResponse struct {
	Product string          `json:"product"`
	Units   string          `json:"units"`
	Meta    domain.GridMeta `json:"meta"`
	Points  []SeriesPoint   `json:"points"`
}

// PointResponse is a bilinearly interpolated sample.
type PointResponse struct {
	Product string  `json:"product"`
	Date    string  `json:"date"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	XCH4    Float   `json:"xch4"`
	XCH4Err Float   `json:"xch4_err"`
	Valid   bool    `json:"valid"`
	Units   string  `json:"units"`
}

// ProductInfo describes a grid file available under the data directory.
type ProductInfo struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Modified  string `json:"modified"`
}

// GridUseCase orchestrates grid loading for the API and CLIs.
type GridUseCase struct {
	loader  store.GridLoader
	dataDir string
}

// NewGridUseCase creates a use case reading products from dataDir.
func NewGridUseCase(loader store.GridLoader, dataDir string) *GridUseCase {
	return &GridUseCase{
		loader:  loader,
		dataDir: dataDir,
	}
}

// ProductPath resolves a product name to its file under the data directory.
func (uc *GridUseCase) ProductPath(product string) (string, error) {
	if err := validateProduct(product); err != nil {
		return "", err
	}
	return filepath.Join(uc.dataDir, strings.TrimSuffix(product, productExt)+productExt), nil
}

// Grid loads a subset and reports its shape and coordinates.
func (uc *GridUseCase) Grid(req GridRequest) (*GridResponse, error) {
	g, err := uc.load(req)
	if err != nil {
		return nil, err
	}

	dates := make([]string, len(g.Day))
	for i, d := range g.Day {
		dates[i] = domain.DateFromOffset(d).String()
	}

	return &GridResponse{
		Product:       req.Product,
		ProductType:   g.ProductType,
		ReferenceTime: g.ReferenceTime,
		Shape:         g.Shape(),
		Lat:           g.Lat,
		Lon:           g.Lon,
		Day:           g.Day,
		Dates:         dates,
		ValidCells:    g.ValidCells(),
		Meta:          g.Meta,
	}, nil
}

// Series reduces a subset to its area-weighted daily mean.
func (uc *GridUseCase) Series(req GridRequest) (*SeriesResponse, error) {
	g, err := uc.load(req)
	if err != nil {
		return nil, err
	}

	ts := domain.GlobalMean(g)
	points := make([]SeriesPoint, ts.Len())
	for i := range points {
		points[i] = SeriesPoint{
			Day:     ts.Day[i],
			Date:    domain.DateFromOffset(ts.Day[i]).String(),
			XCH4:    Float(ts.XCH4[i]),
			XCH4Err: Float(ts.XCH4Err[i]),
			Cells:   ts.Cells[i],
		}
	}

	return &SeriesResponse{
		Product: req.Product,
		Units:   "ppb",
		Meta:    g.Meta,
		Points:  points,
	}, nil
}

// Point interpolates XCH4 at a location between the surrounding cell centres.
func (uc *GridUseCase) Point(req PointRequest) (*PointResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	g, err := uc.load(GridRequest{Product: req.Product, Start: req.Date, End: req.Date})
	if err != nil {
		return nil, err
	}
	if len(g.Day) == 0 {
		return nil, fmt.Errorf("%w: product %s has no grid for %s", ErrNoData, req.Product, req.Date)
	}

	values, errs, err := interp.LayerAt(g, 0)
	if err != nil {
		return nil, err
	}
	v, e, err := interp.InterpolatePair(values, errs, req.Lon, req.Lat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return &PointResponse{
		Product: req.Product,
		Date:    req.Date.String(),
		Lat:     req.Lat,
		Lon:     req.Lon,
		XCH4:    Float(v),
		XCH4Err: Float(e),
		Valid:   !math.IsNaN(v),
		Units:   "ppb",
	}, nil
}

// ListProducts returns the .nc files in the data directory, sorted by name.
func (uc *GridUseCase) ListProducts() ([]ProductInfo, error) {
	entries, err := os.ReadDir(uc.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory %s: %w", uc.dataDir, err)
	}

	products := make([]ProductInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != productExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		products = append(products, ProductInfo{
			Name:      strings.TrimSuffix(entry.Name(), productExt),
			SizeBytes: info.Size(),
			Modified:  info.ModTime().UTC().Format(time.RFC3339),
		})
	}

	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (uc *GridUseCase) load(req GridRequest) (*domain.GridSlice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	path, err := uc.ProductPath(req.Product)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	g, err := uc.loader.LoadGrid(domain.LoadRequest{
		Range:  domain.DateRange{Start: req.Start, End: req.End},
		Path:   path,
		Bounds: req.Bounds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", req.Product, err)
	}

	slog.Debug("grid loaded",
		"product", req.Product,
		"start", req.Start.String(),
		"end", req.End.String(),
		"shape", g.Shape(),
		"elapsed", time.Since(began),
	)
	return g, nil
}

func validateProduct(product string) error {
	if product == "" {
		return fmt.Errorf("%w: product is required", ErrInvalidRequest)
	}
	if strings.ContainsAny(product, `/\`) || strings.Contains(product, "..") {
		return fmt.Errorf("%w: invalid product name %q", ErrInvalidRequest, product)
	}
	return nil
}
