package native

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.ngs.io/xch4-api/internal/adapter/store/synthetic"
	"go.ngs.io/xch4-api/internal/domain"
)

func tropics() synthetic.Config {
	return synthetic.Config{
		ProductType:   "XCH4_WFMD_v4",
		ReferenceTime: "1970-01-01T00:00:00Z",
		Bounds:        domain.SpatialBounds{LatMin: -10, LatMax: 10, LonMin: 20, LonMax: 60},
		LatRes:        2,
		LonRes:        4,
		Range:         domain.DateRange{Start: domain.NewDate(1, 6, 2019), End: domain.NewDate(10, 6, 2019)},
		GapEvery:      7,
	}
}

func writeClassic(t *testing.T, g *domain.GridSlice) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wfmd.nc")
	if err := Create(path, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return path
}

// cut returns the expected load result for the given index ranges of a full
// in-memory grid, with values rounded to the float32 storage type.
func cut(full *domain.GridSlice, lat, lon, day [2]int, meta domain.GridMeta) *domain.GridSlice {
	out := &domain.GridSlice{
		Lat:           append([]float64{}, full.Lat[lat[0]:lat[1]]...),
		Lon:           append([]float64{}, full.Lon[lon[0]:lon[1]]...),
		Day:           append([]int{}, full.Day[day[0]:day[1]]...),
		XCH4:          make([][][]float64, lat[1]-lat[0]),
		XCH4Err:       make([][][]float64, lat[1]-lat[0]),
		N:             make([][][]int, lat[1]-lat[0]),
		Meta:          meta,
		ProductType:   full.ProductType,
		ReferenceTime: full.ReferenceTime,
	}
	for i := range out.XCH4 {
		out.XCH4[i] = make([][]float64, lon[1]-lon[0])
		out.XCH4Err[i] = make([][]float64, lon[1]-lon[0])
		out.N[i] = make([][]int, lon[1]-lon[0])
		for j := range out.XCH4[i] {
			for k := day[0]; k < day[1]; k++ {
				out.XCH4[i][j] = append(out.XCH4[i][j], float64(float32(full.XCH4[lat[0]+i][lon[0]+j][k])))
				out.XCH4Err[i][j] = append(out.XCH4Err[i][j], float64(float32(full.XCH4Err[lat[0]+i][lon[0]+j][k])))
				out.N[i][j] = append(out.N[i][j], full.N[lat[0]+i][lon[0]+j][k])
			}
		}
	}
	return out
}

func TestLoadGrid(t *testing.T) {
	full := synthetic.Grid(tropics())
	path := writeClassic(t, full)

	cases := []struct {
		name          string
		start, end    domain.Date
		bounds        *domain.SpatialBounds
		lat, lon, day [2]int
		meta          domain.GridMeta
	}{
		{
			name:  "full extent",
			start: domain.NewDate(1, 6, 2019), end: domain.NewDate(10, 6, 2019),
			lat: [2]int{0, 10}, lon: [2]int{0, 10}, day: [2]int{0, 10},
			meta: full.Meta,
		},
		{
			name:  "sub box",
			start: domain.NewDate(3, 6, 2019), end: domain.NewDate(7, 6, 2019),
			bounds: &domain.SpatialBounds{LatMin: -4, LatMax: 4, LonMin: 28, LonMax: 44},
			lat:    [2]int{3, 7}, lon: [2]int{2, 6}, day: [2]int{2, 7},
			meta: domain.GridMeta{LatMin: -4, LatMax: 4, LonMin: 28, LonMax: 44, LatRes: 2, LonRes: 4},
		},
		{
			name:  "single day",
			start: domain.NewDate(5, 6, 2019), end: domain.NewDate(5, 6, 2019),
			lat: [2]int{0, 10}, lon: [2]int{0, 10}, day: [2]int{4, 5},
			meta: full.Meta,
		},
		{
			name:  "no days",
			start: domain.NewDate(1, 1, 2000), end: domain.NewDate(2, 1, 2000),
			lat: [2]int{0, 10}, lon: [2]int{0, 10}, day: [2]int{0, 0},
			meta: full.Meta,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LoadGrid(tc.start, tc.end, path, tc.bounds)
			if err != nil {
				t.Fatalf("LoadGrid: %v", err)
			}
			want := cut(full, tc.lat, tc.lon, tc.day, tc.meta)
			if diff := cmp.Diff(want, got, cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("LoadGrid mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadGrid_EmptyDayAxisKeepsRows(t *testing.T) {
	path := writeClassic(t, synthetic.Grid(tropics()))

	bounds := &domain.SpatialBounds{LatMin: -4, LatMax: 4, LonMin: 28, LonMax: 40}
	got, err := LoadGrid(domain.NewDate(1, 1, 2000), domain.NewDate(2, 1, 2000), path, bounds)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if got.Shape() != [3]int{4, 3, 0} {
		t.Fatalf("unexpected shape %v", got.Shape())
	}
	for i := range got.XCH4 {
		for j := range got.XCH4[i] {
			if got.XCH4[i][j] == nil || got.N[i][j] == nil {
				t.Fatalf("row [%d][%d] must be empty, not nil", i, j)
			}
		}
	}
}

func TestLoadGrid_NoCells(t *testing.T) {
	path := writeClassic(t, synthetic.Grid(tropics()))

	bounds := &domain.SpatialBounds{LatMin: 40, LatMax: 50, LonMin: 20, LonMax: 60}
	got, err := LoadGrid(domain.NewDate(1, 6, 2019), domain.NewDate(10, 6, 2019), path, bounds)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if got.Shape() != [3]int{0, 10, 10} {
		t.Fatalf("unexpected shape %v", got.Shape())
	}
}

func TestLoadGrid_FillValues(t *testing.T) {
	g := synthetic.Grid(tropics())
	g.XCH4[0][0][0] = math.NaN()
	g.XCH4Err[0][0][0] = math.NaN()
	path := writeClassic(t, g)

	day := domain.NewDate(1, 6, 2019)
	got, err := LoadGrid(day, day, path, nil)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if !math.IsNaN(got.XCH4[0][0][0]) || !math.IsNaN(got.XCH4Err[0][0][0]) {
		t.Fatalf("fill cell = %v ± %v, want NaN", got.XCH4[0][0][0], got.XCH4Err[0][0][0])
	}
}

func TestLoadGrid_ReadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadGrid(domain.NewDate(1, 6, 2019), domain.NewDate(2, 6, 2019), filepath.Join(dir, "missing.nc"), nil); !errors.Is(err, domain.ErrRead) {
		t.Fatalf("missing file: expected ErrRead, got %v", err)
	}

	junk := filepath.Join(dir, "junk.nc")
	//nolint:gosec // G306: test fixture.
	if err := os.WriteFile(junk, []byte("not a netcdf file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGrid(domain.NewDate(1, 6, 2019), domain.NewDate(2, 6, 2019), junk, nil); !errors.Is(err, domain.ErrRead) {
		t.Fatalf("junk file: expected ErrRead, got %v", err)
	}
}

func TestLoadGrid_ShapeMismatch(t *testing.T) {
	g := synthetic.Grid(tropics())
	g.Meta.LatRes = 3
	path := writeClassic(t, g)

	_, err := LoadGrid(domain.NewDate(1, 6, 2019), domain.NewDate(2, 6, 2019), path, nil)
	if !errors.Is(err, domain.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestStore_LoadGrid(t *testing.T) {
	path := writeClassic(t, synthetic.Grid(tropics()))

	req := domain.LoadRequest{
		Range: domain.DateRange{Start: domain.NewDate(1, 6, 2019), End: domain.NewDate(1, 6, 2019)},
		Path:  path,
	}
	got, err := NewStore().LoadGrid(req)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if got.Shape() != [3]int{10, 10, 1} {
		t.Fatalf("unexpected shape %v", got.Shape())
	}
	if want := synthetic.XCH4(got.Lat[0], got.Day[0]); float32(got.XCH4[0][0][0]) != float32(want) {
		t.Fatalf("xch4[0][0][0] = %v, want %v", got.XCH4[0][0][0], want)
	}
}

func TestCreate_EmptyAxis(t *testing.T) {
	cfg := tropics()
	cfg.Bounds.LatMax = cfg.Bounds.LatMin
	if err := Create(filepath.Join(t.TempDir(), "empty.nc"), synthetic.Grid(cfg)); err == nil {
		t.Fatal("expected error for grid with no latitudes")
	}
}
