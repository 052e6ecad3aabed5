package interp

import (
	"math"
	"testing"

	"go.ngs.io/xch4-api/internal/domain"
)

func TestBilinear_Centre(t *testing.T) {
	c := Cell{
		Lon0: 0, Lon1: 2,
		Lat0: 0, Lat1: 2,
		V00: 1800, V10: 1804,
		V01: 1808, V11: 1812,
	}

	got, err := Bilinear(c, 1, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(got-1806) > 1e-9 {
		t.Errorf("centre: expected 1806, got %.10f", got)
	}
}

func TestBilinear_Corners(t *testing.T) {
	c := Cell{
		Lon0: 10, Lon1: 12,
		Lat0: -4, Lat1: -2,
		V00: 1, V10: 2,
		V01: 3, V11: 4,
	}

	tests := []struct {
		name     string
		lon, lat float64
		want     float64
	}{
		{"south-west", 10, -4, 1},
		{"south-east", 12, -4, 2},
		{"north-west", 10, -2, 3},
		{"north-east", 12, -2, 4},
	}
	for _, tt := range tests {
		got, err := Bilinear(c, tt.lon, tt.lat)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestBilinear_NaNCorner(t *testing.T) {
	c := Cell{
		Lon0: 0, Lon1: 1,
		Lat0: 0, Lat1: 1,
		V00: 1, V10: math.NaN(),
		V01: 3, V11: 4,
	}
	got, err := Bilinear(c, 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN when a corner has no retrieval, got %v", got)
	}
}

func TestBilinear_OutsideCell(t *testing.T) {
	c := Cell{Lon0: 0, Lon1: 10, Lat0: 0, Lat1: 10}

	tests := []struct {
		name     string
		lon, lat float64
	}{
		{"lon too small", -1, 5},
		{"lon too large", 11, 5},
		{"lat too small", 5, -1},
		{"lat too large", 5, 11},
	}
	for _, tt := range tests {
		if _, err := Bilinear(c, tt.lon, tt.lat); err == nil {
			t.Errorf("%s: expected error for (%.1f, %.1f)", tt.name, tt.lon, tt.lat)
		}
	}
}

func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := &Grid2D{
		Lon: []float64{0, 1, 2},
		Lat: []float64{0, 1, 2},
		Values: [][]float64{
			{1, 2, 3}, // lat=0
			{4, 5, 6}, // lat=1
			{7, 8, 9}, // lat=2
		},
	}

	tests := []struct {
		lon, lat float64
		want     float64
	}{
		{0, 0, 1},
		{1, 0, 2},
		{2, 0, 3},
		{0, 1, 4},
		{1, 1, 5},
		{2, 2, 9},
		{0.5, 0.5, 3},
		{1.5, 1.5, 7},
	}
	for _, tt := range tests {
		got, err := grid.InterpolateAt(tt.lon, tt.lat)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.lon, tt.lat, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %v, got %v", tt.lon, tt.lat, tt.want, got)
		}
	}

	if _, err := grid.InterpolateAt(2.5, 1); err == nil {
		t.Errorf("expected error outside the grid")
	}
	if _, err := grid.InterpolateAt(math.NaN(), 1); err == nil {
		t.Errorf("expected error for NaN longitude")
	}
}

func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{
			name: "valid grid",
			grid: &Grid2D{
				Lon:    []float64{0, 1, 2},
				Lat:    []float64{0, 1},
				Values: [][]float64{{1, 2, 3}, {4, 5, 6}},
			},
		},
		{
			name: "single longitude",
			grid: &Grid2D{
				Lon:    []float64{0},
				Lat:    []float64{0, 1},
				Values: [][]float64{{1}, {2}},
			},
			wantErr: true,
		},
		{
			name: "missing row",
			grid: &Grid2D{
				Lon:    []float64{0, 1},
				Lat:    []float64{0, 1},
				Values: [][]float64{{1, 2}},
			},
			wantErr: true,
		},
		{
			name: "short row",
			grid: &Grid2D{
				Lon:    []float64{0, 1, 2},
				Lat:    []float64{0, 1},
				Values: [][]float64{{1, 2}, {3, 4}},
			},
			wantErr: true,
		},
		{
			name: "descending latitudes",
			grid: &Grid2D{
				Lon:    []float64{0, 1},
				Lat:    []float64{1, 0},
				Values: [][]float64{{1, 2}, {3, 4}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayerAt_CellCentres(t *testing.T) {
	g := &domain.GridSlice{
		Lat:  []float64{0, 2},
		Lon:  []float64{10, 12},
		Day:  []int{17532, 17533},
		Meta: domain.GridMeta{LatRes: 2, LonRes: 2},
		XCH4: [][][]float64{
			{{1800, 1900}, {1802, 1902}},
			{{1804, 1904}, {1806, 1906}},
		},
		XCH4Err: [][][]float64{
			{{10, 20}, {10, 20}},
			{{10, 20}, {10, 20}},
		},
	}

	values, errs, err := LayerAt(g, 1)
	if err != nil {
		t.Fatalf("LayerAt: %v", err)
	}
	if values.Lat[0] != 1 || values.Lat[1] != 3 || values.Lon[0] != 11 || values.Lon[1] != 13 {
		t.Fatalf("expected cell-centre coordinates, got lat=%v lon=%v", values.Lat, values.Lon)
	}

	v, e, err := InterpolatePair(values, errs, 12, 2)
	if err != nil {
		t.Fatalf("InterpolatePair: %v", err)
	}
	if math.Abs(v-1903) > 1e-9 || math.Abs(e-20) > 1e-9 {
		t.Errorf("expected (1903, 20), got (%v, %v)", v, e)
	}

	if _, _, err := LayerAt(g, 2); err == nil {
		t.Errorf("expected error for day index past the axis")
	}
}
