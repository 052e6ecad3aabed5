package main

import (
	"testing"

	"go.ngs.io/xch4-api/internal/domain"
)

func TestRegion(t *testing.T) {
	b, res, err := region("global", domain.SpatialBounds{}, 0)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if b.LatMin != -90 || b.LonMax != 180 || res != 2 {
		t.Fatalf("unexpected global region %+v res=%v", b, res)
	}

	custom := domain.SpatialBounds{LatMin: 0, LatMax: 10, LonMin: 100, LonMax: 120}
	b, res, err = region("custom", custom, 0.5)
	if err != nil {
		t.Fatalf("custom: %v", err)
	}
	if b != custom || res != 0.5 {
		t.Fatalf("unexpected custom region %+v res=%v", b, res)
	}

	if _, _, err := region("custom", domain.SpatialBounds{LatMin: 10, LatMax: 0, LonMin: 0, LonMax: 1}, 1); err == nil {
		t.Fatal("expected error for inverted custom bounds")
	}
	if _, _, err := region("arctic", custom, 1); err == nil {
		t.Fatal("expected error for unknown region")
	}
}
