package domain

import (
	"testing"
)

// TestDayOffset_KnownDates checks epoch-day conversion against known values.
func TestDayOffset_KnownDates(t *testing.T) {
	tests := []struct {
		date     Date
		expected int
	}{
		{NewDate(1, 1, 1970), 0},
		{NewDate(31, 12, 1969), -1},
		{NewDate(1, 1, 2018), 17532},
		{NewDate(1, 2, 2018), 17563},
		{NewDate(10, 3, 2018), 17600},
		{NewDate(29, 2, 2020), 18321},
		{NewDate(1, 1, 1900), -25567},
	}

	for _, tt := range tests {
		if got := tt.date.DayOffset(); got != tt.expected {
			t.Errorf("%s: expected offset %d, got %d", tt.date, tt.expected, got)
		}
	}
}

// TestDateFromOffset_RoundTrip checks that offsets map back to the same date.
func TestDateFromOffset_RoundTrip(t *testing.T) {
	for _, offset := range []int{-25567, -1, 0, 17532, 17600, 18321} {
		d := DateFromOffset(offset)
		if got := d.DayOffset(); got != offset {
			t.Errorf("offset %d: round trip through %s gave %d", offset, d, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2018-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d != NewDate(10, 3, 2018) {
		t.Fatalf("expected 2018-03-10, got %+v", d)
	}

	for _, bad := range []string{"", "2018-3-10", "10/03/2018", "2018-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(29, 2, 2020).Validate(); err != nil {
		t.Errorf("leap day rejected: %v", err)
	}
	if err := NewDate(29, 2, 2019).Validate(); err == nil {
		t.Error("expected error for 2019-02-29")
	}
	if err := NewDate(1, 13, 2019).Validate(); err == nil {
		t.Error("expected error for month 13")
	}
}

// TestDateRange_ClosedInterval checks both ends of the range are inclusive.
func TestDateRange_ClosedInterval(t *testing.T) {
	r := DateRange{Start: NewDate(1, 1, 2018), End: NewDate(1, 2, 2018)}

	if !r.Contains(17532) || !r.Contains(17563) {
		t.Error("range must include both endpoints")
	}
	if r.Contains(17531) || r.Contains(17564) {
		t.Error("range must exclude days outside the endpoints")
	}
	if got := r.Days(); got != 32 {
		t.Errorf("expected 32 days, got %d", got)
	}

	inverted := DateRange{Start: r.End, End: r.Start}
	if inverted.Days() != 0 {
		t.Errorf("inverted range should cover 0 days, got %d", inverted.Days())
	}
	if inverted.Contains(17540) {
		t.Error("inverted range must not contain any day")
	}
}

// TestSpatialBounds_HalfOpen checks the upper bound is excluded on both axes.
func TestSpatialBounds_HalfOpen(t *testing.T) {
	b := SpatialBounds{LatMin: 0, LatMax: 10, LonMin: -20, LonMax: 20}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if !b.ContainsLat(0) || b.ContainsLat(10) || !b.ContainsLat(9.99) {
		t.Error("latitude bounds are not half-open")
	}
	if !b.ContainsLon(-20) || b.ContainsLon(20) {
		t.Error("longitude bounds are not half-open")
	}

	for _, bad := range []SpatialBounds{
		{LatMin: 10, LatMax: 10, LonMin: 0, LonMax: 1},
		{LatMin: 0, LatMax: 1, LonMin: 5, LonMax: -5},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}
