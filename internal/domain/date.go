package domain

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	secsPerDay = 24 * 60 * 60
)

// Date is a calendar date on the proleptic Gregorian calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate returns the date for the given day, month and year.
func NewDate(day, month, year int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// DateFromOffset converts a day offset from 1970-01-01 back to a calendar date.
func DateFromOffset(offset int) Date {
	t := time.Unix(int64(offset)*secsPerDay, 0).UTC()
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Validate rejects dates that do not exist on the calendar (e.g. 2018-02-30).
func (d Date) Validate() error {
	t := d.time()
	if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
		return fmt.Errorf("invalid calendar date %04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return nil
}

// DayOffset returns the number of days since 1970-01-01.
// Dates before the epoch give negative offsets.
func (d Date) DayOffset() int {
	secs := d.time().Unix()
	days := secs / secsPerDay
	if secs%secsPerDay != 0 && secs < 0 {
		days--
	}
	return int(days)
}

func (d Date) String() string {
	return d.time().Format(dateLayout)
}

func (d Date) time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// DateRange is a closed interval of calendar dates.
//
// Unlike SpatialBounds, both ends are inclusive. Start <= End is not enforced;
// an inverted range simply selects no days.
type DateRange struct {
	Start Date
	End   Date
}

// Offsets returns the day offsets of both ends.
func (r DateRange) Offsets() (int, int) {
	return r.Start.DayOffset(), r.End.DayOffset()
}

// Contains reports whether the day offset lies inside the closed range.
func (r DateRange) Contains(day int) bool {
	lo, hi := r.Offsets()
	return day >= lo && day <= hi
}

// Days returns the number of days covered by the range (0 if inverted).
func (r DateRange) Days() int {
	lo, hi := r.Offsets()
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}
