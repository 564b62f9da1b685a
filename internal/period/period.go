// Package period models date-granular analysis ranges and the comparison
// presets used when a request doesn't name an explicit comparison window.
package period

import (
	"fmt"
	"time"
)

// Preset identifies how the comparison range is derived from the current one.
type Preset string

const (
	PresetPreviousPeriod  Preset = "previous_period"
	PresetOneMonthBack    Preset = "one_month_back"
	PresetThreeMonthsBack Preset = "three_months_back"
	PresetSixMonthsBack   Preset = "six_months_back"
	PresetOneYearBack     Preset = "one_year_back"
	PresetCustom          Preset = "custom"
)

// DateFormat is the wire format for range boundaries, matching what the
// Search Console and GA4 APIs expect.
const DateFormat = "2006-01-02"

// Range is an inclusive span of whole days, stored at UTC midnight.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRange builds a Range from two dates, truncating to day boundaries.
func NewRange(start, end time.Time) Range {
	return Range{Start: truncate(start), End: truncate(end)}
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(start, end string) (Range, error) {
	s, err := time.Parse(DateFormat, start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateFormat, end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	r := Range{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks the range boundaries are ordered.
func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("range start %s is after end %s", r.StartString(), r.EndString())
	}
	return nil
}

// Days returns the inclusive length of the range in days.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// StartString returns the start boundary in wire format.
func (r Range) StartString() string { return r.Start.Format(DateFormat) }

// EndString returns the end boundary in wire format.
func (r Range) EndString() string { return r.End.Format(DateFormat) }

func (r Range) String() string {
	return r.StartString() + ".." + r.EndString()
}

// Overlaps reports whether two ranges share at least one day. Overlapping
// current and comparison ranges make change rates hard to interpret, so
// callers log a warning; it is not an error.
func (r Range) Overlaps(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// LastNDays returns the range covering the n days ending yesterday, relative
// to now. Today is excluded since sources report complete days only.
func LastNDays(now time.Time, n int) Range {
	end := truncate(now).AddDate(0, 0, -1)
	return Range{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// ComparisonFor derives the comparison range for a current range and preset.
// PresetPreviousPeriod yields the same-length window ending the day before
// the current range starts; the month/year presets shift the whole window
// back while keeping its length. PresetCustom is the caller's job and is
// rejected here.
func ComparisonFor(current Range, preset Preset) (Range, error) {
	length := current.Days()

	switch preset {
	case PresetPreviousPeriod:
		end := current.Start.AddDate(0, 0, -1)
		return Range{Start: end.AddDate(0, 0, -(length - 1)), End: end}, nil
	case PresetOneMonthBack:
		return shift(current, 0, -1), nil
	case PresetThreeMonthsBack:
		return shift(current, 0, -3), nil
	case PresetSixMonthsBack:
		return shift(current, 0, -6), nil
	case PresetOneYearBack:
		return shift(current, -1, 0), nil
	case PresetCustom:
		return Range{}, fmt.Errorf("custom preset requires explicit comparison dates")
	default:
		return Range{}, fmt.Errorf("unknown comparison preset: %s", preset)
	}
}

// shift moves the range start back by years/months and keeps the length,
// so a month-back comparison of a 28-day window stays 28 days even across
// short months.
func shift(r Range, years, months int) Range {
	start := r.Start.AddDate(years, months, 0)
	return Range{Start: start, End: start.AddDate(0, 0, r.Days()-1)}
}

func truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
