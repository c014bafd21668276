package domain

import (
	"fmt"
	"strings"
	"time"
)

// monthAbbreviations lists the twelve recognized abbreviations in calendar
// order. Source tables use these in their Month column.
var monthAbbreviations = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthAbbreviations returns the three-letter month abbreviations in
// calendar order, January first.
func MonthAbbreviations() []string {
	out := make([]string, len(monthAbbreviations))
	copy(out, monthAbbreviations)
	return out
}

// ParseMonth resolves a three-letter month abbreviation to a calendar
// month. Matching is case-insensitive and ignores surrounding whitespace.
// Anything that is not one of the twelve abbreviations (full month names,
// numerals, typos) reports false.
func ParseMonth(s string) (time.Month, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jan":
		return time.January, true
	case "feb":
		return time.February, true
	case "mar":
		return time.March, true
	case "apr":
		return time.April, true
	case "may":
		return time.May, true
	case "jun":
		return time.June, true
	case "jul":
		return time.July, true
	case "aug":
		return time.August, true
	case "sep":
		return time.September, true
	case "oct":
		return time.October, true
	case "nov":
		return time.November, true
	case "dec":
		return time.December, true
	}
	return 0, false
}

// Date is a calendar date with day precision. It marshals as "YYYY-MM-DD"
// rather than RFC 3339 so chart payloads stay compact and human-readable.
type Date struct {
	time.Time
}

// NewDate returns the first day of the given month, UTC. Observation dates
// always fall on the first because source tables carry monthly readings.
func NewDate(year int, month time.Month) Date {
	return Date{time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Compare orders dates chronologically, returning -1, 0, or +1.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// Equal reports whether two dates name the same instant.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Observation is one monthly AQI reading at one monitoring location. It is
// the long-format unit produced by melting a wide yearly table: one row
// per (location, month, year) cell.
type Observation struct {
	// Location is the monitoring station column header, source spelling
	// preserved.
	Location string `json:"location"`

	// Month is the source abbreviation as written ("Jan", "JAN", ...).
	Month string `json:"month"`

	// Year is the calendar year the source table covers.
	Year int `json:"year"`

	// AQI is the published index value. Nil means the bulletin carried no
	// reading for this cell.
	AQI *float64 `json:"aqi"`

	// Date is derived from Year and Month: the first of the month, UTC.
	Date Date `json:"date"`
}

// HasAQI reports whether the observation carries a reading.
func (o Observation) HasAQI() bool {
	return o.AQI != nil
}

// Dataset is the canonical long-format table covering every configured
// year, sorted chronologically. Consumers treat it as immutable: views and
// aggregations read it, never write it.
type Dataset struct {
	// Observations holds one row per (location, month, year), sorted by
	// Date; within a date, rows keep source order (year tables in
	// ascending year order, locations in first-seen column order).
	Observations []Observation `json:"observations"`

	// Years lists the calendar years loaded, ascending.
	Years []int `json:"years"`

	// Locations lists every monitoring location seen in any year, in
	// first-seen column order across ascending years.
	Locations []string `json:"locations"`

	// LoadedAt records when the dataset was assembled.
	LoadedAt time.Time `json:"loaded_at"`
}

// WithAQI returns the observations carrying a reading, in dataset order.
func (d *Dataset) WithAQI() []Observation {
	out := make([]Observation, 0, len(d.Observations))
	for _, o := range d.Observations {
		if o.HasAQI() {
			out = append(out, o)
		}
	}
	return out
}
