package domain

import (
	"encoding/json"
	"math"
)

// Category names on the CPCB National AQI scale, worst last. "VERY POOR"
// is two words in the published scale and stays that way here; URL paths
// carry it percent-encoded.
const (
	CategoryGood         = "GOOD"
	CategorySatisfactory = "SATISFACTORY"
	CategoryModerate     = "MODERATE"
	CategoryPoor         = "POOR"
	CategoryVeryPoor     = "VERY POOR"
	CategorySevere       = "SEVERE"
)

// CategoryBand is one named severity range on the CPCB scale. Bounds are
// inclusive; the top band is unbounded above (Upper is +Inf).
type CategoryBand struct {
	Name  string
	Lower float64
	Upper float64
}

// bands holds the scale in ascending severity order. Static configuration,
// never modified at runtime.
var bands = []CategoryBand{
	{Name: CategoryGood, Lower: 0, Upper: 50},
	{Name: CategorySatisfactory, Lower: 51, Upper: 100},
	{Name: CategoryModerate, Lower: 101, Upper: 200},
	{Name: CategoryPoor, Lower: 201, Upper: 300},
	{Name: CategoryVeryPoor, Lower: 301, Upper: 400},
	{Name: CategorySevere, Lower: 401, Upper: math.Inf(1)},
}

// Bands returns the six CPCB category bands in ascending severity order.
func Bands() []CategoryBand {
	out := make([]CategoryBand, len(bands))
	copy(out, bands)
	return out
}

// BandNames returns the category names in ascending severity order.
func BandNames() []string {
	names := make([]string, len(bands))
	for i, b := range bands {
		names[i] = b.Name
	}
	return names
}

// BandByName resolves a category name to its band. Names match exactly as
// published (uppercase, "VERY POOR" with a space); anything else returns
// an [InvalidCategoryError] listing the valid names.
func BandByName(name string) (CategoryBand, error) {
	for _, b := range bands {
		if b.Name == name {
			return b, nil
		}
	}
	return CategoryBand{}, &InvalidCategoryError{Name: name, Valid: BandNames()}
}

// BandFor classifies an AQI value into its severity band. Boundaries sit
// halfway between adjacent integer bounds, so 50 is GOOD and 51 is
// SATISFACTORY; published AQI values are integers, making the choice at
// fractional values (anything up to 50.5 stays GOOD) invisible in
// practice. Negative values report false.
func BandFor(aqi float64) (CategoryBand, bool) {
	if aqi < 0 || math.IsNaN(aqi) {
		return CategoryBand{}, false
	}
	switch {
	case aqi <= 50.5:
		return bands[0], true
	case aqi <= 100.5:
		return bands[1], true
	case aqi <= 200.5:
		return bands[2], true
	case aqi <= 300.5:
		return bands[3], true
	case aqi <= 400.5:
		return bands[4], true
	default:
		return bands[5], true
	}
}

// Contains reports whether the value falls inside the band, both bounds
// inclusive. The top band accepts everything at or above its lower bound.
func (b CategoryBand) Contains(aqi float64) bool {
	return aqi >= b.Lower && aqi <= b.Upper
}

// Unbounded reports whether the band has no upper limit.
func (b CategoryBand) Unbounded() bool {
	return math.IsInf(b.Upper, 1)
}

// MarshalJSON renders the band with a null upper bound for the unbounded
// top band, since JSON has no representation for +Inf.
func (b CategoryBand) MarshalJSON() ([]byte, error) {
	var upper *float64
	if !b.Unbounded() {
		u := b.Upper
		upper = &u
	}
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Lower float64  `json:"lower_bound"`
		Upper *float64 `json:"upper_bound"`
	}{Name: b.Name, Lower: b.Lower, Upper: upper})
}
