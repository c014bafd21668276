// Package analytics computes chart-ready aggregates over the canonical
// dataset. Every function treats the dataset as read-only.
package analytics

import (
	"math"
	"slices"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/hydair/aqi-dashboard/internal/domain"
)

// DefaultBinWidth is the histogram bin width in AQI units, matching the
// granularity of the category bands.
const DefaultBinWidth = 50.0

// SeriesPoint is one (date, value) pair, carrying the year so charts can
// split a series per year.
type SeriesPoint struct {
	Date  domain.Date `json:"date"`
	Year  int         `json:"year"`
	Value float64     `json:"value"`
}

// MeanByDate averages the present readings per observation date, in
// chronological order. Dates where no location reported are skipped.
func MeanByDate(ds *domain.Dataset) []SeriesPoint {
	points := make([]SeriesPoint, 0)

	var (
		cur  domain.Date
		year int
		vals []float64
		open bool
	)
	flush := func() {
		if open && len(vals) > 0 {
			points = append(points, SeriesPoint{Date: cur, Year: year, Value: stat.Mean(vals, nil)})
		}
		vals = vals[:0]
	}

	// Observations are date-sorted, so one linear pass groups them.
	for _, o := range ds.Observations {
		if !open || !o.Date.Equal(cur) {
			flush()
			cur, year, open = o.Date, o.Year, true
		}
		if o.HasAQI() {
			vals = append(vals, *o.AQI)
		}
	}
	flush()
	return points
}

// YearlyMean is the average of all present readings in one calendar year.
type YearlyMean struct {
	Year int     `json:"year"`
	Mean float64 `json:"mean"`
}

// YearlyMeans averages readings per year, ascending. Years with no
// readings at all are skipped.
func YearlyMeans(ds *domain.Dataset) []YearlyMean {
	byYear := make(map[int][]float64, len(ds.Years))
	for _, o := range ds.Observations {
		if o.HasAQI() {
			byYear[o.Year] = append(byYear[o.Year], *o.AQI)
		}
	}

	means := make([]YearlyMean, 0, len(ds.Years))
	for _, y := range ds.Years {
		if vals := byYear[y]; len(vals) > 0 {
			means = append(means, YearlyMean{Year: y, Mean: stat.Mean(vals, nil)})
		}
	}
	return means
}

// LocationSeries is one location's raw readings in chronological order.
// Absent readings are skipped, so chart lines show gaps.
type LocationSeries struct {
	Location string        `json:"location"`
	Points   []SeriesPoint `json:"points"`
}

// SeriesByLocation splits the dataset into per-location time series, in
// canonical location order.
func SeriesByLocation(ds *domain.Dataset) []LocationSeries {
	byLoc := make(map[string][]SeriesPoint, len(ds.Locations))
	for _, o := range ds.Observations {
		if !o.HasAQI() {
			continue
		}
		byLoc[o.Location] = append(byLoc[o.Location], SeriesPoint{Date: o.Date, Year: o.Year, Value: *o.AQI})
	}

	out := make([]LocationSeries, 0, len(ds.Locations))
	for _, loc := range ds.Locations {
		if pts := byLoc[loc]; len(pts) > 0 {
			out = append(out, LocationSeries{Location: loc, Points: pts})
		}
	}
	return out
}

// Pivot is a Location x Year matrix of mean AQI. A nil cell means the
// location reported nothing that year.
type Pivot struct {
	Locations []string     `json:"locations"`
	Years     []int        `json:"years"`
	Cells     [][]*float64 `json:"cells"`
}

// LocationYearPivot averages readings per (location, year) cell.
// Locations keep canonical order, years ascending.
func LocationYearPivot(ds *domain.Dataset) Pivot {
	type key struct {
		loc  string
		year int
	}
	byCell := make(map[key][]float64)
	for _, o := range ds.Observations {
		if o.HasAQI() {
			k := key{loc: o.Location, year: o.Year}
			byCell[k] = append(byCell[k], *o.AQI)
		}
	}

	cells := make([][]*float64, len(ds.Locations))
	for i, loc := range ds.Locations {
		cells[i] = make([]*float64, len(ds.Years))
		for j, y := range ds.Years {
			if vals := byCell[key{loc: loc, year: y}]; len(vals) > 0 {
				mean := stat.Mean(vals, nil)
				cells[i][j] = &mean
			}
		}
	}

	return Pivot{
		Locations: slices.Clone(ds.Locations),
		Years:     slices.Clone(ds.Years),
		Cells:     cells,
	}
}

// Correlations is a symmetric Location x Location matrix of Pearson
// correlation coefficients. A nil cell means the pair shares fewer than
// two dates with readings, or one series is flat.
type Correlations struct {
	Locations []string     `json:"locations"`
	Cells     [][]*float64 `json:"cells"`
}

// CorrelationMatrix correlates each pair of locations over the dates
// where both have a reading (pairwise-complete observations).
func CorrelationMatrix(ds *domain.Dataset) Correlations {
	byLoc := make(map[string]map[int64]float64, len(ds.Locations))
	for _, o := range ds.Observations {
		if !o.HasAQI() {
			continue
		}
		m := byLoc[o.Location]
		if m == nil {
			m = make(map[int64]float64)
			byLoc[o.Location] = m
		}
		m[o.Date.Unix()] = *o.AQI
	}

	n := len(ds.Locations)
	cells := make([][]*float64, n)
	for i := range cells {
		cells[i] = make([]*float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r, ok := pairCorrelation(byLoc[ds.Locations[i]], byLoc[ds.Locations[j]])
			if !ok {
				continue
			}
			v := r
			cells[i][j] = &v
			if i != j {
				w := r
				cells[j][i] = &w
			}
		}
	}

	return Correlations{Locations: slices.Clone(ds.Locations), Cells: cells}
}

// pairCorrelation computes Pearson correlation over the dates both series
// cover. Fewer than two shared dates, or a flat series, has no defined
// correlation.
func pairCorrelation(a, b map[int64]float64) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	shared := make([]int64, 0, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			shared = append(shared, k)
		}
	}
	if len(shared) < 2 {
		return 0, false
	}
	slices.Sort(shared)

	xs := make([]float64, len(shared))
	ys := make([]float64, len(shared))
	for i, k := range shared {
		xs[i] = a[k]
		ys[i] = b[k]
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// BoxStats is a five-number summary plus mean, Tukey whiskers at 1.5 IQR,
// and the points beyond them.
type BoxStats struct {
	Label       string    `json:"label"`
	Count       int       `json:"count"`
	Mean        float64   `json:"mean"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Outliers    []float64 `json:"outliers"`
}

// Distribution summarizes values as a box plot would draw them. Quartiles
// interpolate between samples (stat.LinInterp); whiskers reach the
// outermost samples within the 1.5 IQR fences. Reports false for an
// empty group.
func Distribution(label string, values []float64) (BoxStats, bool) {
	if len(values) == 0 {
		return BoxStats{}, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	median := stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	loFence := q1 - 1.5*(q3-q1)
	hiFence := q3 + 1.5*(q3-q1)

	b := BoxStats{
		Label:    label,
		Count:    len(sorted),
		Mean:     stat.Mean(sorted, nil),
		Min:      sorted[0],
		Q1:       q1,
		Median:   median,
		Q3:       q3,
		Max:      sorted[len(sorted)-1],
		Outliers: []float64{},
	}
	// Whiskers sit on the outermost samples inside the fences. The fences
	// span the box, so at least one sample is always in range.
	inFence := false
	for _, v := range sorted {
		if v < loFence || v > hiFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if !inFence {
			b.WhiskerLow = v
			inFence = true
		}
		b.WhiskerHigh = v
	}
	return b, true
}

// BoxByYear summarizes the AQI distribution per year, ascending. Years
// with no readings are skipped.
func BoxByYear(ds *domain.Dataset) []BoxStats {
	byYear := make(map[int][]float64, len(ds.Years))
	for _, o := range ds.Observations {
		if o.HasAQI() {
			byYear[o.Year] = append(byYear[o.Year], *o.AQI)
		}
	}

	out := make([]BoxStats, 0, len(ds.Years))
	for _, y := range ds.Years {
		if b, ok := Distribution(strconv.Itoa(y), byYear[y]); ok {
			out = append(out, b)
		}
	}
	return out
}

// BoxByLocation summarizes the AQI distribution per location, canonical
// order. Locations with no readings are skipped.
func BoxByLocation(ds *domain.Dataset) []BoxStats {
	byLoc := make(map[string][]float64, len(ds.Locations))
	for _, o := range ds.Observations {
		if o.HasAQI() {
			byLoc[o.Location] = append(byLoc[o.Location], *o.AQI)
		}
	}

	out := make([]BoxStats, 0, len(ds.Locations))
	for _, loc := range ds.Locations {
		if b, ok := Distribution(loc, byLoc[loc]); ok {
			out = append(out, b)
		}
	}
	return out
}

// SeasonalBox is one (month, year) group of the seasonal box chart.
// Month is the canonical abbreviation regardless of source spelling.
type SeasonalBox struct {
	Month string   `json:"month"`
	Year  int      `json:"year"`
	Box   BoxStats `json:"box"`
}

// BoxByMonth summarizes the AQI distribution per (month, year) pair,
// months in calendar order, years ascending within a month. Pairs with no
// readings are skipped.
func BoxByMonth(ds *domain.Dataset) []SeasonalBox {
	type key struct {
		month time.Month
		year  int
	}
	byCell := make(map[key][]float64)
	for _, o := range ds.Observations {
		if !o.HasAQI() {
			continue
		}
		m, ok := domain.ParseMonth(o.Month)
		if !ok {
			continue
		}
		k := key{month: m, year: o.Year}
		byCell[k] = append(byCell[k], *o.AQI)
	}

	abbrs := domain.MonthAbbreviations()
	out := make([]SeasonalBox, 0, len(byCell))
	for m := time.January; m <= time.December; m++ {
		for _, y := range ds.Years {
			vals := byCell[key{month: m, year: y}]
			if b, ok := Distribution(abbrs[int(m)-1], vals); ok {
				out = append(out, SeasonalBox{Month: abbrs[int(m)-1], Year: y, Box: b})
			}
		}
	}
	return out
}

// HistogramBin is one fixed-width bin: [Lower, Upper) with Count values.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// LocationHistogram is one location's binned AQI counts.
type LocationHistogram struct {
	Location string         `json:"location"`
	Bins     []HistogramBin `json:"bins"`
}

// HistogramCounts bins each location's readings into fixed-width bins
// starting at zero, with edges shared across locations so the series
// overlay. Negative readings sit outside the AQI scale and are not
// binned. Locations with no readings are skipped.
func HistogramCounts(ds *domain.Dataset, width float64) []LocationHistogram {
	if width <= 0 {
		width = DefaultBinWidth
	}

	byLoc := make(map[string][]float64, len(ds.Locations))
	max := 0.0
	any := false
	for _, o := range ds.Observations {
		if !o.HasAQI() || *o.AQI < 0 {
			continue
		}
		byLoc[o.Location] = append(byLoc[o.Location], *o.AQI)
		if *o.AQI > max {
			max = *o.AQI
		}
		any = true
	}
	if !any {
		return nil
	}

	// The top divider must strictly exceed the largest value.
	nbins := int(max/width) + 1
	dividers := make([]float64, nbins+1)
	for i := range dividers {
		dividers[i] = width * float64(i)
	}

	out := make([]LocationHistogram, 0, len(ds.Locations))
	for _, loc := range ds.Locations {
		vals := byLoc[loc]
		if len(vals) == 0 {
			continue
		}
		slices.Sort(vals)

		counts := stat.Histogram(make([]float64, nbins), dividers, vals, nil)
		bins := make([]HistogramBin, nbins)
		for i := range bins {
			bins[i] = HistogramBin{
				Lower: dividers[i],
				Upper: dividers[i+1],
				Count: int(math.Round(counts[i])),
			}
		}
		out = append(out, LocationHistogram{Location: loc, Bins: bins})
	}
	return out
}
