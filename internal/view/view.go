// Package view renders the dashboard's chart views over a loaded dataset.
//
// The view set is closed: every dashboard page maps to one named view and
// Render dispatches over that enumeration. Views read the dataset and
// never mutate it, so a single cached dataset can serve concurrent
// requests.
package view

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hydair/aqi-dashboard/internal/analytics"
	"github.com/hydair/aqi-dashboard/internal/domain"
)

// View names, in dashboard page order.
const (
	Overview            = "overview"
	AnnualTrends        = "annual-trends"
	SeasonalPatterns    = "seasonal-patterns"
	MonthlyVariations   = "monthly-variations"
	LocationComparison  = "location-comparison"
	PollutionHotspots   = "pollution-hotspots"
	TimeSeries          = "time-series"
	CorrelationAnalysis = "correlation-analysis"
	AQIDistribution     = "aqi-distribution"
	YearlyAverageTrend  = "yearly-average-trend"
	CategoryAnalysis    = "category-analysis"
)

// ErrUnknownView reports a view name outside the registry.
var ErrUnknownView = errors.New("unknown view")

// ErrCategoryRequired reports a category-analysis request without a band
// selection.
var ErrCategoryRequired = errors.New("category selection required")

var registry = []Descriptor{
	{Name: Overview, Kind: KindSummary, Title: "Overview"},
	{Name: AnnualTrends, Kind: KindBox, Title: "Annual Air Quality Trends"},
	{Name: SeasonalPatterns, Kind: KindBox, Title: "Seasonal Air Quality Patterns"},
	{Name: MonthlyVariations, Kind: KindLine, Title: "Monthly Air Quality Variations"},
	{Name: LocationComparison, Kind: KindBox, Title: "Air Quality Comparison Across Locations"},
	{Name: PollutionHotspots, Kind: KindHeatmap, Title: "Pollution Hotspots Heatmap"},
	{Name: TimeSeries, Kind: KindLine, Title: "Air Quality Time Series by Location"},
	{Name: CorrelationAnalysis, Kind: KindHeatmap, Title: "Correlation Heatmap of Air Quality Across Locations"},
	{Name: AQIDistribution, Kind: KindHistogram, Title: "Distribution of AQI Values by Location"},
	{Name: YearlyAverageTrend, Kind: KindLine, Title: "Yearly Average AQI Trend"},
	{Name: CategoryAnalysis, Kind: KindBar, Title: "AQI Category Analysis"},
}

// captions carry the reading guidance shown under each chart.
var captions = map[string]string{
	AnnualTrends:        "This box plot visualizes the distribution of AQI values for each year. Observe the median (middle line), quartiles (box edges), and outliers (points outside the whiskers) to understand how air quality has changed over the years.",
	SeasonalPatterns:    "This box plot displays the variation in AQI across different months, with each year represented by a different color. Look for patterns or trends that repeat annually, indicating potential seasonal influences on air quality.",
	MonthlyVariations:   "This line graph illustrates the average monthly AQI values over time. It helps visualize how air quality fluctuates throughout the year and identify periods with higher or lower pollution levels.",
	LocationComparison:  "This box plot compares the distribution of AQI values for different locations within Hyderabad. Analyze the median, quartiles, and outliers to identify locations with better or worse air quality.",
	PollutionHotspots:   "This heatmap provides a visual representation of average AQI levels for different locations across the years. Darker shades indicate higher pollution levels, making it easy to identify potential hotspots.",
	TimeSeries:          "This interactive line graph displays the AQI values for each location over time. Use the legend to select specific locations and observe how their air quality has evolved.",
	CorrelationAnalysis: "This correlation heatmap visualizes the relationships between AQI values at different locations. Positive correlations (closer to 1, brighter shades) suggest similar air quality trends, while negative correlations (closer to -1, darker shades) indicate inverse relationships.",
	AQIDistribution:     "This histogram shows the frequency distribution of AQI values for each location. Analyze the shape, center, and spread of the distributions to understand the typical AQI range and potential outliers for different areas.",
	YearlyAverageTrend:  "This line graph depicts the overall trend in average AQI values over the years. Observe whether there's an increasing, decreasing, or fluctuating trend, indicating potential long-term changes in air quality.",
	CategoryAnalysis:    "Select an AQI category to see the distribution of that category across different locations and years. The table shows the specific months and years when the selected category was observed.",
}

// Selection carries per-view parameters. Only category-analysis takes
// one today: the band name to filter by.
type Selection struct {
	Category string
}

// Views returns the registry in page order.
func Views() []Descriptor {
	return slices.Clone(registry)
}

// Names returns the registered view names in page order.
func Names() []string {
	names := make([]string, len(registry))
	for i, d := range registry {
		names[i] = d.Name
	}
	return names
}

// Lookup finds a view descriptor by name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Render builds the chart for the named view. Unknown names fail with
// ErrUnknownView; category-analysis without a selection fails with
// ErrCategoryRequired, and an unrecognized band propagates
// domain.InvalidCategoryError.
func Render(name string, ds *domain.Dataset, sel Selection) (*ChartSpec, error) {
	switch name {
	case Overview:
		return renderOverview(ds), nil
	case AnnualTrends:
		return renderAnnualTrends(ds), nil
	case SeasonalPatterns:
		return renderSeasonalPatterns(ds), nil
	case MonthlyVariations:
		return renderMonthlyVariations(ds), nil
	case LocationComparison:
		return renderLocationComparison(ds), nil
	case PollutionHotspots:
		return renderPollutionHotspots(ds), nil
	case TimeSeries:
		return renderTimeSeries(ds), nil
	case CorrelationAnalysis:
		return renderCorrelationAnalysis(ds), nil
	case AQIDistribution:
		return renderAQIDistribution(ds), nil
	case YearlyAverageTrend:
		return renderYearlyAverageTrend(ds), nil
	case CategoryAnalysis:
		return renderCategoryAnalysis(ds, sel)
	default:
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownView, name, strings.Join(Names(), ", "))
	}
}

func newSpec(name, caption string) *ChartSpec {
	d, _ := Lookup(name)
	return &ChartSpec{
		View:        d.Name,
		Kind:        d.Kind,
		Title:       d.Title,
		Caption:     caption,
		GeneratedAt: domain.Now(),
	}
}

func renderOverview(ds *domain.Dataset) *ChartSpec {
	s := newSpec(Overview, overviewCaption(ds))

	sum := &SummaryPayload{
		Years:        slices.Clone(ds.Years),
		Locations:    slices.Clone(ds.Locations),
		Observations: len(ds.Observations),
		LoadedAt:     ds.LoadedAt,
	}
	for _, o := range ds.Observations {
		if o.HasAQI() {
			sum.WithReadings++
		}
	}
	if n := len(ds.Observations); n > 0 {
		first, last := ds.Observations[0].Date, ds.Observations[n-1].Date
		sum.FirstDate, sum.LastDate = &first, &last
	}
	s.Summary = sum
	return s
}

func overviewCaption(ds *domain.Dataset) string {
	if len(ds.Years) == 0 {
		return "This dashboard provides insights into air quality trends in Hyderabad. Use the views index to navigate through the different types of analysis."
	}
	return fmt.Sprintf(
		"This dashboard provides insights into air quality trends in Hyderabad from %d to %d. Use the views index to navigate through the different types of analysis.",
		ds.Years[0], ds.Years[len(ds.Years)-1],
	)
}

func renderAnnualTrends(ds *domain.Dataset) *ChartSpec {
	s := newSpec(AnnualTrends, captions[AnnualTrends])
	s.XLabel, s.YLabel = "Year", "AQI"
	s.Boxes = analytics.BoxByYear(ds)
	return s
}

func renderSeasonalPatterns(ds *domain.Dataset) *ChartSpec {
	s := newSpec(SeasonalPatterns, captions[SeasonalPatterns])
	s.XLabel, s.YLabel = "Month", "AQI"
	s.Seasonal = analytics.BoxByMonth(ds)
	return s
}

func renderMonthlyVariations(ds *domain.Dataset) *ChartSpec {
	s := newSpec(MonthlyVariations, captions[MonthlyVariations])
	s.XLabel, s.YLabel = "Date", "AQI"

	byYear := make(map[int][]LinePoint, len(ds.Years))
	for _, p := range analytics.MeanByDate(ds) {
		byYear[p.Year] = append(byYear[p.Year], LinePoint{X: p.Date.String(), Value: p.Value})
	}
	for _, y := range ds.Years {
		if pts := byYear[y]; len(pts) > 0 {
			s.Lines = append(s.Lines, LineSeries{Name: strconv.Itoa(y), Points: pts})
		}
	}
	return s
}

func renderLocationComparison(ds *domain.Dataset) *ChartSpec {
	s := newSpec(LocationComparison, captions[LocationComparison])
	s.XLabel, s.YLabel = "Location", "AQI"
	s.Boxes = analytics.BoxByLocation(ds)
	return s
}

func renderPollutionHotspots(ds *domain.Dataset) *ChartSpec {
	s := newSpec(PollutionHotspots, captions[PollutionHotspots])
	s.XLabel, s.YLabel = "Year", "Location"

	p := analytics.LocationYearPivot(ds)
	s.Heatmap = &HeatmapPayload{
		Rows:    p.Locations,
		Columns: yearLabels(p.Years),
		Cells:   p.Cells,
	}
	return s
}

func renderTimeSeries(ds *domain.Dataset) *ChartSpec {
	s := newSpec(TimeSeries, captions[TimeSeries])
	s.XLabel, s.YLabel = "Date", "AQI"

	for _, ls := range analytics.SeriesByLocation(ds) {
		pts := make([]LinePoint, len(ls.Points))
		for i, p := range ls.Points {
			pts[i] = LinePoint{X: p.Date.String(), Value: p.Value}
		}
		s.Lines = append(s.Lines, LineSeries{Name: ls.Location, Points: pts})
	}
	return s
}

func renderCorrelationAnalysis(ds *domain.Dataset) *ChartSpec {
	s := newSpec(CorrelationAnalysis, captions[CorrelationAnalysis])
	s.XLabel, s.YLabel = "Location", "Location"

	c := analytics.CorrelationMatrix(ds)
	s.Heatmap = &HeatmapPayload{
		Rows:    c.Locations,
		Columns: slices.Clone(c.Locations),
		Cells:   c.Cells,
	}
	return s
}

func renderAQIDistribution(ds *domain.Dataset) *ChartSpec {
	s := newSpec(AQIDistribution, captions[AQIDistribution])
	s.XLabel, s.YLabel = "AQI", "Count"
	s.Histograms = analytics.HistogramCounts(ds, analytics.DefaultBinWidth)
	return s
}

func renderYearlyAverageTrend(ds *domain.Dataset) *ChartSpec {
	s := newSpec(YearlyAverageTrend, captions[YearlyAverageTrend])
	s.XLabel, s.YLabel = "Year", "AQI"

	means := analytics.YearlyMeans(ds)
	if len(means) == 0 {
		return s
	}
	pts := make([]LinePoint, len(means))
	for i, m := range means {
		pts[i] = LinePoint{X: strconv.Itoa(m.Year), Value: m.Mean}
	}
	s.Lines = []LineSeries{{Name: "Mean AQI", Points: pts}}
	return s
}

func renderCategoryAnalysis(ds *domain.Dataset, sel Selection) (*ChartSpec, error) {
	if strings.TrimSpace(sel.Category) == "" {
		return nil, fmt.Errorf("%w (valid: %s)", ErrCategoryRequired, strings.Join(domain.BandNames(), ", "))
	}
	report, err := analytics.Categorize(ds, sel.Category)
	if err != nil {
		return nil, err
	}

	s := newSpec(CategoryAnalysis, captions[CategoryAnalysis])
	s.XLabel, s.YLabel = "Location", "Observations"
	s.Category = report
	return s, nil
}

func yearLabels(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
