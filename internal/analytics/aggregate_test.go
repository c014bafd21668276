package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydair/aqi-dashboard/internal/analytics"
	"github.com/hydair/aqi-dashboard/internal/domain"
)

// --- helpers ---

func v(f float64) *float64 {
	return &f
}

func obs(loc, month string, year int, aqi *float64) domain.Observation {
	m, ok := domain.ParseMonth(month)
	if !ok {
		panic("bad month in test fixture: " + month)
	}
	return domain.Observation{
		Location: loc,
		Month:    month,
		Year:     year,
		AQI:      aqi,
		Date:     domain.NewDate(year, m),
	}
}

// testDataset covers two locations over two years with gaps: Riverside
// has no Feb 2016 reading and no 2017 rows at all.
func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(40)),
			obs("Riverside", "Jan", 2016, v(60)),
			obs("Central", "Feb", 2016, v(120)),
			obs("Riverside", "Feb", 2016, nil),
			obs("Central", "Jan", 2017, v(80)),
			obs("Riverside", "Jan", 2017, nil),
			obs("Central", "Feb", 2017, v(100)),
			obs("Riverside", "Feb", 2017, nil),
		},
		Years:     []int{2016, 2017},
		Locations: []string{"Central", "Riverside"},
		LoadedAt:  time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC),
	}
}

// --- tests ---

func TestMeanByDate(t *testing.T) {
	pts := analytics.MeanByDate(testDataset())
	require.Len(t, pts, 4)

	// Jan 2016 averages Central 40 and Riverside 60.
	assert.True(t, pts[0].Date.Equal(domain.NewDate(2016, time.January)))
	assert.Equal(t, 2016, pts[0].Year)
	assert.InDelta(t, 50, pts[0].Value, 1e-9)

	// Feb 2016 has only Central's 120; the absent reading is skipped, not
	// treated as zero.
	assert.True(t, pts[1].Date.Equal(domain.NewDate(2016, time.February)))
	assert.InDelta(t, 120, pts[1].Value, 1e-9)

	assert.InDelta(t, 80, pts[2].Value, 1e-9)
	assert.InDelta(t, 100, pts[3].Value, 1e-9)
}

func TestMeanByDate_SkipsEmptyDates(t *testing.T) {
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(40)),
			obs("Central", "Feb", 2016, nil),
			obs("Riverside", "Feb", 2016, nil),
		},
		Years:     []int{2016},
		Locations: []string{"Central", "Riverside"},
	}

	pts := analytics.MeanByDate(ds)
	require.Len(t, pts, 1)
	assert.True(t, pts[0].Date.Equal(domain.NewDate(2016, time.January)))
}

func TestYearlyMeans(t *testing.T) {
	means := analytics.YearlyMeans(testDataset())
	require.Len(t, means, 2)

	assert.Equal(t, 2016, means[0].Year)
	assert.InDelta(t, (40.0+60+120)/3, means[0].Mean, 1e-9)
	assert.Equal(t, 2017, means[1].Year)
	assert.InDelta(t, 90, means[1].Mean, 1e-9)
}

func TestYearlyMeans_SkipsEmptyYear(t *testing.T) {
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(40)),
			obs("Central", "Jan", 2017, nil),
		},
		Years:     []int{2016, 2017},
		Locations: []string{"Central"},
	}

	means := analytics.YearlyMeans(ds)
	require.Len(t, means, 1)
	assert.Equal(t, 2016, means[0].Year)
}

func TestSeriesByLocation(t *testing.T) {
	series := analytics.SeriesByLocation(testDataset())
	require.Len(t, series, 2)

	assert.Equal(t, "Central", series[0].Location)
	require.Len(t, series[0].Points, 4)
	assert.InDelta(t, 40, series[0].Points[0].Value, 1e-9)
	assert.InDelta(t, 100, series[0].Points[3].Value, 1e-9)

	// Riverside's absent readings leave gaps rather than zeros.
	assert.Equal(t, "Riverside", series[1].Location)
	require.Len(t, series[1].Points, 1)
	assert.InDelta(t, 60, series[1].Points[0].Value, 1e-9)
}

func TestLocationYearPivot(t *testing.T) {
	p := analytics.LocationYearPivot(testDataset())

	assert.Equal(t, []string{"Central", "Riverside"}, p.Locations)
	assert.Equal(t, []int{2016, 2017}, p.Years)
	require.Len(t, p.Cells, 2)

	require.NotNil(t, p.Cells[0][0])
	assert.InDelta(t, 80, *p.Cells[0][0], 1e-9) // Central 2016: (40+120)/2
	require.NotNil(t, p.Cells[0][1])
	assert.InDelta(t, 90, *p.Cells[0][1], 1e-9) // Central 2017: (80+100)/2
	require.NotNil(t, p.Cells[1][0])
	assert.InDelta(t, 60, *p.Cells[1][0], 1e-9) // Riverside 2016: lone reading

	// Riverside reported nothing in 2017.
	assert.Nil(t, p.Cells[1][1])
}

func TestCorrelationMatrix_LinearSeries(t *testing.T) {
	// Riverside tracks Central exactly (r=1); Industrial moves inversely
	// (r=-1). Three shared dates each.
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(40)),
			obs("Riverside", "Jan", 2016, v(83)),
			obs("Industrial", "Jan", 2016, v(300)),
			obs("Central", "Feb", 2016, v(60)),
			obs("Riverside", "Feb", 2016, v(123)),
			obs("Industrial", "Feb", 2016, v(260)),
			obs("Central", "Mar", 2016, v(90)),
			obs("Riverside", "Mar", 2016, v(183)),
			obs("Industrial", "Mar", 2016, v(200)),
		},
		Years:     []int{2016},
		Locations: []string{"Central", "Riverside", "Industrial"},
	}

	c := analytics.CorrelationMatrix(ds)
	assert.Equal(t, []string{"Central", "Riverside", "Industrial"}, c.Locations)

	// Diagonal is 1 for any non-flat series.
	for i := range c.Locations {
		require.NotNil(t, c.Cells[i][i])
		assert.InDelta(t, 1, *c.Cells[i][i], 1e-9)
	}

	require.NotNil(t, c.Cells[0][1])
	assert.InDelta(t, 1, *c.Cells[0][1], 1e-9)
	require.NotNil(t, c.Cells[0][2])
	assert.InDelta(t, -1, *c.Cells[0][2], 1e-9)

	// Symmetry.
	assert.InDelta(t, *c.Cells[0][1], *c.Cells[1][0], 1e-12)
	assert.InDelta(t, *c.Cells[0][2], *c.Cells[2][0], 1e-12)
}

func TestCorrelationMatrix_InsufficientOverlap(t *testing.T) {
	// The two locations share only one date with readings on both sides.
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(40)),
			obs("Riverside", "Jan", 2016, v(60)),
			obs("Central", "Feb", 2016, v(50)),
			obs("Riverside", "Feb", 2016, nil),
			obs("Central", "Mar", 2016, nil),
			obs("Riverside", "Mar", 2016, v(70)),
		},
		Years:     []int{2016},
		Locations: []string{"Central", "Riverside"},
	}

	c := analytics.CorrelationMatrix(ds)
	assert.Nil(t, c.Cells[0][1])
	assert.Nil(t, c.Cells[1][0])
	// Each series alone still correlates with itself.
	require.NotNil(t, c.Cells[0][0])
	assert.InDelta(t, 1, *c.Cells[0][0], 1e-9)
}

func TestCorrelationMatrix_FlatSeriesUndefined(t *testing.T) {
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(100)),
			obs("Riverside", "Jan", 2016, v(40)),
			obs("Central", "Feb", 2016, v(100)),
			obs("Riverside", "Feb", 2016, v(80)),
		},
		Years:     []int{2016},
		Locations: []string{"Central", "Riverside"},
	}

	c := analytics.CorrelationMatrix(ds)
	// A flat series has zero variance, so nothing correlates with it, not
	// even itself.
	assert.Nil(t, c.Cells[0][0])
	assert.Nil(t, c.Cells[0][1])
	assert.Nil(t, c.Cells[1][0])
	require.NotNil(t, c.Cells[1][1])
}

func TestDistribution(t *testing.T) {
	b, ok := analytics.Distribution("2016", []float64{16, 10, 14, 12, 500})
	require.True(t, ok)

	assert.Equal(t, "2016", b.Label)
	assert.Equal(t, 5, b.Count)
	assert.InDelta(t, 110.4, b.Mean, 1e-9)
	assert.InDelta(t, 10, b.Min, 1e-9)
	assert.InDelta(t, 500, b.Max, 1e-9)

	// Quartiles sit inside the data under any interpolation convention.
	assert.LessOrEqual(t, b.Min, b.Q1)
	assert.LessOrEqual(t, b.Q1, b.Median)
	assert.LessOrEqual(t, b.Median, b.Q3)
	assert.LessOrEqual(t, b.Q3, b.Max)
	assert.LessOrEqual(t, b.Q3, 16.0)

	// 500 is far beyond any 1.5 IQR fence of the tight cluster.
	assert.Equal(t, []float64{500}, b.Outliers)
	assert.InDelta(t, 10, b.WhiskerLow, 1e-9)
	assert.InDelta(t, 16, b.WhiskerHigh, 1e-9)
}

// When everything below the box is fenced out, the lower whisker sits on
// the smallest surviving sample, not on the interpolated quartile.
func TestDistribution_WhiskersSnapToSamples(t *testing.T) {
	b, ok := analytics.Distribution("x", []float64{0, 100, 101, 102})
	require.True(t, ok)

	assert.Equal(t, []float64{0}, b.Outliers)
	assert.Greater(t, b.WhiskerLow, b.Q1)
	assert.InDelta(t, 100, b.WhiskerLow, 1e-9)
	assert.InDelta(t, 102, b.WhiskerHigh, 1e-9)
}

func TestDistribution_SingleValue(t *testing.T) {
	b, ok := analytics.Distribution("x", []float64{42})
	require.True(t, ok)

	assert.Equal(t, 1, b.Count)
	assert.InDelta(t, 42, b.Min, 1e-9)
	assert.InDelta(t, 42, b.Q1, 1e-9)
	assert.InDelta(t, 42, b.Median, 1e-9)
	assert.InDelta(t, 42, b.Q3, 1e-9)
	assert.InDelta(t, 42, b.Max, 1e-9)
	assert.Empty(t, b.Outliers)
}

func TestDistribution_Empty(t *testing.T) {
	_, ok := analytics.Distribution("x", nil)
	assert.False(t, ok)
}

func TestBoxByYear(t *testing.T) {
	boxes := analytics.BoxByYear(testDataset())
	require.Len(t, boxes, 2)

	assert.Equal(t, "2016", boxes[0].Label)
	assert.Equal(t, 3, boxes[0].Count)
	assert.Equal(t, "2017", boxes[1].Label)
	assert.Equal(t, 2, boxes[1].Count)
}

func TestBoxByLocation(t *testing.T) {
	boxes := analytics.BoxByLocation(testDataset())
	require.Len(t, boxes, 2)

	assert.Equal(t, "Central", boxes[0].Label)
	assert.Equal(t, 4, boxes[0].Count)
	assert.Equal(t, "Riverside", boxes[1].Label)
	assert.Equal(t, 1, boxes[1].Count)
}

func TestBoxByMonth(t *testing.T) {
	boxes := analytics.BoxByMonth(testDataset())
	require.Len(t, boxes, 4)

	// Calendar month order, years ascending within a month; the pairs
	// with no readings (Riverside-only cells) are absent.
	assert.Equal(t, "Jan", boxes[0].Month)
	assert.Equal(t, 2016, boxes[0].Year)
	assert.Equal(t, 2, boxes[0].Box.Count)
	assert.Equal(t, "Jan", boxes[1].Month)
	assert.Equal(t, 2017, boxes[1].Year)
	assert.Equal(t, "Feb", boxes[2].Month)
	assert.Equal(t, 2016, boxes[2].Year)
	assert.Equal(t, 1, boxes[2].Box.Count)
	assert.Equal(t, "Feb", boxes[3].Month)
	assert.Equal(t, 2017, boxes[3].Year)
}

func TestBoxByMonth_NormalizesSpelling(t *testing.T) {
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "JAN", 2016, v(40)),
			obs("Central", "jan", 2017, v(60)),
		},
		Years:     []int{2016, 2017},
		Locations: []string{"Central"},
	}

	boxes := analytics.BoxByMonth(ds)
	require.Len(t, boxes, 2)
	assert.Equal(t, "Jan", boxes[0].Month)
	assert.Equal(t, "Jan", boxes[1].Month)
}

func TestHistogramCounts(t *testing.T) {
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(0)),
			obs("Central", "Feb", 2016, v(49)),
			obs("Central", "Mar", 2016, v(50)),
			obs("Central", "Apr", 2016, v(120)),
			obs("Riverside", "Jan", 2016, v(260)),
			obs("Riverside", "Feb", 2016, nil),
		},
		Years:     []int{2016},
		Locations: []string{"Central", "Riverside"},
	}

	hists := analytics.HistogramCounts(ds, 50)
	require.Len(t, hists, 2)

	// Shared edges: the global maximum 260 forces six bins up to 300 for
	// every location.
	central := hists[0]
	assert.Equal(t, "Central", central.Location)
	require.Len(t, central.Bins, 6)
	assert.InDelta(t, 0, central.Bins[0].Lower, 1e-9)
	assert.InDelta(t, 50, central.Bins[0].Upper, 1e-9)
	assert.InDelta(t, 300, central.Bins[5].Upper, 1e-9)

	// Bins are half-open [lower, upper): 0 and 49 in the first, 50 in the
	// second.
	assert.Equal(t, 2, central.Bins[0].Count)
	assert.Equal(t, 1, central.Bins[1].Count)
	assert.Equal(t, 1, central.Bins[2].Count)
	assert.Equal(t, 0, central.Bins[5].Count)

	riverside := hists[1]
	require.Len(t, riverside.Bins, 6)
	assert.Equal(t, 1, riverside.Bins[5].Count)
}

func TestHistogramCounts_EmptyDataset(t *testing.T) {
	ds := &domain.Dataset{
		Observations: []domain.Observation{obs("Central", "Jan", 2016, nil)},
		Years:        []int{2016},
		Locations:    []string{"Central"},
	}
	assert.Nil(t, analytics.HistogramCounts(ds, 50))
}

func TestHistogramCounts_ExactMultipleOfWidth(t *testing.T) {
	// A maximum on a bin edge still lands inside the final bin.
	ds := &domain.Dataset{
		Observations: []domain.Observation{
			obs("Central", "Jan", 2016, v(100)),
		},
		Years:     []int{2016},
		Locations: []string{"Central"},
	}

	hists := analytics.HistogramCounts(ds, 50)
	require.Len(t, hists, 1)
	require.Len(t, hists[0].Bins, 3)
	assert.Equal(t, 1, hists[0].Bins[2].Count)
	assert.InDelta(t, 150, hists[0].Bins[2].Upper, 1e-9)
}
