package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/hydair/aqi-dashboard/internal/domain"
	"github.com/hydair/aqi-dashboard/internal/observability"
)

// Reserved frame columns; everything else names a monitoring location.
const (
	monthColumn = "Month"
	yearColumn  = "Year"
)

// Loader assembles the canonical long-format dataset from per-year wide
// tables: read each year, tag it, combine column-wise, melt, sort.
type Loader struct {
	dir     string
	pattern string
	years   []int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader over the given year range. The pattern must
// contain one %d verb, substituted with the calendar year.
func NewLoader(dir, pattern string, years []int, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	sorted := slices.Clone(years)
	slices.Sort(sorted)
	return &Loader{
		dir:     dir,
		pattern: pattern,
		years:   sorted,
		logger:  logger,
		metrics: metrics,
	}
}

// yearSpan records which rows of the combined frame came from which
// year's table, so errors can name the source row.
type yearSpan struct {
	year  int
	path  string
	start int
	rows  int
}

// Load reads every configured year, combines the tables, melts to long
// format, and sorts chronologically. Any missing or malformed source
// aborts the whole load; there are no partial datasets.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()
	l.metrics.DatasetLoads.Inc()

	ds, err := l.load(ctx)
	if err != nil {
		l.metrics.DatasetLoadFailures.Inc()
		return nil, err
	}

	l.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	l.metrics.ObservationsLoaded.Set(float64(len(ds.Observations)))
	l.logger.Info("dataset loaded",
		"years", len(ds.Years),
		"locations", len(ds.Locations),
		"observations", len(ds.Observations),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (l *Loader) load(ctx context.Context) (*domain.Dataset, error) {
	combined, spans, err := l.combine(ctx)
	if err != nil {
		return nil, err
	}

	obs, err := melt(combined, spans)
	if err != nil {
		return nil, err
	}

	// Stable sort: within a date, rows keep combined-frame order (years
	// ascending, locations in first-seen column order).
	slices.SortStableFunc(obs, func(a, b domain.Observation) int {
		return a.Date.Compare(b.Date)
	})

	return &domain.Dataset{
		Observations: obs,
		Years:        slices.Clone(l.years),
		Locations:    locationColumns(combined),
		LoadedAt:     domain.Now(),
	}, nil
}

// combine reads each year's table, tags it with a Year column, and
// concatenates. Concat unions columns, so a location absent from some
// year gets NA cells for that year's rows.
func (l *Loader) combine(ctx context.Context) (dataframe.DataFrame, []yearSpan, error) {
	var combined dataframe.DataFrame
	first := true
	spans := make([]yearSpan, 0, len(l.years))
	offset := 0

	for _, year := range l.years {
		if err := ctx.Err(); err != nil {
			return dataframe.DataFrame{}, nil, err
		}

		path := filepath.Join(l.dir, fmt.Sprintf(l.pattern, year))
		df, err := readTable(path)
		if err != nil {
			return dataframe.DataFrame{}, nil, &domain.MissingSourceError{Year: year, Path: path, Err: err}
		}
		if !slices.Contains(df.Names(), monthColumn) {
			return dataframe.DataFrame{}, nil, &domain.MissingSourceError{
				Year: year, Path: path, Err: errors.New(`missing "Month" column`),
			}
		}

		tags := make([]int, df.Nrow())
		for i := range tags {
			tags[i] = year
		}
		df = df.Mutate(series.New(tags, series.Int, yearColumn))
		if df.Err != nil {
			return dataframe.DataFrame{}, nil, &domain.MissingSourceError{Year: year, Path: path, Err: df.Err}
		}

		if first {
			combined = df
			first = false
		} else {
			combined = combined.Concat(df)
			if combined.Err != nil {
				return dataframe.DataFrame{}, nil, fmt.Errorf("combining year tables: %w", combined.Err)
			}
		}

		spans = append(spans, yearSpan{year: year, path: path, start: offset, rows: df.Nrow()})
		offset += df.Nrow()

		l.logger.Debug("year table read", "year", year, "path", path, "rows", df.Nrow())
	}

	return combined, spans, nil
}

// locationColumns returns every non-reserved column in frame order, which
// after combining is first-seen order across ascending years.
func locationColumns(df dataframe.DataFrame) []string {
	names := df.Names()
	locs := make([]string, 0, len(names))
	for _, n := range names {
		if n == monthColumn || n == yearColumn {
			continue
		}
		locs = append(locs, n)
	}
	return locs
}

// melt unpivots the combined wide frame into one observation per
// (location, month, year) cell, row-major: every location of a source row
// before the next row.
func melt(df dataframe.DataFrame, spans []yearSpan) ([]domain.Observation, error) {
	if df.Nrow() == 0 {
		return nil, nil
	}

	locs := locationColumns(df)
	months := df.Col(monthColumn)
	years := df.Col(yearColumn)
	cols := make([]series.Series, len(locs))
	for i, name := range locs {
		cols[i] = df.Col(name)
	}

	obs := make([]domain.Observation, 0, df.Nrow()*len(locs))
	for r := 0; r < df.Nrow(); r++ {
		year, err := years.Elem(r).Int()
		if err != nil {
			return nil, fmt.Errorf("row %d: year tag: %w", r, err)
		}

		span := spanFor(spans, r)
		rawMonth := strings.TrimSpace(months.Elem(r).String())
		m, ok := domain.ParseMonth(rawMonth)
		if !ok {
			return nil, &domain.DateParseError{Month: rawMonth, Year: year, Row: r - span.start + 1}
		}

		date := domain.NewDate(year, m)
		for i, loc := range locs {
			aqi, err := parseAQI(cols[i].Elem(r))
			if err != nil {
				return nil, &domain.MissingSourceError{
					Year: year,
					Path: span.path,
					Err:  fmt.Errorf("row %d, location %q: %w", r-span.start+1, loc, err),
				}
			}
			obs = append(obs, domain.Observation{
				Location: loc,
				Month:    rawMonth,
				Year:     year,
				AQI:      aqi,
				Date:     date,
			})
		}
	}
	return obs, nil
}

func spanFor(spans []yearSpan, row int) yearSpan {
	for _, s := range spans {
		if row >= s.start && row < s.start+s.rows {
			return s
		}
	}
	return yearSpan{}
}

// parseAQI converts one cell to a reading. NA and empty cells are absent
// observations. "NaN" is the pandas missing marker and counts as absent
// too, since the published CSVs round-trip through pandas. Anything else
// must parse as a finite number.
func parseAQI(el series.Element) (*float64, error) {
	if el.IsNA() {
		return nil, nil
	}
	s := strings.TrimSpace(el.String())
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unparseable AQI %q", s)
	}
	return &v, nil
}
