package analytics

import (
	"slices"

	"github.com/hydair/aqi-dashboard/internal/domain"
)

// CountTable counts band observations by location and year, zero-filled
// over every canonical (location, year) pair.
type CountTable struct {
	Locations []string `json:"locations"`
	Years     []int    `json:"years"`
	Counts    [][]int  `json:"counts"`
}

// Total sums the whole table.
func (t CountTable) Total() int {
	n := 0
	for _, row := range t.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// CategoryReport is the classifier output for one band: the filtered
// observations, complete with their readings and dates, and their counts
// by location and year.
type CategoryReport struct {
	Band   domain.CategoryBand  `json:"band"`
	Hits   []domain.Observation `json:"hits"`
	Counts CountTable           `json:"counts"`
}

// Categorize filters the dataset to observations whose AQI falls inside
// the named band, both bounds inclusive. Absent readings belong to no
// band. Hits preserve dataset order; the counting table keeps canonical
// location order and ascending years. An empty result is valid and
// yields an all-zero table.
func Categorize(ds *domain.Dataset, name string) (*CategoryReport, error) {
	band, err := domain.BandByName(name)
	if err != nil {
		return nil, err
	}

	locIdx := make(map[string]int, len(ds.Locations))
	for i, loc := range ds.Locations {
		locIdx[loc] = i
	}
	yearIdx := make(map[int]int, len(ds.Years))
	for j, y := range ds.Years {
		yearIdx[y] = j
	}

	counts := make([][]int, len(ds.Locations))
	for i := range counts {
		counts[i] = make([]int, len(ds.Years))
	}

	hits := make([]domain.Observation, 0)
	for _, o := range ds.Observations {
		if !o.HasAQI() || !band.Contains(*o.AQI) {
			continue
		}
		hits = append(hits, o)
		if i, ok := locIdx[o.Location]; ok {
			if j, ok := yearIdx[o.Year]; ok {
				counts[i][j]++
			}
		}
	}

	return &CategoryReport{
		Band: band,
		Hits: hits,
		Counts: CountTable{
			Locations: slices.Clone(ds.Locations),
			Years:     slices.Clone(ds.Years),
			Counts:    counts,
		},
	}, nil
}
