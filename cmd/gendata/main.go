// Command gendata writes deterministic sample air quality sources in the
// wide yearly layout the dashboard loads, then runs the actual loader over
// them and reports the canonical dataset's shape. It exists so test
// fixtures and local data directories come from the same code path as
// production loads.
//
// Usage:
//
//	go run ./cmd/gendata \
//	  -out-dir data \
//	  -year-start 2016 -year-end 2023 \
//	  -fixture data/mock/canonical_dataset.json
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"

	"github.com/hydair/aqi-dashboard/internal/analytics"
	"github.com/hydair/aqi-dashboard/internal/domain"
	"github.com/hydair/aqi-dashboard/internal/observability"
	"github.com/hydair/aqi-dashboard/internal/pipeline"
)

// stations are the monitoring locations the generated tables carry, in
// column order.
var stations = []string{
	"Bollaram Industrial Area",
	"Sanathnagar",
	"Central University",
	"ICRISAT Patancheru",
	"IDA Pashamylaram",
	"Zoo Park",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data", "directory to write yearly source files into")
	yearStart := flag.Int("year-start", 2016, "first year to generate")
	yearEnd := flag.Int("year-end", 2023, "last year to generate")
	format := flag.String("format", "csv", "source file format: csv or xlsx")
	fixture := flag.String("fixture", "", "optional output path for the canonical dataset JSON fixture")
	flag.Parse()

	if *yearEnd < *yearStart {
		return fmt.Errorf("-year-end %d precedes -year-start %d", *yearEnd, *yearStart)
	}
	if *format != "csv" && *format != "xlsx" {
		return fmt.Errorf("unsupported -format %q (want csv or xlsx)", *format)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	pattern := "hyd_air_quality_%d." + *format
	years := make([]int, 0, *yearEnd-*yearStart+1)
	for y := *yearStart; y <= *yearEnd; y++ {
		years = append(years, y)

		path := filepath.Join(*outDir, fmt.Sprintf(pattern, y))
		table := generateYear(y)
		var err error
		if *format == "xlsx" {
			err = writeXLSX(path, table)
		} else {
			err = writeCSV(path, table)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
	}

	// Fixed clock so the fixture's LoadedAt stamp is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	loader := pipeline.NewLoader(*outDir, pattern, years, quietLogger(), observability.NewMetrics())
	ds, err := loader.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading generated sources: %w", err)
	}

	if *fixture != "" {
		if err := writeJSON(*fixture, ds); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote canonical fixture: %s", *fixture)
	}

	printStats(ds)
	return nil
}

// generateYear builds one wide table: a Month column plus one column per
// station, twelve data rows.
func generateYear(year int) [][]string {
	header := append([]string{"Month"}, stations...)
	rows := [][]string{header}

	for m, abbr := range domain.MonthAbbreviations() {
		row := []string{abbr}
		for s := range stations {
			aqi, ok := sampleAQI(year, m+1, s)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(aqi, 'f', -1, 64))
		}
		rows = append(rows, row)
	}
	return rows
}

// sampleAQI computes the reading for one (year, month, station) cell.
// Pollution peaks in winter and dips through the monsoon, base levels vary
// by station, values drift upward year over year, and a November spike at
// the two most polluted stations reaches the severe band. Some cells are
// deterministically empty so fixtures exercise absent readings.
func sampleAQI(year, month, station int) (float64, bool) {
	if (year*12+month+station)%23 == 0 {
		return 0, false
	}

	base := 90.0 + 30.0*float64(station)
	seasonal := 80.0 * math.Cos(2*math.Pi*float64(month-1)/12.0)
	drift := 4.0 * float64(year-2016)

	aqi := base + seasonal + drift
	if month == 11 && station < 2 {
		aqi += 280
	}
	return math.Round(math.Max(aqi, 8)), true
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue("Sheet1", cell, val); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func printStats(ds *domain.Dataset) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Observations: %d\n", len(ds.Observations))
	fmt.Printf("Years: %d (%d-%d)\n", len(ds.Years), ds.Years[0], ds.Years[len(ds.Years)-1])
	fmt.Printf("Locations: %d\n", len(ds.Locations))

	present := ds.WithAQI()
	fmt.Printf("With readings: %d (absent %d)\n", len(present), len(ds.Observations)-len(present))

	counts := map[string]int{}
	for _, o := range present {
		if band, ok := domain.BandFor(*o.AQI); ok {
			counts[band.Name]++
		}
	}
	fmt.Print("By category: ")
	for _, name := range domain.BandNames() {
		fmt.Printf("%s=%d ", name, counts[name])
	}
	fmt.Println()

	for _, m := range analytics.YearlyMeans(ds) {
		fmt.Printf("Mean %d: %.1f\n", m.Year, m.Mean)
	}

	var peak domain.Observation
	for _, o := range present {
		if !peak.HasAQI() || *o.AQI > *peak.AQI {
			peak = o
		}
	}
	if peak.HasAQI() {
		fmt.Printf("Peak reading: %g at %s (%s %d)\n", *peak.AQI, peak.Location, peak.Month, peak.Year)
	}
}
