// Command validate runs integrity checks over a directory of yearly air
// quality sources: the canonical dataset's structural invariants
// (completeness, column union, sort order), reload idempotence, and
// classifier coverage. It loads through the actual pipeline so the checks
// exercise real behavior, not a parallel implementation.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data \
//	  -year-start 2016 -year-end 2023
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/hydair/aqi-dashboard/internal/analytics"
	"github.com/hydair/aqi-dashboard/internal/domain"
	"github.com/hydair/aqi-dashboard/internal/observability"
	"github.com/hydair/aqi-dashboard/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing yearly source files")
	pattern := flag.String("pattern", "hyd_air_quality_%d.csv", "file name pattern with a %d year placeholder")
	yearStart := flag.Int("year-start", 2016, "first year to validate")
	yearEnd := flag.Int("year-end", 2023, "last year to validate")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *yearEnd < *yearStart {
		fmt.Fprintf(os.Stderr, "FATAL: -year-end %d precedes -year-start %d\n", *yearEnd, *yearStart)
		os.Exit(1)
	}

	years := make([]int, 0, *yearEnd-*yearStart+1)
	for y := *yearStart; y <= *yearEnd; y++ {
		years = append(years, y)
	}

	if code := run(*dataDir, *pattern, years); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, pattern string, years []int) int {
	// Fixed clock so both loads carry the same LoadedAt stamp and the
	// idempotence phase can compare datasets field for field.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Air Quality Data Integrity Validation ===")
	fmt.Println()

	loader := pipeline.NewLoader(dataDir, pattern, years, quietLogger(), observability.NewMetrics())

	ds, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}
	reloaded, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: reload dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCompleteness(ds, years),
		validateColumnUnion(ds),
		validateSortOrder(ds),
		validateIdempotence(ds, reloaded),
		validateClassifier(ds),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Dataset: %d observations (%d with readings), %d years, %d locations\n",
		len(ds.Observations), len(ds.WithAQI()), len(ds.Years), len(ds.Locations))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Completeness ──
// Every configured year contributes exactly twelve rows per location.

func validateCompleteness(ds *domain.Dataset, years []int) *phase {
	p := &phase{name: "Phase 1: Completeness (12 rows per location-year)"}

	if len(ds.Years) != len(years) {
		p.errorf("year axis: expected %d years, got %d", len(years), len(ds.Years))
	}
	if want := len(ds.Years) * len(ds.Locations) * 12; len(ds.Observations) != want {
		p.errorf("total rows: expected %d, got %d", want, len(ds.Observations))
	}

	type cell struct {
		loc  string
		year int
	}
	counts := map[cell]int{}
	for _, o := range ds.Observations {
		counts[cell{o.Location, o.Year}]++
		if _, ok := domain.ParseMonth(o.Month); !ok {
			p.errorf("unrecognized month %q (%s %d)", o.Month, o.Location, o.Year)
		}
	}
	for _, loc := range ds.Locations {
		for _, y := range ds.Years {
			if n := counts[cell{loc: loc, year: y}]; n != 12 {
				p.errorf("%s %d: expected 12 rows, got %d", loc, y, n)
			}
		}
	}
	return p
}

// ── Phase 2: Column Union ──
// The location axis is the duplicate-free union of every year's columns,
// and each (location, date) pair appears exactly once.

func validateColumnUnion(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 2: Column Union (location axis)"}

	onAxis := map[string]bool{}
	for _, loc := range ds.Locations {
		if onAxis[loc] {
			p.errorf("duplicate location %q on the axis", loc)
		}
		onAxis[loc] = true
	}

	type key struct {
		loc  string
		unix int64
	}
	rows := map[key]int{}
	for _, o := range ds.Observations {
		if !onAxis[o.Location] {
			p.errorf("observation location %q missing from the axis", o.Location)
		}
		rows[key{loc: o.Location, unix: o.Date.Unix()}]++
	}
	for _, o := range ds.Observations {
		k := key{loc: o.Location, unix: o.Date.Unix()}
		if rows[k] > 1 {
			p.errorf("%s has %d rows for %s", o.Location, rows[k], o.Date)
			rows[k] = 1 // report each duplicate once
		}
	}
	return p
}

// ── Phase 3: Sort Order ──
// Observations are chronological and each date derives from its row's
// month and year.

func validateSortOrder(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 3: Sort Order (chronological)"}

	for i := 1; i < len(ds.Observations); i++ {
		prev, cur := ds.Observations[i-1], ds.Observations[i]
		if prev.Date.Compare(cur.Date) > 0 {
			p.errorf("row %d (%s) sorts before row %d (%s)", i, cur.Date, i-1, prev.Date)
		}
	}
	for i, o := range ds.Observations {
		m, ok := domain.ParseMonth(o.Month)
		if !ok {
			continue // phase 1 already reports it
		}
		if !o.Date.Equal(domain.NewDate(o.Year, m)) {
			p.errorf("row %d: date %s does not derive from %s %d", i, o.Date, o.Month, o.Year)
		}
	}
	return p
}

// ── Phase 4: Idempotence ──
// Loading the same sources twice yields the same canonical dataset.

func validateIdempotence(ds, reloaded *domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Idempotence (reload equality)"}
	if diff := cmp.Diff(ds, reloaded); diff != "" {
		p.errorf("reload produced a different dataset (-first +second):\n%s", diff)
	}
	return p
}

// ── Phase 5: Classifier ──
// The six bands cover every non-negative reading, and each band's counting
// table sums to its filtered listing.

func validateClassifier(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 5: Classifier (coverage and counts)"}

	var listed int
	for _, name := range domain.BandNames() {
		report, err := analytics.Categorize(ds, name)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		if total := report.Counts.Total(); total != len(report.Hits) {
			p.errorf("%s: counting table sums to %d but listing has %d rows", name, total, len(report.Hits))
		}
		listed += len(report.Hits)
	}

	var classified int
	for _, o := range ds.WithAQI() {
		if *o.AQI < 0 {
			p.errorf("negative reading %g (%s %s %d)", *o.AQI, o.Location, o.Month, o.Year)
			continue
		}
		if _, ok := domain.BandFor(*o.AQI); ok {
			classified++
		} else {
			p.errorf("reading %g (%s %s %d) maps to no band", *o.AQI, o.Location, o.Month, o.Year)
		}
	}
	if listed != classified {
		p.errorf("band listings cover %d readings but the scale classifies %d (fractional readings fall between band bounds)", listed, classified)
	}
	return p
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
