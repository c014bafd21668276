package view

import (
	"time"

	"github.com/hydair/aqi-dashboard/internal/analytics"
	"github.com/hydair/aqi-dashboard/internal/domain"
)

// Kind tags the chart family a view renders.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindBox       Kind = "box"
	KindLine      Kind = "line"
	KindHeatmap   Kind = "heatmap"
	KindHistogram Kind = "histogram"
	KindBar       Kind = "bar"
)

// Descriptor identifies one dashboard view.
type Descriptor struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
}

// ChartSpec is a renderable chart description: axes, caption, and exactly
// one kind-specific payload.
type ChartSpec struct {
	View        string    `json:"view"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Caption     string    `json:"caption"`
	XLabel      string    `json:"x_label,omitempty"`
	YLabel      string    `json:"y_label,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Summary    *SummaryPayload               `json:"summary,omitempty"`
	Boxes      []analytics.BoxStats          `json:"boxes,omitempty"`
	Seasonal   []analytics.SeasonalBox       `json:"seasonal,omitempty"`
	Lines      []LineSeries                  `json:"lines,omitempty"`
	Heatmap    *HeatmapPayload               `json:"heatmap,omitempty"`
	Histograms []analytics.LocationHistogram `json:"histograms,omitempty"`
	Category   *analytics.CategoryReport     `json:"category,omitempty"`
}

// SummaryPayload describes dataset coverage for the overview page.
type SummaryPayload struct {
	Years        []int        `json:"years"`
	Locations    []string     `json:"locations"`
	Observations int          `json:"observations"`
	WithReadings int          `json:"with_readings"`
	FirstDate    *domain.Date `json:"first_date,omitempty"`
	LastDate     *domain.Date `json:"last_date,omitempty"`
	LoadedAt     time.Time    `json:"loaded_at"`
}

// LinePoint is one x/y pair of a line series. X is the ISO date for dated
// series or the year label for yearly aggregates.
type LinePoint struct {
	X     string  `json:"x"`
	Value float64 `json:"value"`
}

// LineSeries is one named line of a line chart.
type LineSeries struct {
	Name   string      `json:"name"`
	Points []LinePoint `json:"points"`
}

// HeatmapPayload is a labelled matrix. Nil cells render as blanks.
type HeatmapPayload struct {
	Rows    []string     `json:"rows"`
	Columns []string     `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}
