// Package render draws survey chart descriptions as PNG images.
//
// Scatter and bar charts go through go-chart. go-chart has no heatmap, so the
// correlation matrix is drawn directly onto an RGBA raster with the same
// Viridis scale go-chart uses for its colour providers.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/JonMunkholm/surveyviz/internal/survey"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size when a sink is created with zero dimensions.
const (
	DefaultWidth  = 800
	DefaultHeight = 500
)

var (
	scatterColor = drawing.Color{R: 152, G: 0, B: 0, A: 204}
	barColor     = drawing.Color{R: 142, G: 124, B: 195, A: 255}
)

// PNGSink renders every chart it receives and keeps the encoded images.
type PNGSink struct {
	width  int
	height int

	mu     sync.Mutex
	images map[survey.ChartKind][]byte
}

// NewPNGSink creates a sink that renders width×height images.
func NewPNGSink(width, height int) *PNGSink {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &PNGSink{
		width:  width,
		height: height,
		images: make(map[survey.ChartKind][]byte),
	}
}

// Render implements survey.Sink.
func (s *PNGSink) Render(ctx context.Context, c survey.Chart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, c, s.width, s.height); err != nil {
		return err
	}

	s.mu.Lock()
	s.images[c.Kind()] = buf.Bytes()
	s.mu.Unlock()
	return nil
}

// Image returns the PNG for kind, if it has been rendered.
func (s *PNGSink) Image(kind survey.ChartKind) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.images[kind]
	return b, ok
}

// Encode writes c to w as a PNG.
func Encode(w io.Writer, c survey.Chart, width, height int) error {
	switch c := c.(type) {
	case survey.Scatter:
		return encodeScatter(w, c, width, height)
	case survey.Heatmap:
		return encodeHeatmap(w, c, width, height)
	case survey.Bar:
		return encodeBar(w, c, width, height)
	default:
		return fmt.Errorf("render: unsupported chart %T", c)
	}
}

func encodeScatter(w io.Writer, s survey.Scatter, width, height int) error {
	if len(s.X) == 0 || len(s.X) != len(s.Y) {
		return encodePlaceholder(w, s.Title, "no data", width, height)
	}

	ch := chart.Chart{
		Title:      s.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  s.XTitle,
			Range: paddedRange(s.X),
		},
		YAxis: chart.YAxis{
			Name:  s.YTitle,
			Range: paddedRange(s.Y),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: s.Title,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    6,
					DotColor:    scatterColor,
				},
				XValues: s.X,
				YValues: s.Y,
			},
		},
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

func encodeBar(w io.Writer, b survey.Bar, width, height int) error {
	if len(b.Categories) == 0 {
		return encodePlaceholder(w, b.Title, "no data", width, height)
	}

	bars := make([]chart.Value, len(b.Categories))
	maxCount := 0
	for i, label := range b.Categories {
		count := 0
		if i < len(b.Counts) {
			count = b.Counts[i]
		}
		if count > maxCount {
			maxCount = count
		}
		if label == "" {
			label = "(blank)"
		}
		bars[i] = chart.Value{
			Label: label,
			Value: float64(count),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
	}

	barWidth := (width - 120) / (len(bars) * 2)
	if barWidth < 8 {
		barWidth = 8
	}

	ch := chart.BarChart{
		Title:      b.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Name:  b.YTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(maxCount)*1.1)},
		},
		Bars: bars,
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar: %w", err)
	}
	return nil
}

// paddedRange returns an axis range around values that is never empty, so a
// column holding a single distinct answer still renders.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
