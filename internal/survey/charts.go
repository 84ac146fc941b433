package survey

import (
	"context"
	"sync"
)

// ChartKind identifies one of the three chart descriptions.
type ChartKind string

const (
	ChartScatter ChartKind = "scatter"
	ChartHeatmap ChartKind = "heatmap"
	ChartBar     ChartKind = "bar"
)

// ParseChartKind reports whether s names a chart kind.
func ParseChartKind(s string) (ChartKind, bool) {
	switch k := ChartKind(s); k {
	case ChartScatter, ChartHeatmap, ChartBar:
		return k, true
	}
	return "", false
}

// Chart is a declarative chart description. Implementations are plain data.
type Chart interface {
	Kind() ChartKind
}

// Scatter plots two feature vectors against each other.
type Scatter struct {
	Title  string    `json:"title"`
	XTitle string    `json:"x_title"`
	YTitle string    `json:"y_title"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Labels []string  `json:"labels"`
}

func (Scatter) Kind() ChartKind { return ChartScatter }

// Heatmap shows a correlation matrix.
type Heatmap struct {
	Title        string   `json:"title"`
	Matrix       Matrix   `json:"matrix"`
	RowLabels    []string `json:"row_labels"`
	ColumnLabels []string `json:"column_labels"`
}

func (Heatmap) Kind() ChartKind { return ChartHeatmap }

// Bar shows a categorical tally.
type Bar struct {
	Title      string   `json:"title"`
	XTitle     string   `json:"x_title"`
	YTitle     string   `json:"y_title"`
	Categories []string `json:"categories"`
	Counts     []int    `json:"counts"`
}

func (Bar) Kind() ChartKind { return ChartBar }

// Sink accepts chart descriptions. A sink may render, encode or store them.
type Sink interface {
	Render(ctx context.Context, chart Chart) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, chart Chart) error

func (f SinkFunc) Render(ctx context.Context, chart Chart) error {
	return f(ctx, chart)
}

// Collector is a Sink that keeps every chart it is given.
type Collector struct {
	mu     sync.Mutex
	charts []Chart
}

// Render records chart.
func (c *Collector) Render(_ context.Context, chart Chart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charts = append(c.charts, chart)
	return nil
}

// Charts returns the collected charts in arrival order.
func (c *Collector) Charts() []Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Chart, len(c.charts))
	copy(out, c.charts)
	return out
}

// ByKind returns the most recent chart of the given kind.
func (c *Collector) ByKind(kind ChartKind) (Chart, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.charts) - 1; i >= 0; i-- {
		if c.charts[i].Kind() == kind {
			return c.charts[i], true
		}
	}
	return nil, false
}

// Tee fans a chart out to several sinks, stopping at the first error.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, chart Chart) error {
		for _, s := range sinks {
			if err := s.Render(ctx, chart); err != nil {
				return err
			}
		}
		return nil
	})
}
