package survey

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Heatmap axis labels, in feature vector order.
var featureLabels = []string{"Frequency", "Importance", "Numerical Value"}

// Pipeline carries the settings for turning one upload into charts.
// A Pipeline holds no per-run state and may be shared between goroutines.
type Pipeline struct {
	Columns Columns
	Strict  bool

	// Logger receives per-run diagnostics. nil means slog.Default().
	Logger *slog.Logger
}

// NewPipeline returns a lenient pipeline for the given columns.
func NewPipeline(columns Columns) *Pipeline {
	return &Pipeline{Columns: columns}
}

// Result is everything one run produced.
type Result struct {
	ID      string
	Table   *Table
	Columns Columns // resolved header names

	Frequency  []float64
	Importance []float64
	Numeric    []float64
	Matrix     Matrix
	Tally      CategoryTally

	Scatter Scatter
	Heatmap Heatmap
	Bar     Bar
}

// Charts returns the three descriptions in rendering order.
func (r *Result) Charts() []Chart {
	return []Chart{r.Scatter, r.Heatmap, r.Bar}
}

// Run parses raw, computes the features and the correlation matrix, and hands
// the scatter, heatmap and bar descriptions to sink in that order. A nil sink
// skips rendering.
func (p *Pipeline) Run(ctx context.Context, raw string, sink Sink) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res, err := p.Analyze(raw)
	if err != nil {
		return nil, err
	}
	logger = logger.With("analysis_id", res.ID)

	if len(res.Table.Skipped) > 0 {
		logger.Warn("skipped malformed rows",
			"skipped", len(res.Table.Skipped),
			"first_line", res.Table.Skipped[0].Line,
		)
	}

	if sink != nil {
		for _, chart := range res.Charts() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := sink.Render(ctx, chart); err != nil {
				return nil, fmt.Errorf("render %s: %w", chart.Kind(), err)
			}
		}
	}

	logger.Debug("analysis complete",
		"rows", len(res.Table.Rows),
		"categories", len(res.Tally),
	)
	return res, nil
}

// Analyze runs every stage except rendering.
func (p *Pipeline) Analyze(raw string) (*Result, error) {
	table, err := ParseTable(raw, ParseOptions{Strict: p.Strict})
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}

	cols, err := p.Columns.Resolve(table.Headers)
	if err != nil {
		return nil, fmt.Errorf("resolve columns: %w", err)
	}

	res := &Result{
		ID:         uuid.NewString(),
		Table:      table,
		Columns:    cols,
		Frequency:  ExtractFeatures(table.Rows, cols.Frequency, KindFrequency),
		Importance: ExtractFeatures(table.Rows, cols.Importance, KindImportance),
		Numeric:    ExtractFeatures(table.Rows, cols.Numeric, KindNumeric),
		Tally:      Tally(table.Rows, cols.Category),
	}

	res.Matrix, err = CorrelationMatrix([][]float64{res.Frequency, res.Importance, res.Numeric})
	if err != nil {
		return nil, fmt.Errorf("correlation matrix: %w", err)
	}

	res.Scatter = Scatter{
		Title:  "Frequency vs Importance",
		XTitle: cols.Frequency,
		YTitle: cols.Importance,
		X:      res.Frequency,
		Y:      res.Importance,
		Labels: table.Column(cols.Label),
	}
	res.Heatmap = Heatmap{
		Title:        "Correlation Heatmap",
		Matrix:       res.Matrix,
		RowLabels:    append([]string(nil), featureLabels...),
		ColumnLabels: append([]string(nil), featureLabels...),
	}
	categories, counts := res.Tally.Split()
	res.Bar = Bar{
		Title:      "Assistance Types Distribution",
		XTitle:     "Assistance Type",
		YTitle:     "Count",
		Categories: categories,
		Counts:     counts,
	}

	return res, nil
}
