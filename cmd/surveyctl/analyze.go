package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/surveyviz/internal/config"
	"github.com/JonMunkholm/surveyviz/internal/render"
	"github.com/JonMunkholm/surveyviz/internal/survey"
)

type analyzeOptions struct {
	outDir   string
	asJSON   bool
	strict   bool
	maxBytes int64
	width    int
	height   int
	columns  survey.Columns
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file.csv>",
		Short: "Render the scatter, heatmap and bar charts for a survey export",
		Long: `Analyze parses a comma-separated survey export, computes the answer
features and their correlations, and writes scatter.png, heatmap.png and
bar.png to --out. With --json the chart descriptions are printed instead.

Column flags take a header name or a zero-based position. Unset column flags
fall back to SURVEY_COL_* from the environment, then to the standard export
layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "out", "o", ".", "directory for the PNG files")
	f.BoolVar(&opts.asJSON, "json", false, "print chart descriptions as JSON instead of writing images")
	f.BoolVar(&opts.strict, "strict", false, "fail on rows with fewer values than the header")
	f.Int64Var(&opts.maxBytes, "max-bytes", 10<<20, "largest accepted input in bytes (0 disables)")
	f.IntVar(&opts.width, "width", render.DefaultWidth, "image width in pixels")
	f.IntVar(&opts.height, "height", render.DefaultHeight, "image height in pixels")
	f.StringVar(&opts.columns.Label, "col-label", "", "point label column")
	f.StringVar(&opts.columns.Frequency, "col-frequency", "", "frequency answer column")
	f.StringVar(&opts.columns.Importance, "col-importance", "", "importance answer column")
	f.StringVar(&opts.columns.Numeric, "col-numeric", "", "integer answer column")
	f.StringVar(&opts.columns.Category, "col-category", "", "bar chart category column")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	raw, err := survey.ReadText(f, opts.maxBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	sc, err := config.LoadSurvey(os.Getenv)
	if err != nil {
		return err
	}
	strict := sc.Strict
	if cmd.Flags().Changed("strict") {
		strict = opts.strict
	}

	p := &survey.Pipeline{
		Columns: sc.Columns().Override(opts.columns),
		Strict:  strict,
		Logger:  root.logger(cmd).With("file", filepath.Base(path)),
	}

	collected := &survey.Collector{}
	sinks := []survey.Sink{collected}

	// Images are written unless only JSON was asked for.
	var images *render.PNGSink
	if !opts.asJSON || cmd.Flags().Changed("out") {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return err
		}
		images = render.NewPNGSink(opts.width, opts.height)
		sinks = append(sinks, images)
	}

	res, err := p.Run(cmd.Context(), raw, survey.Tee(sinks...))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	// Progress goes to stderr when stdout carries JSON.
	progress := cmd.OutOrStdout()
	if opts.asJSON {
		progress = cmd.ErrOrStderr()
	}

	if images != nil {
		for _, c := range res.Charts() {
			img, ok := images.Image(c.Kind())
			if !ok {
				return fmt.Errorf("%s chart was not rendered", c.Kind())
			}
			out := filepath.Join(opts.outDir, string(c.Kind())+".png")
			if err := os.WriteFile(out, img, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(progress, "✓ wrote %s\n", out)
		}
	}
	if n := len(res.Table.Skipped); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ skipped %d malformed row(s), first at line %d\n", n, res.Table.Skipped[0].Line)
	}

	if opts.asJSON {
		return writeJSON(cmd, res, collected)
	}
	return nil
}

type analysisJSON struct {
	ID      string                     `json:"id"`
	Rows    int                        `json:"rows"`
	Skipped []survey.MalformedRowError `json:"skipped"`
	Charts  map[survey.ChartKind]any   `json:"charts"`
}

func writeJSON(cmd *cobra.Command, res *survey.Result, collected *survey.Collector) error {
	out := analysisJSON{
		ID:      res.ID,
		Rows:    len(res.Table.Rows),
		Skipped: res.Table.Skipped,
		Charts:  make(map[survey.ChartKind]any, 3),
	}
	if out.Skipped == nil {
		out.Skipped = []survey.MalformedRowError{}
	}
	for _, c := range collected.Charts() {
		out.Charts[c.Kind()] = c
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
