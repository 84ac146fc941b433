package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/JonMunkholm/surveyviz/internal/survey"
)

func decodeSize(t *testing.T, b []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	r := img.Bounds()
	return r.Dx(), r.Dy()
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		chart survey.Chart
	}{
		{
			name: "scatter",
			chart: survey.Scatter{
				Title: "Frequency vs Importance",
				X:     []float64{4, 3, 0, 2},
				Y:     []float64{3, 2, 0, 1},
			},
		},
		{
			name:  "scatter with one distinct value",
			chart: survey.Scatter{X: []float64{2, 2}, Y: []float64{1, 1}},
		},
		{
			name:  "scatter without points",
			chart: survey.Scatter{Title: "empty"},
		},
		{
			name: "heatmap",
			chart: survey.Heatmap{
				Title:        "Correlation Heatmap",
				Matrix:       survey.Matrix{{1, 0.5, -0.25}, {0.5, 1, 0}, {-0.25, 0, 1}},
				RowLabels:    []string{"Frequency", "Importance", "Numerical Value"},
				ColumnLabels: []string{"Frequency", "Importance", "Numerical Value"},
			},
		},
		{
			name:  "empty heatmap",
			chart: survey.Heatmap{Title: "Correlation Heatmap"},
		},
		{
			name: "bar",
			chart: survey.Bar{
				Title:      "Assistance Types Distribution",
				Categories: []string{"Rent", "Food", ""},
				Counts:     []int{3, 1, 1},
			},
		},
		{
			name:  "single bar",
			chart: survey.Bar{Categories: []string{"Rent"}, Counts: []int{2}},
		},
		{
			name:  "bar without categories",
			chart: survey.Bar{Title: "empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.chart, 640, 400); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			w, h := decodeSize(t, buf.Bytes())
			if w != 640 || h != 400 {
				t.Errorf("image size = %dx%d, want 640x400", w, h)
			}
		})
	}
}

func TestEncode_HeatmapTooSmall(t *testing.T) {
	m := make(survey.Matrix, 50)
	for i := range m {
		m[i] = make([]float64, 50)
	}
	err := Encode(&bytes.Buffer{}, survey.Heatmap{Matrix: m}, 200, 100)
	if err == nil {
		t.Fatal("Encode() should fail when cells cannot fit")
	}
}

func TestPNGSink(t *testing.T) {
	sink := NewPNGSink(0, 0)
	ctx := context.Background()

	if _, ok := sink.Image(survey.ChartBar); ok {
		t.Fatal("Image() found a chart before rendering")
	}

	if err := sink.Render(ctx, survey.Bar{Categories: []string{"Food"}, Counts: []int{1}}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, ok := sink.Image(survey.ChartBar)
	if !ok {
		t.Fatal("Image() missing bar chart")
	}
	if w, h := decodeSize(t, b); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("image size = %dx%d, want default", w, h)
	}
}

func TestPNGSink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := NewPNGSink(320, 200)
	err := sink.Render(ctx, survey.Scatter{X: []float64{1}, Y: []float64{1}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
	if _, ok := sink.Image(survey.ChartScatter); ok {
		t.Error("cancelled render stored an image")
	}
}

func TestPNGSink_Pipeline(t *testing.T) {
	const csv = "id,freq,imp,n,kind\na,Always,very important,3,Rent\nb,Never,very unimportant,1,Food"
	p := survey.NewPipeline(survey.Columns{Label: "id", Frequency: "freq", Importance: "imp", Numeric: "n", Category: "kind"})
	sink := NewPNGSink(480, 320)

	if _, err := p.Run(context.Background(), csv, sink); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, kind := range []survey.ChartKind{survey.ChartScatter, survey.ChartHeatmap, survey.ChartBar} {
		if _, ok := sink.Image(kind); !ok {
			t.Errorf("missing %s image", kind)
		}
	}
}

func TestTextOn(t *testing.T) {
	if textOn(color.RGBA{R: 253, G: 231, B: 37, A: 255}) != color.Black {
		t.Error("light fill should use dark text")
	}
	if textOn(color.RGBA{R: 68, G: 1, B: 84, A: 255}) != color.White {
		t.Error("dark fill should use light text")
	}
}
