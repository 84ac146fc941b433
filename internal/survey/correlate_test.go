package survey

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
		{"perfect negative", []float64{1, 2, 3}, []float64{6, 4, 2}, -1},
		{"constant x", []float64{1, 1, 1}, []float64{1, 2, 3}, 0},
		{"constant y", []float64{4, 0, 2}, []float64{5, 5, 5}, 0},
		{"empty", nil, nil, 0},
		{"single value", []float64{3}, []float64{7}, 0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"constant 0.1", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, []float64{0, 1, 2, 3, 4, 5, 6}, 0},
		{"constant 0.3", []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3}, []float64{0, 1, 2, 3, 4, 5, 6}, 0},
		{"constant 0.7", []float64{0.7, 0.7, 0.7, 0.7, 0.7}, []float64{0, 1, 2, 3, 4}, 0},
		{"constant y 0.001", []float64{5, 1, 4, 2}, []float64{0.001, 0.001, 0.001, 0.001}, 0},
		{"constant 123.456", []float64{123.456, 123.456, 123.456}, []float64{3, 1, 2}, 0},
		{"both constant", []float64{0.3, 0.3}, []float64{0.7, 0.7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pearson(tt.x, tt.y)
			if got != tt.want {
				t.Errorf("Pearson(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("Pearson returned non-finite %v", got)
			}
		})
	}
}

func TestPearson_Properties(t *testing.T) {
	vectors := [][]float64{
		{1, 2, 3},
		{4, 3, 0, 2, 1, 4},
		{0.5, -1.25, 3.75, 2, 8},
		{1e6, 2e6, 3.5e6, -4e6},
		{3, 1, 4, 1, 5, 9, 2, 6},
	}

	for i, x := range vectors {
		if got := Pearson(x, x); got != 1 {
			t.Errorf("vector %d: Pearson(x, x) = %v, want 1", i, got)
		}
	}

	pairs := [][2][]float64{
		{{4, 3, 0, 2, 1, 4}, {3, 3, 1, 2, 0, 2}},
		{{0.5, -1.25, 3.75, 2, 8}, {1, 0, 1, 0, 1}},
		{{3, 1, 4, 1, 5, 9, 2, 6}, {2, 7, 1, 8, 2, 8, 1, 8}},
	}
	for i, p := range pairs {
		xy, yx := Pearson(p[0], p[1]), Pearson(p[1], p[0])
		if xy != yx {
			t.Errorf("pair %d: Pearson not symmetric: %v vs %v", i, xy, yx)
		}
		if xy < -1-1e-12 || xy > 1+1e-12 {
			t.Errorf("pair %d: Pearson = %v outside [-1, 1]", i, xy)
		}
	}
}

func TestCorrelationMatrix(t *testing.T) {
	vectors := [][]float64{
		{4, 3, 0, 2},
		{3, 2, 0, 1},
		{1, 1, 1, 1},
	}

	m, err := CorrelationMatrix(vectors)
	if err != nil {
		t.Fatalf("CorrelationMatrix() error = %v", err)
	}

	r01 := Round2(Pearson(vectors[0], vectors[1]))
	want := Matrix{
		{1, r01, 0},
		{r01, 1, 0},
		{0, 0, 1},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	if r01 != 0.98 {
		t.Errorf("m[0][1] = %v, want 0.98", r01)
	}
}

func TestCorrelationMatrix_SymmetricUnitDiagonal(t *testing.T) {
	vectors := [][]float64{
		{4, 3, 0, 2, 1, 4, 3},
		{3, 3, 1, 2, 0, 2, 1},
		{12, 40, 3, 0, 7, 7, 19},
		{2, 2, 2, 2, 2, 2, 2},
		{0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3},
	}

	m, err := CorrelationMatrix(vectors)
	if err != nil {
		t.Fatal(err)
	}
	if m.Size() != len(vectors) {
		t.Fatalf("Size() = %d, want %d", m.Size(), len(vectors))
	}
	for i := range m {
		if len(m[i]) != len(vectors) {
			t.Fatalf("row %d has %d entries", i, len(m[i]))
		}
		if m[i][i] != 1 {
			t.Errorf("m[%d][%d] = %v, want 1", i, i, m[i][i])
		}
		for j := range m[i] {
			if math.IsNaN(m[i][j]) {
				t.Errorf("m[%d][%d] is NaN", i, j)
			}
			if i != j && i >= 3 && m[i][j] != 0 {
				t.Errorf("m[%d][%d] = %v, want 0 for a constant vector", i, j, m[i][j])
			}
			if m[i][j] != m[j][i] {
				t.Errorf("m[%d][%d] = %v but m[%d][%d] = %v", i, j, m[i][j], j, i, m[j][i])
			}
		}
	}
	for i, row := range m.Formatted() {
		for j, cell := range row {
			if strings.Contains(cell, "NaN") {
				t.Errorf("Formatted()[%d][%d] = %q", i, j, cell)
			}
		}
	}
}

func TestCorrelationMatrix_ConstantDiagonalStillOne(t *testing.T) {
	m, err := CorrelationMatrix([][]float64{{1, 1, 1}, {1, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Matrix{{1, 0}, {0, 1}}, m); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCorrelationMatrix_Empty(t *testing.T) {
	m, err := CorrelationMatrix(nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}
}

func TestCorrelationMatrix_LengthMismatch(t *testing.T) {
	_, err := CorrelationMatrix([][]float64{{1, 2, 3}, {1, 2}})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch", err)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{0.984, 0.98},
		{0.986, 0.99},
		{0.125, 0.13}, // exact binary tie rounds away from zero
		{-0.125, -0.13},
		{0.375, 0.38},
		{1.005, 1}, // 1.005 is stored just below the tie
		{-0.5049, -0.5},
		{-1, -1},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatrixFormatted(t *testing.T) {
	m := Matrix{
		{1, 0.5, -0.07},
		{0.5, 1, 0},
		{-0.07, 0, 1},
	}
	want := [][]string{
		{"1", "0.50", "-0.07"},
		{"0.50", "1", "0.00"},
		{"-0.07", "0.00", "1"},
	}
	if diff := cmp.Diff(want, m.Formatted()); diff != "" {
		t.Errorf("Formatted() mismatch (-want +got):\n%s", diff)
	}
}
