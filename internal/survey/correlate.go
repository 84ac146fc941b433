package survey

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Pearson returns the product-moment correlation coefficient of x and y.
//
// Sums are accumulated in a single pass in index order. A constant vector, or
// no data at all, yields 0 rather than NaN so the result can always be
// charted. Vectors of different length also yield 0.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	n := float64(len(x))
	constX, constY := true, true
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		xi, yi := x[i], y[i]
		constX = constX && xi == x[0]
		constY = constY && yi == y[0]
		sumX += xi
		sumY += yi
		sumXY += xi * yi
		sumX2 += xi * xi
		sumY2 += yi * yi
	}
	// Rounding in the sums leaves a tiny nonzero variance for constants
	// such as 0.1, so those are caught exactly here.
	if constX || constY {
		return 0
	}

	varX := n*sumX2 - sumX*sumX
	varY := n*sumY2 - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return 0
	}
	denominator := math.Sqrt(varX * varY)
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// Matrix is a square, symmetric correlation matrix with a unit diagonal.
type Matrix [][]float64

// Size returns the number of variables.
func (m Matrix) Size() int {
	return len(m)
}

// Formatted renders every entry with two decimals. Diagonal entries are
// written as "1", the way the browser version emitted them.
func (m Matrix) Formatted() [][]string {
	out := make([][]string, len(m))
	for i, row := range m {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if i == j {
				out[i][j] = "1"
				continue
			}
			out[i][j] = strconv.FormatFloat(v, 'f', 2, 64)
		}
	}
	return out
}

// CorrelationMatrix builds the k×k matrix for k feature vectors.
// The diagonal is 1 by definition; every other cell is Pearson rounded to two
// decimals, computed once per unordered pair.
func CorrelationMatrix(vectors [][]float64) (Matrix, error) {
	k := len(vectors)
	for i := 1; i < k; i++ {
		if len(vectors[i]) != len(vectors[0]) {
			return nil, fmt.Errorf("%w: vector %d has %d values, vector 0 has %d",
				ErrLengthMismatch, i, len(vectors[i]), len(vectors[0]))
		}
	}

	m := make(Matrix, k)
	for i := range m {
		m[i] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		m[i][i] = 1
		for j := i + 1; j < k; j++ {
			r := Round2(Pearson(vectors[i], vectors[j]))
			m[i][j], m[j][i] = r, r
		}
	}
	return m, nil
}

// Round2 rounds v to two decimals the way JavaScript's toFixed(2) does: the
// exact binary value is scaled, and a tie goes away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	scaled := new(big.Float).SetPrec(256).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, big.NewFloat(100))
	scaled.Add(scaled, big.NewFloat(0.5))

	whole, _ := scaled.Int(nil) // truncation == floor for non-negative values
	hundredths, _ := new(big.Float).SetInt(whole).Float64()

	r := hundredths / 100
	if v < 0 {
		r = -r
	}
	return r
}
