package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicAggregates(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.InDelta(t, 2.5, Mean(values), 1e-12)
	assert.InDelta(t, 1.25, Variance(values), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), StdDev(values), 1e-12)
	assert.InDelta(t, 2.5, Median(values), 1e-12)
	assert.InDelta(t, 1, Min(values), 1e-12)
	assert.InDelta(t, 4, Max(values), 1e-12)
	assert.InDelta(t, 10, Sum(values), 1e-12)
	assert.InDelta(t, 3, Range(values), 1e-12)
}

func TestEmptyInputIsZero(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, Variance(nil))
	assert.Zero(t, Median(nil))
	assert.Zero(t, Min(nil))
	assert.Zero(t, Max(nil))
	assert.Zero(t, Range(nil))
	assert.Zero(t, Quantile(nil, 0.5))
	assert.Zero(t, Skewness(nil))
	assert.Zero(t, Kurtosis(nil))
	assert.Zero(t, ZeroCrossingRate(nil))
}

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	// Matches numpy's default percentile interpolation.
	assert.InDelta(t, 1.75, Quantile(values, 0.25), 1e-12)
	assert.InDelta(t, 3.25, Quantile(values, 0.75), 1e-12)
	assert.InDelta(t, 1.5, IQR(values), 1e-12)

	assert.InDelta(t, 1, Quantile(values, 0), 1e-12)
	assert.InDelta(t, 4, Quantile(values, 1), 1e-12)
	// Out-of-range q is clamped.
	assert.InDelta(t, 4, Quantile(values, 1.5), 1e-12)
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSkewness(t *testing.T) {
	// Symmetric input has zero skew.
	assert.InDelta(t, 0, Skewness([]float64{1, 2, 3, 4, 5}), 1e-12)

	// Right-skewed input is positive.
	assert.Greater(t, Skewness([]float64{1, 1, 1, 10}), 0.0)

	// Constant input would divide by zero; defined as 0.
	assert.Zero(t, Skewness([]float64{2, 2, 2}))
}

func TestKurtosis(t *testing.T) {
	// Excess kurtosis: [1,2,3,4] has m4/m2^2 = 1.64.
	assert.InDelta(t, -1.36, Kurtosis([]float64{1, 2, 3, 4}), 1e-12)
	assert.Zero(t, Kurtosis([]float64{5, 5, 5}))
}

func TestZeroCrossingRate(t *testing.T) {
	assert.InDelta(t, 0.75, ZeroCrossingRate([]float64{1, -1, 1, -1}), 1e-12)
	assert.Zero(t, ZeroCrossingRate([]float64{1, 2, 3}))

	// Zero counts as non-negative, so 1,0,1 never crosses.
	assert.Zero(t, ZeroCrossingRate([]float64{1, 0, 1}))
}

func TestSanitizeNaN(t *testing.T) {
	values := []float64{1, math.NaN(), 3}
	SanitizeNaN(values)
	assert.Equal(t, []float64{1, 0, 3}, values)
}

func TestPearsonCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1, PearsonCorrelation(x, []float64{2, 4, 6, 8, 10}), 1e-12)
	assert.InDelta(t, -1, PearsonCorrelation(x, []float64{10, 8, 6, 4, 2}), 1e-12)

	// Constant series has no defined correlation; reported as 0.
	assert.Zero(t, PearsonCorrelation(x, []float64{3, 3, 3, 3, 3}))
	// Length mismatch.
	assert.Zero(t, PearsonCorrelation(x, []float64{1, 2}))
}
