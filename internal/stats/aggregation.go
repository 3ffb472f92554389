package stats

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance calculates the population variance
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	return sumSquaredDiff / float64(len(values))
}

// StdDev calculates the population standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median calculates the median value
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Min returns the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Sum returns the sum of all values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Range returns the range (max - min)
func Range(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Max(values) - Min(values)
}

// Quantile calculates the q-th quantile (0 <= q <= 1)
// Uses linear interpolation between closest ranks
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	index := q * (n - 1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	// Linear interpolation
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Percentile calculates the p-th percentile (0-100)
func Percentile(values []float64, p float64) float64 {
	return Quantile(values, p/100.0)
}

// IQR calculates the interquartile range (Q3 - Q1)
func IQR(values []float64) float64 {
	return Quantile(values, 0.75) - Quantile(values, 0.25)
}

// Skewness calculates the population skewness (Fisher-Pearson coefficient)
func Skewness(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	mean := Mean(values)
	stddev := StdDev(values)
	if stddev == 0 {
		return 0
	}

	var sumCubedDiff float64
	for _, v := range values {
		diff := (v - mean) / stddev
		sumCubedDiff += diff * diff * diff
	}

	return sumCubedDiff / float64(n)
}

// Kurtosis calculates the population excess kurtosis
func Kurtosis(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	mean := Mean(values)
	stddev := StdDev(values)
	if stddev == 0 {
		return 0
	}

	var sumQuadDiff float64
	for _, v := range values {
		diff := (v - mean) / stddev
		sumQuadDiff += diff * diff * diff * diff
	}

	return sumQuadDiff/float64(n) - 3.0
}

// ZeroCrossingRate returns the number of sign changes divided by the series
// length. Zero is treated as non-negative.
func ZeroCrossingRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	crossings := 0
	for i := 1; i < len(values); i++ {
		if math.Signbit(values[i]) != math.Signbit(values[i-1]) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(values))
}

// SanitizeNaN replaces NaN entries with 0.0 in place and returns the slice.
// Statistics in this package assume NaN-free input.
func SanitizeNaN(values []float64) []float64 {
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = 0
		}
	}
	return values
}
