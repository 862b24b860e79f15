package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev calculates the population standard deviation (divides by n).
// Fewer than two values yield 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(values, nil)
	if math.IsNaN(std) {
		return 0
	}
	return std
}

// Median returns the middle value, averaging the two middle values for even
// lengths. The input is not reordered.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Min finds the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}

// Max finds the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Range calculates max - min
func Range(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values) - floats.Min(values)
}

// SMA is the signal magnitude area: mean of absolute values
func SMA(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum / float64(len(values))
}

// Magnitudes returns the euclidean norm of each (x, y, z) triple.
// The three slices must have equal length.
func Magnitudes(x, y, z []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = math.Sqrt(x[i]*x[i] + y[i]*y[i] + z[i]*z[i])
	}
	return out
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Normalize maps v from [lo, hi] onto [0, 1], clamping outside values
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}
