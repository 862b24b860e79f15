package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single value", []float64{3}, 0},
		{"population std", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.0},
		{"constant", []float64{1, 1, 1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StdDev(tt.values), 1e-12)
		})
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{1, 3, 5}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
	assert.Equal(t, 0.0, Median(nil))

	values := []float64{5, 1, 3}
	_ = Median(values)
	assert.Equal(t, []float64{5, 1, 3}, values)
}

func TestAggregates(t *testing.T) {
	values := []float64{-2, 4, 1}

	assert.InDelta(t, 1.0, Mean(values), 1e-12)
	assert.Equal(t, -2.0, Min(values))
	assert.Equal(t, 4.0, Max(values))
	assert.Equal(t, 6.0, Range(values))
	assert.InDelta(t, 7.0/3.0, SMA(values), 1e-12)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, Min(nil))
	assert.Zero(t, Max(nil))
	assert.Zero(t, Range(nil))
	assert.Zero(t, SMA(nil))
}

func TestMagnitudes(t *testing.T) {
	got := Magnitudes([]float64{3, 0}, []float64{4, 0}, []float64{0, 2})
	assert.Equal(t, []float64{5, 2}, got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Normalize(5, 0, 10))
	assert.Equal(t, 0.0, Normalize(-1, 0, 10))
	assert.Equal(t, 1.0, Normalize(11, 0, 10))
	assert.Equal(t, 0.0, Normalize(3, 5, 5))
}
