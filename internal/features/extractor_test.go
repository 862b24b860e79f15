package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/ecogo-motion/internal/models"
)

func TestLayout(t *testing.T) {
	assert.Equal(t, 0, Index(AccelX, StatMean))
	assert.Equal(t, 6, Index(AccelX, StatSMA))
	assert.Equal(t, 41, Index(GyroZ, StatSMA))
	assert.Equal(t, 42, AccMagMean)
	assert.Equal(t, 45, GyroMagMean)
	assert.Equal(t, 48, SpeedMean)
	assert.Equal(t, 50, SpeedMax)
	assert.Equal(t, 52, PressureStd)
	assert.Equal(t, Size, PressureStd+1)
}

func TestExtractEmptyWindow(t *testing.T) {
	v := Extract(models.SensorWindow{})
	assert.Equal(t, Vector{}, v)
	assert.Len(t, v.Slice(), Size)
}

func TestExtractSingleSample(t *testing.T) {
	sample := models.SensorSample{
		AccelX: 3, AccelY: 4, AccelZ: 0,
		GyroX: 1, GyroY: 2, GyroZ: 2,
		Pressure: 1013.25, GPSSpeed: 1.5,
	}
	v := Extract(models.SensorWindow{Samples: []models.SensorSample{sample}})

	assert.Equal(t, 3.0, v.Get(AccelX, StatMean))
	assert.Equal(t, 4.0, v.Get(AccelY, StatMedian))
	assert.Equal(t, 2.0, v.Get(GyroZ, StatMax))
	for axis := AccelX; axis < axisCount; axis++ {
		assert.Zero(t, v.Get(axis, StatStd))
		assert.Zero(t, v.Get(axis, StatRange))
	}
	assert.Equal(t, 5.0, v[AccMagMean])
	assert.Equal(t, 3.0, v[GyroMagMean])
	assert.Zero(t, v[AccMagStd])
	assert.Equal(t, 1.5, v[SpeedMean])
	assert.Equal(t, 1013.25, v[PressureMean])
	assert.Zero(t, v[PressureStd])
}

func TestExtractStatistics(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	samples := make([]models.SensorSample, len(xs))
	for i, x := range xs {
		samples[i] = models.SensorSample{AccelX: x, GyroY: -x, GPSSpeed: float64(i)}
	}
	v := Extract(models.SensorWindow{Samples: samples})

	assert.InDelta(t, 5.0, v.Get(AccelX, StatMean), 1e-12)
	assert.InDelta(t, 2.0, v.Get(AccelX, StatStd), 1e-12)
	assert.Equal(t, 9.0, v.Get(AccelX, StatMax))
	assert.Equal(t, 2.0, v.Get(AccelX, StatMin))
	assert.Equal(t, 7.0, v.Get(AccelX, StatRange))
	assert.Equal(t, 4.5, v.Get(AccelX, StatMedian))
	assert.InDelta(t, 5.0, v.Get(GyroY, StatSMA), 1e-12)
	assert.InDelta(t, -5.0, v.Get(GyroY, StatMean), 1e-12)
	assert.Equal(t, 7.0, v[SpeedMax])
	for _, f := range v {
		assert.False(t, math.IsNaN(f))
	}
}

func TestModelInput(t *testing.T) {
	start := time.Unix(0, 0)
	window := models.SensorWindow{
		StartTime: start,
		EndTime:   start.Add(5 * time.Second),
		Samples: []models.SensorSample{
			{AccelX: 1, GyroZ: 2, GPSSpeed: 3},
			{AccelX: 3, GyroZ: 2, GPSSpeed: 5},
		},
	}
	input := ModelInput(ExtractSet(window))
	require.Len(t, input, ModelInputSize)
	assert.Equal(t, 2.0, input[0])
	assert.Equal(t, 1.0, input[3])
	assert.Equal(t, 2.0, input[9])
	assert.Equal(t, 5.0, input[13])
	assert.Equal(t, 4.0, input[14])
	assert.Equal(t, 5.0, input[16])
}

func TestFromSlice(t *testing.T) {
	_, ok := FromSlice(make([]float64, 10))
	assert.False(t, ok)

	values := make([]float64, Size)
	values[SpeedMean] = 2
	v, ok := FromSlice(values)
	require.True(t, ok)
	assert.InDelta(t, 7.2, v.SpeedMeanKmh(), 1e-12)
}
