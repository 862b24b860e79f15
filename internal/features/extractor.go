package features

import (
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/stats"
)

// Extract turns a window into its feature vector. An empty window yields the
// all-zero vector.
func Extract(window models.SensorWindow) Vector {
	var v Vector
	n := len(window.Samples)
	if n == 0 {
		return v
	}

	axes := make([][]float64, axisCount)
	for i := range axes {
		axes[i] = make([]float64, n)
	}
	speed := make([]float64, n)
	pressure := make([]float64, n)

	for i, s := range window.Samples {
		axes[AccelX][i] = s.AccelX
		axes[AccelY][i] = s.AccelY
		axes[AccelZ][i] = s.AccelZ
		axes[GyroX][i] = s.GyroX
		axes[GyroY][i] = s.GyroY
		axes[GyroZ][i] = s.GyroZ
		speed[i] = s.GPSSpeed
		pressure[i] = s.Pressure
	}

	for axis, values := range axes {
		a := Axis(axis)
		v[Index(a, StatMean)] = stats.Mean(values)
		v[Index(a, StatStd)] = stats.StdDev(values)
		v[Index(a, StatMax)] = stats.Max(values)
		v[Index(a, StatMin)] = stats.Min(values)
		v[Index(a, StatRange)] = stats.Range(values)
		v[Index(a, StatMedian)] = stats.Median(values)
		v[Index(a, StatSMA)] = stats.SMA(values)
	}

	accMag := stats.Magnitudes(axes[AccelX], axes[AccelY], axes[AccelZ])
	v[AccMagMean] = stats.Mean(accMag)
	v[AccMagStd] = stats.StdDev(accMag)
	v[AccMagMax] = stats.Max(accMag)

	gyroMag := stats.Magnitudes(axes[GyroX], axes[GyroY], axes[GyroZ])
	v[GyroMagMean] = stats.Mean(gyroMag)
	v[GyroMagStd] = stats.StdDev(gyroMag)
	v[GyroMagMax] = stats.Max(gyroMag)

	v[SpeedMean] = stats.Mean(speed)
	v[SpeedStd] = stats.StdDev(speed)
	v[SpeedMax] = stats.Max(speed)

	v[PressureMean] = stats.Mean(pressure)
	v[PressureStd] = stats.StdDev(pressure)

	return v
}

// ExtractSet extracts the vector and records the window duration
func ExtractSet(window models.SensorWindow) Set {
	return Set{Vector: Extract(window), Duration: window.Duration()}
}
