package features

import "time"

// Size is the length of every extracted feature vector
const Size = 53

// Axis identifies one of the six motion axes
type Axis int

// Motion axes in vector order
const (
	AccelX Axis = iota
	AccelY
	AccelZ
	GyroX
	GyroY
	GyroZ
	axisCount
)

// Stat identifies one per-axis statistic
type Stat int

// Per-axis statistics in vector order
const (
	StatMean Stat = iota
	StatStd
	StatMax
	StatMin
	StatRange
	StatMedian
	StatSMA
	statCount
)

// Indices of the derived features that follow the per-axis block
const (
	AccMagMean = int(axisCount)*int(statCount) + iota
	AccMagStd
	AccMagMax
	GyroMagMean
	GyroMagStd
	GyroMagMax
	SpeedMean
	SpeedStd
	SpeedMax
	PressureMean
	PressureStd
)

// Index returns the vector position of stat for axis
func Index(axis Axis, stat Stat) int {
	return int(axis)*int(statCount) + int(stat)
}

// Vector is the fixed-length ordered feature vector
type Vector [Size]float64

// Get returns the per-axis statistic
func (v Vector) Get(axis Axis, stat Stat) float64 {
	return v[Index(axis, stat)]
}

// SpeedMeanKmh returns the mean GPS speed in km/h
func (v Vector) SpeedMeanKmh() float64 { return v[SpeedMean] * 3.6 }

// SpeedStdKmh returns the GPS speed standard deviation in km/h
func (v Vector) SpeedStdKmh() float64 { return v[SpeedStd] * 3.6 }

// SpeedMaxKmh returns the max GPS speed in km/h
func (v Vector) SpeedMaxKmh() float64 { return v[SpeedMax] * 3.6 }

// Slice returns a copy of the vector as a slice
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// FromSlice builds a Vector from exactly Size values
func FromSlice(values []float64) (Vector, bool) {
	var v Vector
	if len(values) != Size {
		return v, false
	}
	copy(v[:], values)
	return v, true
}

// Set is the classifier input: the statistics plus the window duration,
// which only the learned model consumes.
type Set struct {
	Vector   Vector
	Duration time.Duration
}

// ModelInputSize is the length of the learned model's input
const ModelInputSize = 17

// ModelInput projects a Set onto the learned model's input layout:
// accel mean xyz, accel std xyz, accel magnitude mean, gyro mean xyz,
// gyro std xyz, duration in seconds, GPS speed mean/std/max.
func ModelInput(s Set) []float64 {
	v := s.Vector
	return []float64{
		v.Get(AccelX, StatMean), v.Get(AccelY, StatMean), v.Get(AccelZ, StatMean),
		v.Get(AccelX, StatStd), v.Get(AccelY, StatStd), v.Get(AccelZ, StatStd),
		v[AccMagMean],
		v.Get(GyroX, StatMean), v.Get(GyroY, StatMean), v.Get(GyroZ, StatMean),
		v.Get(GyroX, StatStd), v.Get(GyroY, StatStd), v.Get(GyroZ, StatStd),
		s.Duration.Seconds(),
		v[SpeedMean], v[SpeedStd], v[SpeedMax],
	}
}
