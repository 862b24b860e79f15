package sensor

import (
	"math"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// Kind identifies a raw sensor source
type Kind string

// Sensor kinds
const (
	KindAccelerometer Kind = "accelerometer"
	KindGyroscope     Kind = "gyroscope"
	KindBarometer     Kind = "barometer"
	KindGPSSpeed      Kind = "gps_speed"
)

// Reading is one raw value pushed by a motion or location source
type Reading struct {
	Kind      Kind      `json:"kind"`
	Values    []float64 `json:"values"`
	Timestamp time.Time `json:"timestamp"`
}

// Config controls sampling and windowing
type Config struct {
	SampleInterval time.Duration
	WindowSize     time.Duration
	SlideStep      time.Duration
}

// DefaultConfig samples at 20 Hz into 5 s windows emitted every 2.5 s
func DefaultConfig() Config {
	return Config{
		SampleInterval: 50 * time.Millisecond,
		WindowSize:     5 * time.Second,
		SlideStep:      2500 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SampleInterval <= 0 {
		c.SampleInterval = d.SampleInterval
	}
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.SlideStep <= 0 {
		c.SlideStep = d.SlideStep
	}
	return c
}

// SamplesPerWindow is the buffer size at which windows start to be emitted
func (c Config) SamplesPerWindow() int {
	c = c.withDefaults()
	n := int(c.WindowSize / c.SampleInterval)
	if n < 1 {
		n = 1
	}
	return n
}

// Buffer caches the latest value per source and slices synthesized samples
// into overlapping windows. It is not safe for concurrent use; Collector
// owns one and drives it from a single goroutine.
type Buffer struct {
	cfg      Config
	latest   models.SensorSample
	samples  []models.SensorSample
	lastEmit time.Time
}

// NewBuffer creates an empty buffer
func NewBuffer(cfg Config) *Buffer {
	cfg = cfg.withDefaults()
	return &Buffer{
		cfg:     cfg,
		samples: make([]models.SensorSample, 0, cfg.SamplesPerWindow()+1),
	}
}

// Apply caches a reading. Readings with too few or non-finite values are
// ignored and reported as false.
func (b *Buffer) Apply(r Reading) bool {
	for _, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	switch r.Kind {
	case KindAccelerometer:
		if len(r.Values) < 3 {
			return false
		}
		b.latest.AccelX, b.latest.AccelY, b.latest.AccelZ = r.Values[0], r.Values[1], r.Values[2]
	case KindGyroscope:
		if len(r.Values) < 3 {
			return false
		}
		b.latest.GyroX, b.latest.GyroY, b.latest.GyroZ = r.Values[0], r.Values[1], r.Values[2]
	case KindBarometer:
		if len(r.Values) < 1 {
			return false
		}
		b.latest.Pressure = r.Values[0]
	case KindGPSSpeed:
		if len(r.Values) < 1 {
			return false
		}
		b.latest.GPSSpeed = r.Values[0]
	default:
		return false
	}
	return true
}

// Tick appends one sample stamped now, evicts samples older than the window
// and returns a window copy when the buffer is full and a slide step has
// passed since the previous emission.
func (b *Buffer) Tick(now time.Time) (models.SensorWindow, bool) {
	sample := b.latest
	sample.Timestamp = now
	b.samples = append(b.samples, sample)

	cutoff := now.Add(-b.cfg.WindowSize)
	drop := 0
	for drop < len(b.samples) && b.samples[drop].Timestamp.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		b.samples = append(b.samples[:0], b.samples[drop:]...)
	}

	if len(b.samples) < b.cfg.SamplesPerWindow() {
		return models.SensorWindow{}, false
	}
	if !b.lastEmit.IsZero() && now.Sub(b.lastEmit) < b.cfg.SlideStep {
		return models.SensorWindow{}, false
	}

	b.lastEmit = now
	window := models.SensorWindow{
		StartTime: b.samples[0].Timestamp,
		EndTime:   now,
		Samples:   make([]models.SensorSample, len(b.samples)),
	}
	copy(window.Samples, b.samples)
	return window, true
}

// Len returns the number of buffered samples
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Reset drops all samples and cached readings
func (b *Buffer) Reset() {
	b.latest = models.SensorSample{}
	b.samples = b.samples[:0]
	b.lastEmit = time.Time{}
}
