package roadmatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/ecogo-motion/internal/models"
)

type stubSnapper struct {
	mu     sync.Mutex
	result []SnappedPoint
	err    error
	delay  time.Duration
	calls  int
	last   []models.RoutePoint
}

func (s *stubSnapper) SnapToRoads(ctx context.Context, path []models.RoutePoint) ([]SnappedPoint, error) {
	s.mu.Lock()
	s.calls++
	s.last = path
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.result, s.err
}

func fix(i int, speed float64) models.LocationFix {
	return models.LocationFix{
		Timestamp: time.Unix(int64(i), 0),
		Latitude:  1.30,
		Longitude: 103.80 + float64(i)*0.0001,
		Speed:     speed,
	}
}

func TestDetectorTriggerCadence(t *testing.T) {
	d := NewDetector(&stubSnapper{}, Config{TriggerEvery: 10, MaxTrajectory: 100})

	var triggers []int
	for i := 1; i <= 250; i++ {
		if d.AddFix(fix(i, 1)) {
			triggers = append(triggers, i)
		}
	}

	require.Len(t, triggers, 25)
	assert.Equal(t, 10, triggers[0])
	assert.Equal(t, 250, triggers[24])
	assert.Equal(t, 100, d.Len())
}

func TestDetectorRejectsInvalidFix(t *testing.T) {
	d := NewDetector(&stubSnapper{}, DefaultConfig())
	assert.False(t, d.AddFix(models.LocationFix{Latitude: 95, Longitude: 0}))
	assert.Zero(t, d.Len())
}

func TestDetectorEvaluate(t *testing.T) {
	snapper := &stubSnapper{result: []SnappedPoint{
		{RoadClass: RoadMotorway},
		{RoadClass: RoadMotorway},
	}}
	d := NewDetector(snapper, DefaultConfig())

	for i := 0; i < 30; i++ {
		d.AddFix(fix(i, 5))
	}
	// only the last 15 speeds count
	for i := 30; i < 45; i++ {
		d.AddFix(fix(i, 25))
	}

	res, ok := d.Evaluate(context.Background())
	require.True(t, ok)
	assert.Equal(t, models.ModeDriving, res.Prediction.Mode)
	assert.InDelta(t, 0.95, res.Prediction.Confidence, 1e-9)
	assert.InDelta(t, 25, res.AvgSpeedMps, 1e-9)
	assert.False(t, res.At.IsZero())
	assert.Len(t, snapper.last, 45)
}

func TestDetectorEvaluateUnavailable(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		snapper := &stubSnapper{}
		d := NewDetector(snapper, DefaultConfig())
		d.AddFix(fix(1, 1))
		_, ok := d.Evaluate(context.Background())
		assert.False(t, ok)
		assert.Zero(t, snapper.calls)
	})

	t.Run("service error", func(t *testing.T) {
		d := NewDetector(&stubSnapper{err: errors.New("boom")}, DefaultConfig())
		d.AddFix(fix(1, 1))
		d.AddFix(fix(2, 1))
		_, ok := d.Evaluate(context.Background())
		assert.False(t, ok)
	})

	t.Run("timeout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Timeout = 20 * time.Millisecond
		d := NewDetector(&stubSnapper{delay: time.Second}, cfg)
		d.AddFix(fix(1, 1))
		d.AddFix(fix(2, 1))

		start := time.Now()
		_, ok := d.Evaluate(context.Background())
		assert.False(t, ok)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}

func TestDetectorHysteresisAndReset(t *testing.T) {
	d := NewDetector(&stubSnapper{}, DefaultConfig())
	for i := 0; i < 15; i++ {
		d.AddFix(fix(i, 2)) // 7.2 km/h
	}
	res, ok := d.Evaluate(context.Background())
	require.True(t, ok)
	assert.Equal(t, models.ModeWalking, res.Prediction.Mode)

	for i := 15; i < 30; i++ {
		d.AddFix(fix(i, 3.6)) // 12.96 km/h, inside the hysteresis band
	}
	res, ok = d.Evaluate(context.Background())
	require.True(t, ok)
	assert.Equal(t, models.ModeWalking, res.Prediction.Mode)

	d.Reset()
	assert.Zero(t, d.Len())
	for i := 0; i < 15; i++ {
		d.AddFix(fix(i, 3.6))
	}
	res, ok = d.Evaluate(context.Background())
	require.True(t, ok)
	assert.Equal(t, models.ModeCycling, res.Prediction.Mode)
}

func TestNone(t *testing.T) {
	m := None()
	assert.False(t, m.AddFix(fix(1, 1)))
	_, ok := m.Evaluate(context.Background())
	assert.False(t, ok)
	m.Reset()
}
