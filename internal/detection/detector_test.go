package detection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/ecogo-motion/internal/classifier"
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
	"github.com/jengzang/ecogo-motion/internal/sensor"
	"github.com/jengzang/ecogo-motion/internal/telemetry"
)

type stubMatcher struct {
	mu      sync.Mutex
	result  roadmatch.Result
	ok      bool
	release chan struct{}
	fixes   int
	every   int
	resets  int
}

func (m *stubMatcher) AddFix(models.LocationFix) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixes++
	return m.fixes%m.every == 0
}

func (m *stubMatcher) Evaluate(context.Context) (roadmatch.Result, bool) {
	if m.release != nil {
		<-m.release
	}
	return m.result, m.ok
}

func (m *stubMatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

type captureRecorder struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *captureRecorder) Record(e telemetry.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func (r *captureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func roadResult(mode models.TransportMode, speed float64) roadmatch.Result {
	return roadmatch.Result{
		Prediction:  models.NewPrediction(mode, 0.9, models.SourceRoadMatch),
		AvgSpeedMps: speed,
		At:          time.Now(),
	}
}

// walkingWindow has accel magnitude mean 1.5, std 0.6 and speed 1.2 m/s
func walkingWindow(end time.Time) models.SensorWindow {
	samples := make([]models.SensorSample, 100)
	for i := range samples {
		x := 0.9
		if i%2 == 1 {
			x = 2.1
		}
		samples[i] = models.SensorSample{
			Timestamp: end.Add(time.Duration(i-99) * 50 * time.Millisecond),
			AccelX:    x,
			GPSSpeed:  1.2,
		}
	}
	return models.SensorWindow{StartTime: samples[0].Timestamp, EndTime: end, Samples: samples}
}

// crawlingWindow is a low-confidence fallback window at 8 km/h
func crawlingWindow(end time.Time) models.SensorWindow {
	samples := make([]models.SensorSample, 10)
	for i := range samples {
		samples[i] = models.SensorSample{Timestamp: end, AccelX: 0.1, GPSSpeed: 2.2}
	}
	return models.SensorWindow{StartTime: end.Add(-time.Second), EndTime: end, Samples: samples}
}

func sensorCaps() Capabilities { return Capabilities{HasMotionSensors: true} }

func TestPathSelection(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, PathSensor, New("a", cfg, sensorCaps(), nil, nil, nil).Path())
	assert.Equal(t, PathTrajectory, New("b", cfg, Capabilities{}, nil, nil, nil).Path())

	cfg.ForceTrajectoryOnly = true
	assert.Equal(t, PathTrajectory, New("c", cfg, sensorCaps(), nil, nil, nil).Path())
}

func TestProcessWindowLocalOnly(t *testing.T) {
	rec := &captureRecorder{}
	d := New("s1", DefaultConfig(), sensorCaps(), classifier.NewLocalClassifier(""), roadmatch.None(), rec)

	_, ok := d.ProcessWindow(walkingWindow(time.Now()))
	assert.False(t, ok, "stopped sessions do not classify")

	d.Start(context.Background())
	defer d.Stop()

	end := time.Now()
	pred, ok := d.ProcessWindow(walkingWindow(end))
	require.True(t, ok)
	assert.Equal(t, models.ModeWalking, pred.Mode)
	assert.GreaterOrEqual(t, pred.Confidence, 0.6)
	assert.LessOrEqual(t, pred.Confidence, 0.95)
	assert.Equal(t, end, pred.Timestamp)

	latest, ok := d.Latest()
	require.True(t, ok)
	assert.Equal(t, pred, latest)
	assert.Equal(t, 1, rec.count())

	select {
	case got := <-d.Predictions():
		assert.Equal(t, pred, got)
	default:
		t.Fatal("prediction not delivered")
	}
}

func TestProcessWindowSmoothing(t *testing.T) {
	d := New("s1", DefaultConfig(), sensorCaps(), nil, nil, nil)
	d.Start(context.Background())
	defer d.Stop()

	now := time.Now()
	d.ProcessWindow(walkingWindow(now))
	d.ProcessWindow(walkingWindow(now.Add(time.Second)))
	pred, ok := d.ProcessWindow(walkingWindow(now.Add(2 * time.Second)))
	require.True(t, ok)
	assert.Equal(t, models.ModeWalking, pred.Mode)
	assert.Equal(t, models.SourceSmoothed, pred.Source)
	assert.Equal(t, 1.0, pred.Confidence)
}

func TestSensorPathFusesRoadMatch(t *testing.T) {
	matcher := &stubMatcher{every: 1, ok: true, result: roadResult(models.ModeBus, 8)}
	d := New("s1", DefaultConfig(), sensorCaps(), nil, matcher, nil)
	d.Start(context.Background())
	defer d.Stop()

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8, Speed: 2.2})
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.hasRoad
	}, time.Second, 5*time.Millisecond)

	pred, ok := d.ProcessWindow(crawlingWindow(time.Now()))
	require.True(t, ok)
	assert.Equal(t, models.ModeBus, pred.Mode)
	assert.Equal(t, models.SourceFused, pred.Source)
	assert.InDelta(t, 0.75, pred.Confidence, 1e-9)
}

func TestSensorPathIgnoresStaleRoadMatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoadResultMaxAge = time.Second
	matcher := &stubMatcher{every: 1, ok: true, result: roadResult(models.ModeBus, 8)}
	d := New("s1", cfg, sensorCaps(), nil, matcher, nil)
	d.Start(context.Background())
	defer d.Stop()

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8})
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.hasRoad
	}, time.Second, 5*time.Millisecond)

	pred, ok := d.ProcessWindow(crawlingWindow(time.Now().Add(time.Minute)))
	require.True(t, ok)
	assert.Equal(t, models.ModeCycling, pred.Mode)
	assert.Equal(t, models.SourceRules, pred.Source)
}

func TestTrajectoryPathPublishesRoadMatch(t *testing.T) {
	matcher := &stubMatcher{every: 10, ok: true, result: roadResult(models.ModeDriving, 25)}
	rec := &captureRecorder{}
	d := New("t1", DefaultConfig(), Capabilities{}, nil, matcher, rec)
	d.Start(context.Background())
	defer d.Stop()

	assert.False(t, d.PushReading(sensor.Reading{Kind: sensor.KindAccelerometer, Values: []float64{0, 0, 1}}))

	for i := 0; i < 9; i++ {
		d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8, Speed: 25})
	}
	_, ok := d.Latest()
	assert.False(t, ok)

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8, Speed: 25})
	select {
	case pred := <-d.Predictions():
		assert.Equal(t, models.ModeDriving, pred.Mode)
		assert.Equal(t, models.SourceRoadMatch, pred.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("no road-match prediction published")
	}
	assert.Equal(t, 1, rec.count())
}

func TestUnavailableRoadMatchPublishesNothing(t *testing.T) {
	matcher := &stubMatcher{every: 1, ok: false}
	d := New("t1", DefaultConfig(), Capabilities{}, nil, matcher, nil)
	d.Start(context.Background())
	defer d.Stop()

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8})
	require.Eventually(t, func() bool { return !d.evaluating.Load() }, time.Second, 5*time.Millisecond)
	_, ok := d.Latest()
	assert.False(t, ok)
}

func TestLateRoadMatchDiscardedAfterStop(t *testing.T) {
	matcher := &stubMatcher{every: 1, ok: true, result: roadResult(models.ModeBus, 8), release: make(chan struct{})}
	d := New("t1", DefaultConfig(), Capabilities{}, nil, matcher, nil)
	d.Start(context.Background())

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8})
	require.True(t, d.evaluating.Load())

	d.Stop()
	close(matcher.release)
	require.Eventually(t, func() bool { return !d.evaluating.Load() }, time.Second, 5*time.Millisecond)

	_, ok := d.Latest()
	assert.False(t, ok)
	select {
	case <-d.Predictions():
		t.Fatal("late result was published")
	default:
	}
}

func TestLateRoadMatchAfterRestartLeavesSmootherEmpty(t *testing.T) {
	matcher := &stubMatcher{every: 1, ok: true, result: roadResult(models.ModeBus, 8), release: make(chan struct{})}
	d := New("t1", DefaultConfig(), Capabilities{}, nil, matcher, nil)
	d.Start(context.Background())

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8})
	require.True(t, d.evaluating.Load())

	d.Stop()
	d.Start(context.Background())
	defer d.Stop()

	close(matcher.release)
	require.Eventually(t, func() bool { return !d.evaluating.Load() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, d.pipeline.Len(), "result from the previous run was smoothed")
	_, ok := d.Latest()
	assert.False(t, ok)
}

func TestStopResetsState(t *testing.T) {
	matcher := &stubMatcher{every: 100}
	d := New("s1", DefaultConfig(), sensorCaps(), nil, matcher, nil)

	d.Start(context.Background())
	d.Start(context.Background())
	assert.True(t, d.Running())
	d.ProcessWindow(walkingWindow(time.Now()))
	d.ProcessWindow(walkingWindow(time.Now()))

	d.Stop()
	d.Stop()
	assert.False(t, d.Running())
	assert.GreaterOrEqual(t, matcher.resets, 2)

	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8})
	assert.Equal(t, 0, matcher.fixes, "fixes are ignored while stopped")

	d.Start(context.Background())
	defer d.Stop()
	pred, ok := d.ProcessWindow(walkingWindow(time.Now()))
	require.True(t, ok)
	assert.Equal(t, models.SourceRules, pred.Source, "smoothing history starts empty")
}

func TestSensorPathEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sampling = sensor.Config{
		SampleInterval: 5 * time.Millisecond,
		WindowSize:     50 * time.Millisecond,
		SlideStep:      25 * time.Millisecond,
	}
	d := New("e2e", cfg, sensorCaps(), nil, nil, nil)
	d.Start(context.Background())
	defer d.Stop()

	require.True(t, d.PushReading(sensor.Reading{Kind: sensor.KindAccelerometer, Values: []float64{0.1, 0.1, 0.1}}))
	d.UpdateLocation(models.LocationFix{Latitude: 1.3, Longitude: 103.8, Speed: 30})

	select {
	case pred := <-d.Predictions():
		assert.NotEqual(t, models.ModeUnknown, pred.Mode)
	case <-time.After(2 * time.Second):
		t.Fatal("no prediction from sampled windows")
	}
}
