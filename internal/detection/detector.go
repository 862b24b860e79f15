package detection

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jengzang/ecogo-motion/internal/classifier"
	"github.com/jengzang/ecogo-motion/internal/features"
	"github.com/jengzang/ecogo-motion/internal/fusion"
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
	"github.com/jengzang/ecogo-motion/internal/sensor"
	"github.com/jengzang/ecogo-motion/internal/telemetry"
)

// Path is the detection strategy a session runs
type Path string

// Detection paths
const (
	PathSensor     Path = "sensor"
	PathTrajectory Path = "trajectory"
)

// Capabilities describes what the device can deliver
type Capabilities struct {
	HasMotionSensors bool `json:"hasMotionSensors"`
}

// Config controls a detection session
type Config struct {
	Sampling            sensor.Config
	Fusion              fusion.Config
	SmoothingWindow     int
	ForceTrajectoryOnly bool
	// RoadResultMaxAge bounds how long a road-match result stays eligible for fusion
	RoadResultMaxAge time.Duration
}

// DefaultConfig returns the standard session configuration
func DefaultConfig() Config {
	return Config{
		Sampling:         sensor.DefaultConfig(),
		Fusion:           fusion.DefaultConfig(),
		SmoothingWindow:  fusion.DefaultWindow,
		RoadResultMaxAge: time.Minute,
	}
}

// Recorder receives published predictions
type Recorder interface {
	Record(e telemetry.Event) bool
}

type discardRecorder struct{}

func (discardRecorder) Record(telemetry.Event) bool { return true }

// Detector runs one detection session. Sensor sessions classify sensor
// windows locally and fuse the latest road-match result; trajectory
// sessions publish road-match results only.
type Detector struct {
	id         string
	cfg        Config
	path       Path
	classifier classifier.Classifier
	matcher    roadmatch.Matcher
	collector  *sensor.Collector
	pipeline   *fusion.Pipeline
	recorder   Recorder

	mu         sync.Mutex
	running    bool
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	road       roadmatch.Result
	hasRoad    bool
	latest     models.ModePrediction
	hasLatest  bool

	evaluating  atomic.Bool
	predictions chan models.ModePrediction
}

// New creates a stopped detector. matcher may be roadmatch.None() and
// recorder may be nil.
func New(id string, cfg Config, caps Capabilities, local classifier.Classifier, matcher roadmatch.Matcher, recorder Recorder) *Detector {
	if matcher == nil {
		matcher = roadmatch.None()
	}
	if recorder == nil {
		recorder = discardRecorder{}
	}
	if local == nil {
		local = classifier.NewRuleClassifier()
	}

	path := PathSensor
	if !caps.HasMotionSensors || cfg.ForceTrajectoryOnly {
		path = PathTrajectory
	}

	d := &Detector{
		id:          id,
		cfg:         cfg,
		path:        path,
		classifier:  local,
		matcher:     matcher,
		pipeline:    fusion.NewPipeline(cfg.Fusion, cfg.SmoothingWindow),
		recorder:    recorder,
		predictions: make(chan models.ModePrediction, 1),
	}
	if path == PathSensor {
		d.collector = sensor.NewCollector(cfg.Sampling)
	}
	return d
}

// ID returns the session identifier
func (d *Detector) ID() string { return d.id }

// Path returns the detection strategy in use
func (d *Detector) Path() Path { return d.path }

// Predictions delivers smoothed predictions; only the latest unread one is kept
func (d *Detector) Predictions() <-chan models.ModePrediction { return d.predictions }

// Running reports whether the session is active
func (d *Detector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start begins detection. Starting a running detector is a no-op.
func (d *Detector) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	d.running = true
	d.generation++
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.pipeline.Reset()
	d.matcher.Reset()
	d.hasRoad = false

	if d.path == PathSensor {
		d.collector.Start(d.ctx)
		d.wg.Add(1)
		go d.consumeWindows(d.ctx)
	}
	log.Printf("[Detection] Session %s started (%s path)", d.id, d.path)
}

// Stop ends detection and clears all buffered state. Road-match results
// still in flight are discarded when they arrive.
func (d *Detector) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.generation++
	d.cancel()
	d.hasRoad = false
	d.road = roadmatch.Result{}
	d.mu.Unlock()

	if d.collector != nil {
		d.collector.Stop()
	}
	d.wg.Wait()
	d.matcher.Reset()
	d.pipeline.Reset()

drain:
	for {
		select {
		case <-d.predictions:
		default:
			break drain
		}
	}
	log.Printf("[Detection] Session %s stopped", d.id)
}

// PushReading forwards a raw motion reading to the sampler. It returns false
// for trajectory sessions, stopped sessions and a full queue.
func (d *Detector) PushReading(r sensor.Reading) bool {
	if d.collector == nil {
		return false
	}
	return d.collector.Push(r)
}

// UpdateLocation feeds a GPS fix. Its speed is sampled like any other
// reading and the fix extends the road-match trajectory; every trigger
// launches at most one background road-match evaluation.
func (d *Detector) UpdateLocation(fix models.LocationFix) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	if d.collector != nil {
		d.collector.Push(sensor.Reading{
			Kind:      sensor.KindGPSSpeed,
			Values:    []float64{fix.Speed},
			Timestamp: fix.Timestamp,
		})
	}

	if !d.matcher.AddFix(fix) {
		return
	}
	if !d.evaluating.CompareAndSwap(false, true) {
		return
	}

	// not tracked by wg: Stop does not wait on the network, late results
	// are dropped by the generation check
	go func(ctx context.Context, gen uint64) {
		defer d.evaluating.Store(false)
		d.evaluateRoad(ctx, gen)
	}(d.ctx, d.generation)
}

// ProcessWindow classifies one window and publishes the fused prediction.
// It returns false when the session is not running a sensor path.
func (d *Detector) ProcessWindow(w models.SensorWindow) (models.ModePrediction, bool) {
	d.mu.Lock()
	if !d.running || d.path != PathSensor {
		d.mu.Unlock()
		return models.ModePrediction{}, false
	}
	gen := d.generation
	road, hasRoad := d.road, d.hasRoad
	d.mu.Unlock()

	if hasRoad && d.cfg.RoadResultMaxAge > 0 && w.EndTime.Sub(road.At) > d.cfg.RoadResultMaxAge {
		hasRoad = false
	}

	local, err := d.classifier.Classify(features.ExtractSet(w))
	if err != nil {
		log.Printf("[Detection] Session %s: local classification failed: %v", d.id, err)
		return models.ModePrediction{}, false
	}
	local.Timestamp = w.EndTime

	return d.publish(gen, func() models.ModePrediction {
		return d.pipeline.ProcessLocal(local, road, hasRoad)
	})
}

// Latest returns the most recent published prediction
func (d *Detector) Latest() (models.ModePrediction, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest, d.hasLatest
}

func (d *Detector) consumeWindows(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case w := <-d.collector.Windows():
			d.ProcessWindow(w)
		}
	}
}

func (d *Detector) evaluateRoad(ctx context.Context, gen uint64) {
	res, ok := d.matcher.Evaluate(ctx)
	if !ok {
		return
	}

	d.mu.Lock()
	stale := gen != d.generation || !d.running
	if !stale && d.path == PathSensor {
		d.road = res
		d.hasRoad = true
	}
	d.mu.Unlock()

	if stale {
		log.Printf("[Detection] Session %s: discarding late road-match result", d.id)
		return
	}
	if d.path == PathTrajectory {
		d.publish(gen, func() models.ModePrediction {
			return d.pipeline.ProcessRoad(res)
		})
	}
}

// publish runs fuse and stores its prediction as the latest one unless the
// session has moved on. fuse runs under d.mu and only for the current
// generation.
func (d *Detector) publish(gen uint64, fuse func() models.ModePrediction) (models.ModePrediction, bool) {
	d.mu.Lock()
	if gen != d.generation || !d.running {
		d.mu.Unlock()
		return models.ModePrediction{}, false
	}
	pred := fuse()
	if pred.Timestamp.IsZero() {
		pred.Timestamp = time.Now()
	}
	d.latest = pred
	d.hasLatest = true
	d.mu.Unlock()

	d.recorder.Record(telemetry.PredictionEvent(d.id, pred, pred.Timestamp))

	for {
		select {
		case d.predictions <- pred:
			return pred, true
		default:
		}
		select {
		case <-d.predictions:
		default:
		}
	}
}
