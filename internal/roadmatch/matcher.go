package roadmatch

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/stats"
)

// ErrTooFewPoints is returned when a snap request has fewer than two points
var ErrTooFewPoints = errors.New("at least 2 GPS points required")

// Result is a road-match prediction together with the speed it was based on
type Result struct {
	Prediction  models.ModePrediction
	AvgSpeedMps float64
	At          time.Time
}

// Matcher is the road-match capability. Sessions without a configured
// road-snapping service hold None(), which never produces a result.
type Matcher interface {
	// AddFix records a GPS fix and reports whether an evaluation is due
	AddFix(fix models.LocationFix) bool
	// Evaluate snaps the recent trajectory and classifies it. ok is false
	// when no result is available; failures are never returned.
	Evaluate(ctx context.Context) (Result, bool)
	// Reset clears the trajectory and hysteresis state
	Reset()
}

type none struct{}

// None returns a Matcher that is never available
func None() Matcher { return none{} }

func (none) AddFix(models.LocationFix) bool { return false }
func (none) Evaluate(context.Context) (Result, bool) { return Result{}, false }
func (none) Reset() {}

// Config controls trajectory buffering and call cadence
type Config struct {
	TriggerEvery  int
	MaxTrajectory int
	SpeedSamples  int
	Timeout       time.Duration
}

// DefaultConfig evaluates every 10th fix over at most 100 points
func DefaultConfig() Config {
	return Config{
		TriggerEvery:  10,
		MaxTrajectory: 100,
		SpeedSamples:  15,
		Timeout:       3 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TriggerEvery <= 0 {
		c.TriggerEvery = d.TriggerEvery
	}
	if c.MaxTrajectory <= 0 {
		c.MaxTrajectory = d.MaxTrajectory
	}
	if c.SpeedSamples <= 0 {
		c.SpeedSamples = d.SpeedSamples
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// Detector buffers the recent trajectory and classifies it through a Snapper
type Detector struct {
	cfg     Config
	snapper Snapper

	mu       sync.Mutex
	points   []models.RoutePoint
	speeds   []float64
	received int
	last     models.TransportMode
	epoch    uint64
}

// NewDetector creates a road-match detector around snapper
func NewDetector(snapper Snapper, cfg Config) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		cfg:     cfg,
		snapper: snapper,
		points:  make([]models.RoutePoint, 0, cfg.MaxTrajectory),
		speeds:  make([]float64, 0, cfg.MaxTrajectory),
		last:    models.ModeUnknown,
	}
}

// AddFix appends the fix to the capped trajectory. Every TriggerEvery-th
// accepted fix makes an evaluation due.
func (d *Detector) AddFix(fix models.LocationFix) bool {
	p := fix.Point()
	if !p.Valid() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.points) == d.cfg.MaxTrajectory {
		d.points = append(d.points[:0], d.points[1:]...)
		d.speeds = append(d.speeds[:0], d.speeds[1:]...)
	}
	speed := fix.Speed
	if speed < 0 || speed != speed {
		speed = 0
	}
	d.points = append(d.points, p)
	d.speeds = append(d.speeds, speed)
	d.received++

	return len(d.points) >= d.cfg.TriggerEvery && d.received%d.cfg.TriggerEvery == 0
}

// Evaluate snaps the buffered trajectory and classifies it. Snap failures and
// timeouts are logged and reported as unavailable.
func (d *Detector) Evaluate(ctx context.Context) (Result, bool) {
	d.mu.Lock()
	path := append([]models.RoutePoint(nil), d.points...)
	speeds := d.speeds
	if len(speeds) > d.cfg.SpeedSamples {
		speeds = speeds[len(speeds)-d.cfg.SpeedSamples:]
	}
	speeds = append([]float64(nil), speeds...)
	epoch := d.epoch
	d.mu.Unlock()

	if len(path) < 2 {
		return Result{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	snapped, err := d.snapper.SnapToRoads(ctx, path)
	if err != nil {
		log.Printf("[RoadMatch] Snap to roads unavailable: %v", err)
		return Result{}, false
	}

	profile := Profile{
		Classes:     classCounts(snapped),
		MeanKmh:     stats.Mean(speeds) * 3.6,
		StdKmh:      stats.StdDev(speeds) * 3.6,
		SnappedSize: len(snapped),
	}

	d.mu.Lock()
	pred := Classify(profile, d.last)
	// a Reset during the call starts a fresh hysteresis history
	if epoch == d.epoch {
		d.last = pred.Mode
	}
	d.mu.Unlock()

	now := time.Now()
	pred.Timestamp = now
	log.Printf("[RoadMatch] %d points snapped to %d, avg %.1f km/h -> %s (%.2f)",
		len(path), len(snapped), profile.MeanKmh, pred.Mode, pred.Confidence)

	return Result{Prediction: pred, AvgSpeedMps: stats.Mean(speeds), At: now}, true
}

// Reset clears the trajectory and hysteresis state
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.points = d.points[:0]
	d.speeds = d.speeds[:0]
	d.received = 0
	d.last = models.ModeUnknown
	d.epoch++
}

// Len returns the number of buffered trajectory points
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.points)
}

func classCounts(points []SnappedPoint) map[RoadClass]int {
	counts := make(map[RoadClass]int)
	for _, p := range points {
		class := p.RoadClass
		if class == "" {
			class = RoadAligned
		}
		counts[class]++
	}
	return counts
}
