package fusion

import (
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
)

// Config holds the arbitration thresholds
type Config struct {
	TrustLocalAbove float64 // local results at or above are used as-is
	ArbitrateAbove  float64 // lower bound of the disagreement band
	RoadBaseline    float64 // road-match confidence assumed when labels agree
	RoadOverride    float64 // confidence given to road-match when local is weak
	HighSpeedMps    float64 // disagreements above this speed go to road-match
	RailBandMinMps  float64
	RailBandMaxMps  float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		TrustLocalAbove: 0.85,
		ArbitrateAbove:  0.65,
		RoadBaseline:    0.8,
		RoadOverride:    0.75,
		HighSpeedMps:    20,
		RailBandMinMps:  3,
		RailBandMaxMps:  15,
	}
}

// Arbiter reconciles a local prediction with an optional road-match result
type Arbiter struct {
	cfg Config
}

// NewArbiter creates an arbiter
func NewArbiter(cfg Config) *Arbiter {
	return &Arbiter{cfg: cfg}
}

// Fuse combines local with road. When ok is false the local prediction is
// returned unchanged.
func (a *Arbiter) Fuse(local models.ModePrediction, road roadmatch.Result, ok bool) models.ModePrediction {
	if !ok {
		return local
	}
	if local.Confidence >= a.cfg.TrustLocalAbove {
		return local
	}

	roadMode := road.Prediction.Mode
	if local.Mode == roadMode {
		return a.fused(local.Mode, (local.Confidence+a.cfg.RoadBaseline)/2, local)
	}

	if local.Confidence >= a.cfg.ArbitrateAbove {
		speed := road.AvgSpeedMps
		switch {
		case local.Mode == models.ModeSubway && speed >= a.cfg.RailBandMinMps && speed <= a.cfg.RailBandMaxMps:
			return local
		case speed > a.cfg.HighSpeedMps:
			return a.fused(roadMode, local.Confidence, local)
		default:
			return local
		}
	}

	return a.fused(roadMode, a.cfg.RoadOverride, local)
}

func (a *Arbiter) fused(mode models.TransportMode, confidence float64, local models.ModePrediction) models.ModePrediction {
	pred := models.NewPrediction(mode, confidence, models.SourceFused)
	pred.Timestamp = local.Timestamp
	return pred
}
