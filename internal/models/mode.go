package models

import "time"

// TransportMode is a classified mode of travel
type TransportMode string

// TransportMode constants
const (
	ModeWalking TransportMode = "WALKING"
	ModeCycling TransportMode = "CYCLING"
	ModeBus     TransportMode = "BUS"
	ModeSubway  TransportMode = "SUBWAY"
	ModeDriving TransportMode = "DRIVING"
	ModeUnknown TransportMode = "UNKNOWN"
)

// ClassifiedModes lists the labels a classifier can emit, in class-index order.
var ClassifiedModes = []TransportMode{
	ModeWalking,
	ModeCycling,
	ModeBus,
	ModeSubway,
	ModeDriving,
}

// ParseTransportMode maps a label string to a TransportMode, returning
// ModeUnknown for anything unrecognised.
func ParseTransportMode(s string) TransportMode {
	switch TransportMode(s) {
	case ModeWalking, ModeCycling, ModeBus, ModeSubway, ModeDriving:
		return TransportMode(s)
	default:
		return ModeUnknown
	}
}

// Prediction sources
const (
	SourceRules     = "rules"
	SourceModel     = "model"
	SourceRoadMatch = "road_match"
	SourceFused     = "fused"
	SourceSmoothed  = "smoothed"
)

// ModePrediction is the output of a classifier, the fusion arbiter or the smoother
type ModePrediction struct {
	Mode          TransportMode             `json:"mode"`
	Confidence    float64                   `json:"confidence"`    // 0~1
	Probabilities map[TransportMode]float64 `json:"probabilities"` // sums to 1
	Source        string                    `json:"source"`
	Timestamp     time.Time                 `json:"timestamp"`
}

// Distribution places confidence on mode and splits the remainder equally
// over the other classified modes. UNKNOWN always gets zero.
func Distribution(mode TransportMode, confidence float64) map[TransportMode]float64 {
	confidence = Clamp01(confidence)
	probs := make(map[TransportMode]float64, len(ClassifiedModes)+1)
	others := len(ClassifiedModes)
	if mode != ModeUnknown {
		others--
	}
	share := (1 - confidence) / float64(others)
	for _, m := range ClassifiedModes {
		if m == mode {
			probs[m] = confidence
			continue
		}
		probs[m] = share
	}
	probs[ModeUnknown] = 0
	if mode == ModeUnknown {
		probs[ModeUnknown] = confidence
	}
	return probs
}

// NewPrediction builds a prediction whose distribution is derived from the confidence
func NewPrediction(mode TransportMode, confidence float64, source string) ModePrediction {
	return ModePrediction{
		Mode:          mode,
		Confidence:    Clamp01(confidence),
		Probabilities: Distribution(mode, confidence),
		Source:        source,
	}
}

// Clamp01 clamps v into [0, 1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
