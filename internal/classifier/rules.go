package classifier

import (
	"github.com/jengzang/ecogo-motion/internal/features"
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/stats"
)

// Rule engine confidence is mapped into [minRuleConfidence, minRuleConfidence+ruleConfidenceSpan]
const (
	minRuleConfidence  = 0.6
	ruleConfidenceSpan = 0.35
	fallbackConfidence = 0.5
)

// RuleClassifier is a threshold decision list over derived features. Speeds
// are compared in km/h.
type RuleClassifier struct{}

// NewRuleClassifier creates the rule engine
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Name returns the classifier name
func (r *RuleClassifier) Name() string {
	return models.SourceRules
}

// Predict returns the label and confidence for a feature vector. The first
// matching rule wins; unmatched vectors are bucketed by speed at 0.5.
func (r *RuleClassifier) Predict(v features.Vector) (models.TransportMode, float64) {
	speedMean := v.SpeedMeanKmh()
	speedStd := v.SpeedStdKmh()
	accMean := v[features.AccMagMean]
	accStd := v[features.AccMagStd]
	pressureStd := v[features.PressureStd]

	switch {
	case speedMean < 7 && accMean > 1.0 && accStd > 0.4:
		return models.ModeWalking, ruleConfidence(
			stats.Normalize(speedMean, 0, 7),
			stats.Normalize(accMean, 1.0, 3.0),
		)

	case speedMean >= 7 && speedMean <= 25 && accMean >= 0.3 && accMean <= 1.2 && speedStd < 4:
		return models.ModeCycling, ruleConfidence(
			stats.Normalize(speedMean, 7, 25),
			stats.Normalize(accMean, 0.3, 1.2),
		)

	case speedMean >= 10 && speedMean <= 60 && speedStd > 4 && accMean < 1.0:
		return models.ModeBus, ruleConfidence(
			stats.Normalize(speedStd, 4, 15),
			stats.Normalize(speedMean, 10, 60),
		)

	case speedMean > 25 && pressureStd > 3 && accMean < 0.6:
		return models.ModeSubway, ruleConfidence(
			stats.Normalize(speedMean, 25, 80),
			stats.Normalize(pressureStd, 3, 15),
		)

	case speedMean > 15 && accMean < 0.7 && speedStd < 10:
		return models.ModeDriving, ruleConfidence(
			stats.Normalize(speedMean, 15, 100),
			stats.Normalize(accMean, 0, 0.7),
		)
	}

	switch {
	case speedMean < 7:
		return models.ModeWalking, fallbackConfidence
	case speedMean < 25:
		return models.ModeCycling, fallbackConfidence
	case speedMean < 60:
		return models.ModeBus, fallbackConfidence
	default:
		return models.ModeDriving, fallbackConfidence
	}
}

// PredictProbability returns a distribution over models.ClassifiedModes that
// places the confidence on the predicted label and splits the rest evenly.
func (r *RuleClassifier) PredictProbability(v features.Vector) []float64 {
	mode, confidence := r.Predict(v)
	probs := make([]float64, len(models.ClassifiedModes))
	share := (1 - confidence) / float64(len(probs)-1)
	for i, m := range models.ClassifiedModes {
		if m == mode {
			probs[i] = confidence
		} else {
			probs[i] = share
		}
	}
	return probs
}

// Classify implements Classifier
func (r *RuleClassifier) Classify(set features.Set) (models.ModePrediction, error) {
	mode, confidence := r.Predict(set.Vector)
	return models.NewPrediction(mode, confidence, models.SourceRules), nil
}

func ruleConfidence(a, b float64) float64 {
	return minRuleConfidence + (a+b)/2*ruleConfidenceSpan
}
