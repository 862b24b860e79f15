package classifier

import (
	"errors"
	"log"

	"github.com/jengzang/ecogo-motion/internal/features"
	"github.com/jengzang/ecogo-motion/internal/models"
)

var (
	// ErrFeatureShape is returned when an input does not match the expected layout
	ErrFeatureShape = errors.New("feature vector has unexpected shape")
	// ErrModelNotLoaded is returned by a learned model that has no weights
	ErrModelNotLoaded = errors.New("model not loaded")
)

// Classifier maps a feature set to a mode prediction
type Classifier interface {
	Name() string
	Classify(set features.Set) (models.ModePrediction, error)
}

// Hybrid runs a learned model when one is configured and falls back to the
// rule engine whenever the model is absent or fails.
type Hybrid struct {
	model Classifier
	rules *RuleClassifier
}

// NewHybrid creates a hybrid classifier. model may be nil.
func NewHybrid(model Classifier, rules *RuleClassifier) *Hybrid {
	if rules == nil {
		rules = NewRuleClassifier()
	}
	return &Hybrid{model: model, rules: rules}
}

// NewLocalClassifier builds the on-device classifier. An empty modelPath or a
// model that fails to load leaves the rule engine as the only strategy.
func NewLocalClassifier(modelPath string) *Hybrid {
	if modelPath == "" {
		return NewHybrid(nil, nil)
	}

	model, err := LoadSoftmaxModel(modelPath)
	if err != nil {
		log.Printf("[Classifier] Model unavailable, using rules only: %v", err)
		return NewHybrid(nil, nil)
	}
	log.Printf("[Classifier] Loaded model from %s", modelPath)
	return NewHybrid(model, nil)
}

// Name returns the active strategy
func (h *Hybrid) Name() string {
	if h.model != nil {
		return "hybrid(" + h.model.Name() + ")"
	}
	return h.rules.Name()
}

// HasModel reports whether a learned model is configured
func (h *Hybrid) HasModel() bool {
	return h.model != nil
}

// Classify never fails: model errors degrade to the rule engine
func (h *Hybrid) Classify(set features.Set) (models.ModePrediction, error) {
	if h.model != nil {
		pred, err := h.model.Classify(set)
		if err == nil {
			return pred, nil
		}
		log.Printf("[Classifier] Model inference failed, falling back to rules: %v", err)
	}
	return h.rules.Classify(set)
}
