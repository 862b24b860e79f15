package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/jengzang/ecogo-motion/internal/features"
	"github.com/jengzang/ecogo-motion/internal/models"
)

// DefaultModelLabels is the output order of exported models
var DefaultModelLabels = []models.TransportMode{
	models.ModeWalking,
	models.ModeCycling,
	models.ModeBus,
	models.ModeDriving,
	models.ModeSubway,
}

// SoftmaxSpec is the on-disk model definition
type SoftmaxSpec struct {
	Labels  []string    `json:"labels,omitempty"`
	Weights [][]float64 `json:"weights"`         // len(labels) x features.ModelInputSize
	Bias    []float64   `json:"bias"`            // len(labels)
	Mean    []float64   `json:"mean,omitempty"`  // per-input centering
	Scale   []float64   `json:"scale,omitempty"` // per-input scaling
}

// SoftmaxModel is a linear model with a softmax output layer
type SoftmaxModel struct {
	labels  []models.TransportMode
	weights *mat.Dense
	bias    *mat.VecDense
	mean    []float64
	scale   []float64
}

// LoadSoftmaxModel reads a model definition from a JSON file
func LoadSoftmaxModel(path string) (*SoftmaxModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var spec SoftmaxSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return NewSoftmaxModel(spec)
}

// NewSoftmaxModel validates spec and builds the model
func NewSoftmaxModel(spec SoftmaxSpec) (*SoftmaxModel, error) {
	labels := DefaultModelLabels
	if len(spec.Labels) > 0 {
		labels = make([]models.TransportMode, len(spec.Labels))
		for i, l := range spec.Labels {
			labels[i] = models.ParseTransportMode(l)
		}
	}

	rows := len(labels)
	cols := features.ModelInputSize
	if len(spec.Weights) != rows || len(spec.Bias) != rows {
		return nil, fmt.Errorf("%w: want %d output rows, got %d weights and %d bias",
			ErrFeatureShape, rows, len(spec.Weights), len(spec.Bias))
	}
	if spec.Mean != nil && len(spec.Mean) != cols {
		return nil, fmt.Errorf("%w: mean has %d entries, want %d", ErrFeatureShape, len(spec.Mean), cols)
	}
	if spec.Scale != nil && len(spec.Scale) != cols {
		return nil, fmt.Errorf("%w: scale has %d entries, want %d", ErrFeatureShape, len(spec.Scale), cols)
	}

	flat := make([]float64, 0, rows*cols)
	for i, row := range spec.Weights {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: weight row %d has %d entries, want %d", ErrFeatureShape, i, len(row), cols)
		}
		flat = append(flat, row...)
	}

	return &SoftmaxModel{
		labels:  labels,
		weights: mat.NewDense(rows, cols, flat),
		bias:    mat.NewVecDense(rows, append([]float64(nil), spec.Bias...)),
		mean:    spec.Mean,
		scale:   spec.Scale,
	}, nil
}

// Name returns the classifier name
func (m *SoftmaxModel) Name() string {
	return models.SourceModel
}

// Probabilities returns the softmax output in label order
func (m *SoftmaxModel) Probabilities(input []float64) ([]float64, error) {
	if m == nil || m.weights == nil {
		return nil, ErrModelNotLoaded
	}
	if len(input) != features.ModelInputSize {
		return nil, fmt.Errorf("%w: got %d inputs, want %d", ErrFeatureShape, len(input), features.ModelInputSize)
	}

	x := make([]float64, len(input))
	for i, v := range input {
		if m.mean != nil {
			v -= m.mean[i]
		}
		if m.scale != nil && m.scale[i] != 0 {
			v /= m.scale[i]
		}
		x[i] = v
	}

	var logits mat.VecDense
	logits.MulVec(m.weights, mat.NewVecDense(len(x), x))
	logits.AddVec(&logits, m.bias)

	return softmax(logits.RawVector().Data), nil
}

// Classify implements Classifier
func (m *SoftmaxModel) Classify(set features.Set) (models.ModePrediction, error) {
	probs, err := m.Probabilities(features.ModelInput(set))
	if err != nil {
		return models.ModePrediction{}, err
	}

	best := 0
	for i, p := range probs {
		if math.IsNaN(p) {
			return models.ModePrediction{}, fmt.Errorf("model produced NaN for %s", m.labels[i])
		}
		if p > probs[best] {
			best = i
		}
	}

	dist := make(map[models.TransportMode]float64, len(models.ClassifiedModes)+1)
	for _, mode := range models.ClassifiedModes {
		dist[mode] = 0
	}
	dist[models.ModeUnknown] = 0
	for i, mode := range m.labels {
		dist[mode] += probs[i]
	}

	return models.ModePrediction{
		Mode:          m.labels[best],
		Confidence:    probs[best],
		Probabilities: dist,
		Source:        models.SourceModel,
	}, nil
}

func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	maxLogit := floats.Max(logits)
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
