package classifier

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/ecogo-motion/internal/features"
	"github.com/jengzang/ecogo-motion/internal/models"
)

// speedModel scores classes only on GPS speed mean (input 14)
func speedModel() SoftmaxSpec {
	weights := make([][]float64, 5)
	for i := range weights {
		weights[i] = make([]float64, features.ModelInputSize)
	}
	weights[0][14] = -2 // WALKING
	weights[3][14] = 2  // DRIVING
	return SoftmaxSpec{
		Weights: weights,
		Bias:    []float64{0, 0, 0, 0, 0},
	}
}

func TestSoftmaxModel(t *testing.T) {
	model, err := NewSoftmaxModel(speedModel())
	require.NoError(t, err)

	var fast features.Vector
	fast[features.SpeedMean] = 10
	pred, err := model.Classify(features.Set{Vector: fast})
	require.NoError(t, err)
	assert.Equal(t, models.ModeDriving, pred.Mode)
	assert.Equal(t, models.SourceModel, pred.Source)
	assert.Greater(t, pred.Confidence, 0.99)

	var slow features.Vector
	slow[features.SpeedMean] = -10
	pred, err = model.Classify(features.Set{Vector: slow})
	require.NoError(t, err)
	assert.Equal(t, models.ModeWalking, pred.Mode)

	var sum float64
	for _, p := range pred.Probabilities {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSoftmaxNormalisation(t *testing.T) {
	spec := speedModel()
	spec.Mean = make([]float64, features.ModelInputSize)
	spec.Scale = make([]float64, features.ModelInputSize)
	spec.Mean[14] = 5
	spec.Scale[14] = 1

	model, err := NewSoftmaxModel(spec)
	require.NoError(t, err)

	input := make([]float64, features.ModelInputSize)
	input[14] = 5
	probs, err := model.Probabilities(input)
	require.NoError(t, err)
	for _, p := range probs {
		assert.InDelta(t, 0.2, p, 1e-9)
	}
}

func TestSoftmaxShapeErrors(t *testing.T) {
	spec := speedModel()
	spec.Bias = spec.Bias[:3]
	_, err := NewSoftmaxModel(spec)
	assert.True(t, errors.Is(err, ErrFeatureShape))

	spec = speedModel()
	spec.Weights[2] = spec.Weights[2][:4]
	_, err = NewSoftmaxModel(spec)
	assert.True(t, errors.Is(err, ErrFeatureShape))

	model, err := NewSoftmaxModel(speedModel())
	require.NoError(t, err)
	_, err = model.Probabilities([]float64{1, 2})
	assert.True(t, errors.Is(err, ErrFeatureShape))

	var empty *SoftmaxModel
	_, err = empty.Probabilities(make([]float64, features.ModelInputSize))
	assert.True(t, errors.Is(err, ErrModelNotLoaded))
}

func TestLoadSoftmaxModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	data, err := json.Marshal(speedModel())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	model, err := LoadSoftmaxModel(path)
	require.NoError(t, err)
	assert.Equal(t, "model", model.Name())

	_, err = LoadSoftmaxModel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
