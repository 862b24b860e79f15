package fusion

import (
	"github.com/jengzang/ecogo-motion/internal/models"
)

// DefaultWindow is the number of predictions voted over
const DefaultWindow = 3

// Smoother applies a majority vote over the last K labels
type Smoother struct {
	k       int
	history []models.TransportMode
}

// NewSmoother creates a smoother over k predictions
func NewSmoother(k int) *Smoother {
	if k < 1 {
		k = DefaultWindow
	}
	return &Smoother{k: k, history: make([]models.TransportMode, 0, k)}
}

// Process records pred and returns the smoothed prediction. Until k
// predictions have been seen the input is passed through. Ties go to the
// label seen most recently.
func (s *Smoother) Process(pred models.ModePrediction) models.ModePrediction {
	if len(s.history) == s.k {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.k-1]
	}
	s.history = append(s.history, pred.Mode)

	if len(s.history) < s.k {
		return pred
	}

	counts := make(map[models.TransportMode]int, s.k)
	for _, m := range s.history {
		counts[m]++
	}

	winner := s.history[len(s.history)-1]
	for i := len(s.history) - 1; i >= 0; i-- {
		m := s.history[i]
		if counts[m] > counts[winner] {
			winner = m
		}
	}

	probs := make(map[models.TransportMode]float64, len(models.ClassifiedModes)+1)
	for _, m := range models.ClassifiedModes {
		probs[m] = 0
	}
	probs[models.ModeUnknown] = 0
	for m, n := range counts {
		probs[m] = float64(n) / float64(s.k)
	}

	return models.ModePrediction{
		Mode:          winner,
		Confidence:    float64(counts[winner]) / float64(s.k),
		Probabilities: probs,
		Source:        models.SourceSmoothed,
		Timestamp:     pred.Timestamp,
	}
}

// Len returns the number of predictions held
func (s *Smoother) Len() int {
	return len(s.history)
}

// Reset clears the history
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}
