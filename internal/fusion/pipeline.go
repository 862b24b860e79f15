package fusion

import (
	"sync"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
)

// Pipeline owns an arbiter and a smoother and serialises access to them
type Pipeline struct {
	mu       sync.Mutex
	arbiter  *Arbiter
	smoother *Smoother
}

// NewPipeline creates a fusion pipeline
func NewPipeline(cfg Config, window int) *Pipeline {
	return &Pipeline{
		arbiter:  NewArbiter(cfg),
		smoother: NewSmoother(window),
	}
}

// ProcessLocal fuses a local prediction with an optional road-match result
// and smooths the outcome
func (p *Pipeline) ProcessLocal(local models.ModePrediction, road roadmatch.Result, ok bool) models.ModePrediction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.smoother.Process(p.arbiter.Fuse(local, road, ok))
}

// ProcessRoad smooths a road-match prediction on its own, for sessions
// without motion sensors
func (p *Pipeline) ProcessRoad(road roadmatch.Result) models.ModePrediction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.smoother.Process(road.Prediction)
}

// Len returns the number of predictions in the smoothing window
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.smoother.Len()
}

// Reset clears smoothing history
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.smoother.Reset()
}
