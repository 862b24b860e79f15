package telemetry

import (
	"context"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// EventKind distinguishes prediction and progress snapshots
type EventKind string

// Event kinds
const (
	KindPrediction EventKind = "prediction"
	KindProgress   EventKind = "progress"
)

// Event is one snapshot handed to the sinks. Exactly one of Prediction or
// Progress is set, matching Kind.
type Event struct {
	Kind       EventKind                `json:"kind"`
	SessionID  string                   `json:"sessionId"`
	At         time.Time                `json:"at"`
	Prediction *models.PredictionRecord `json:"prediction,omitempty"`
	Progress   *models.ProgressRecord   `json:"progress,omitempty"`
}

// PredictionEvent wraps a prediction snapshot
func PredictionEvent(sessionID string, p models.ModePrediction, at time.Time) Event {
	rec := models.NewPredictionRecord(sessionID, p, at)
	return Event{Kind: KindPrediction, SessionID: sessionID, At: at, Prediction: &rec}
}

// ProgressEvent wraps a route progress snapshot
func ProgressEvent(sessionID string, p models.RouteProgress, at time.Time) Event {
	rec := models.NewProgressRecord(sessionID, p, at)
	return Event{Kind: KindProgress, SessionID: sessionID, At: at, Progress: &rec}
}

// Sink persists or forwards events
type Sink interface {
	Name() string
	Write(ctx context.Context, e Event) error
	Close() error
}
