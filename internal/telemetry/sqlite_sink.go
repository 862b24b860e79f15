package telemetry

import (
	"context"
	"fmt"

	"github.com/jengzang/ecogo-motion/internal/repository"
)

// SQLiteSink stores events through the telemetry repositories
type SQLiteSink struct {
	predictions *repository.PredictionRepository
	progress    *repository.ProgressRepository
}

// NewSQLiteSink creates a sink writing to the given repositories
func NewSQLiteSink(predictions *repository.PredictionRepository, progress *repository.ProgressRepository) *SQLiteSink {
	return &SQLiteSink{predictions: predictions, progress: progress}
}

// Name returns the sink name
func (s *SQLiteSink) Name() string { return "sqlite" }

// Write stores the event's snapshot
func (s *SQLiteSink) Write(ctx context.Context, e Event) error {
	switch e.Kind {
	case KindPrediction:
		if e.Prediction == nil {
			return fmt.Errorf("prediction event without payload")
		}
		rec := *e.Prediction
		return s.predictions.Insert(ctx, &rec)
	case KindProgress:
		if e.Progress == nil {
			return fmt.Errorf("progress event without payload")
		}
		rec := *e.Progress
		return s.progress.Insert(ctx, &rec)
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// Close is a no-op; the database handle is owned by the caller
func (s *SQLiteSink) Close() error { return nil }
