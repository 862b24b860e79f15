package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/repository"
)

// ErrNoHistory is returned when nothing has been persisted for a session
var ErrNoHistory = errors.New("no history recorded")

// DetectionHistory is the persisted prediction trail of a detection session
type DetectionHistory struct {
	SessionID   string                       `json:"sessionId"`
	Predictions []models.PredictionRecord    `json:"predictions"`
	ModeCounts  map[models.TransportMode]int `json:"modeCounts"`
}

// HistoryService reads telemetry written by the sqlite sink. Records outlive
// their sessions, so lookups do not require a live session.
type HistoryService struct {
	predictions *repository.PredictionRepository
	progress    *repository.ProgressRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(predictions *repository.PredictionRepository, progress *repository.ProgressRepository) *HistoryService {
	return &HistoryService{predictions: predictions, progress: progress}
}

// Detection returns up to limit recent predictions of a session, newest
// first, with per-mode totals over the whole session
func (s *HistoryService) Detection(ctx context.Context, sessionID string, limit int) (*DetectionHistory, error) {
	records, err := s.predictions.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	counts, err := s.predictions.CountByMode(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count predictions: %w", err)
	}
	if records == nil {
		records = []models.PredictionRecord{}
	}
	return &DetectionHistory{SessionID: sessionID, Predictions: records, ModeCounts: counts}, nil
}

// Navigation returns the last persisted progress snapshot of a session
func (s *HistoryService) Navigation(ctx context.Context, sessionID string) (*models.ProgressRecord, error) {
	rec, err := s.progress.Latest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoHistory
	}
	return rec, nil
}

// PurgeNavigation removes every persisted progress snapshot of a session
func (s *HistoryService) PurgeNavigation(ctx context.Context, sessionID string) (int64, error) {
	return s.progress.DeleteBySession(ctx, sessionID)
}
