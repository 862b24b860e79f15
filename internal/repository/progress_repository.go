package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// ProgressRepository stores route progress snapshots
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Insert stores a progress snapshot and sets its ID
func (r *ProgressRepository) Insert(ctx context.Context, rec *models.ProgressRecord) error {
	query := `INSERT INTO route_progress (session_id, current_index, traveled_m, remaining_m, on_route, is_navigating, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		rec.SessionID, rec.CurrentIndex, rec.TraveledDistanceMeters, rec.RemainingDistanceMeters,
		rec.OnRoute, rec.IsNavigating, rec.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert progress: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get progress id: %w", err)
	}
	rec.ID = id
	return nil
}

// Latest returns the most recent snapshot of a session, or nil if none exists
func (r *ProgressRepository) Latest(ctx context.Context, sessionID string) (*models.ProgressRecord, error) {
	query := `SELECT id, session_id, current_index, traveled_m, remaining_m, on_route, is_navigating, recorded_at
		FROM route_progress WHERE session_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1`

	var rec models.ProgressRecord
	var recordedAt int64
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&rec.ID, &rec.SessionID, &rec.CurrentIndex, &rec.TraveledDistanceMeters,
		&rec.RemainingDistanceMeters, &rec.OnRoute, &rec.IsNavigating, &recordedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest progress: %w", err)
	}

	rec.RecordedAt = time.UnixMilli(recordedAt)
	return &rec, nil
}

// DeleteBySession removes all snapshots of a session
func (r *ProgressRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM route_progress WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete progress: %w", err)
	}
	return result.RowsAffected()
}
