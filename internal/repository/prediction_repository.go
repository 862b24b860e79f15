package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// PredictionRepository stores mode prediction snapshots
type PredictionRepository struct {
	db *sql.DB
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Insert stores a prediction and sets its ID
func (r *PredictionRepository) Insert(ctx context.Context, rec *models.PredictionRecord) error {
	probs, err := json.Marshal(rec.Probabilities)
	if err != nil {
		return fmt.Errorf("failed to encode probabilities: %w", err)
	}

	query := `INSERT INTO mode_predictions (session_id, mode, confidence, source, probabilities_json, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		rec.SessionID, string(rec.Mode), rec.Confidence, rec.Source, string(probs), rec.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get prediction id: %w", err)
	}
	rec.ID = id
	return nil
}

// ListBySession returns the most recent predictions of a session, newest first
func (r *PredictionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.PredictionRecord, error) {
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	query := `SELECT id, session_id, mode, confidence, source, probabilities_json, recorded_at
		FROM mode_predictions WHERE session_id = ? ORDER BY recorded_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var rec models.PredictionRecord
		var mode, probs string
		var recordedAt int64
		if err := rows.Scan(&rec.ID, &rec.SessionID, &mode, &rec.Confidence, &rec.Source, &probs, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		rec.Mode = models.TransportMode(mode)
		rec.RecordedAt = time.UnixMilli(recordedAt)
		if err := json.Unmarshal([]byte(probs), &rec.Probabilities); err != nil {
			return nil, fmt.Errorf("failed to decode probabilities for prediction %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountByMode returns how many predictions of a session fell on each mode
func (r *PredictionRepository) CountByMode(ctx context.Context, sessionID string) (map[models.TransportMode]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mode, COUNT(*) FROM mode_predictions WHERE session_id = ? GROUP BY mode`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TransportMode]int)
	for rows.Next() {
		var mode string
		var n int
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, fmt.Errorf("failed to scan prediction count: %w", err)
		}
		counts[models.TransportMode(mode)] = n
	}
	return counts, rows.Err()
}
