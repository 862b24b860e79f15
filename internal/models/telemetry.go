package models

import "time"

// PredictionRecord is a persisted ModePrediction snapshot
type PredictionRecord struct {
	ID            int64                     `json:"id" db:"id"`
	SessionID     string                    `json:"sessionId" db:"session_id"`
	Mode          TransportMode             `json:"mode" db:"mode"`
	Confidence    float64                   `json:"confidence" db:"confidence"`
	Source        string                    `json:"source" db:"source"`
	Probabilities map[TransportMode]float64 `json:"probabilities" db:"probabilities_json"`
	RecordedAt    time.Time                 `json:"recordedAt" db:"recorded_at"`
}

// ProgressRecord is a persisted RouteProgress snapshot. Point lists are not
// stored; only the scalar state needed for export.
type ProgressRecord struct {
	ID                      int64     `json:"id" db:"id"`
	SessionID               string    `json:"sessionId" db:"session_id"`
	CurrentIndex            int       `json:"currentIndex" db:"current_index"`
	TraveledDistanceMeters  float64   `json:"traveledDistanceMeters" db:"traveled_m"`
	RemainingDistanceMeters float64   `json:"remainingDistanceMeters" db:"remaining_m"`
	OnRoute                 bool      `json:"onRoute" db:"on_route"`
	IsNavigating            bool      `json:"isNavigating" db:"is_navigating"`
	RecordedAt              time.Time `json:"recordedAt" db:"recorded_at"`
}

// NewProgressRecord flattens a RouteProgress for storage
func NewProgressRecord(sessionID string, p RouteProgress, at time.Time) ProgressRecord {
	return ProgressRecord{
		SessionID:               sessionID,
		CurrentIndex:            p.CurrentIndex,
		TraveledDistanceMeters:  p.TraveledDistanceMeters,
		RemainingDistanceMeters: p.RemainingDistanceMeters,
		OnRoute:                 p.OnRoute,
		IsNavigating:            p.IsNavigating,
		RecordedAt:              at,
	}
}

// NewPredictionRecord flattens a ModePrediction for storage
func NewPredictionRecord(sessionID string, p ModePrediction, at time.Time) PredictionRecord {
	return PredictionRecord{
		SessionID:     sessionID,
		Mode:          p.Mode,
		Confidence:    p.Confidence,
		Source:        p.Source,
		Probabilities: p.Probabilities,
		RecordedAt:    at,
	}
}
