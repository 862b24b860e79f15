package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/ecogo-motion/internal/classifier"
	"github.com/jengzang/ecogo-motion/internal/detection"
	"github.com/jengzang/ecogo-motion/internal/features"
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/roadmatch"
	"github.com/jengzang/ecogo-motion/internal/sensor"
	"github.com/jengzang/ecogo-motion/internal/telemetry"
)

// ErrSessionNotFound is returned for unknown session IDs
var ErrSessionNotFound = errors.New("session not found")

// Recorder accepts telemetry snapshots without blocking
type Recorder interface {
	Record(e telemetry.Event) bool
}

// DetectionSession describes a running detection session
type DetectionSession struct {
	ID        string         `json:"id"`
	Path      detection.Path `json:"path"`
	CreatedAt time.Time      `json:"createdAt"`
}

// DetectionService owns the set of live detection sessions
type DetectionService struct {
	cfg      detection.Config
	roadCfg  roadmatch.Config
	local    classifier.Classifier
	snapper  roadmatch.Snapper
	recorder Recorder

	mu       sync.RWMutex
	sessions map[string]*detectionEntry
}

type detectionEntry struct {
	detector  *detection.Detector
	createdAt time.Time
}

// NewDetectionService creates a detection service. A nil snapper disables
// road matching and a nil local classifier falls back to the rule engine.
func NewDetectionService(cfg detection.Config, roadCfg roadmatch.Config, local classifier.Classifier, snapper roadmatch.Snapper, recorder Recorder) *DetectionService {
	if local == nil {
		local = classifier.NewRuleClassifier()
	}
	return &DetectionService{
		cfg:      cfg,
		roadCfg:  roadCfg,
		local:    local,
		snapper:  snapper,
		recorder: recorder,
		sessions: make(map[string]*detectionEntry),
	}
}

// CreateSession starts a new detection session for a device
func (s *DetectionService) CreateSession(caps detection.Capabilities) DetectionSession {
	matcher := roadmatch.None()
	if s.snapper != nil {
		matcher = roadmatch.NewDetector(s.snapper, s.roadCfg)
	}

	var recorder detection.Recorder
	if s.recorder != nil {
		recorder = s.recorder
	}

	id := uuid.New().String()
	d := detection.New(id, s.cfg, caps, s.local, matcher, recorder)
	d.Start(context.Background())

	entry := &detectionEntry{detector: d, createdAt: time.Now()}
	s.mu.Lock()
	s.sessions[id] = entry
	s.mu.Unlock()

	return DetectionSession{ID: id, Path: d.Path(), CreatedAt: entry.createdAt}
}

// Session returns the description of a live session
func (s *DetectionService) Session(id string) (DetectionSession, error) {
	entry, err := s.get(id)
	if err != nil {
		return DetectionSession{}, err
	}
	return DetectionSession{ID: id, Path: entry.detector.Path(), CreatedAt: entry.createdAt}, nil
}

// StopSession stops and forgets a session
func (s *DetectionService) StopSession(id string) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("detection %s: %w", id, ErrSessionNotFound)
	}
	entry.detector.Stop()
	return nil
}

// PushReadings forwards motion readings and returns how many were accepted
func (s *DetectionService) PushReadings(id string, readings []sensor.Reading) (int, error) {
	entry, err := s.get(id)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, r := range readings {
		if r.Timestamp.IsZero() {
			r.Timestamp = time.Now()
		}
		if entry.detector.PushReading(r) {
			accepted++
		}
	}
	return accepted, nil
}

// PushFix forwards a GPS fix
func (s *DetectionService) PushFix(id string, fix models.LocationFix) error {
	entry, err := s.get(id)
	if err != nil {
		return err
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now()
	}
	entry.detector.UpdateLocation(fix)
	return nil
}

// Latest returns the latest smoothed prediction of a session
func (s *DetectionService) Latest(id string) (models.ModePrediction, bool, error) {
	entry, err := s.get(id)
	if err != nil {
		return models.ModePrediction{}, false, err
	}
	pred, ok := entry.detector.Latest()
	return pred, ok, nil
}

// ClassifyFeatures runs the local classifier over a raw feature vector
func (s *DetectionService) ClassifyFeatures(values []float64, duration time.Duration) (models.ModePrediction, error) {
	v, ok := features.FromSlice(values)
	if !ok {
		return models.ModePrediction{}, fmt.Errorf("got %d values, want %d: %w", len(values), features.Size, classifier.ErrFeatureShape)
	}
	pred, err := s.local.Classify(features.Set{Vector: v, Duration: duration})
	if err != nil {
		return models.ModePrediction{}, fmt.Errorf("classify features: %w", err)
	}
	pred.Timestamp = time.Now()
	return pred, nil
}

// Count returns the number of live sessions
func (s *DetectionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown stops every session
func (s *DetectionService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*detectionEntry)
	s.mu.Unlock()

	for _, entry := range sessions {
		entry.detector.Stop()
	}
	log.Printf("[DetectionService] Stopped %d sessions", len(sessions))
}

func (s *DetectionService) get(id string) (*detectionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("detection %s: %w", id, ErrSessionNotFound)
	}
	return entry, nil
}
