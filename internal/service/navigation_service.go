package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/navigation"
	"github.com/jengzang/ecogo-motion/internal/telemetry"
)

// NavigationStatus is the externally visible state of a navigation session
type NavigationStatus struct {
	ID         string               `json:"id"`
	State      navigation.State     `json:"state"`
	Progress   models.RouteProgress `json:"progress"`
	Percentage float64              `json:"percentage"`
	Arrived    bool                 `json:"arrived"`
}

// NavigationService owns the set of navigation sessions
type NavigationService struct {
	cfg      navigation.Config
	recorder Recorder

	mu       sync.RWMutex
	trackers map[string]*navigation.Tracker
}

// NewNavigationService creates a navigation service. recorder may be nil.
func NewNavigationService(cfg navigation.Config, recorder Recorder) *NavigationService {
	return &NavigationService{
		cfg:      cfg,
		recorder: recorder,
		trackers: make(map[string]*navigation.Tracker),
	}
}

// CreateSession creates an idle navigation session
func (s *NavigationService) CreateSession() string {
	id := uuid.New().String()
	s.mu.Lock()
	s.trackers[id] = navigation.NewTracker(s.cfg)
	s.mu.Unlock()
	return id
}

// SetRoute installs a route on a session
func (s *NavigationService) SetRoute(id string, points []models.RoutePoint) (NavigationStatus, error) {
	t, err := s.get(id)
	if err != nil {
		return NavigationStatus{}, err
	}
	if err := t.SetRoute(points); err != nil {
		return NavigationStatus{}, fmt.Errorf("set route: %w", err)
	}
	return status(id, t), nil
}

// Start begins navigation from the start of the route
func (s *NavigationService) Start(id string) (NavigationStatus, error) {
	t, err := s.get(id)
	if err != nil {
		return NavigationStatus{}, err
	}
	if err := t.StartNavigation(); err != nil {
		return NavigationStatus{}, fmt.Errorf("start navigation: %w", err)
	}
	s.record(id, t.Progress())
	return status(id, t), nil
}

// UpdateLocation matches a position and reports whether it is on route.
// Every position the tracker accepts is recorded as a progress snapshot.
func (s *NavigationService) UpdateLocation(id string, position models.RoutePoint) (NavigationStatus, bool, error) {
	t, err := s.get(id)
	if err != nil {
		return NavigationStatus{}, false, err
	}
	before := t.State()
	onRoute := t.UpdateLocation(position)
	st := status(id, t)
	if position.Valid() && (before == navigation.StateNavigating || before == navigation.StateArrived) {
		s.record(id, st.Progress)
	}
	return st, onRoute, nil
}

// Stop pauses navigation and keeps the route
func (s *NavigationService) Stop(id string) (NavigationStatus, error) {
	t, err := s.get(id)
	if err != nil {
		return NavigationStatus{}, err
	}
	t.StopNavigation()
	return status(id, t), nil
}

// Delete clears the session's route and forgets the session
func (s *NavigationService) Delete(id string) error {
	s.mu.Lock()
	t, ok := s.trackers[id]
	delete(s.trackers, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("navigation %s: %w", id, ErrSessionNotFound)
	}
	t.ClearNavigation()
	return nil
}

// Status returns the current progress of a session
func (s *NavigationService) Status(id string) (NavigationStatus, error) {
	t, err := s.get(id)
	if err != nil {
		return NavigationStatus{}, err
	}
	return status(id, t), nil
}

// Stats summarises the session's route
func (s *NavigationService) Stats(id string) (models.RouteStats, error) {
	t, err := s.get(id)
	if err != nil {
		return models.RouteStats{}, err
	}
	return t.Stats(), nil
}

// Count returns the number of sessions
func (s *NavigationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackers)
}

func (s *NavigationService) get(id string) (*navigation.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trackers[id]
	if !ok {
		return nil, fmt.Errorf("navigation %s: %w", id, ErrSessionNotFound)
	}
	return t, nil
}

func (s *NavigationService) record(id string, p models.RouteProgress) {
	if s.recorder == nil {
		return
	}
	if !s.recorder.Record(telemetry.ProgressEvent(id, p, time.Now())) {
		log.Printf("[NavigationService] Progress snapshot for %s dropped", id)
	}
}

func status(id string, t *navigation.Tracker) NavigationStatus {
	return NavigationStatus{
		ID:         id,
		State:      t.State(),
		Progress:   t.Progress(),
		Percentage: t.ProgressPercentage(),
		Arrived:    t.HasArrived(),
	}
}
