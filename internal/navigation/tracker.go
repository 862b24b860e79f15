package navigation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/spatial"
)

var (
	// ErrEmptyRoute is returned when a route without points is set
	ErrEmptyRoute = errors.New("route must contain at least one point")
	// ErrInvalidRoute is returned when a route point has out-of-range coordinates
	ErrInvalidRoute = errors.New("route contains an invalid point")
	// ErrNoRoute is returned when navigation starts before a route is set
	ErrNoRoute = errors.New("no route set")
)

// State is the tracker lifecycle state
type State string

// Tracker states
const (
	StateIdle       State = "idle"
	StateRouteSet   State = "route_set"
	StateNavigating State = "navigating"
	StateArrived    State = "arrived"
)

// Config holds route matching parameters
type Config struct {
	LookAhead         int     // route points searched ahead of the current index
	MinProgressMeters float64 // distance from the current point before a forced advance
	OffRouteMeters    float64 // distance to route at which the user is off route
}

// DefaultConfig returns the standard matching parameters
func DefaultConfig() Config {
	return Config{
		LookAhead:         20,
		MinProgressMeters: 10,
		OffRouteMeters:    50,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LookAhead <= 0 {
		c.LookAhead = d.LookAhead
	}
	if c.MinProgressMeters <= 0 {
		c.MinProgressMeters = d.MinProgressMeters
	}
	if c.OffRouteMeters <= 0 {
		c.OffRouteMeters = d.OffRouteMeters
	}
	return c
}

// Tracker matches live positions against a planned route. All methods are
// safe for concurrent use; location updates are serialised so the route
// index only moves forward.
type Tracker struct {
	cfg Config

	mu       sync.Mutex
	state    State
	route    []models.RoutePoint
	progress models.RouteProgress
}

// NewTracker creates an idle tracker
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg.withDefaults(), state: StateIdle}
}

// SetRoute replaces the route and resets progress. A rejected route leaves
// the tracker unchanged. Setting a route while navigating keeps navigating
// on the new route.
func (t *Tracker) SetRoute(points []models.RoutePoint) error {
	if len(points) == 0 {
		return ErrEmptyRoute
	}
	for i, p := range points {
		if !p.Valid() {
			return fmt.Errorf("%w: index %d (%f, %f)", ErrInvalidRoute, i, p.Latitude, p.Longitude)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = append([]models.RoutePoint(nil), points...)
	navigating := t.state == StateNavigating || t.state == StateArrived
	t.resetProgress(navigating)
	if navigating {
		t.state = StateNavigating
	} else {
		t.state = StateRouteSet
	}
	return nil
}

// StartNavigation begins matching positions from the start of the route
func (t *Tracker) StartNavigation() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.route) == 0 {
		return ErrNoRoute
	}
	t.resetProgress(true)
	t.state = StateNavigating
	return nil
}

// StopNavigation stops matching but keeps the route and progress
func (t *Tracker) StopNavigation() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateNavigating || t.state == StateArrived {
		t.state = StateRouteSet
	}
	t.progress.IsNavigating = false
}

// ClearNavigation discards the route and all progress
func (t *Tracker) ClearNavigation() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = nil
	t.progress = models.RouteProgress{}
	t.state = StateIdle
}

// UpdateLocation matches position against the route and reports whether the
// user is on route. Positions outside navigation or with invalid coordinates
// are ignored.
func (t *Tracker) UpdateLocation(position models.RoutePoint) bool {
	if !position.Valid() {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateNavigating && t.state != StateArrived {
		return false
	}

	last := len(t.route) - 1
	current := t.progress.CurrentIndex
	end := current + t.cfg.LookAhead
	if end > last {
		end = last
	}

	nearest := current
	nearestDist := spatial.Distance(position, t.route[current])
	for i := current + 1; i <= end; i++ {
		if d := spatial.Distance(position, t.route[i]); d < nearestDist {
			nearest = i
			nearestDist = d
		}
	}

	// GPS noise near a corner can keep the current point nearest; advance
	// once the next point is closer and the current one is clearly behind.
	if nearest == current && current < last {
		distCurrent := nearestDist
		distNext := spatial.Distance(position, t.route[current+1])
		if distNext < distCurrent && distCurrent > t.cfg.MinProgressMeters {
			nearest = current + 1
		}
	}

	if nearest < current {
		nearest = current
	}

	distToRoute := t.distanceToRoute(position, nearest, end)
	t.applyProgress(nearest, position, distToRoute)

	if nearest >= last {
		t.state = StateArrived
	}
	return t.progress.OnRoute
}

// distanceToRoute returns the distance to the closest route segment around
// the matched window
func (t *Tracker) distanceToRoute(position models.RoutePoint, index, end int) float64 {
	if len(t.route) == 1 {
		return spatial.Distance(position, t.route[0])
	}

	from := index - 1
	if from < 0 {
		from = 0
	}
	if end < index+1 {
		end = index + 1
	}
	if end > len(t.route)-1 {
		end = len(t.route) - 1
	}

	best := -1.0
	for i := from; i < end; i++ {
		d := spatial.DistanceToSegment(position, t.route[i], t.route[i+1])
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		best = spatial.Distance(position, t.route[index])
	}
	return best
}

func (t *Tracker) applyProgress(index int, position models.RoutePoint, distToRoute float64) {
	traveled := append([]models.RoutePoint(nil), t.route[:index+1]...)

	remaining := make([]models.RoutePoint, 0, len(t.route)-index)
	remaining = append(remaining, position)
	remaining = append(remaining, t.route[index+1:]...)

	if distToRoute < 0 || distToRoute != distToRoute {
		distToRoute = 0
	}

	t.progress = models.RouteProgress{
		CurrentIndex:            index,
		TraveledPoints:          traveled,
		RemainingPoints:         remaining,
		TraveledDistanceMeters:  spatial.PathLength(traveled),
		RemainingDistanceMeters: spatial.PathLength(remaining),
		DistanceToRouteMeters:   distToRoute,
		IsNavigating:            true,
		OnRoute:                 distToRoute < t.cfg.OffRouteMeters,
	}
}

func (t *Tracker) resetProgress(navigating bool) {
	t.progress = models.RouteProgress{
		CurrentIndex:            0,
		TraveledPoints:          []models.RoutePoint{},
		RemainingPoints:         append([]models.RoutePoint(nil), t.route...),
		RemainingDistanceMeters: spatial.PathLength(t.route),
		IsNavigating:            navigating,
		OnRoute:                 true,
	}
}

// Progress returns a copy of the current progress
func (t *Tracker) Progress() models.RouteProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress.Clone()
}

// State returns the lifecycle state
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Route returns a copy of the current route
func (t *Tracker) Route() []models.RoutePoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.RoutePoint(nil), t.route...)
}

// ProgressPercentage returns how far along the route the matched index is,
// from 0 at the first point to 100 at the last
func (t *Tracker) ProgressPercentage() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateArrived {
		return 100
	}
	if len(t.route) < 2 {
		return 0
	}
	return float64(t.progress.CurrentIndex) / float64(len(t.route)-1) * 100
}

// HasArrived reports whether the last route point has been reached
func (t *Tracker) HasArrived() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateArrived
}

// Stats summarises the current route
func (t *Tracker) Stats() models.RouteStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return spatial.Stats(t.route)
}
