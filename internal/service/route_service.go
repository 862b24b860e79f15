package service

import (
	"errors"
	"fmt"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/spatial"
)

// ErrSimplifyMode is returned when a simplify request names no usable method
var ErrSimplifyMode = errors.New("exactly one of tolerance, interval or targetCount must be set")

// SimplifyOptions selects one simplification method
type SimplifyOptions struct {
	ToleranceMeters float64 `json:"tolerance"`
	Interval        int     `json:"interval"`
	TargetCount     int     `json:"targetCount"`
}

// SimplifyResult is a simplified polyline with before/after statistics
type SimplifyResult struct {
	Points   []models.RoutePoint `json:"points"`
	Original models.RouteStats   `json:"original"`
	Result   models.RouteStats   `json:"result"`
}

// RouteService offers stateless polyline tools
type RouteService struct{}

// NewRouteService creates a route service
func NewRouteService() *RouteService {
	return &RouteService{}
}

// Simplify reduces points with the method selected in opts
func (s *RouteService) Simplify(points []models.RoutePoint, opts SimplifyOptions) (SimplifyResult, error) {
	set := 0
	if opts.ToleranceMeters > 0 {
		set++
	}
	if opts.Interval > 0 {
		set++
	}
	if opts.TargetCount > 0 {
		set++
	}
	if set != 1 {
		return SimplifyResult{}, ErrSimplifyMode
	}
	if err := validatePoints(points); err != nil {
		return SimplifyResult{}, err
	}

	var out []models.RoutePoint
	switch {
	case opts.ToleranceMeters > 0:
		out = spatial.Simplify(points, opts.ToleranceMeters)
	case opts.Interval > 0:
		out = spatial.SimplifyByInterval(points, opts.Interval)
	default:
		out = spatial.SimplifyToCount(points, opts.TargetCount)
	}
	if out == nil {
		out = []models.RoutePoint{}
	}

	return SimplifyResult{
		Points:   out,
		Original: spatial.Stats(points),
		Result:   spatial.Stats(out),
	}, nil
}

// Stats summarises a polyline
func (s *RouteService) Stats(points []models.RoutePoint) (models.RouteStats, error) {
	if err := validatePoints(points); err != nil {
		return models.RouteStats{}, err
	}
	return spatial.Stats(points), nil
}

func validatePoints(points []models.RoutePoint) error {
	for i, p := range points {
		if !p.Valid() {
			return fmt.Errorf("invalid point at index %d", i)
		}
	}
	return nil
}
