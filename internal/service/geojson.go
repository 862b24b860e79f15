package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// GeoJSON feature roles
const (
	RoleTraveled  = "traveled"
	RoleRemaining = "remaining"
	RoleCurrent   = "current"
)

// GeoJSON renders the session's route split at the matched index: the
// traveled route vertices, the remaining line from the live position and
// the live position itself. An empty collection is returned for a session
// without a route.
func (s *NavigationService) GeoJSON(id string) (*geojson.FeatureCollection, error) {
	t, err := s.get(id)
	if err != nil {
		return nil, err
	}
	route := t.Route()
	if len(route) == 0 {
		return geojson.NewFeatureCollection(), nil
	}
	return progressCollection(route, t.Progress()), nil
}

func progressCollection(route []models.RoutePoint, p models.RouteProgress) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	idx := p.CurrentIndex
	if idx < 0 || idx >= len(route) {
		idx = 0
	}

	traveled := geojson.NewFeature(lineString(route[:idx+1]))
	traveled.Properties["role"] = RoleTraveled
	traveled.Properties["distanceMeters"] = p.TraveledDistanceMeters
	fc.Append(traveled)

	// after the first fix the remaining line starts at the live position
	remainingPoints := p.RemainingPoints
	if len(remainingPoints) == 0 {
		remainingPoints = route[idx:]
	}

	remaining := geojson.NewFeature(lineString(remainingPoints))
	remaining.Properties["role"] = RoleRemaining
	remaining.Properties["distanceMeters"] = p.RemainingDistanceMeters
	fc.Append(remaining)

	current := geojson.NewFeature(point(remainingPoints[0]))
	current.Properties["role"] = RoleCurrent
	current.Properties["index"] = idx
	current.Properties["onRoute"] = p.OnRoute
	fc.Append(current)

	return fc
}

// orb points are (lon, lat)
func point(p models.RoutePoint) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

func lineString(points []models.RoutePoint) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, point(p))
	}
	return ls
}
