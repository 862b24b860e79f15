package spatial

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// EarthRadiusMeters is the Earth's mean radius
const EarthRadiusMeters = 6371000.0

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	d := p1.Distance(p2).Radians() * EarthRadiusMeters
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// Distance returns the great-circle distance in meters between two route points.
// All distance computations in the tracker and simplifier go through here.
func Distance(a, b models.RoutePoint) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// PathLength returns the cumulative distance along a point sequence in meters
func PathLength(points []models.RoutePoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// DistanceToSegment returns the distance in meters from p to the closest point
// of the great-circle segment a-b. Degenerate segments fall back to the
// point-to-point distance.
func DistanceToSegment(p, a, b models.RoutePoint) float64 {
	if a == b {
		return Distance(p, a)
	}
	x := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude))
	sa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Latitude, a.Longitude))
	sb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Latitude, b.Longitude))
	d := s2.DistanceFromSegment(x, sa, sb).Radians() * EarthRadiusMeters
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}
