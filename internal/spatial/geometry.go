package spatial

import (
	"github.com/jengzang/ecogo-motion/internal/models"
)

// collinearEpsilonMeters absorbs floating-point noise when a point lies on the chord
const collinearEpsilonMeters = 1e-6

// Simplify reduces a path with the Ramer-Douglas-Peucker algorithm.
// tolerance is the maximum deviation in meters from the simplified path.
// Inputs of two points or fewer are returned unchanged.
func Simplify(points []models.RoutePoint, tolerance float64) []models.RoutePoint {
	if len(points) <= 2 {
		return clonePoints(points)
	}
	if tolerance < 0 || tolerance != tolerance {
		tolerance = 0
	}
	return douglasPeucker(points, tolerance)
}

func douglasPeucker(points []models.RoutePoint, tolerance float64) []models.RoutePoint {
	if len(points) <= 2 {
		return clonePoints(points)
	}

	end := len(points) - 1
	maxDist := 0.0
	maxIndex := 0
	for i := 1; i < end; i++ {
		dist := perpendicularDistance(points[i], points[0], points[end])
		if dist > maxDist {
			maxDist = dist
			maxIndex = i
		}
	}

	if maxDist > tolerance && maxDist > collinearEpsilonMeters {
		left := douglasPeucker(points[:maxIndex+1], tolerance)
		right := douglasPeucker(points[maxIndex:], tolerance)

		// Combine results, dropping the shared middle point
		result := make([]models.RoutePoint, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		return append(result, right...)
	}

	return []models.RoutePoint{points[0], points[end]}
}

// perpendicularDistance measures, in meters, how far p lies from the chord
// a-b. The foot of the perpendicular is found in lat/lon space, where a
// polyline drawn straight on the map is exactly straight, and clamped to
// the chord.
func perpendicularDistance(p, a, b models.RoutePoint) float64 {
	dLat := b.Latitude - a.Latitude
	dLon := b.Longitude - a.Longitude
	lenSq := dLat*dLat + dLon*dLon
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := ((p.Latitude-a.Latitude)*dLat + (p.Longitude-a.Longitude)*dLon) / lenSq
	switch {
	case t < 0:
		return Distance(p, a)
	case t > 1:
		return Distance(p, b)
	}
	foot := models.RoutePoint{Latitude: a.Latitude + t*dLat, Longitude: a.Longitude + t*dLon}
	return Distance(p, foot)
}

// SimplifyByInterval keeps the first point, every interval-th point after it,
// and the last point
func SimplifyByInterval(points []models.RoutePoint, interval int) []models.RoutePoint {
	if len(points) <= 2 {
		return clonePoints(points)
	}
	if interval < 1 {
		interval = 1
	}

	last := len(points) - 1
	result := make([]models.RoutePoint, 0, len(points)/interval+2)
	result = append(result, points[0])
	lastKept := 0
	for i := interval; i < len(points); i += interval {
		result = append(result, points[i])
		lastKept = i
	}
	if lastKept != last {
		result = append(result, points[last])
	}
	return result
}

// SimplifyToCount samples a path down to at most targetCount points (never
// fewer than the two endpoints). The interval starts at ceil(n/target) and
// grows until the forced final point still fits the target.
func SimplifyToCount(points []models.RoutePoint, targetCount int) []models.RoutePoint {
	if targetCount < 2 {
		targetCount = 2
	}
	n := len(points)
	if n <= targetCount {
		return clonePoints(points)
	}

	interval := (n + targetCount - 1) / targetCount
	if interval < 1 {
		interval = 1
	}
	for {
		result := SimplifyByInterval(points, interval)
		if len(result) <= targetCount || interval >= n-1 {
			return result
		}
		interval++
	}
}

// Stats computes point count, total length and endpoints of a path
func Stats(points []models.RoutePoint) models.RouteStats {
	if len(points) == 0 {
		return models.RouteStats{}
	}
	return models.RouteStats{
		PointCount:          len(points),
		TotalDistanceMeters: PathLength(points),
		StartPoint:          points[0],
		EndPoint:            points[len(points)-1],
	}
}

func clonePoints(points []models.RoutePoint) []models.RoutePoint {
	if points == nil {
		return nil
	}
	return append([]models.RoutePoint(nil), points...)
}
