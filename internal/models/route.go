package models

import "math"

// RoutePoint is a node of a planned path
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point holds finite, in-range coordinates
func (p RoutePoint) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// RouteProgress is the live split of a route into traveled and remaining parts
type RouteProgress struct {
	CurrentIndex            int          `json:"currentIndex"`
	TraveledPoints          []RoutePoint `json:"traveledPoints"`
	RemainingPoints         []RoutePoint `json:"remainingPoints"`
	TraveledDistanceMeters  float64      `json:"traveledDistanceMeters"`
	RemainingDistanceMeters float64      `json:"remainingDistanceMeters"`
	DistanceToRouteMeters   float64      `json:"distanceToRouteMeters"`
	IsNavigating            bool         `json:"isNavigating"`
	OnRoute                 bool         `json:"onRoute"`
}

// Clone returns a deep copy so callers never share slices with the tracker
func (p RouteProgress) Clone() RouteProgress {
	out := p
	out.TraveledPoints = append([]RoutePoint(nil), p.TraveledPoints...)
	out.RemainingPoints = append([]RoutePoint(nil), p.RemainingPoints...)
	return out
}

// RouteStats summarises a point sequence
type RouteStats struct {
	PointCount          int        `json:"pointCount"`
	TotalDistanceMeters float64    `json:"totalDistanceMeters"`
	StartPoint          RoutePoint `json:"startPoint"`
	EndPoint            RoutePoint `json:"endPoint"`
}

// TotalDistanceKm returns the total distance in kilometers
func (s RouteStats) TotalDistanceKm() float64 {
	return s.TotalDistanceMeters / 1000.0
}
