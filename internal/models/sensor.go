package models

import "time"

// SensorSample is one synthesized reading taken on a sampling tick
type SensorSample struct {
	Timestamp time.Time `json:"timestamp"`
	AccelX    float64   `json:"accelX"`
	AccelY    float64   `json:"accelY"`
	AccelZ    float64   `json:"accelZ"`
	GyroX     float64   `json:"gyroX"`
	GyroY     float64   `json:"gyroY"`
	GyroZ     float64   `json:"gyroZ"`
	Pressure  float64   `json:"pressure"` // hPa
	GPSSpeed  float64   `json:"gpsSpeed"` // m/s
}

// SensorWindow is a closed, time-ordered slice of samples. It must not be
// mutated after it has been emitted.
type SensorWindow struct {
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Samples   []SensorSample `json:"samples"`
}

// Duration returns the time spanned by the window
func (w SensorWindow) Duration() time.Duration {
	if w.EndTime.Before(w.StartTime) {
		return 0
	}
	return w.EndTime.Sub(w.StartTime)
}

// LocationFix is a GPS fix delivered by the location source
type LocationFix struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`              // m/s
	Accuracy  float64   `json:"accuracy,omitempty"` // meters
}

// Point returns the fix position as a RoutePoint
func (f LocationFix) Point() RoutePoint {
	return RoutePoint{Latitude: f.Latitude, Longitude: f.Longitude}
}
