package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/ecogo-motion/internal/models"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name    string
		a, b    models.RoutePoint
		want    float64
		epsilon float64
	}{
		{
			name: "same point",
			a:    models.RoutePoint{Latitude: 1.3521, Longitude: 103.8198},
			b:    models.RoutePoint{Latitude: 1.3521, Longitude: 103.8198},
			want: 0,
		},
		{
			name:    "one degree of latitude",
			a:       models.RoutePoint{Latitude: 0, Longitude: 0},
			b:       models.RoutePoint{Latitude: 1, Longitude: 0},
			want:    111194.93,
			epsilon: 0.5,
		},
		{
			name:    "short hop along the equator",
			a:       models.RoutePoint{Latitude: 0, Longitude: 0},
			b:       models.RoutePoint{Latitude: 0, Longitude: 0.001},
			want:    111.19,
			epsilon: 0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.epsilon+1e-9)
			assert.InDelta(t, tt.want, Distance(tt.b, tt.a), tt.epsilon+1e-9)
		})
	}
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	assert.Zero(t, PathLength([]models.RoutePoint{{Latitude: 1, Longitude: 1}}))

	path := []models.RoutePoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0, Longitude: 0.002},
	}
	assert.InDelta(t, 2*Distance(path[0], path[1]), PathLength(path), 1e-6)
}

func TestDistanceToSegment(t *testing.T) {
	a := models.RoutePoint{Latitude: 0, Longitude: 0}
	b := models.RoutePoint{Latitude: 0, Longitude: 0.01}

	t.Run("point on the segment", func(t *testing.T) {
		p := models.RoutePoint{Latitude: 0, Longitude: 0.005}
		assert.InDelta(t, 0, DistanceToSegment(p, a, b), 1e-3)
	})

	t.Run("point beside the segment", func(t *testing.T) {
		p := models.RoutePoint{Latitude: 0.001, Longitude: 0.005}
		assert.InDelta(t, 111.19, DistanceToSegment(p, a, b), 0.1)
	})

	t.Run("point beyond the end is clamped", func(t *testing.T) {
		p := models.RoutePoint{Latitude: 0, Longitude: 0.011}
		assert.InDelta(t, Distance(p, b), DistanceToSegment(p, a, b), 0.01)
	})

	t.Run("degenerate segment", func(t *testing.T) {
		p := models.RoutePoint{Latitude: 0.001, Longitude: 0}
		assert.InDelta(t, Distance(p, a), DistanceToSegment(p, a, a), 1e-9)
	})
}
