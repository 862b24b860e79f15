package roadmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/ecogo-motion/internal/models"
)

// RoadClass is the road or rail category a point was snapped onto
type RoadClass string

// Road classes understood by the classifier
const (
	RoadMotorway    RoadClass = "motorway"
	RoadTrunk       RoadClass = "trunk"
	RoadPrimary     RoadClass = "primary"
	RoadSecondary   RoadClass = "secondary"
	RoadResidential RoadClass = "residential"
	RoadCycleway    RoadClass = "cycleway"
	RoadFootway     RoadClass = "footway"
	RoadRail        RoadClass = "rail"
	// RoadAligned marks a point snapped onto a street of unknown class
	RoadAligned RoadClass = "aligned_street"
)

// SnappedPoint is one point returned by the road-snapping service
type SnappedPoint struct {
	Location      models.RoutePoint `json:"location"`
	OriginalIndex int               `json:"originalIndex"`
	PlaceID       string            `json:"placeId,omitempty"`
	RoadClass     RoadClass         `json:"roadClass,omitempty"`
}

// Snapper aligns raw GPS points onto known road and rail segments
type Snapper interface {
	SnapToRoads(ctx context.Context, path []models.RoutePoint) ([]SnappedPoint, error)
}

// HTTPSnapper calls a snap-to-roads endpoint over HTTP
type HTTPSnapper struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSnapper creates a client for baseURL. timeout bounds every call.
func NewHTTPSnapper(baseURL, apiKey string, timeout time.Duration) *HTTPSnapper {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPSnapper{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type snapLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type snapResponse struct {
	SnappedPoints []struct {
		Location      snapLocation `json:"location"`
		OriginalIndex *int         `json:"originalIndex,omitempty"`
		PlaceID       string       `json:"placeId"`
		RoadClass     string       `json:"roadClass,omitempty"`
	} `json:"snappedPoints"`
	WarningMessage string `json:"warningMessage,omitempty"`
	Error          *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// SnapToRoads sends path to the service and decodes the snapped points.
// Interpolated points carry OriginalIndex -1.
func (s *HTTPSnapper) SnapToRoads(ctx context.Context, path []models.RoutePoint) ([]SnappedPoint, error) {
	if len(path) < 2 {
		return nil, ErrTooFewPoints
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snap request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snap request failed: %w", err)
	}
	defer resp.Body.Close()

	var body snapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode snap response (status %d): %w", resp.StatusCode, err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("snap service error %d %s: %s", body.Error.Code, body.Error.Status, body.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snap service returned status %d", resp.StatusCode)
	}

	points := make([]SnappedPoint, 0, len(body.SnappedPoints))
	for _, sp := range body.SnappedPoints {
		idx := -1
		if sp.OriginalIndex != nil {
			idx = *sp.OriginalIndex
		}
		points = append(points, SnappedPoint{
			Location:      models.RoutePoint{Latitude: sp.Location.Latitude, Longitude: sp.Location.Longitude},
			OriginalIndex: idx,
			PlaceID:       sp.PlaceID,
			RoadClass:     RoadClass(sp.RoadClass),
		})
	}
	return points, nil
}

func (s *HTTPSnapper) requestURL(path []models.RoutePoint) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.FormatFloat(p.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', 6, 64)
	}

	q := url.Values{}
	q.Set("path", strings.Join(parts, "|"))
	q.Set("interpolate", "true")
	if s.apiKey != "" {
		q.Set("key", s.apiKey)
	}
	return s.baseURL + "/v1/snapToRoads?" + q.Encode()
}
