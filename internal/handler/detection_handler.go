package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/ecogo-motion/internal/classifier"
	"github.com/jengzang/ecogo-motion/internal/detection"
	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/sensor"
	"github.com/jengzang/ecogo-motion/internal/service"
	"github.com/jengzang/ecogo-motion/pkg/response"
)

// DetectionHandler handles HTTP requests for detection sessions
type DetectionHandler struct {
	service *service.DetectionService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(service *service.DetectionService) *DetectionHandler {
	return &DetectionHandler{service: service}
}

// CreateDetectionRequest declares what the device can measure
type CreateDetectionRequest struct {
	HasMotionSensors bool `json:"hasMotionSensors"`
}

// ReadingRequest is one raw sensor reading
type ReadingRequest struct {
	Kind      sensor.Kind `json:"kind" binding:"required"`
	Values    []float64   `json:"values" binding:"required"`
	Timestamp time.Time   `json:"timestamp"`
}

// PushReadingsRequest is a batch of readings
type PushReadingsRequest struct {
	Readings []ReadingRequest `json:"readings" binding:"required,min=1,dive"`
}

// ClassifyRequest is a raw feature vector
type ClassifyRequest struct {
	Features        []float64 `json:"features" binding:"required"`
	DurationSeconds float64   `json:"durationSeconds"`
}

// CreateSession handles POST /api/v1/detections
func (h *DetectionHandler) CreateSession(c *gin.Context) {
	var req CreateDetectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body", err)
			return
		}
	}

	session := h.service.CreateSession(detection.Capabilities{HasMotionSensors: req.HasMotionSensors})
	response.Created(c, session)
}

// StopSession handles DELETE /api/v1/detections/:id
func (h *DetectionHandler) StopSession(c *gin.Context) {
	if err := h.service.StopSession(c.Param("id")); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, gin.H{"stopped": true})
}

// PushReadings handles POST /api/v1/detections/:id/readings
func (h *DetectionHandler) PushReadings(c *gin.Context) {
	var req PushReadingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	readings := make([]sensor.Reading, 0, len(req.Readings))
	for _, r := range req.Readings {
		readings = append(readings, sensor.Reading{Kind: r.Kind, Values: r.Values, Timestamp: r.Timestamp})
	}

	accepted, err := h.service.PushReadings(c.Param("id"), readings)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, gin.H{"accepted": accepted, "received": len(readings)})
}

// PushFix handles POST /api/v1/detections/:id/fixes
func (h *DetectionHandler) PushFix(c *gin.Context) {
	var fix models.LocationFix
	if err := c.ShouldBindJSON(&fix); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}
	if !fix.Point().Valid() {
		response.BadRequest(c, "Invalid coordinates", nil)
		return
	}

	if err := h.service.PushFix(c.Param("id"), fix); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, gin.H{"accepted": true})
}

// GetPrediction handles GET /api/v1/detections/:id/prediction
func (h *DetectionHandler) GetPrediction(c *gin.Context) {
	pred, ok, err := h.service.Latest(c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "No prediction yet")
		return
	}
	response.Success(c, pred)
}

// Classify handles POST /api/v1/features/classify
func (h *DetectionHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	duration := time.Duration(req.DurationSeconds * float64(time.Second))
	pred, err := h.service.ClassifyFeatures(req.Features, duration)
	if err != nil {
		if errors.Is(err, classifier.ErrFeatureShape) {
			response.BadRequest(c, "Invalid feature vector", err)
			return
		}
		response.InternalError(c, "Failed to classify features", err)
		return
	}
	response.Success(c, pred)
}

func sessionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		response.NotFound(c, "Session not found")
		return
	}
	response.InternalError(c, "Request failed", err)
}
