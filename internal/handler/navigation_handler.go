package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/navigation"
	"github.com/jengzang/ecogo-motion/internal/service"
	"github.com/jengzang/ecogo-motion/pkg/response"
)

// NavigationHandler handles HTTP requests for navigation sessions
type NavigationHandler struct {
	service *service.NavigationService
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(service *service.NavigationService) *NavigationHandler {
	return &NavigationHandler{service: service}
}

// RouteRequest carries a polyline
type RouteRequest struct {
	Points []models.RoutePoint `json:"points"`
}

// LocationRequest is a current position
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// CreateSession handles POST /api/v1/navigations
func (h *NavigationHandler) CreateSession(c *gin.Context) {
	id := h.service.CreateSession()
	st, err := h.service.Status(id)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Created(c, st)
}

// SetRoute handles PUT /api/v1/navigations/:id/route
func (h *NavigationHandler) SetRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	st, err := h.service.SetRoute(c.Param("id"), req.Points)
	if err != nil {
		navigationError(c, err)
		return
	}
	response.Success(c, st)
}

// Start handles POST /api/v1/navigations/:id/start
func (h *NavigationHandler) Start(c *gin.Context) {
	st, err := h.service.Start(c.Param("id"))
	if err != nil {
		navigationError(c, err)
		return
	}
	response.Success(c, st)
}

// UpdateLocation handles POST /api/v1/navigations/:id/location
func (h *NavigationHandler) UpdateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	st, onRoute, err := h.service.UpdateLocation(c.Param("id"), models.RoutePoint{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		navigationError(c, err)
		return
	}
	response.Success(c, gin.H{"onRoute": onRoute, "status": st})
}

// Stop handles POST /api/v1/navigations/:id/stop
func (h *NavigationHandler) Stop(c *gin.Context) {
	st, err := h.service.Stop(c.Param("id"))
	if err != nil {
		navigationError(c, err)
		return
	}
	response.Success(c, st)
}

// Delete handles DELETE /api/v1/navigations/:id
func (h *NavigationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		navigationError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetProgress handles GET /api/v1/navigations/:id/progress
func (h *NavigationHandler) GetProgress(c *gin.Context) {
	st, err := h.service.Status(c.Param("id"))
	if err != nil {
		navigationError(c, err)
		return
	}
	stats, err := h.service.Stats(c.Param("id"))
	if err != nil {
		navigationError(c, err)
		return
	}
	response.Success(c, gin.H{"status": st, "stats": stats})
}

// GetGeoJSON handles GET /api/v1/navigations/:id/geojson. The body is a
// bare FeatureCollection so map clients can load it directly.
func (h *NavigationHandler) GetGeoJSON(c *gin.Context) {
	fc, err := h.service.GeoJSON(c.Param("id"))
	if err != nil {
		navigationError(c, err)
		return
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		response.InternalError(c, "Failed to encode GeoJSON", err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

func navigationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, navigation.ErrEmptyRoute), errors.Is(err, navigation.ErrInvalidRoute):
		response.BadRequest(c, "Invalid route", err)
	case errors.Is(err, navigation.ErrNoRoute):
		response.Error(c, http.StatusConflict, "No route set", err)
	default:
		sessionError(c, err)
	}
}
