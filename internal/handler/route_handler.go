package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/ecogo-motion/internal/models"
	"github.com/jengzang/ecogo-motion/internal/service"
	"github.com/jengzang/ecogo-motion/pkg/response"
)

// RouteHandler handles HTTP requests for polyline tools
type RouteHandler struct {
	service *service.RouteService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(service *service.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// SimplifyRequest is a polyline plus one simplification method
type SimplifyRequest struct {
	Points []models.RoutePoint `json:"points"`
	service.SimplifyOptions
}

// Simplify handles POST /api/v1/routes/simplify
func (h *RouteHandler) Simplify(c *gin.Context) {
	var req SimplifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	res, err := h.service.Simplify(req.Points, req.SimplifyOptions)
	if err != nil {
		if errors.Is(err, service.ErrSimplifyMode) {
			response.BadRequest(c, "Invalid simplify options", err)
			return
		}
		response.BadRequest(c, "Invalid route", err)
		return
	}
	response.Success(c, res)
}

// Stats handles POST /api/v1/routes/stats
func (h *RouteHandler) Stats(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	stats, err := h.service.Stats(req.Points)
	if err != nil {
		response.BadRequest(c, "Invalid route", err)
		return
	}
	response.Success(c, gin.H{"stats": stats, "totalDistanceKm": stats.TotalDistanceKm()})
}
