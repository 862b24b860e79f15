package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/ecogo-motion/internal/service"
	"github.com/jengzang/ecogo-motion/pkg/response"
)

const defaultHistoryLimit = 100

// HistoryHandler serves persisted telemetry
type HistoryHandler struct {
	service *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// GetDetectionHistory handles GET /api/v1/detections/:id/history
func (h *HistoryHandler) GetDetectionHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "Invalid limit", err)
			return
		}
		limit = n
	}

	history, err := h.service.Detection(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.InternalError(c, "Failed to load history", err)
		return
	}
	response.Success(c, history)
}

// GetNavigationHistory handles GET /api/v1/navigations/:id/history
func (h *HistoryHandler) GetNavigationHistory(c *gin.Context) {
	rec, err := h.service.Navigation(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrNoHistory) {
		response.NotFound(c, "No history recorded")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to load history", err)
		return
	}
	response.Success(c, rec)
}

// DeleteNavigationHistory handles DELETE /api/v1/navigations/:id/history
func (h *HistoryHandler) DeleteNavigationHistory(c *gin.Context) {
	n, err := h.service.PurgeNavigation(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to delete history", err)
		return
	}
	response.Success(c, gin.H{"deleted": n})
}
