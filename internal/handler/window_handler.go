package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/upfall/sensor-backend-go/internal/models"
	"github.com/upfall/sensor-backend-go/internal/service"
	"github.com/upfall/sensor-backend-go/pkg/response"
)

// WindowHandler handles HTTP requests for persisted windows
type WindowHandler struct {
	windowService *service.WindowService
}

// NewWindowHandler creates a new window handler
func NewWindowHandler(windowService *service.WindowService) *WindowHandler {
	return &WindowHandler{
		windowService: windowService,
	}
}

// ListWindows handles GET /api/v1/windows
func (h *WindowHandler) ListWindows(c *gin.Context) {
	var filter models.WindowFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.windowService.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetSummary handles GET /api/v1/windows/summary
func (h *WindowHandler) GetSummary(c *gin.Context) {
	summary, err := h.windowService.Summary(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, summary)
}

// Rebuild handles POST /api/v1/windows/rebuild and runs a full windowing
// pass over the raw store
func (h *WindowHandler) Rebuild(c *gin.Context) {
	summary, err := h.windowService.Run(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, summary)
}
