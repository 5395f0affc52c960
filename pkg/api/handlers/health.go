package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zigbee-shepherd/shepherd/pkg/api/types"
	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	shepherd *shepherd.Shepherd
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(s *shepherd.Shepherd) *HealthHandler {
	return &HealthHandler{shepherd: s}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the API and the coordinator
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Coordinator is started"
// @Failure      503  {object}  types.HealthResponse  "Coordinator is not started"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	enabled := h.shepherd.Enabled()

	status := "healthy"
	httpStatus := http.StatusOK
	if !enabled {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:  status,
		Enabled: enabled,
	})
}
