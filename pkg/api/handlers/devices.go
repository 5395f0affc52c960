package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zigbee-shepherd/shepherd/pkg/api/types"
	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// DevicesHandler handles device listing/lookup/removal endpoints.
type DevicesHandler struct {
	shepherd *shepherd.Shepherd
}

// NewDevicesHandler creates a new devices handler.
func NewDevicesHandler(s *shepherd.Shepherd) *DevicesHandler {
	return &DevicesHandler{shepherd: s}
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Returns every known device, excluding incomplete ones unless show_incomplete=true
// @Tags         devices
// @Produce      json
// @Param        show_incomplete  query  bool  false  "Include devices whose interview has not finished"
// @Success      200  {object}  types.ListDevicesResponse
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	showIncomplete := c.Query("show_incomplete") == "true"
	devices := h.shepherd.List(nil, showIncomplete)

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: devices,
		Count:   len(devices),
	})
}

// GetDevice handles GET /devices/:ieee
// @Summary      Get device details
// @Description  Returns the full record for one device by IEEE or network address
// @Tags         devices
// @Produce      json
// @Param        ieee  path      string  true  "Device IEEE address (0x...) or network address"
// @Success      200   {object}  types.DeviceResponse
// @Failure      404   {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{ieee} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	ieee := c.Param("ieee")

	dev, _, err := h.shepherd.Find(ieee, 0)
	if err != nil && !errors.Is(err, shepherd.ErrEndpointNotFound) {
		writeShepherdError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeviceResponse{Device: dev.Dump()})
}

// RemoveDevice handles DELETE /devices/:ieee
// @Summary      Remove a device
// @Description  Removes a device from the network and the registry
// @Tags         devices
// @Produce      json
// @Param        ieee  path  string  true  "Device IEEE address"
// @Success      204   "Device removed successfully"
// @Failure      404   {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{ieee} [delete]
func (h *DevicesHandler) RemoveDevice(c *gin.Context) {
	ieee := c.Param("ieee")

	if err := h.shepherd.Remove(c.Request.Context(), ieee); err != nil {
		writeShepherdError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRoutingTable handles GET /devices/:ieee/routes
// @Summary      Get a device's routing table
// @Description  ZDO routing table query, with inactive routes dropped
// @Tags         devices
// @Produce      json
// @Param        ieee  path  string  true  "Device IEEE address"
// @Success      200   {object}  types.RoutingTableResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /devices/{ieee}/routes [get]
func (h *DevicesHandler) GetRoutingTable(c *gin.Context) {
	ieee := c.Param("ieee")

	routes, err := h.shepherd.Rtg(c.Request.Context(), ieee)
	if err != nil {
		writeShepherdError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RoutingTableResponse{Routes: routes})
}

// GetLqi handles GET /devices/:ieee/lqi
// @Summary      Get a device's single-hop neighbour table
// @Tags         devices
// @Produce      json
// @Param        ieee  path  string  true  "Device IEEE address"
// @Success      200   {object}  types.LqiScanResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /devices/{ieee}/lqi [get]
func (h *DevicesHandler) GetLqi(c *gin.Context) {
	ieee := c.Param("ieee")

	neighbors, err := h.shepherd.Lqi(c.Request.Context(), ieee)
	if err != nil {
		writeShepherdError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LqiScanResponse{Neighbors: neighbors, Count: len(neighbors)})
}

// parseEpID parses the ":ep" path segment into a uint8 endpoint id.
func parseEpID(c *gin.Context) (uint8, bool) {
	n, err := strconv.ParseUint(c.Param("ep"), 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_endpoint",
			Message: "endpoint id must be a number between 0 and 255",
		})
		return 0, false
	}
	return uint8(n), true
}

// writeShepherdError maps a Shepherd façade error to an HTTP response.
func writeShepherdError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shepherd.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "device_not_found", Message: err.Error()})
	case errors.Is(err, shepherd.ErrEndpointNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "endpoint_not_found", Message: err.Error()})
	case errors.Is(err, shepherd.ErrNotEnabled):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "not_enabled", Message: err.Error()})
	case errors.Is(err, shepherd.ErrProfileUnsupported):
		c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{Error: "profile_unsupported", Message: err.Error()})
	case errors.Is(err, shepherd.ErrCoordinatorNotReady):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "coordinator_not_ready", Message: err.Error()})
	default:
		if _, ok := shepherd.IsRequestUnsuccess(err); ok {
			c.JSON(http.StatusBadGateway, types.ErrorResponse{Error: "request_unsuccess", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}
