package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zigbee-shepherd/shepherd/pkg/api/types"
	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// ControlHandler handles per-endpoint attribute read/write/report/bind
// endpoints.
type ControlHandler struct {
	shepherd *shepherd.Shepherd
}

// NewControlHandler creates a new control handler.
func NewControlHandler(s *shepherd.Shepherd) *ControlHandler {
	return &ControlHandler{shepherd: s}
}

// ReadAttribute handles POST /devices/:ieee/endpoints/:ep/read
// @Summary      Read an attribute
// @Description  Issues a ZCL read of one attribute and returns its decoded value
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        ieee     path      string                        true  "Device IEEE address"
// @Param        ep       path      int                           true  "Endpoint id"
// @Param        request  body      types.ReadAttributeRequest    true  "Cluster and attribute id"
// @Success      200      {object}  types.AttrValueResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse  "Device or endpoint not found"
// @Failure      502      {object}  types.ErrorResponse  "Request unsuccess"
// @Router       /devices/{ieee}/endpoints/{ep}/read [post]
func (h *ControlHandler) ReadAttribute(c *gin.Context) {
	ieee := c.Param("ieee")
	epID, ok := parseEpID(c)
	if !ok {
		return
	}

	var req types.ReadAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	value, err := h.shepherd.ReadAttr(c.Request.Context(), ieee, epID, req.ClusterID, req.AttrID)
	if err != nil {
		writeShepherdError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AttrValueResponse{Value: value})
}

// WriteAttribute handles POST /devices/:ieee/endpoints/:ep/write
// @Summary      Write an attribute
// @Description  Issues a ZCL write of one attribute
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        ieee     path      string                        true  "Device IEEE address"
// @Param        ep       path      int                           true  "Endpoint id"
// @Param        request  body      types.WriteAttributeRequest   true  "Cluster, attribute id, type and value"
// @Success      200      {object}  types.AttrValueResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse  "Device or endpoint not found"
// @Failure      502      {object}  types.ErrorResponse  "Request unsuccess"
// @Router       /devices/{ieee}/endpoints/{ep}/write [post]
func (h *ControlHandler) WriteAttribute(c *gin.Context) {
	ieee := c.Param("ieee")
	epID, ok := parseEpID(c)
	if !ok {
		return
	}

	var req types.WriteAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	value, err := h.shepherd.WriteAttr(c.Request.Context(), ieee, epID, req.ClusterID, req.AttrID, req.DataType, req.Data)
	if err != nil {
		writeShepherdError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AttrValueResponse{Value: value})
}

// ReportAttribute handles POST /devices/:ieee/endpoints/:ep/report
// @Summary      Configure attribute reporting
// @Description  Binds the cluster to the coordinator's delegator endpoint and configures reporting
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        ieee     path  string                          true  "Device IEEE address"
// @Param        ep       path  int                             true  "Endpoint id"
// @Param        request  body  types.ReportAttributeRequest     true  "Cluster, attribute id, type and report interval"
// @Success      204      "Reporting configured"
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse  "Device or endpoint not found"
// @Failure      422      {object}  types.ErrorResponse  "No delegator for this profile"
// @Router       /devices/{ieee}/endpoints/{ep}/report [post]
func (h *ControlHandler) ReportAttribute(c *gin.Context) {
	ieee := c.Param("ieee")
	epID, ok := parseEpID(c)
	if !ok {
		return
	}

	var req types.ReportAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	err := h.shepherd.ReportAttr(c.Request.Context(), ieee, epID, req.ClusterID, req.AttrID, req.DataType, req.MinInt, req.MaxInt, req.RepChange)
	if err != nil {
		writeShepherdError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Bind handles POST /devices/:ieee/endpoints/:ep/bind
// @Summary      Bind a cluster to the coordinator's delegator
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        ieee      path  string  true  "Device IEEE address"
// @Param        ep        path  int     true  "Endpoint id"
// @Param        clusterId query int     true  "Cluster id"
// @Success      204       "Bound"
// @Failure      400       {object}  types.ErrorResponse
// @Failure      404       {object}  types.ErrorResponse
// @Failure      422       {object}  types.ErrorResponse  "No delegator for this profile"
// @Router       /devices/{ieee}/endpoints/{ep}/bind [post]
func (h *ControlHandler) Bind(c *gin.Context) {
	ieee := c.Param("ieee")
	epID, ok := parseEpID(c)
	if !ok {
		return
	}

	cID, ok := parseClusterQuery(c)
	if !ok {
		return
	}

	if err := h.shepherd.Bind(c.Request.Context(), ieee, epID, cID); err != nil {
		writeShepherdError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unbind handles DELETE /devices/:ieee/endpoints/:ep/bind
// @Summary      Remove a cluster binding
// @Tags         control
// @Produce      json
// @Param        ieee      path  string  true  "Device IEEE address"
// @Param        ep        path  int     true  "Endpoint id"
// @Param        clusterId query int     true  "Cluster id"
// @Success      204       "Unbound"
// @Failure      400       {object}  types.ErrorResponse
// @Failure      404       {object}  types.ErrorResponse
// @Router       /devices/{ieee}/endpoints/{ep}/bind [delete]
func (h *ControlHandler) Unbind(c *gin.Context) {
	ieee := c.Param("ieee")
	epID, ok := parseEpID(c)
	if !ok {
		return
	}

	cID, ok := parseClusterQuery(c)
	if !ok {
		return
	}

	if err := h.shepherd.Unbind(c.Request.Context(), ieee, epID, cID); err != nil {
		writeShepherdError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseClusterQuery(c *gin.Context) (uint16, bool) {
	var q struct {
		ClusterID uint16 `form:"clusterId" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: "clusterId is required"})
		return 0, false
	}
	return q.ClusterID, true
}
