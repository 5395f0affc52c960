// Package types holds the REST façade's request/response DTOs: a thin
// JSON-shaped view over pkg/shepherd's domain types, kept separate so the
// wire format can evolve without reshaping the Shepherd's public API.
package types

import "github.com/zigbee-shepherd/shepherd/pkg/shepherd"

// --- Request DTOs ---

// PermitJoinRequest is the request body for POST /network/permit-join.
type PermitJoinRequest struct {
	Seconds int    `json:"seconds"`
	Type    string `json:"type,omitempty"`
}

// ReadAttributeRequest is the request body for POST /devices/:ieee/endpoints/:ep/read.
type ReadAttributeRequest struct {
	ClusterID uint16 `json:"clusterId" binding:"required"`
	AttrID    uint16 `json:"attrId"`
}

// WriteAttributeRequest is the request body for POST /devices/:ieee/endpoints/:ep/write.
type WriteAttributeRequest struct {
	ClusterID uint16 `json:"clusterId" binding:"required"`
	AttrID    uint16 `json:"attrId"`
	DataType  uint8  `json:"dataType"`
	Data      []byte `json:"data"`
}

// ReportAttributeRequest is the request body for POST /devices/:ieee/endpoints/:ep/report.
type ReportAttributeRequest struct {
	ClusterID uint16 `json:"clusterId" binding:"required"`
	AttrID    uint16 `json:"attrId"`
	DataType  uint8  `json:"dataType"`
	MinInt    uint16 `json:"minInterval"`
	MaxInt    uint16 `json:"maxInterval"`
	RepChange []byte `json:"repChange,omitempty"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
}

// InfoResponse is returned from GET /network/info.
type InfoResponse struct {
	shepherd.Info
}

// ListDevicesResponse is returned from GET /devices.
type ListDevicesResponse struct {
	Devices []*shepherd.Dump `json:"devices"`
	Count   int              `json:"count"`
}

// DeviceResponse is returned from GET /devices/:ieee.
type DeviceResponse struct {
	Device   shepherd.Dump      `json:"device"`
	Endpoint *shepherd.Endpoint `json:"endpoint,omitempty"`
}

// AttrValueResponse is returned from the read/write attribute endpoints.
type AttrValueResponse struct {
	Value interface{} `json:"value"`
}

// PermitJoinResponse is returned from POST /network/permit-join.
type PermitJoinResponse struct {
	Status  string `json:"status"`
	Seconds int    `json:"seconds"`
	Type    string `json:"type"`
}

// LqiScanResponse is returned from GET /network/lqi-scan.
type LqiScanResponse struct {
	Neighbors []shepherd.NeighborEntry `json:"neighbors"`
	Count     int                      `json:"count"`
}

// RoutingTableResponse is returned from GET /devices/:ieee/routes.
type RoutingTableResponse struct {
	Routes []shepherd.RouteEntry `json:"routes"`
}
