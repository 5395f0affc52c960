package mcp

import "github.com/zigbee-shepherd/shepherd/pkg/shepherd"

// --- Health Tool ---

// GetHealthInput is the input for the get_health tool
type GetHealthInput struct{}

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status   string `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Enabled  bool   `json:"enabled" jsonschema:"description=Whether the coordinator has been started"`
	Firmware string `json:"firmware,omitempty" jsonschema:"description=Coordinator firmware identifier"`
}

// --- Get Info Tool ---

// GetInfoInput is the input for the get_info tool
type GetInfoInput struct{}

// GetInfoOutput is the output for the get_info tool
type GetInfoOutput struct {
	Enabled      bool             `json:"enabled" jsonschema:"description=Whether the coordinator has been started"`
	Net          shepherd.NetInfo `json:"net" jsonschema:"description=Network-level snapshot"`
	Firmware     string           `json:"firmware" jsonschema:"description=Coordinator firmware identifier"`
	StartTime    int64            `json:"startTime" jsonschema:"description=Unix timestamp the coordinator was started"`
	JoinTimeLeft int              `json:"joinTimeLeft" jsonschema:"description=Seconds remaining in the current permit-join window"`
}

// --- List Devices Tool ---

// ListDevicesInput is the input for the list_devices tool
type ListDevicesInput struct {
	ShowIncomplete bool `json:"show_incomplete,omitempty" jsonschema:"description=Include devices whose interview has not finished"`
}

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Devices []*shepherd.Dump `json:"devices" jsonschema:"description=List of known devices"`
	Count   int              `json:"count" jsonschema:"description=Total number of devices"`
}

// --- Get Device Tool ---

// GetDeviceInput is the input for the get_device tool
type GetDeviceInput struct {
	IEEEAddr string `json:"ieee_addr" jsonschema:"required,description=Device IEEE address, e.g. 0x00124b0001234567"`
}

// GetDeviceOutput is the output for the get_device tool
type GetDeviceOutput struct {
	Device *shepherd.Dump `json:"device" jsonschema:"description=Device information including endpoints and cluster caches"`
}

// --- Remove Device Tool ---

// RemoveDeviceInput is the input for the remove_device tool
type RemoveDeviceInput struct {
	IEEEAddr string `json:"ieee_addr" jsonschema:"required,description=Device IEEE address to remove"`
}

// RemoveDeviceOutput is the output for the remove_device tool
type RemoveDeviceOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the removal succeeded"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- Permit Join Tool ---

// PermitJoinInput is the input for the permit_join tool
type PermitJoinInput struct {
	Seconds  int    `json:"seconds,omitempty" jsonschema:"description=Seconds to permit joining; 0 disables it (default 120)"`
	JoinType string `json:"join_type,omitempty" jsonschema:"description=Join broadcast scope: all or coord (default all)"`
}

// PermitJoinOutput is the output for the permit_join tool
type PermitJoinOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the permit-join window was set"`
	Message string `json:"message" jsonschema:"description=Status message"`
	Seconds int    `json:"seconds" jsonschema:"description=Seconds the network will accept new joins"`
}

// --- Read Attribute Tool ---

// ReadAttributeInput is the input for the read_attribute tool
type ReadAttributeInput struct {
	IEEEAddr  string `json:"ieee_addr" jsonschema:"required,description=Device IEEE address"`
	EpID      int    `json:"ep_id" jsonschema:"required,description=Endpoint id"`
	ClusterID int    `json:"cluster_id" jsonschema:"required,description=ZCL cluster id"`
	AttrID    int    `json:"attr_id" jsonschema:"required,description=ZCL attribute id"`
}

// ReadAttributeOutput is the output for the read_attribute tool
type ReadAttributeOutput struct {
	Value interface{} `json:"value" jsonschema:"description=Decoded attribute value"`
}

// --- Write Attribute Tool ---

// WriteAttributeInput is the input for the write_attribute tool
type WriteAttributeInput struct {
	IEEEAddr  string `json:"ieee_addr" jsonschema:"required,description=Device IEEE address"`
	EpID      int    `json:"ep_id" jsonschema:"required,description=Endpoint id"`
	ClusterID int    `json:"cluster_id" jsonschema:"required,description=ZCL cluster id"`
	AttrID    int    `json:"attr_id" jsonschema:"required,description=ZCL attribute id"`
	DataType  int    `json:"data_type" jsonschema:"required,description=ZCL data type code"`
	Data      []byte `json:"data" jsonschema:"required,description=Raw ZCL-encoded attribute value"`
}

// WriteAttributeOutput is the output for the write_attribute tool
type WriteAttributeOutput struct {
	Value interface{} `json:"value" jsonschema:"description=Decoded attribute value after the write"`
}

// --- Turn On Tool ---

// TurnOnInput is the input for the turn_on tool
type TurnOnInput struct {
	IEEEAddr string `json:"ieee_addr" jsonschema:"required,description=Device IEEE address"`
	EpID     int    `json:"ep_id" jsonschema:"required,description=Endpoint id carrying the genOnOff cluster"`
}

// TurnOnOutput is the output for the turn_on tool
type TurnOnOutput struct {
	Success bool `json:"success" jsonschema:"description=Whether the command was accepted"`
}

// --- Turn Off Tool ---

// TurnOffInput is the input for the turn_off tool
type TurnOffInput struct {
	IEEEAddr string `json:"ieee_addr" jsonschema:"required,description=Device IEEE address"`
	EpID     int    `json:"ep_id" jsonschema:"required,description=Endpoint id carrying the genOnOff cluster"`
}

// TurnOffOutput is the output for the turn_off tool
type TurnOffOutput struct {
	Success bool `json:"success" jsonschema:"description=Whether the command was accepted"`
}

// --- LQI Scan Tool ---

// LqiScanInput is the input for the lqi_scan tool
type LqiScanInput struct {
	StartAddr string `json:"start_addr,omitempty" jsonschema:"description=IEEE address to start the scan from (default coordinator)"`
}

// LqiScanOutput is the output for the lqi_scan tool
type LqiScanOutput struct {
	Neighbors []shepherd.NeighborEntry `json:"neighbors" jsonschema:"description=Breadth-first topology scan result"`
	Count     int                      `json:"count" jsonschema:"description=Total neighbours discovered"`
}
