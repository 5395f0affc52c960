package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// genOnOff cluster command codes used by the turn_on/turn_off
// convenience tools (ZCL cluster 0x0006).
const (
	clusterGenOnOff = 0x0006
	cmdOnOffOff     = 0x00
	cmdOnOffOn      = 0x01
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	enabled := s.shepherd.Enabled()
	status := "healthy"
	if !enabled {
		status = "unhealthy"
	}

	out := GetHealthOutput{Status: status, Enabled: enabled}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.shepherd.Info()
	out := GetInfoOutput{
		Enabled:      info.Enabled,
		Net:          info.Net,
		Firmware:     info.Firmware,
		StartTime:    info.StartTime,
		JoinTimeLeft: info.JoinTimeLeft,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	showIncomplete, _ := request.GetArguments()["show_incomplete"].(bool)

	devices := s.shepherd.List(nil, showIncomplete)
	out := ListDevicesOutput{Devices: devices, Count: len(devices)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ieeeAddr, err := requiredString(request, "ieee_addr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dev, _, err := s.shepherd.Find(ieeeAddr, 0)
	if err != nil && err != shepherd.ErrEndpointNotFound {
		return mcp.NewToolResultError(fmt.Sprintf("device not found: %s", err)), nil
	}

	dump := dev.Dump()
	out := GetDeviceOutput{Device: &dump}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleRemoveDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ieeeAddr, err := requiredString(request, "ieee_addr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.shepherd.Remove(ctx, ieeeAddr); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove device: %s", err)), nil
	}

	out := RemoveDeviceOutput{Success: true, Message: fmt.Sprintf("device %q removed", ieeeAddr)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handlePermitJoin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seconds := optionalInt(request, "seconds", 120)
	joinType, _ := request.GetArguments()["join_type"].(string)

	if err := s.shepherd.PermitJoin(ctx, seconds, joinType); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set permit-join: %s", err)), nil
	}

	out := PermitJoinOutput{
		Success: true,
		Message: fmt.Sprintf("permit-join set for %d seconds", seconds),
		Seconds: seconds,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleReadAttribute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ieeeAddr, err := requiredString(request, "ieee_addr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epID, err := requiredInt(request, "ep_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clusterID, err := requiredInt(request, "cluster_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attrID, err := requiredInt(request, "attr_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	value, err := s.shepherd.ReadAttr(ctx, ieeeAddr, uint8(epID), uint16(clusterID), uint16(attrID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read attribute: %s", err)), nil
	}

	out := ReadAttributeOutput{Value: value}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleWriteAttribute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ieeeAddr, err := requiredString(request, "ieee_addr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epID, err := requiredInt(request, "ep_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clusterID, err := requiredInt(request, "cluster_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attrID, err := requiredInt(request, "attr_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataType, err := requiredInt(request, "data_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := requiredByteSlice(request, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	value, err := s.shepherd.WriteAttr(ctx, ieeeAddr, uint8(epID), uint16(clusterID), uint16(attrID), uint8(dataType), data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write attribute: %s", err)), nil
	}

	out := WriteAttributeOutput{Value: value}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleTurnOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ieeeAddr, err := requiredString(request, "ieee_addr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epID, err := requiredInt(request, "ep_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, err = s.shepherd.Functional(ctx, ieeeAddr, uint8(epID), clusterGenOnOff, cmdOnOffOn, nil, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to turn on device: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(TurnOnOutput{Success: true})), nil
}

func (s *Server) handleTurnOff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ieeeAddr, err := requiredString(request, "ieee_addr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epID, err := requiredInt(request, "ep_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, err = s.shepherd.Functional(ctx, ieeeAddr, uint8(epID), clusterGenOnOff, cmdOnOffOff, nil, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to turn off device: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(TurnOffOutput{Success: true})), nil
}

func (s *Server) handleLqiScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startAddr, _ := request.GetArguments()["start_addr"].(string)

	neighbors, err := s.shepherd.LqiScan(ctx, startAddr, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to scan topology: %s", err)), nil
	}

	out := LqiScanOutput{Neighbors: neighbors, Count: len(neighbors)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func requiredInt(request mcp.CallToolRequest, key string) (int, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
	return int(f), nil
}

func optionalInt(request mcp.CallToolRequest, key string, def int) int {
	args := request.GetArguments()
	if v, ok := args[key]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return def
}

// requiredByteSlice accepts "data" as a JSON array of numbers (the MCP
// input schema declares it as an array, not base64, so it round-trips
// legibly through tool-call arguments).
func requiredByteSlice(request mcp.CallToolRequest, key string) ([]byte, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("required parameter %q is missing", key)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an array of byte values", key)
	}
	out := make([]byte, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("parameter %q must contain only numbers", key)
		}
		out[i] = byte(f)
	}
	return out, nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
