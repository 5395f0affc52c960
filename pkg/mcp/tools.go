package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check whether the coordinator has been started"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_info",
			mcp.WithDescription("Get the coordinator's network state snapshot (channel, pan id, join window, firmware)"),
		),
		s.handleGetInfo,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List all known devices"),
			mcp.WithBoolean("show_incomplete",
				mcp.Description("Include devices whose interview has not finished (default false)"),
			),
		),
		s.handleListDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device",
			mcp.WithDescription("Get the full record for a device, including endpoints and cluster caches"),
			mcp.WithString("ieee_addr",
				mcp.Required(),
				mcp.Description("Device IEEE address, e.g. 0x00124b0001234567"),
			),
		),
		s.handleGetDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove_device",
			mcp.WithDescription("Remove a device from the network and the registry"),
			mcp.WithString("ieee_addr",
				mcp.Required(),
				mcp.Description("Device IEEE address to remove"),
			),
		),
		s.handleRemoveDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("permit_join",
			mcp.WithDescription("Open or close the network's join window"),
			mcp.WithNumber("seconds",
				mcp.Description("Seconds to permit joining; 0 closes the window immediately (default 120)"),
			),
			mcp.WithString("join_type",
				mcp.Description("Join broadcast scope: all or coord (default all)"),
			),
		),
		s.handlePermitJoin,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("read_attribute",
			mcp.WithDescription("Read one ZCL attribute from a device's endpoint"),
			mcp.WithString("ieee_addr", mcp.Required(), mcp.Description("Device IEEE address")),
			mcp.WithNumber("ep_id", mcp.Required(), mcp.Description("Endpoint id")),
			mcp.WithNumber("cluster_id", mcp.Required(), mcp.Description("ZCL cluster id")),
			mcp.WithNumber("attr_id", mcp.Required(), mcp.Description("ZCL attribute id")),
		),
		s.handleReadAttribute,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("write_attribute",
			mcp.WithDescription("Write one ZCL attribute on a device's endpoint"),
			mcp.WithString("ieee_addr", mcp.Required(), mcp.Description("Device IEEE address")),
			mcp.WithNumber("ep_id", mcp.Required(), mcp.Description("Endpoint id")),
			mcp.WithNumber("cluster_id", mcp.Required(), mcp.Description("ZCL cluster id")),
			mcp.WithNumber("attr_id", mcp.Required(), mcp.Description("ZCL attribute id")),
			mcp.WithNumber("data_type", mcp.Required(), mcp.Description("ZCL data type code")),
			mcp.WithArray("data", mcp.Required(), mcp.Description("Raw ZCL-encoded attribute value, as an array of byte values")),
		),
		s.handleWriteAttribute,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("turn_on",
			mcp.WithDescription("Send a genOnOff On command to a device's endpoint"),
			mcp.WithString("ieee_addr", mcp.Required(), mcp.Description("Device IEEE address")),
			mcp.WithNumber("ep_id", mcp.Required(), mcp.Description("Endpoint id carrying the genOnOff cluster")),
		),
		s.handleTurnOn,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("turn_off",
			mcp.WithDescription("Send a genOnOff Off command to a device's endpoint"),
			mcp.WithString("ieee_addr", mcp.Required(), mcp.Description("Device IEEE address")),
			mcp.WithNumber("ep_id", mcp.Required(), mcp.Description("Endpoint id carrying the genOnOff cluster")),
		),
		s.handleTurnOff,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("lqi_scan",
			mcp.WithDescription("Run a breadth-first LQI topology scan of the PAN"),
			mcp.WithString("start_addr",
				mcp.Description("IEEE address to start the scan from (default coordinator)"),
			),
		),
		s.handleLqiScan,
	)
}
