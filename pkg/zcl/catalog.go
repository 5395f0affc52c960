package zcl

import "strconv"

// Entry is a single id/name pair returned by a catalog lookup.
type Entry struct {
	Key   string
	Value uint16
}

// Foundation (generic) command ids, ZCL spec table 2-1 subset.
const (
	CmdRead            uint8 = 0x00
	CmdReadRsp         uint8 = 0x01
	CmdWrite           uint8 = 0x02
	CmdWriteUndiv      uint8 = 0x03
	CmdWriteRsp        uint8 = 0x04
	CmdWriteNoRsp      uint8 = 0x05
	CmdConfigReport    uint8 = 0x06
	CmdConfigReportRsp uint8 = 0x07
	CmdReport          uint8 = 0x0A
)

// clusters maps well-known ZCL cluster ids to their catalog names.
// Grows over time; an id missing here is not an error, just unnamed.
var clusters = map[uint16]string{
	0x0000: "genBasic",
	0x0001: "genPowerCfg",
	0x0003: "genIdentify",
	0x0004: "genGroups",
	0x0005: "genScenes",
	0x0006: "genOnOff",
	0x0008: "genLevelCtrl",
	0x000A: "genTime",
	0x0019: "genOta",
	0x0020: "genPollCtrl",
	0x0101: "closuresDoorLock",
	0x0201: "hvacThermostat",
	0x0300: "lightingColorCtrl",
	0x0400: "msIlluminanceMeasurement",
	0x0402: "msTemperatureMeasurement",
	0x0405: "msRelativeHumidity",
	0x0406: "msOccupancySensing",
	0x0500: "ssIasZone",
	0x0702: "seMetering",
	0x0B04: "haElectricalMeasurement",
}

// clusterAttrs maps cluster id -> attribute id -> name, for the clusters
// most commonly exercised by the device catalog above.
var clusterAttrs = map[uint16]map[uint16]string{
	0x0000: { // genBasic
		0x0000: "zclVersion",
		0x0001: "appVersion",
		0x0002: "stackVersion",
		0x0003: "hwVersion",
		0x0004: "manufacturerName",
		0x0005: "modelId",
		0x0006: "dateCode",
		0x0007: "powerSource",
		0x4000: "swBuildId",
	},
	0x0001: { // genPowerCfg
		0x0020: "batteryVoltage",
		0x0021: "batteryPercentageRemaining",
	},
	0x0006: { // genOnOff
		0x0000: "onOff",
	},
	0x0008: { // genLevelCtrl
		0x0000: "currentLevel",
	},
	0x0201: { // hvacThermostat
		0x0000: "localTemp",
		0x0012: "occupiedHeatingSetpoint",
	},
	0x0300: { // lightingColorCtrl
		0x0003: "currentX",
		0x0004: "currentY",
		0x0007: "colorTemperature",
	},
	0x0402: { // msTemperatureMeasurement
		0x0000: "measuredValue",
	},
	0x0405: { // msRelativeHumidity
		0x0000: "measuredValue",
	},
	0x0406: { // msOccupancySensing
		0x0000: "occupancy",
	},
	0x0500: { // ssIasZone
		0x0000: "zoneState",
		0x0001: "zoneType",
		0x0002: "zoneStatus",
	},
	0x0702: { // seMetering
		0x0000: "currentSummDelivered",
		0x0400: "instantaneousDemand",
	},
	0x0B04: { // haElectricalMeasurement
		0x0505: "rmsVoltage",
		0x0508: "rmsCurrent",
		0x050B: "activePower",
	},
}

// attrTypes maps cluster id -> attribute id -> ZCL data type id, used to
// encode write/configReport requests. Falls back to DataTypeUint16 when
// the catalog has no better guess; callers that know the real type
// should supply it explicitly rather than rely on this default.
var attrTypes = map[uint16]map[uint16]uint8{
	0x0000: {
		0x0000: DataTypeUint8,
		0x0003: DataTypeUint8,
		0x0004: DataTypeCharStr,
		0x0005: DataTypeCharStr,
	},
	0x0006: {
		0x0000: DataTypeBool,
	},
	0x0008: {
		0x0000: DataTypeUint8,
	},
	0x0402: {
		0x0000: DataTypeInt16,
	},
	0x0500: {
		0x0002: DataTypeBitmap16,
	},
}

var statuses = map[uint8]string{
	0x00: "SUCCESS",
	0x01: "FAILURE",
	0x7E: "NOT_AUTHORIZED",
	0x7F: "RESERVED_FIELD_NOT_ZERO",
	0x80: "MALFORMED_COMMAND",
	0x81: "UNSUP_CLUSTER_COMMAND",
	0x82: "UNSUP_GENERAL_COMMAND",
	0x83: "UNSUP_MANUF_CLUSTER_COMMAND",
	0x84: "UNSUP_MANUF_GENERAL_COMMAND",
	0x85: "INVALID_FIELD",
	0x86: "UNSUPPORTED_ATTRIBUTE",
	0x87: "INVALID_VALUE",
	0x88: "READ_ONLY",
	0x89: "INSUFFICIENT_SPACE",
	0x8A: "DUPLICATE_EXISTS",
	0x8B: "NOT_FOUND",
	0x8C: "UNREPORTABLE_ATTRIBUTE",
	0x8D: "INVALID_DATA_TYPE",
	0x8E: "INVALID_SELECTOR",
	0x94: "TIMEOUT",
	0x95: "ABORT",
	0x99: "ACTION_DENIED",
	0xC3: "UNSUPPORTED_CLUSTER",
}

var foundationCommands = map[uint8]string{
	0x00: "read",
	0x01: "readRsp",
	0x02: "write",
	0x03: "writeUndiv",
	0x04: "writeRsp",
	0x05: "writeNoRsp",
	0x06: "configReport",
	0x07: "configReportRsp",
	0x08: "readReportConfig",
	0x09: "readReportConfigRsp",
	0x0A: "report",
	0x0B: "defaultRsp",
	0x0C: "discover",
	0x0D: "discoverRsp",
}

// Cluster resolves a cluster id to its catalog entry, or nil if unknown.
func Cluster(cID uint16) *Entry {
	name, ok := clusters[cID]
	if !ok {
		return nil
	}
	return &Entry{Key: name, Value: cID}
}

// Attr resolves a cluster/attribute id pair to its catalog entry, or nil
// if the cluster or the attribute within it is unknown.
func Attr(cID, attrID uint16) *Entry {
	attrs, ok := clusterAttrs[cID]
	if !ok {
		return nil
	}
	name, ok := attrs[attrID]
	if !ok {
		return nil
	}
	return &Entry{Key: name, Value: attrID}
}

// AttrName returns the attribute's catalog name, or its numeric id as a
// decimal string when the catalog has no name for it: unknown ids
// round-trip as their numeric input.
func AttrName(cID, attrID uint16) string {
	if e := Attr(cID, attrID); e != nil {
		return e.Key
	}
	return strconv.FormatUint(uint64(attrID), 10)
}

// AttrType returns the best-known ZCL data type for a cluster attribute.
func AttrType(cID, attrID uint16) uint8 {
	if byAttr, ok := attrTypes[cID]; ok {
		if t, ok := byAttr[attrID]; ok {
			return t
		}
	}
	return DataTypeUint16
}

// Foundation resolves a foundation command id to its catalog entry.
func Foundation(cmd uint8) *Entry {
	name, ok := foundationCommands[cmd]
	if !ok {
		return nil
	}
	return &Entry{Key: name, Value: uint16(cmd)}
}

// Status resolves a ZCL status code to its catalog entry. Unknown codes
// still return an entry (the key is just the numeric value) since a
// status code is always meaningful even when unnamed.
func Status(code uint8) Entry {
	if name, ok := statuses[code]; ok {
		return Entry{Key: name, Value: uint16(code)}
	}
	return Entry{Key: strconv.FormatUint(uint64(code), 10), Value: uint16(code)}
}
