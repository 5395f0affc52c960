package zcl

import "encoding/binary"

// Frame types (ZCL frame control bit 0).
const (
	FrameTypeGlobal          uint8 = 0x00
	FrameTypeClusterSpecific uint8 = 0x01
)

// Frame control directions.
const (
	DirectionClientToServer uint8 = 0x00
	DirectionServerToClient uint8 = 0x08
)

var seqCounter uint8

// NextSeq returns the next ZCL transaction sequence number, wrapping at 256.
func NextSeq() uint8 {
	seqCounter++
	return seqCounter
}

// Header is a decoded ZCL frame header.
type Header struct {
	FrameControl uint8
	SeqNumber    uint8
	CommandID    uint8
}

// IsGlobal reports whether the frame carries a foundation (generic) command.
func (h Header) IsGlobal() bool { return h.FrameControl&0x01 == 0 }

// EncodeCommand builds a ZCL frame with the given frame type and command id.
func EncodeCommand(frameType, commandID uint8, payload []byte) []byte {
	frame := make([]byte, 0, 3+len(payload))
	frame = append(frame, frameType|DirectionClientToServer, NextSeq(), commandID)
	frame = append(frame, payload...)
	return frame
}

// DecodeHeader parses the 3-byte ZCL header prefix of a frame.
func DecodeHeader(data []byte) (Header, []byte, bool) {
	if len(data) < 3 {
		return Header{}, nil, false
	}
	return Header{FrameControl: data[0], SeqNumber: data[1], CommandID: data[2]}, data[3:], true
}

// AttrRecord is one entry of a read/write attributes request or response.
type AttrRecord struct {
	AttrID   uint16
	Status   uint8 // valid on read responses and write-with-status responses
	DataType uint8
	Data     []byte
}

// EncodeReadAttributes builds a complete foundation "read" command frame:
// the 3-byte ZCL header followed by the attribute ids.
func EncodeReadAttributes(attrIDs ...uint16) []byte {
	payload := make([]byte, len(attrIDs)*2)
	for i, id := range attrIDs {
		binary.LittleEndian.PutUint16(payload[i*2:], id)
	}
	return EncodeCommand(FrameTypeGlobal, 0x00, payload)
}

// EncodeWriteAttributes builds a complete foundation "write"/"writeUndiv"/
// "writeNoRsp" command frame (ZCL header included) from the given
// attribute records (status is ignored).
func EncodeWriteAttributes(cmd uint8, records []AttrRecord) []byte {
	payload := make([]byte, 0, len(records)*4)
	for _, r := range records {
		payload = append(payload, byte(r.AttrID), byte(r.AttrID>>8), r.DataType)
		payload = append(payload, r.Data...)
	}
	return EncodeCommand(FrameTypeGlobal, cmd, payload)
}

// ConfigReportRecord is one entry of a configReport request.
type ConfigReportRecord struct {
	Direction     uint8
	AttrID        uint16
	DataType      uint8
	MinRepIntval  uint16
	MaxRepIntval  uint16
	RepChange     []byte
}

// EncodeConfigReport builds a complete foundation "configReport" command
// frame (ZCL header included).
func EncodeConfigReport(records []ConfigReportRecord) []byte {
	payload := make([]byte, 0, len(records)*8)
	for _, r := range records {
		payload = append(payload, r.Direction)
		payload = append(payload, byte(r.AttrID), byte(r.AttrID>>8))
		payload = append(payload, r.DataType)
		payload = append(payload, byte(r.MinRepIntval), byte(r.MinRepIntval>>8))
		payload = append(payload, byte(r.MaxRepIntval), byte(r.MaxRepIntval>>8))
		payload = append(payload, r.RepChange...)
	}
	return EncodeCommand(FrameTypeGlobal, 0x06, payload)
}

// DecodeReadAttributesResponse parses a foundation "readRsp" payload into
// per-attribute records. A non-zero status record carries no data.
func DecodeReadAttributesResponse(data []byte) []AttrRecord {
	var records []AttrRecord
	offset := 0

	for offset+3 <= len(data) {
		rec := AttrRecord{AttrID: binary.LittleEndian.Uint16(data[offset:])}
		offset += 2
		rec.Status = data[offset]
		offset++

		if rec.Status != 0x00 {
			records = append(records, rec)
			continue
		}

		if offset >= len(data) {
			break
		}
		rec.DataType = data[offset]
		offset++

		n := DataTypeLength(rec.DataType, data[offset:])
		if n < 0 || offset+n > len(data) {
			break
		}
		rec.Data = append([]byte(nil), data[offset:offset+n]...)
		offset += n

		records = append(records, rec)
	}

	return records
}

// DecodeWriteAttributesResponse parses a foundation "writeRsp" payload:
// one {status, attrId} pair per record that failed (success is implicit
// for attrIds not present, per ZCL's "writeRsp omits fully-successful
// records" convention when all writes succeed a single {status:0} record
// with no attrId is sent instead).
func DecodeWriteAttributesResponse(data []byte) []AttrRecord {
	if len(data) == 1 {
		return []AttrRecord{{Status: data[0]}}
	}
	var records []AttrRecord
	offset := 0
	for offset+3 <= len(data) {
		status := data[offset]
		offset++
		attrID := binary.LittleEndian.Uint16(data[offset:])
		offset += 2
		records = append(records, AttrRecord{AttrID: attrID, Status: status})
	}
	return records
}
