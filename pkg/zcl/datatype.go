package zcl

// ZCL data type ids (ZCL spec table 2-10, the subset this repo encodes/decodes).
const (
	DataTypeNull     uint8 = 0x00
	DataTypeBool     uint8 = 0x10
	DataTypeBitmap8  uint8 = 0x18
	DataTypeBitmap16 uint8 = 0x19
	DataTypeUint8    uint8 = 0x20
	DataTypeUint16   uint8 = 0x21
	DataTypeUint24   uint8 = 0x22
	DataTypeUint32   uint8 = 0x23
	DataTypeInt8     uint8 = 0x28
	DataTypeInt16    uint8 = 0x29
	DataTypeEnum8    uint8 = 0x30
	DataTypeEnum16   uint8 = 0x31
	DataTypeOctetStr uint8 = 0x42
	DataTypeCharStr  uint8 = 0x42 // same length rules as octet string
)

// DataTypeLength returns the byte length of a ZCL value of the given
// data type, given the bytes starting at the value (needed for the
// length-prefixed string types). Returns -1 if the type or data is too
// short to determine a length.
func DataTypeLength(dataType uint8, data []byte) int {
	switch dataType {
	case DataTypeNull:
		return 0
	case DataTypeBool, DataTypeBitmap8, DataTypeUint8, DataTypeInt8, DataTypeEnum8:
		return 1
	case DataTypeBitmap16, DataTypeUint16, DataTypeInt16, DataTypeEnum16:
		return 2
	case DataTypeUint24:
		return 3
	case DataTypeUint32:
		return 4
	case DataTypeOctetStr: // also CharStr — same wire shape
		if len(data) < 1 {
			return -1
		}
		return 1 + int(data[0])
	default:
		return -1
	}
}
