package zcl

import "testing"

func TestEncodeReadAttributes(t *testing.T) {
	frame := EncodeReadAttributes(0x0003)
	header, payload, ok := DecodeHeader(frame)
	if !ok {
		t.Fatal("expected a decodable header")
	}
	if !header.IsGlobal() {
		t.Error("read is a foundation command, expected global frame type")
	}
	if header.CommandID != 0x00 {
		t.Errorf("expected read command id 0x00, got 0x%02X", header.CommandID)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2-byte payload, got %d", len(payload))
	}
}

func TestDecodeReadAttributesResponse_Success(t *testing.T) {
	// attrId 0x0003 (hwVersion), status 0, type uint16 (0x21), 2-byte little-endian value
	data := []byte{0x03, 0x00, 0x00, 0x21, 0x60, 0x09} // uint16 value 2400 = 0x0960
	records := DecodeReadAttributesResponse(data)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.AttrID != 0x0003 || rec.Status != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Data) != 2 || rec.Data[0] != 0x60 || rec.Data[1] != 0x09 {
		t.Errorf("unexpected data: %v", rec.Data)
	}
}

func TestDecodeReadAttributesResponse_Failure(t *testing.T) {
	data := []byte{0x00, 0x00, 0x86} // attrId 0, status UNSUPPORTED_ATTRIBUTE
	records := DecodeReadAttributesResponse(data)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != 0x86 {
		t.Errorf("expected status 0x86, got 0x%02X", records[0].Status)
	}
	if records[0].Data != nil {
		t.Errorf("expected no data on failed record, got %v", records[0].Data)
	}
}

func TestDecodeWriteAttributesResponse_AllSuccess(t *testing.T) {
	records := DecodeWriteAttributesResponse([]byte{0x00})
	if len(records) != 1 || records[0].Status != 0x00 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestCatalogRoundTripsUnknownIds(t *testing.T) {
	if Cluster(0xFFF0) != nil {
		t.Error("expected unknown cluster to resolve to nil")
	}
	if name := AttrName(0xFFF0, 0x1234); name != "4660" {
		t.Errorf("expected numeric round-trip, got %q", name)
	}
	if name := AttrName(0x0000, 0x0003); name != "hwVersion" {
		t.Errorf("expected hwVersion, got %q", name)
	}
}

func TestStatusAlwaysResolves(t *testing.T) {
	if Status(0x86).Key != "UNSUPPORTED_ATTRIBUTE" {
		t.Errorf("expected known status name, got %q", Status(0x86).Key)
	}
	if Status(0xEE).Key != "238" {
		t.Errorf("expected numeric fallback, got %q", Status(0xEE).Key)
	}
}
