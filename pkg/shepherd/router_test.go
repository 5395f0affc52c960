package shepherd

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/zigbee-shepherd/shepherd/pkg/zcl"
)

// buildReadRsp constructs a one-record readRsp frame the way a real
// coordinator's AF layer would hand it back to the router.
func buildReadRsp(attrID uint16, status, dataType uint8, data []byte) []byte {
	payload := make([]byte, 0, 4+len(data))
	payload = binary.LittleEndian.AppendUint16(payload, attrID)
	payload = append(payload, status)
	if status == 0 {
		payload = append(payload, dataType)
		payload = append(payload, data...)
	}
	return zcl.EncodeCommand(zcl.FrameTypeGlobal, zcl.CmdReadRsp, payload)
}

func newMountedDevice(sh *Shepherd, ieee string, epID uint8, profID uint16) *Device {
	dev := newDevice(ieee, 1, DeviceTypeRouter)
	dev.addEndpoint(newEndpoint(epID, profID, 0, []uint16{0x0006}, nil))
	if err := sh.registry.register(context.Background(), dev, nil); err != nil {
		panic(err)
	}
	return dev
}

func TestReadAttr_SuccessDecodesValue(t *testing.T) {
	radio := newFakeRadio()
	af := &fakeAFLayer{
		foundationFn: func(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
			return buildReadRsp(0x0000, 0, zcl.DataTypeBool, []byte{0x01}), nil
		},
	}
	sh := newTestShepherd(radio, newFakeStore(), af, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	val, err := sh.ReadAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000)
	if err != nil {
		t.Fatalf("ReadAttr: %v", err)
	}
	if val != true {
		t.Errorf("expected decoded bool true, got %#v", val)
	}
}

func TestReadAttr_StatusErrorReturnsRequestUnsuccess(t *testing.T) {
	radio := newFakeRadio()
	af := &fakeAFLayer{
		foundationFn: func(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
			return buildReadRsp(0x0000, 0x86, 0, nil), nil
		},
	}
	sh := newTestShepherd(radio, newFakeStore(), af, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	_, err := sh.ReadAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000)
	status, ok := IsRequestUnsuccess(err)
	if !ok || status != 0x86 {
		t.Fatalf("expected RequestUnsuccessError{0x86}, got %v", err)
	}
}

func TestReadAttr_UnknownDeviceReturnsDeviceNotFound(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err := sh.ReadAttr(context.Background(), "0xnever", 1, 0x0006, 0x0000)
	if err != ErrDeviceNotFound {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestReadAttr_EmitsDevChangeOnlyWhenTheValueActuallyChanges(t *testing.T) {
	radio := newFakeRadio()
	currentValue := byte(0x01)
	af := &fakeAFLayer{
		foundationFn: func(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
			return buildReadRsp(0x0000, 0, zcl.DataTypeBool, []byte{currentValue}), nil
		},
	}
	var devChangeCount int
	sh := newTestShepherd(radio, newFakeStore(), af, &Sink{Ind: func(e Event) {
		if e.Type == EventDevChange {
			devChangeCount++
		}
	}})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	if _, err := sh.ReadAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000); err != nil {
		t.Fatalf("first ReadAttr: %v", err)
	}
	if devChangeCount != 1 {
		t.Fatalf("expected the first read (against an empty cache) to emit devChange, got count=%d", devChangeCount)
	}

	if _, err := sh.ReadAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000); err != nil {
		t.Fatalf("second ReadAttr: %v", err)
	}
	if devChangeCount != 1 {
		t.Fatalf("expected an unchanged value to emit no further devChange, got count=%d", devChangeCount)
	}

	currentValue = 0x00
	if _, err := sh.ReadAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000); err != nil {
		t.Fatalf("third ReadAttr: %v", err)
	}
	if devChangeCount != 2 {
		t.Fatalf("expected the changed value to emit a second devChange, got count=%d", devChangeCount)
	}
}

func TestReportAttr_NoDelegatorReturnsProfileUnsupported(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	err := sh.ReportAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000, zcl.DataTypeBool, 1, 60, nil)
	if err != ErrProfileUnsupported {
		t.Fatalf("expected ErrProfileUnsupported, got %v", err)
	}
}

func TestReportAttr_BindsToDelegatorThenConfiguresReport(t *testing.T) {
	radio := newFakeRadio()
	af := &fakeAFLayer{}
	sh := newTestShepherd(radio, newFakeStore(), af, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	delegator := &fakeApp{name: "delegator", desc: AppDescriptor{ProfID: 0x0104, InClusterList: []uint16{0x0006}}}
	epID, err := sh.Mount(context.Background(), delegator)
	if err != nil {
		t.Fatalf("mount delegator: %v", err)
	}
	sh.mu.Lock()
	sh.registry.devices[sh.coordID].Endpoints[epID].IsDelegator = true
	sh.mu.Unlock()

	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	if err := sh.ReportAttr(context.Background(), "0xaaaa", 1, 0x0006, 0x0000, zcl.DataTypeBool, 1, 60, nil); err != nil {
		t.Fatalf("ReportAttr: %v", err)
	}

	if len(radio.bindCalls) != 1 {
		t.Fatalf("expected exactly one bind call, got %d", len(radio.bindCalls))
	}
	bc := radio.bindCalls[0]
	if bc.srcIEEE != "0xaaaa" || bc.dstEp != epID {
		t.Errorf("unexpected bind call: %+v", bc)
	}
}

func TestBindUnbind_ReturnProfileUnsupportedWithoutADelegator(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	if err := sh.Bind(context.Background(), "0xaaaa", 1, 0x0006); err != ErrProfileUnsupported {
		t.Fatalf("Bind: expected ErrProfileUnsupported, got %v", err)
	}
	if err := sh.Unbind(context.Background(), "0xaaaa", 1, 0x0006); err != ErrProfileUnsupported {
		t.Fatalf("Unbind: expected ErrProfileUnsupported, got %v", err)
	}
}

func TestFoundation_TransportErrorWrapsUnderlyingFailure(t *testing.T) {
	radio := newFakeRadio()
	wantErr := errors.New("aps send timed out")
	af := &fakeAFLayer{
		foundationFn: func(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
			return nil, wantErr
		},
	}
	sh := newTestShepherd(radio, newFakeStore(), af, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	newMountedDevice(sh, "0xaaaa", 1, 0x0104)

	_, err := sh.Foundation(context.Background(), "0xaaaa", 1, 0x0006, zcl.CmdRead, nil)
	var te *TransportError
	if !errors.As(err, &te) || !errors.Is(err, wantErr) {
		t.Fatalf("expected a wrapped TransportError around %v, got %v", wantErr, err)
	}
}
