package shepherd

import (
	"context"
	"errors"
	"testing"
)

func TestStart_RehydratesAndRegistersCoordinator(t *testing.T) {
	radio := newFakeRadio()
	store := newFakeStore()
	readyCalled := false
	sh := newTestShepherd(radio, store, &fakeAFLayer{}, &Sink{Ready: func() { readyCalled = true }})

	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !sh.Enabled() {
		t.Fatal("expected Enabled() to be true after Start")
	}
	if !readyCalled {
		t.Error("expected the Ready sink callback to fire")
	}
	if sh.Info().Firmware != radio.firmware {
		t.Errorf("expected firmware %q, got %q", radio.firmware, sh.Info().Firmware)
	}

	coord := sh.registry.findByIEEE(radio.coordDump.IEEEAddr)
	if coord == nil {
		t.Fatal("expected the coordinator to be registered")
	}
	if coord.Type != DeviceTypeCoordinator {
		t.Errorf("expected coordinator type, got %v", coord.Type)
	}
}

func TestStart_TwiceReturnsAlreadyEnabled(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)

	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := sh.Start(context.Background()); err != ErrAlreadyEnabled {
		t.Fatalf("expected ErrAlreadyEnabled, got %v", err)
	}
}

func TestStart_RadioFailurePropagatesAsTransportError(t *testing.T) {
	radio := newFakeRadio()
	radio.startErr = errors.New("serial port unavailable")
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)

	err := sh.Start(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected a *TransportError, got %v (%T)", err, err)
	}
	if sh.Enabled() {
		t.Error("expected Enabled() to remain false after a failed Start")
	}
}

func TestStop_ClearsRegistryButLeavesStoreIntact(t *testing.T) {
	radio := newFakeRadio()
	store := newFakeStore()
	sh := newTestShepherd(radio, store, &fakeAFLayer{}, nil)

	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sh.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if sh.Enabled() {
		t.Error("expected Enabled() to be false after Stop")
	}
	if len(sh.registry.exportAll()) != 0 {
		t.Error("expected the in-memory registry to be cleared")
	}
	empty, _ := store.IsEmpty(context.Background())
	if empty {
		t.Error("expected the persisted store to survive Stop")
	}
}

func TestStop_IsIdempotentWhenNotEnabled(t *testing.T) {
	sh := newTestShepherd(newFakeRadio(), newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Stop(context.Background()); err != nil {
		t.Fatalf("expected Stop on a never-started Shepherd to be a no-op, got %v", err)
	}
}

func TestReset_HardWipesStoreEvenWhenRadioResetFails(t *testing.T) {
	radio := newFakeRadio()
	radio.resetErr = errors.New("radio busy")
	store := newFakeStore()
	sh := newTestShepherd(radio, store, &fakeAFLayer{}, nil)

	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	err := sh.Reset(context.Background(), true)
	if err == nil {
		t.Fatal("expected the radio reset failure to propagate")
	}

	empty, _ := store.IsEmpty(context.Background())
	if !empty {
		t.Error("expected a hard reset to wipe the store regardless of the radio's own error")
	}
}

func TestReset_SoftLeavesStoreUntouched(t *testing.T) {
	radio := newFakeRadio()
	store := newFakeStore()
	sh := newTestShepherd(radio, store, &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := sh.Reset(context.Background(), false); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	empty, _ := store.IsEmpty(context.Background())
	if empty {
		t.Error("expected a soft reset to leave the store untouched")
	}
}

func TestPermitJoin_FailsWhenNotEnabled(t *testing.T) {
	sh := newTestShepherd(newFakeRadio(), newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.PermitJoin(context.Background(), 60, "all"); err != ErrNotEnabled {
		t.Fatalf("expected ErrNotEnabled, got %v", err)
	}
}

func TestPermitJoin_InvalidTypePanics(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected an invalid joinType to panic")
		}
	}()
	_ = sh.PermitJoin(context.Background(), 60, "bogus")
}

func TestHandleDevIncoming_RejectedByAcceptHookSkipsRegistration(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sh.SetAcceptDevIncoming(func(ieeeAddr string, devType DeviceType) bool { return false })

	sh.handleDevIncoming(Indication{IEEEAddr: "0xdead", NwkAddr: 1, DevType: DeviceTypeRouter, Success: true})

	if sh.registry.findByIEEE("0xdead") != nil {
		t.Fatal("expected the device to be rejected, not registered")
	}
}

func TestHandleDevIncoming_RejectedByInterviewHookMarksIncompleteAndSkipsIncomingEvent(t *testing.T) {
	radio := newFakeRadio()
	var events []EventType
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, &Sink{Ind: func(e Event) { events = append(events, e.Type) }})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sh.SetAcceptDevInterview(func(ieeeAddr string, devType DeviceType) bool { return false })

	sh.handleDevIncoming(Indication{IEEEAddr: "0xdead", NwkAddr: 1, DevType: DeviceTypeRouter, Success: true})

	if len(events) != 1 || events[0] != EventDevInterview {
		t.Fatalf("expected only devInterview when the interview hook rejects, got %v", events)
	}
	dev := sh.registry.findByIEEE("0xdead")
	if dev == nil || !dev.Incomplete {
		t.Fatalf("expected a registered but incomplete device, got %+v", dev)
	}
}

func TestHandleDevIncoming_EmitsInterviewThenIncomingOnSuccess(t *testing.T) {
	radio := newFakeRadio()
	var events []EventType
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, &Sink{Ind: func(e Event) { events = append(events, e.Type) }})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sh.handleDevIncoming(Indication{
		IEEEAddr: "0xbeef", NwkAddr: 2, DevType: DeviceTypeRouter, Success: true,
		Endpoints: []*Endpoint{newEndpoint(1, 0x0104, 0, nil, nil)},
	})

	if len(events) != 2 || events[0] != EventDevInterview || events[1] != EventDevIncoming {
		t.Fatalf("expected [devInterview, devIncoming], got %v", events)
	}
	dev := sh.registry.findByIEEE("0xbeef")
	if dev == nil || dev.Incomplete {
		t.Fatalf("expected a complete, registered device, got %+v", dev)
	}
}

func TestHandleDevIncoming_InterviewFailureMarksIncompleteAndSkipsIncomingEvent(t *testing.T) {
	radio := newFakeRadio()
	var events []EventType
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, &Sink{Ind: func(e Event) { events = append(events, e.Type) }})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sh.handleDevIncoming(Indication{IEEEAddr: "0xbeef", NwkAddr: 2, DevType: DeviceTypeRouter, Success: false})

	if len(events) != 1 || events[0] != EventDevInterview {
		t.Fatalf("expected only devInterview on a failed interview, got %v", events)
	}
	dev := sh.registry.findByIEEE("0xbeef")
	if dev == nil || !dev.Incomplete {
		t.Fatalf("expected an incomplete device, got %+v", dev)
	}
}

func TestHandleDevLeaving_EmitsAndUnregisters(t *testing.T) {
	radio := newFakeRadio()
	var events []EventType
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, &Sink{Ind: func(e Event) { events = append(events, e.Type) }})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sh.handleDevIncoming(Indication{IEEEAddr: "0xbeef", NwkAddr: 2, DevType: DeviceTypeRouter, Success: true})
	events = nil

	sh.handleDevLeaving(Indication{IEEEAddr: "0xbeef"})

	if len(events) != 1 || events[0] != EventDevLeaving {
		t.Fatalf("expected [devLeaving], got %v", events)
	}
	if sh.registry.findByIEEE("0xbeef") != nil {
		t.Error("expected the device to be unregistered after leaving")
	}
}

func TestHandleDevLeaving_UnknownDeviceIsANoOp(t *testing.T) {
	radio := newFakeRadio()
	emitted := false
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, &Sink{Ind: func(e Event) { emitted = true }})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sh.handleDevLeaving(Indication{IEEEAddr: "0xnever-joined"})

	if emitted {
		t.Error("expected no event for a device that was never registered")
	}
}
