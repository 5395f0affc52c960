package shepherd

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestNextCoordEndpointID_ReservationBoundary(t *testing.T) {
	cases := []struct {
		name   string
		epList []uint8
		want   uint8
	}{
		{"empty list starts past the reservation", nil, reservedDelegatorEndpoints + 1},
		{"max within the reservation still starts past it", []uint8{5, 10}, reservedDelegatorEndpoints + 1},
		{"max past the reservation increments", []uint8{11}, 12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := nextCoordEndpointID(c.epList); got != c.want {
				t.Errorf("nextCoordEndpointID(%v) = %d, want %d", c.epList, got, c.want)
			}
		})
	}
}

func TestMount_DuplicateAppRejected(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	app := &fakeApp{name: "delegator", desc: AppDescriptor{ProfID: 0x0104}}
	if _, err := sh.Mount(context.Background(), app); err != nil {
		t.Fatalf("first mount: %v", err)
	}
	if _, err := sh.Mount(context.Background(), app); err != ErrDuplicateMount {
		t.Fatalf("expected ErrDuplicateMount on remount, got %v", err)
	}
}

func TestMount_DescriptorValidationFailureSkipsRadioCall(t *testing.T) {
	radio := newFakeRadio()
	radioCalled := false
	radio.registerEndpointFn = func(ctx context.Context, ep *Endpoint) error {
		radioCalled = true
		return nil
	}
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	sh.descValidator = NewDescriptorValidator(fakeValidator{})
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	app := &fakeApp{name: "bad", desc: AppDescriptor{
		InClusterList:  []uint16{6},
		OutClusterList: []uint16{6},
	}}
	_, err := sh.Mount(context.Background(), app)
	if err == nil {
		t.Fatal("expected a descriptor validation error")
	}
	if radioCalled {
		t.Error("expected the radio to never be called for an invalid descriptor")
	}
}

func TestMount_RadioFailureRejectsOnlyThatRequest(t *testing.T) {
	radio := newFakeRadio()
	radio.registerEndpointFn = func(ctx context.Context, ep *Endpoint) error {
		return errors.New("endpoint table full")
	}
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	failing := &fakeApp{name: "failing", desc: AppDescriptor{ProfID: 0x0104}}
	if _, err := sh.Mount(context.Background(), failing); err == nil {
		t.Fatal("expected the failing mount to report an error")
	}

	radio.registerEndpointFn = nil
	ok := &fakeApp{name: "ok", desc: AppDescriptor{ProfID: 0x0104}}
	if _, err := sh.Mount(context.Background(), ok); err != nil {
		t.Fatalf("expected the queue to continue after a prior failure, got %v", err)
	}
}

// TestMount_SerializesConcurrentRequests proves that two concurrent
// Mount calls never have their RegisterEndpoint calls in flight at the
// same time: the second request's radio call does not start until the
// first has been explicitly released, with no sleeps involved.
func TestMount_SerializesConcurrentRequests(t *testing.T) {
	radio := newFakeRadio()

	var callIndex int32
	proceed := []chan struct{}{make(chan struct{}), make(chan struct{})}
	started := make(chan int32, 2)
	var concurrentActive int32

	radio.registerEndpointFn = func(ctx context.Context, ep *Endpoint) error {
		idx := atomic.AddInt32(&callIndex, 1) - 1
		if atomic.AddInt32(&concurrentActive, 1) > 1 {
			t.Error("two RegisterEndpoint calls were in flight at once")
		}
		started <- idx
		<-proceed[idx]
		atomic.AddInt32(&concurrentActive, -1)
		return nil
	}

	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	app1 := &fakeApp{name: "first", desc: AppDescriptor{ProfID: 0x0104}}
	app2 := &fakeApp{name: "second", desc: AppDescriptor{ProfID: 0x0104}}

	result1 := make(chan error, 1)
	result2 := make(chan error, 1)

	go func() { _, err := sh.Mount(context.Background(), app1); result1 <- err }()

	first := <-started
	if first != 0 {
		t.Fatalf("expected the first mount to start first, got index %d", first)
	}

	go func() { _, err := sh.Mount(context.Background(), app2); result2 <- err }()

	select {
	case <-started:
		t.Fatal("the second mount's radio call started before the first was released")
	default:
	}

	close(proceed[0])
	if err := <-result1; err != nil {
		t.Fatalf("first mount: %v", err)
	}

	second := <-started
	if second != 1 {
		t.Fatalf("expected the second mount to start after the first completed, got index %d", second)
	}
	close(proceed[1])
	if err := <-result2; err != nil {
		t.Fatalf("second mount: %v", err)
	}
}
