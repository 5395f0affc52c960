package shepherd

import (
	"context"
	"errors"
	"testing"
)

func TestLqiScan_BreadthFirstDedupesAndSkipsZeroIEEE(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	coord := radio.coordDump.IEEEAddr
	router1 := newMountedDeviceAsType(sh, "0xrouter1", 0x0001, DeviceTypeRouter)
	router2 := newMountedDeviceAsType(sh, "0xrouter2", 0x0002, DeviceTypeRouter)
	_ = newMountedDeviceAsType(sh, "0xend1", 0x0003, DeviceTypeEndDevice)

	radio.lqiFn = func(ctx context.Context, nwk uint16) ([]NeighborEntry, error) {
		switch nwk {
		case 0x0000: // coordinator's neighbours: both routers plus a bogus all-zero entry
			return []NeighborEntry{
				{IEEEAddr: router1.IEEEAddr, NwkAddr: router1.NwkAddr, LQI: 200},
				{IEEEAddr: router2.IEEEAddr, NwkAddr: router2.NwkAddr, LQI: 180},
				{IEEEAddr: zeroIEEE},
			}, nil
		case router1.NwkAddr: // router1 re-reports router2, must not duplicate
			return []NeighborEntry{{IEEEAddr: router2.IEEEAddr, NwkAddr: router2.NwkAddr, LQI: 150}}, nil
		case router2.NwkAddr:
			return nil, nil
		}
		return nil, nil
	}

	results, err := sh.LqiScan(context.Background(), coord, nil)
	if err != nil {
		t.Fatalf("LqiScan: %v", err)
	}

	seen := map[string]int{}
	for _, r := range results {
		seen[r.IEEEAddr]++
	}
	if seen[coord] != 1 || seen[router1.IEEEAddr] != 1 || seen[router2.IEEEAddr] != 1 {
		t.Fatalf("expected each node exactly once, got %+v", seen)
	}
	if seen[zeroIEEE] != 0 {
		t.Error("expected the all-zero neighbour to be skipped entirely")
	}
}

func TestLqiScan_PerNodeErrorDoesNotAbortOthers(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	coord := radio.coordDump.IEEEAddr
	router1 := newMountedDeviceAsType(sh, "0xrouter1", 0x0001, DeviceTypeRouter)
	router2 := newMountedDeviceAsType(sh, "0xrouter2", 0x0002, DeviceTypeRouter)

	wantErr := errors.New("no response")
	radio.lqiFn = func(ctx context.Context, nwk uint16) ([]NeighborEntry, error) {
		switch nwk {
		case 0x0000:
			return []NeighborEntry{
				{IEEEAddr: router1.IEEEAddr, NwkAddr: router1.NwkAddr},
				{IEEEAddr: router2.IEEEAddr, NwkAddr: router2.NwkAddr},
			}, nil
		case router1.NwkAddr:
			return nil, wantErr
		case router2.NwkAddr:
			return nil, nil
		}
		return nil, nil
	}

	results, err := sh.LqiScan(context.Background(), coord, nil)
	if err != nil {
		t.Fatalf("LqiScan itself must not fail on a per-node error: %v", err)
	}

	var router1Entry, router2Entry *NeighborEntry
	for i := range results {
		switch results[i].IEEEAddr {
		case router1.IEEEAddr:
			router1Entry = &results[i]
		case router2.IEEEAddr:
			router2Entry = &results[i]
		}
	}
	if router1Entry == nil || router1Entry.Error == "" {
		t.Fatalf("expected router1's record to carry the error, got %+v", router1Entry)
	}
	if router2Entry == nil || router2Entry.Error != "" {
		t.Fatalf("expected router2 to be unaffected by router1's failure, got %+v", router2Entry)
	}
}

func TestRtg_FiltersInactiveRoutes(t *testing.T) {
	radio := newFakeRadio()
	sh := newTestShepherd(radio, newFakeStore(), &fakeAFLayer{}, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	dev := newMountedDeviceAsType(sh, "0xaaaa", 5, DeviceTypeRouter)

	radio.rtgFn = func(ctx context.Context, nwk uint16) ([]RouteEntry, error) {
		return []RouteEntry{
			{DestNwkAddr: 1, RouteStatus: 0}, // active
			{DestNwkAddr: 2, RouteStatus: 3}, // inactive, filtered
			{DestNwkAddr: 3, RouteStatus: 1}, // discovery underway, kept
		}, nil
	}

	entries, err := sh.Rtg(context.Background(), dev.IEEEAddr)
	if err != nil {
		t.Fatalf("Rtg: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 active routes, got %+v", entries)
	}
}

// newMountedDeviceAsType registers a router/end-device directly into the
// registry (as the Lifecycle Engine would after a successful interview),
// bypassing indication plumbing the scanner tests don't exercise.
func newMountedDeviceAsType(sh *Shepherd, ieee string, nwk uint16, devType DeviceType) *Device {
	dev := newDevice(ieee, nwk, devType)
	if err := sh.registry.register(context.Background(), dev, nil); err != nil {
		panic(err)
	}
	return dev
}
