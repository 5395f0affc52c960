package shepherd

import (
	"context"
	"testing"
)

func TestRegistryRegister_NewDevicePersistsAndAssignsID(t *testing.T) {
	store := newFakeStore()
	r := newRegistry(store)
	ctx := context.Background()

	d := newDevice("0x0001", 1, DeviceTypeRouter)
	stampCalled := false
	if err := r.register(ctx, d, func(dev *Device) { stampCalled = true; dev.JoinTime = 42 }); err != nil {
		t.Fatalf("register: %v", err)
	}

	if d.RegistryID == 0 {
		t.Fatal("expected a non-zero registry id after register")
	}
	if !stampCalled || d.JoinTime != 42 {
		t.Fatalf("expected joinTimeSetter to run, got joinTime=%d", d.JoinTime)
	}
	if r.findByIEEE("0x0001") != d {
		t.Fatal("expected the device to be findable by IEEE after register")
	}

	empty, _ := store.IsEmpty(ctx)
	if empty {
		t.Fatal("expected the store to hold the persisted record")
	}
}

func TestRegistryRegister_DuplicateRegistrationRejected(t *testing.T) {
	store := newFakeStore()
	r := newRegistry(store)
	ctx := context.Background()

	d1 := newDevice("0x0001", 1, DeviceTypeRouter)
	if err := r.register(ctx, d1, nil); err != nil {
		t.Fatalf("register d1: %v", err)
	}

	d2 := newDevice("0x0002", 2, DeviceTypeRouter)
	d2.RegistryID = d1.RegistryID
	if err := r.register(ctx, d2, nil); err != ErrDuplicateRegistration {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
}

func TestRegistryFind_ByIEEEAndByNwk(t *testing.T) {
	store := newFakeStore()
	r := newRegistry(store)
	ctx := context.Background()

	d := newDevice("0x00aa", 0x1234, DeviceTypeEndDevice)
	if err := r.register(ctx, d, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	if r.findByIEEE("0x00aa") != d {
		t.Error("expected lookup by IEEE to succeed")
	}
	if r.findByNwk(0x1234) != d {
		t.Error("expected lookup by nwkAddr to succeed")
	}
	if r.findByIEEE("0xnope") != nil {
		t.Error("expected lookup of an unknown IEEE to return nil")
	}
}

func TestRegistryUnregister_RemovesFromMemoryAndStore(t *testing.T) {
	store := newFakeStore()
	r := newRegistry(store)
	ctx := context.Background()

	d := newDevice("0x0001", 1, DeviceTypeRouter)
	if err := r.register(ctx, d, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.unregister(ctx, d); err != nil {
		t.Fatalf("unregister: %v", err)
	}

	if r.findByIEEE("0x0001") != nil {
		t.Error("expected device gone from memory after unregister")
	}
	empty, _ := store.IsEmpty(ctx)
	if !empty {
		t.Error("expected the store record to be removed too")
	}
}

func TestRegistryRehydrate_MarksRecoveredAndClearsOnReregister(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	seed := newRegistry(store)
	d := newDevice("0x0001", 1, DeviceTypeRouter)
	if err := seed.register(ctx, d, nil); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	r := newRegistry(store)
	if err := r.rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}

	rehydrated := r.findByIEEE("0x0001")
	if rehydrated == nil {
		t.Fatal("expected the persisted device to reappear after rehydrate")
	}
	if !rehydrated.recovered {
		t.Fatal("expected a rehydrated device to be marked recovered")
	}

	if err := r.register(ctx, rehydrated, nil); err != nil {
		t.Fatalf("re-register recovered device: %v", err)
	}
	if rehydrated.recovered {
		t.Error("expected recovered flag to clear after the next register() call")
	}
}

func TestRegistryWipeStore_RemovesEveryPersistedRecord(t *testing.T) {
	store := newFakeStore()
	r := newRegistry(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d := newDevice("0x000"+string(rune('1'+i)), uint16(i+1), DeviceTypeRouter)
		if err := r.register(ctx, d, nil); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	r.wipeStore(ctx)

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Error("expected the store to be empty after wipeStore")
	}
}

func TestParseAddr_HexPrefixVsNumericNwk(t *testing.T) {
	if v, ok := parseAddr("0x00124b0001234567").(string); !ok || v != "0x00124b0001234567" {
		t.Errorf("expected a 0x-prefixed address to pass through as a string, got %#v", v)
	}
	if v, ok := parseAddr("4660").(uint16); !ok || v != 0x1234 {
		t.Errorf("expected a bare numeric address to parse as uint16 nwkAddr, got %#v", v)
	}
}
