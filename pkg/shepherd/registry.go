package shepherd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// registry is the in-memory + persisted device map. It is backed
// by the external Store (DevBox) and never silently overwrites: duplicate
// registration is a caller error. No iteration order is guaranteed.
type registry struct {
	store   Store
	devices map[int64]*Device
}

func newRegistry(store Store) *registry {
	return &registry{
		store:   store,
		devices: make(map[int64]*Device),
	}
}

// find accepts an IEEE address (string, "0x"-prefixed) or a numeric
// nwkAddr and returns the first match via linear scan.
func (r *registry) find(addr interface{}) *Device {
	switch v := addr.(type) {
	case string:
		for _, d := range r.devices {
			if d.IEEEAddr == v {
				return d
			}
		}
	case uint16:
		for _, d := range r.devices {
			if d.NwkAddr == v {
				return d
			}
		}
	}
	return nil
}

func (r *registry) findByIEEE(ieee string) *Device { return r.find(ieee) }
func (r *registry) findByNwk(nwk uint16) *Device   { return r.find(nwk) }

// register persists a new or recovered device. Duplicate registry ids
// are rejected. New devices are stamped with joinTime by the
// caller (Lifecycle Engine) before register is invoked.
func (r *registry) register(ctx context.Context, d *Device, joinTimeSetter func(*Device)) error {
	if d.RegistryID != 0 && !d.recovered {
		if _, exists := r.devices[d.RegistryID]; exists {
			return ErrDuplicateRegistration
		}
	}

	data, err := json.Marshal(d.dump(false))
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}

	if d.recovered {
		if err := r.store.Set(ctx, d.RegistryID, data); err != nil {
			return NewPersistenceError("register(recovered)", err)
		}
		d.recovered = false
	} else {
		if joinTimeSetter != nil {
			joinTimeSetter(d)
		}
		id, err := r.store.Add(ctx, data)
		if err != nil {
			return NewPersistenceError("register", err)
		}
		d.RegistryID = id
	}

	r.devices[d.RegistryID] = d
	return nil
}

// unregister removes a device by registry id, deleting its persisted
// record in the same step.
func (r *registry) unregister(ctx context.Context, d *Device) error {
	delete(r.devices, d.RegistryID)
	if err := r.store.Remove(ctx, d.RegistryID); err != nil {
		return NewPersistenceError("unregister", err)
	}
	return nil
}

// syncOne persists the current in-memory state of one device.
func (r *registry) syncOne(ctx context.Context, d *Device) error {
	data, err := json.Marshal(d.dump(false))
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	if err := r.store.Sync(ctx, d.RegistryID, data); err != nil {
		return NewPersistenceError("syncOne", err)
	}
	return nil
}

// exportAll returns every device currently in memory. No order is
// guaranteed; callers sort by their chosen key if needed.
func (r *registry) exportAll() []*Device {
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

// clearAll empties the in-memory map without touching the on-disk
// store; Stop relies on the persisted records surviving.
func (r *registry) clearAll() {
	r.devices = make(map[int64]*Device)
}

// wipeStore removes every persisted record and verifies the store is
// empty afterward, the hard-reset path. Errors are logged, not
// returned: a failing store must not prevent the radio reset.
func (r *registry) wipeStore(ctx context.Context) {
	ids, err := r.store.ExportAllIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("shepherd: failed to list devbox ids during hard reset")
		return
	}
	for _, id := range ids {
		if err := r.store.Remove(ctx, id); err != nil {
			log.Warn().Err(err).Int64("id", id).Msg("shepherd: failed to remove devbox record during hard reset")
		}
	}
	empty, err := r.store.IsEmpty(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("shepherd: failed to verify devbox empty after hard reset")
		return
	}
	if !empty {
		log.Warn().Msg("shepherd: devbox not empty after hard reset sweep")
	}
}

// rehydrate loads every persisted device back into memory on Start,
// marking each as recovered so the next register() call clears the flag
// instead of re-adding.
func (r *registry) rehydrate(ctx context.Context) error {
	objs, err := r.store.ExportAllObjs(ctx)
	if err != nil {
		return NewPersistenceError("rehydrate", err)
	}
	ids, err := r.store.ExportAllIDs(ctx)
	if err != nil {
		return NewPersistenceError("rehydrate", err)
	}
	if len(ids) != len(objs) {
		return fmt.Errorf("shepherd: devbox ids/objs length mismatch (%d vs %d)", len(ids), len(objs))
	}

	for i, raw := range objs {
		var dump Dump
		if err := json.Unmarshal(raw, &dump); err != nil {
			log.Warn().Err(err).Int64("id", ids[i]).Msg("shepherd: skipping unparseable devbox record")
			continue
		}
		d := &Device{
			RegistryID:   ids[i],
			IEEEAddr:     dump.IEEEAddr,
			NwkAddr:      dump.NwkAddr,
			Type:         dump.Type,
			Status:       dump.Status,
			JoinTime:     dump.JoinTime,
			Incomplete:   dump.Incomplete,
			Manufacturer: dump.Manufacturer,
			Firmware:     dump.Firmware,
			EpList:       dump.EpList,
			Endpoints:    dump.Endpoints,
			recovered:    true,
		}
		if d.Endpoints == nil {
			d.Endpoints = make(map[uint8]*Endpoint)
		}
		r.devices[d.RegistryID] = d
	}
	return nil
}

// parseAddr normalizes a user-supplied address argument (either a
// "0x..."-prefixed IEEE string or a bare numeric string) into the
// interface{} shape find() accepts.
func parseAddr(addr string) interface{} {
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		return addr
	}
	if n, err := strconv.ParseUint(addr, 10, 16); err == nil {
		return uint16(n)
	}
	return addr
}
