package shepherd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AcceptFunc is a user-pluggable admission hook. Both hooks
// default to unconditional accept and may be replaced at any point
// after construction.
type AcceptFunc func(ieeeAddr string, devType DeviceType) bool

func acceptAll(string, DeviceType) bool { return true }

// SetAcceptDevIncoming overrides the join-admission hook.
func (s *Shepherd) SetAcceptDevIncoming(fn AcceptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = acceptAll
	}
	s.acceptDevIncoming = fn
}

// SetAcceptDevInterview overrides the interview-admission hook.
func (s *Shepherd) SetAcceptDevInterview(fn AcceptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = acceptAll
	}
	s.acceptDevInterview = fn
}

// Start brings up the Controller, rehydrates persisted devices, and
// reconciles the coordinator. A second call while enabled is a
// caller error.
func (s *Shepherd) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.enabled {
		s.mu.Unlock()
		return ErrAlreadyEnabled
	}
	s.mu.Unlock()

	net, err := s.radio.Start(ctx)
	if err != nil {
		return NewTransportError("start", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.rehydrate(ctx); err != nil {
		_ = s.radio.Close()
		return err
	}

	coordDump, err := s.radio.GetCoordInfo(ctx)
	if err != nil {
		_ = s.radio.Close()
		return NewTransportError("getCoordInfo", err)
	}

	coord := s.registry.findByIEEE(coordDump.IEEEAddr)
	if coord == nil {
		coord = newDevice(coordDump.IEEEAddr, coordDump.NwkAddr, DeviceTypeCoordinator)
		coord.JoinTime = s.clock()
		if err := s.registry.register(ctx, coord, nil); err != nil {
			_ = s.radio.Close()
			return err
		}
	} else {
		coord.NwkAddr = coordDump.NwkAddr
		coord.Type = DeviceTypeCoordinator
	}
	s.coordID = coord.RegistryID

	s.net = net
	s.enabled = true
	s.startTime = s.clock()
	firmware, err := s.radio.GetFirmwareInfo(ctx)
	if err == nil {
		s.firmware = firmware
	}

	go s.dispatchLoop(context.Background())

	s.sink.emitReady()
	log.Info().Str("ieeeAddr", coord.IEEEAddr).Msg("shepherd: started")
	return nil
}

// Stop clears the in-memory registry and closes the Controller.
// The on-disk store is untouched. Safe to call when already stopped.
func (s *Shepherd) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}

	s.registry.clearAll()
	s.mounted = nil
	s.appEndpoints = make(map[uint8]App)
	s.enabled = false
	s.joinTimeLeft = 0

	if s.cancelDispatch != nil {
		s.cancelDispatch()
		s.cancelDispatch = nil
	}

	if err := s.radio.Close(); err != nil {
		return NewTransportError("close", err)
	}
	return nil
}

// Reset issues a soft or hard reset. Hard additionally wipes
// persisted storage. Store errors are logged, not propagated: the radio
// reset is issued regardless.
func (s *Shepherd) Reset(ctx context.Context, hard bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hard {
		s.registry.wipeStore(ctx)
	}

	if err := s.radio.Reset(ctx, hard); err != nil {
		return NewTransportError("reset", err)
	}
	return nil
}

// PermitJoin opens a join window of the given duration, scoped by
// joinType ("all" or "coord", default "all"). Fails NotEnabled if the
// system is not started.
func (s *Shepherd) PermitJoin(ctx context.Context, seconds int, joinType string) error {
	if joinType == "" {
		joinType = "all"
	}
	if joinType != "all" && joinType != "coord" {
		panic(fmt.Sprintf("shepherd: invalid permitJoin type %q", joinType))
	}

	s.mu.Lock()
	enabled := s.enabled
	s.mu.Unlock()
	if !enabled {
		return ErrNotEnabled
	}

	if err := s.radio.PermitJoin(ctx, seconds, joinType); err != nil {
		return NewTransportError("permitJoin", err)
	}
	return nil
}

// handleDevIncoming implements the join admission flow: accept
// hook, interview (modeled here as already complete by the time the
// Controller raises IndDevInterview/IndDevIncoming; the Controller owns
// the wire-level interview exchange), then emit devInterview followed by
// devIncoming on success.
func (s *Shepherd) handleDevIncoming(ind Indication) {
	s.mu.Lock()

	if !s.acceptDevIncoming(ind.IEEEAddr, ind.DevType) {
		s.mu.Unlock()
		log.Debug().Str("ieeeAddr", ind.IEEEAddr).Msg("shepherd: devIncoming rejected by accept hook")
		return
	}

	interviewAccepted := s.acceptDevInterview(ind.IEEEAddr, ind.DevType)
	if !interviewAccepted {
		log.Debug().Str("ieeeAddr", ind.IEEEAddr).Msg("shepherd: devInterview rejected by accept hook")
	}
	complete := ind.Success && interviewAccepted

	dev := s.registry.findByIEEE(ind.IEEEAddr)
	if dev == nil {
		dev = newDevice(ind.IEEEAddr, ind.NwkAddr, ind.DevType)
	}
	for _, ep := range ind.Endpoints {
		dev.addEndpoint(ep)
	}
	dev.Incomplete = !complete

	ctx := context.Background()
	if err := s.registry.register(ctx, dev, func(d *Device) { d.JoinTime = s.clock() }); err != nil {
		s.mu.Unlock()
		log.Warn().Err(err).Str("ieeeAddr", ind.IEEEAddr).Msg("shepherd: failed to register incoming device")
		return
	}
	s.mu.Unlock()

	s.sink.emitInd(Event{
		Type: EventDevInterview,
		Data: map[string]interface{}{"status": complete, "dev": dev.dump(false)},
	})

	if complete {
		s.sink.emitInd(Event{
			Type:      EventDevIncoming,
			Endpoints: ind.Endpoints,
			Data:      ind.IEEEAddr,
		})
	}
}

// handleDevLeaving implements the leave flow: emit devLeaving
// then unregister the device.
func (s *Shepherd) handleDevLeaving(ind Indication) {
	s.mu.Lock()
	dev := s.registry.findByIEEE(ind.IEEEAddr)
	if dev == nil {
		s.mu.Unlock()
		return
	}
	ctx := context.Background()
	if err := s.registry.unregister(ctx, dev); err != nil {
		log.Warn().Err(err).Str("ieeeAddr", ind.IEEEAddr).Msg("shepherd: failed to unregister leaving device")
	}
	s.mu.Unlock()

	s.sink.emitInd(Event{
		Type:      EventDevLeaving,
		Endpoints: ind.Endpoints,
		Data:      ind.IEEEAddr,
	})
}
