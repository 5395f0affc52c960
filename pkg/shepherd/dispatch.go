package shepherd

import (
	"context"

	"github.com/rs/zerolog/log"
)

// dispatchLoop is the Indication Dispatcher: it subscribes to the
// Controller's raw indications and translates each into the external
// `ind` event, processing them strictly in arrival order. Within one
// indication, cache update and event emission are ordered (diff before
// emit).
func (s *Shepherd) dispatchLoop(ctx context.Context) {
	dctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancelDispatch = cancel
	s.mu.Unlock()

	ch := s.radio.Indications()
	for {
		select {
		case <-dctx.Done():
			return
		case ind, ok := <-ch:
			if !ok {
				return
			}
			s.handleIndication(dctx, ind)
		}
	}
}

func (s *Shepherd) handleIndication(ctx context.Context, ind Indication) {
	switch ind.Kind {
	case IndDevIncoming, IndDevInterview:
		s.handleDevIncoming(ind)
	case IndDevLeaving:
		s.handleDevLeaving(ind)
	case IndDataConfirm:
		s.sink.emitInd(Event{Type: EventDataConfirm, Endpoints: s.endpointsFor(ind), Data: ind.Message})
	case IndStatusChange:
		s.sink.emitInd(Event{
			Type:      EventStatusChange,
			Endpoints: s.endpointsFor(ind),
			Data:      map[string]interface{}{"cid": ind.ClusterID, "zoneStatus": ind.ZoneStatus},
			Msg:       ind.Message,
		})
	case IndAttReport:
		s.handleAttReport(ctx, ind)
	case IndDevStatus:
		s.handleDevStatus(ind)
	case IndPermitJoining:
		s.mu.Lock()
		s.joinTimeLeft = ind.TimeLeft
		s.mu.Unlock()
		s.sink.emitPermitJoining(ind.TimeLeft)
	case IndAppFoundation:
		s.handleAppCommand(ctx, ind, true)
	case IndAppFunctional:
		s.handleAppCommand(ctx, ind, false)
	default:
		log.Debug().Int("kind", int(ind.Kind)).Msg("shepherd: unhandled indication kind")
	}
}

func (s *Shepherd) endpointsFor(ind Indication) []*Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	dev := s.registry.findByIEEE(ind.IEEEAddr)
	if dev == nil {
		return nil
	}
	if ep, ok := dev.Endpoints[ind.EpID]; ok {
		return []*Endpoint{ep}
	}
	return nil
}

// handleAttReport applies an unconditional cache overwrite ("reported"
// values are not gated by a status field) and emits attReport.
func (s *Shepherd) handleAttReport(ctx context.Context, ind Indication) {
	s.mu.Lock()
	dev := s.registry.findByIEEE(ind.IEEEAddr)
	if dev == nil {
		s.mu.Unlock()
		return
	}
	ep, ok := dev.Endpoints[ind.EpID]
	if !ok {
		s.mu.Unlock()
		return
	}

	table := ep.clusterTable(ind.ClusterID)
	named := make(map[string]interface{}, len(ind.RawAttrs))
	for attrID, raw := range ind.RawAttrs {
		name := s.catalog.AttrName(ind.ClusterID, attrID)
		dataType := s.catalog.AttrType(ind.ClusterID, attrID)
		value := decodeAttrValue(dataType, raw)
		table[name] = value
		named[name] = value
	}
	if syncErr := s.registry.syncOne(ctx, dev); syncErr != nil {
		log.Warn().Err(syncErr).Msg("shepherd: failed to persist device after attribute report")
	}
	s.mu.Unlock()

	s.sink.emitInd(Event{
		Type:      EventAttReport,
		Endpoints: []*Endpoint{ep},
		Data:      ClusterDiff{ClusterID: ind.ClusterID, Data: named},
	})
}

func (s *Shepherd) handleDevStatus(ind Indication) {
	s.mu.Lock()
	dev := s.registry.findByIEEE(ind.IEEEAddr)
	if dev != nil {
		dev.Status = ind.DeviceStatus
	}
	s.mu.Unlock()

	if dev == nil {
		return
	}
	var eps []*Endpoint
	for _, epID := range dev.EpList {
		eps = append(eps, dev.Endpoints[epID])
	}
	s.sink.emitInd(Event{Type: EventDevStatus, Endpoints: eps, Data: ind.DeviceStatus})
}

// handleAppCommand routes an incoming AF frame addressed to a mounted
// app's coordinator endpoint to its foundation/functional handler, then
// sends the handler's reply back to the originator if one was returned.
func (s *Shepherd) handleAppCommand(ctx context.Context, ind Indication, foundation bool) {
	s.mu.Lock()
	app, ok := s.appEndpoints[ind.EpID]
	s.mu.Unlock()
	if !ok {
		log.Debug().Uint8("epId", ind.EpID).Msg("shepherd: app command addressed to an unmounted endpoint")
		return
	}

	var resp []byte
	var err error
	if foundation {
		resp, err = app.OnZclFoundation(ctx, ind.ClusterID, ind.Cmd, ind.Payload)
	} else {
		resp, err = app.OnZclFunctional(ctx, ind.ClusterID, ind.Cmd, ind.Payload)
	}
	if err != nil {
		log.Warn().Err(err).Str("app", app.Name()).Msg("shepherd: app command handler failed")
		return
	}
	if len(resp) == 0 {
		return
	}

	if err := s.radio.SendAPSReply(ctx, ind.EpID, ind.IEEEAddr, ind.RemoteEpID, ind.ClusterID, resp); err != nil {
		log.Warn().Err(err).Str("app", app.Name()).Msg("shepherd: failed to send app command reply")
	}
}
