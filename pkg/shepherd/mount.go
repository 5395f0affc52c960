package shepherd

import (
	"context"

	"github.com/rs/zerolog/log"
)

// mountRequest is one queued mount() call. Results are delivered
// on done; the queue drains one request per tick after the previous
// mount completes, success or failure.
type mountRequest struct {
	app  App
	done chan mountResult
}

type mountResult struct {
	epID uint8
	err  error
}

// mountLoop drains the FIFO mount queue one request at a time. It is the
// only writer of s.mounted and the only caller of registerEndpoint,
// matching the "one mount in flight" requirement.
func (s *Shepherd) mountLoop(ctx context.Context) {
	for req := range s.mountCh {
		epID, err := s.doMount(ctx, req.app)
		req.done <- mountResult{epID: epID, err: err}
	}
}

// Mount registers a local application, queuing behind any mount already
// in flight. It blocks until this request's turn completes.
func (s *Shepherd) Mount(ctx context.Context, app App) (uint8, error) {
	s.mu.Lock()
	for _, a := range s.mounted {
		if a == app {
			s.mu.Unlock()
			return 0, ErrDuplicateMount
		}
	}
	s.mu.Unlock()

	req := mountRequest{app: app, done: make(chan mountResult, 1)}
	select {
	case s.mountCh <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-req.done:
		return res.epID, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// doMount performs the actual registration steps. Any step's
// failure rejects this mount only; the queue continues to the next
// request regardless.
func (s *Shepherd) doMount(ctx context.Context, app App) (uint8, error) {
	if err := s.validateDescriptor(app.SimpleDescriptor()); err != nil {
		return 0, err
	}

	s.mu.Lock()
	coord := s.registry.devices[s.coordID]
	if coord == nil {
		s.mu.Unlock()
		return 0, ErrCoordinatorNotReady
	}

	epID := nextCoordEndpointID(coord.EpList)
	desc := app.SimpleDescriptor()
	ep := newEndpoint(epID, desc.ProfID, desc.DevID, desc.InClusterList, desc.OutClusterList)
	s.mu.Unlock()

	if err := s.radio.RegisterEndpoint(ctx, ep); err != nil {
		return 0, NewTransportError("registerEp", err)
	}

	s.mu.Lock()
	coord.addEndpoint(ep)
	s.mu.Unlock()

	coordDump, err := s.radio.GetCoordInfo(ctx)
	if err == nil {
		s.mu.Lock()
		coord.NwkAddr = coordDump.NwkAddr
		s.mu.Unlock()
	}

	s.mu.Lock()
	syncErr := s.registry.syncOne(ctx, coord)
	s.mu.Unlock()
	if syncErr != nil {
		log.Warn().Err(syncErr).Msg("shepherd: failed to persist coordinator after mount")
	}

	s.mu.Lock()
	s.mounted = append(s.mounted, app)
	s.appEndpoints[ep.EpID] = app
	s.mu.Unlock()

	return ep.EpID, nil
}

// nextCoordEndpointID allocates a fresh coordinator endpoint id:
// max(epList)+1 if that exceeds the delegator reservation, else the
// first id past the reservation.
func nextCoordEndpointID(epList []uint8) uint8 {
	var max uint8
	for _, id := range epList {
		if id > max {
			max = id
		}
	}
	if int(max) > reservedDelegatorEndpoints {
		return max + 1
	}
	return reservedDelegatorEndpoints + 1
}

// validateDescriptor checks a mounted app's declared simple descriptor
// shape before committing to the radio round-trip: profile id must be
// set and cluster lists must not collide.
func (s *Shepherd) validateDescriptor(desc AppDescriptor) error {
	if s.descValidator == nil {
		return nil
	}
	return s.descValidator(desc)
}
