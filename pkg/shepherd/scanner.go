package shepherd

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// zeroIEEE is never a real device; neighbours reporting it are skipped.
const zeroIEEE = "0x0000000000000000"

// LqiScan performs a breadth-first LQI walk of the PAN starting from
// startAddr (empty string defaults to the coordinator's own IEEE).
// All siblings at one level are scanned in parallel via
// errgroup; the next level starts only after the current level's
// parallel set resolves. Deduplicates by IEEE address: first sighting
// wins. Only Router-typed neighbours are enqueued for further scanning.
// emit, if non-nil, receives each neighbour entry as soon as it is
// produced, ahead of the final aggregated result.
func (s *Shepherd) LqiScan(ctx context.Context, startAddr string, emit func(NeighborEntry)) ([]NeighborEntry, error) {
	if startAddr == "" {
		startAddr = s.coordIEEE()
	}

	var (
		mu      sync.Mutex
		seen    = map[string]bool{startAddr: true}
		results []NeighborEntry
	)

	results = append(results, NeighborEntry{
		IEEEAddr: startAddr,
		Status:   s.statusOf(startAddr),
	})

	frontier := []string{startAddr}
	for len(frontier) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		nextFrontierCh := make(chan []string, len(frontier))

		for _, parent := range frontier {
			parent := parent
			g.Go(func() error {
				nwk := s.nwkAddrOf(parent)
				neighbors, err := s.radio.LQI(gctx, nwk)

				var spawned []string
				if err != nil {
					mu.Lock()
					markScanError(results, parent, err)
					mu.Unlock()
					nextFrontierCh <- nil
					return nil
				}

				for _, n := range neighbors {
					if n.IEEEAddr == zeroIEEE {
						continue
					}
					n.Parent = parent
					n.Status = s.statusOf(n.IEEEAddr)

					mu.Lock()
					isNew := !seen[n.IEEEAddr]
					if isNew {
						seen[n.IEEEAddr] = true
						results = append(results, n)
					}
					mu.Unlock()

					if !isNew {
						continue
					}
					if emit != nil {
						emit(n)
					}
					if s.typeOf(n.IEEEAddr) == DeviceTypeRouter {
						spawned = append(spawned, n.IEEEAddr)
					}
				}
				nextFrontierCh <- spawned
				return nil
			})
		}

		_ = g.Wait() // per-node errors are recorded on the record, not propagated
		close(nextFrontierCh)

		var next []string
		for spawned := range nextFrontierCh {
			next = append(next, spawned...)
		}
		frontier = next
	}

	return results, nil
}

func markScanError(results []NeighborEntry, ieee string, err error) {
	for i := range results {
		if results[i].IEEEAddr == ieee {
			results[i].Error = err.Error()
			return
		}
	}
}

func (s *Shepherd) statusOf(ieee string) DeviceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dev := s.registry.findByIEEE(ieee); dev != nil {
		return dev.Status
	}
	return StatusOffline
}

func (s *Shepherd) typeOf(ieee string) DeviceType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dev := s.registry.findByIEEE(ieee); dev != nil {
		return dev.Type
	}
	return DeviceTypeUnknown
}

func (s *Shepherd) nwkAddrOf(ieee string) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dev := s.registry.findByIEEE(ieee); dev != nil {
		return dev.NwkAddr
	}
	return 0
}

// Rtg issues a ZDO routing table query, dropping inactive routes
// (routeStatus & 7 == 3).
func (s *Shepherd) Rtg(ctx context.Context, ieeeAddr string) ([]RouteEntry, error) {
	nwk := s.nwkAddrOf(ieeeAddr)
	entries, err := s.radio.RoutingTable(ctx, nwk)
	if err != nil {
		return nil, NewTransportError("rtg", err)
	}
	out := entries[:0]
	for _, e := range entries {
		if e.RouteStatus&7 != 3 {
			out = append(out, e)
		}
	}
	return out, nil
}

// Lqi issues a single-hop LQI query, as used internally by LqiScan.
func (s *Shepherd) Lqi(ctx context.Context, ieeeAddr string) ([]NeighborEntry, error) {
	nwk := s.nwkAddrOf(ieeeAddr)
	neighbors, err := s.radio.LQI(ctx, nwk)
	if err != nil {
		return nil, NewTransportError("lqi", err)
	}
	for i := range neighbors {
		neighbors[i].Status = s.statusOf(neighbors[i].IEEEAddr)
	}
	return neighbors, nil
}
