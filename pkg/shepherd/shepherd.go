// Package shepherd is the stateful façade that owns the Zigbee
// coordinator's device registry, serialises mutating lifecycle
// operations, multiplexes application requests onto a single radio
// channel, dispatches radio indications as structured events, and
// implements the breadth-first topology scan. Every other package in
// this repository exists to give it real collaborators.
package shepherd

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Shepherd is the public façade. It is not safe for concurrent use by
// multiple goroutines beyond what its own internal mutex serialises: all
// registry and Controller access is marshalled through one task boundary
// (here, Shepherd's mutex) rather than left to the caller.
type Shepherd struct {
	radio   Radio
	af      AFLayer
	catalog Catalog

	registry *registry
	sink     *Sink

	mu             sync.Mutex
	enabled        bool
	startTime      int64
	coordID        int64
	net            *NetInfo
	firmware       string
	joinTimeLeft   int
	cancelDispatch context.CancelFunc

	mounted      []App
	appEndpoints map[uint8]App
	mountCh      chan mountRequest

	acceptDevIncoming  AcceptFunc
	acceptDevInterview AcceptFunc

	descValidator func(AppDescriptor) error

	// clock returns Unix seconds; overridable in tests since time.Now is
	// otherwise impossible to control deterministically.
	clock func() int64
}

// Options configures construction of a Shepherd: a Radio, AF layer,
// catalog, and store (DevBox) collaborator, plus an event Sink and
// optional app-descriptor validator.
type Options struct {
	Radio   Radio
	AF      AFLayer
	Catalog Catalog
	Store   Store
	Sink    *Sink

	// DescriptorValidator validates a mounted app's simple descriptor
	// before mount() commits to the radio round-trip. Optional.
	DescriptorValidator func(AppDescriptor) error

	// Clock overrides the wall clock used for joinTime/startTime
	// stamping; defaults to a real Unix-seconds clock.
	Clock func() int64
}

// New constructs a Shepherd over its external collaborators. The
// returned Shepherd is not yet started; call Start to bring up the
// Controller and begin processing indications.
func New(opts Options) *Shepherd {
	clock := opts.Clock
	if clock == nil {
		clock = unixNow
	}

	s := &Shepherd{
		radio:              opts.Radio,
		af:                 opts.AF,
		catalog:            opts.Catalog,
		sink:               opts.Sink,
		registry:           newRegistry(opts.Store),
		appEndpoints:       make(map[uint8]App),
		mountCh:            make(chan mountRequest, 32),
		acceptDevIncoming:  acceptAll,
		acceptDevInterview: acceptAll,
		descValidator:      opts.DescriptorValidator,
		clock:              clock,
	}
	go s.mountLoop(context.Background())
	return s
}

// Enabled reports whether the system has been successfully started.
func (s *Shepherd) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Info returns a snapshot of the system's network/runtime state.
func (s *Shepherd) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		Enabled:      s.enabled,
		Firmware:     s.firmware,
		StartTime:    s.startTime,
		JoinTimeLeft: s.joinTimeLeft,
	}
	if s.net != nil {
		info.Net = *s.net
	}
	return info
}

// List returns device dumps minus {id, endpoints}. With no
// addresses, returns every device excluding incomplete ones unless
// showIncomplete. With addresses, looks each up; an unknown address
// yields a nil slot in its place.
func (s *Shepherd) List(ieeeAddrs []string, showIncomplete bool) []*Dump {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ieeeAddrs) == 0 {
		devices := s.registry.exportAll()
		sort.Slice(devices, func(i, j int) bool { return devices[i].RegistryID < devices[j].RegistryID })

		out := make([]*Dump, 0, len(devices))
		for _, d := range devices {
			if d.Incomplete && !showIncomplete {
				continue
			}
			dump := d.dump(true)
			out = append(out, &dump)
		}
		return out
	}

	out := make([]*Dump, len(ieeeAddrs))
	for i, addr := range ieeeAddrs {
		if d := s.registry.findByIEEE(addr); d != nil {
			dump := d.dump(true)
			out[i] = &dump
		}
	}
	return out
}

// Find looks up a device by IEEE or nwkAddr, then an endpoint on it by
// id.
func (s *Shepherd) Find(addr string, epID uint8) (*Device, *Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev := s.registry.find(parseAddr(addr))
	if dev == nil {
		return nil, nil, ErrDeviceNotFound
	}
	ep, ok := dev.Endpoints[epID]
	if !ok {
		return dev, nil, ErrEndpointNotFound
	}
	return dev, ep, nil
}

// Remove delegates device removal to the Controller and unregisters it
// from the registry. Fails DeviceNotFound if not registered.
func (s *Shepherd) Remove(ctx context.Context, ieeeAddr string) error {
	s.mu.Lock()
	dev := s.registry.findByIEEE(ieeeAddr)
	if dev == nil {
		s.mu.Unlock()
		return ErrDeviceNotFound
	}
	s.mu.Unlock()

	if err := s.radio.RemoveDevice(ctx, ieeeAddr); err != nil {
		return NewTransportError("remove", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.unregister(ctx, dev); err != nil {
		log.Warn().Err(err).Str("ieeeAddr", ieeeAddr).Msg("shepherd: failed to unregister removed device")
		return err
	}
	return nil
}

func unixNow() int64 {
	return nowSeconds()
}
