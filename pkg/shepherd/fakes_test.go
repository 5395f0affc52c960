package shepherd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// fakeRadio is a hand-built stand-in for Radio. Every behaviour a test
// cares about is exposed as a plain func field, left nil (and therefore
// a safe no-op/zero-value) unless the test sets it.
type fakeRadio struct {
	mu sync.Mutex

	startErr  error
	netInfo   *NetInfo
	coordDump *Dump
	coordErr  error
	firmware  string
	closeErr  error
	resetErr  error
	removeErr error

	registerEndpointFn func(ctx context.Context, ep *Endpoint) error
	bindCalls          []bindCall
	unbindCalls        []bindCall
	bindErr            error
	unbindErr          error

	lqiFn func(ctx context.Context, nwk uint16) ([]NeighborEntry, error)
	rtgFn func(ctx context.Context, nwk uint16) ([]RouteEntry, error)

	sendAPSDataFn func(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, cID uint16, payload []byte) ([]byte, error)

	sendAPSReplyFn func(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, cID uint16, payload []byte) error
	apsReplyCalls  []apsReplyCall

	indCh chan Indication
}

type apsReplyCall struct {
	srcEp   uint8
	dstIEEE string
	dstEp   uint8
	cID     uint16
	payload []byte
}

type bindCall struct {
	srcIEEE string
	srcEp   uint8
	cID     uint16
	dstIEEE string
	dstEp   uint8
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{
		netInfo:   &NetInfo{State: "connected", Channel: 11, PanID: 0x1234},
		coordDump: &Dump{IEEEAddr: "0xcoord0000000001", NwkAddr: 0x0000},
		firmware:  "1.0-test",
		indCh:     make(chan Indication, 16),
	}
}

func (r *fakeRadio) Start(ctx context.Context) (*NetInfo, error) { return r.netInfo, r.startErr }
func (r *fakeRadio) Close() error                                { return r.closeErr }
func (r *fakeRadio) Reset(ctx context.Context, hard bool) error  { return r.resetErr }
func (r *fakeRadio) PermitJoin(ctx context.Context, seconds int, joinType string) error { return nil }

func (r *fakeRadio) RegisterEndpoint(ctx context.Context, ep *Endpoint) error {
	if r.registerEndpointFn != nil {
		return r.registerEndpointFn(ctx, ep)
	}
	return nil
}

func (r *fakeRadio) Bind(ctx context.Context, srcIEEE string, srcEp uint8, cID uint16, dstIEEE string, dstEp uint8) error {
	r.mu.Lock()
	r.bindCalls = append(r.bindCalls, bindCall{srcIEEE, srcEp, cID, dstIEEE, dstEp})
	r.mu.Unlock()
	return r.bindErr
}

func (r *fakeRadio) Unbind(ctx context.Context, srcIEEE string, srcEp uint8, cID uint16, dstIEEE string, dstEp uint8) error {
	r.mu.Lock()
	r.unbindCalls = append(r.unbindCalls, bindCall{srcIEEE, srcEp, cID, dstIEEE, dstEp})
	r.mu.Unlock()
	return r.unbindErr
}

func (r *fakeRadio) RemoveDevice(ctx context.Context, ieeeAddr string) error { return r.removeErr }

func (r *fakeRadio) GetCoordInfo(ctx context.Context) (*Dump, error) { return r.coordDump, r.coordErr }
func (r *fakeRadio) GetNetInfo(ctx context.Context) (*NetInfo, error) { return r.netInfo, nil }
func (r *fakeRadio) GetFirmwareInfo(ctx context.Context) (string, error) { return r.firmware, nil }

func (r *fakeRadio) LQI(ctx context.Context, nwkAddr uint16) ([]NeighborEntry, error) {
	if r.lqiFn != nil {
		return r.lqiFn(ctx, nwkAddr)
	}
	return nil, nil
}

func (r *fakeRadio) RoutingTable(ctx context.Context, nwkAddr uint16) ([]RouteEntry, error) {
	if r.rtgFn != nil {
		return r.rtgFn(ctx, nwkAddr)
	}
	return nil, nil
}

func (r *fakeRadio) SendAPSData(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, clusterID uint16, payload []byte) ([]byte, error) {
	if r.sendAPSDataFn != nil {
		return r.sendAPSDataFn(ctx, srcEp, dstIEEE, dstEp, clusterID, payload)
	}
	return nil, nil
}

func (r *fakeRadio) SendAPSReply(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, cID uint16, payload []byte) error {
	r.mu.Lock()
	r.apsReplyCalls = append(r.apsReplyCalls, apsReplyCall{srcEp, dstIEEE, dstEp, cID, payload})
	r.mu.Unlock()
	if r.sendAPSReplyFn != nil {
		return r.sendAPSReplyFn(ctx, srcEp, dstIEEE, dstEp, cID, payload)
	}
	return nil
}

func (r *fakeRadio) Indications() <-chan Indication { return r.indCh }

// fakeAFLayer is a hand-built stand-in for AFLayer.
type fakeAFLayer struct {
	foundationFn   func(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error)
	functionalFn   func(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error)
	clusterAttrsFn func(ctx context.Context, ep *Endpoint, dstIEEE string, cID uint16) (map[string]interface{}, error)
}

func (a *fakeAFLayer) ZclFoundation(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
	if a.foundationFn != nil {
		return a.foundationFn(ctx, srcEp, dstEp, dstIEEE, cID, cmd, payload)
	}
	return nil, nil
}

func (a *fakeAFLayer) ZclFunctional(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
	if a.functionalFn != nil {
		return a.functionalFn(ctx, srcEp, dstEp, dstIEEE, cID, cmd, payload)
	}
	return nil, nil
}

func (a *fakeAFLayer) ZclClusterAttrsReq(ctx context.Context, ep *Endpoint, dstIEEE string, cID uint16) (map[string]interface{}, error) {
	if a.clusterAttrsFn != nil {
		return a.clusterAttrsFn(ctx, ep, dstIEEE, cID)
	}
	return nil, nil
}

// fakeStore is an in-memory stand-in for Store (DevBox), sequentially
// assigning ids the way a real DB's auto-increment primary key would.
type fakeStore struct {
	mu      sync.Mutex
	objs    map[int64][]byte
	nextID  int64
	addErr  error
	setErr  error
	getErr  error
	rmErr   error
	syncErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objs: make(map[int64][]byte)}
}

func (s *fakeStore) Add(ctx context.Context, data []byte) (int64, error) {
	if s.addErr != nil {
		return 0, s.addErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.objs[s.nextID] = data
	return s.nextID, nil
}

func (s *fakeStore) Set(ctx context.Context, id int64, data []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[id] = data
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id int64) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objs[id]
	if !ok {
		return nil, fmt.Errorf("fakeStore: no object with id %d", id)
	}
	return data, nil
}

func (s *fakeStore) Remove(ctx context.Context, id int64) error {
	if s.rmErr != nil {
		return s.rmErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objs, id)
	return nil
}

func (s *fakeStore) Sync(ctx context.Context, id int64, data []byte) error {
	if s.syncErr != nil {
		return s.syncErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[id] = data
	return nil
}

func (s *fakeStore) ExportAllIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.objs))
	for id := range s.objs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *fakeStore) ExportAllObjs(ctx context.Context) ([][]byte, error) {
	ids, _ := s.ExportAllIDs(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.objs[id])
	}
	return out, nil
}

func (s *fakeStore) IsEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objs) == 0, nil
}

// fakeApp is a hand-built stand-in for App.
type fakeApp struct {
	name string
	desc AppDescriptor

	onFoundationFn func(ctx context.Context, cID uint16, cmd uint8, payload []byte) ([]byte, error)
	onFunctionalFn func(ctx context.Context, cID uint16, cmd uint8, payload []byte) ([]byte, error)
}

func (a *fakeApp) Name() string                    { return a.name }
func (a *fakeApp) SimpleDescriptor() AppDescriptor { return a.desc }
func (a *fakeApp) OnZclFoundation(ctx context.Context, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
	if a.onFoundationFn != nil {
		return a.onFoundationFn(ctx, cID, cmd, payload)
	}
	return nil, nil
}
func (a *fakeApp) OnZclFunctional(ctx context.Context, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
	if a.onFunctionalFn != nil {
		return a.onFunctionalFn(ctx, cID, cmd, payload)
	}
	return nil, nil
}

// fakeValidator is a hand-built stand-in for pkg/schema.Validator's
// structural shape (jsonValidator), checking only what the descriptor
// schema in descriptor.go requires: a profId of at least 1 must be present.
type fakeValidator struct{}

func (fakeValidator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	profID, ok := payload["profId"].(float64)
	if !ok || profID < 1 {
		return fmt.Errorf("fakeValidator: profId is required")
	}
	return nil
}

// newTestShepherd builds a Shepherd wired to the fakes above, with a
// deterministic clock, ready to Start.
func newTestShepherd(radio *fakeRadio, store *fakeStore, af *fakeAFLayer, sink *Sink) *Shepherd {
	if sink == nil {
		sink = &Sink{}
	}
	clockSeconds := int64(1000)
	return New(Options{
		Radio:   radio,
		AF:      af,
		Catalog: testCatalog{},
		Store:   store,
		Sink:    sink,
		Clock:   func() int64 { return clockSeconds },
	})
}

// testCatalog mirrors pkg/zcl.DefaultCatalog's contract without taking
// an import dependency on pkg/zcl from the core package's test suite,
// keeping the catalog's exact numeric-fallback behaviour local and
// obvious at the call site.
type testCatalog struct{}

func (testCatalog) ClusterName(cID uint16) string { return fmt.Sprintf("0x%04X", cID) }
func (testCatalog) AttrName(cID, attrID uint16) string { return fmt.Sprintf("%d", attrID) }
func (testCatalog) AttrType(cID, attrID uint16) uint8  { return 0x20 }
func (testCatalog) StatusName(code uint8) string       { return fmt.Sprintf("%d", code) }
