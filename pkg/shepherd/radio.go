package shepherd

import "context"

// Radio is the external Controller collaborator: the serial
// transport and radio command codec. The Shepherd drives it but owns
// none of its implementation; pkg/zigbee provides the concrete type.
type Radio interface {
	Start(ctx context.Context) (*NetInfo, error)
	Close() error
	Reset(ctx context.Context, hard bool) error
	PermitJoin(ctx context.Context, seconds int, joinType string) error

	RegisterEndpoint(ctx context.Context, ep *Endpoint) error
	Bind(ctx context.Context, srcIEEE string, srcEp uint8, cID uint16, dstIEEE string, dstEp uint8) error
	Unbind(ctx context.Context, srcIEEE string, srcEp uint8, cID uint16, dstIEEE string, dstEp uint8) error
	RemoveDevice(ctx context.Context, ieeeAddr string) error

	// SendAPSReply sends one unsolicited APS unicast frame addressed to
	// (dstIEEE, dstEp) without waiting for a correlated reply, used to
	// answer an incoming command addressed to a mounted app's endpoint,
	// where no further response is expected back from the originator.
	SendAPSReply(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, clusterID uint16, payload []byte) error

	GetCoordInfo(ctx context.Context) (*Dump, error)
	GetNetInfo(ctx context.Context) (*NetInfo, error)
	GetFirmwareInfo(ctx context.Context) (string, error)

	// LQI issues a single-hop ZDO mgmtLqiReq against nwkAddr.
	LQI(ctx context.Context, nwkAddr uint16) ([]NeighborEntry, error)
	// RoutingTable issues a ZDO mgmtRtgReq against nwkAddr.
	RoutingTable(ctx context.Context, nwkAddr uint16) ([]RouteEntry, error)

	// SendAPSData sends one APS unicast data frame to (dstIEEE, dstEp)
	// from srcEp on the given cluster, and returns the matching response
	// frame. This is the primitive the AF layer builds ZCL foundation/
	// functional requests on top of.
	SendAPSData(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, clusterID uint16, payload []byte) ([]byte, error)

	// Indications returns the channel of raw radio indications consumed
	// by the Indication Dispatcher. Start must be called before
	// indications are delivered.
	Indications() <-chan Indication
}

// IndicationKind tags the payload carried by an Indication.
type IndicationKind int

const (
	IndDevIncoming IndicationKind = iota
	IndDevInterview
	IndDevLeaving
	IndDataConfirm
	IndStatusChange
	IndAttReport
	IndDevStatus
	IndPermitJoining

	// IndAppFoundation/IndAppFunctional carry an incoming AF frame
	// addressed to a mounted app's coordinator endpoint, routed to the
	// app's OnZclFoundation/OnZclFunctional handler.
	IndAppFoundation
	IndAppFunctional
)

// Indication is a raw event surfaced by the Controller, translated by
// the Indication Dispatcher into the external `ind` stream.
type Indication struct {
	Kind IndicationKind

	IEEEAddr string
	NwkAddr  uint16
	EpID     uint8

	// DevIncoming/DevInterview payload.
	Endpoints []*Endpoint
	DevType   DeviceType
	Success   bool

	// AttReport/StatusChange/DataConfirm payload.
	ClusterID  uint16
	RawAttrs   map[uint16][]byte // attrId -> raw ZCL value for AttReport
	ZoneStatus uint16
	Message    string
	Status     uint8

	// DevStatus payload.
	DeviceStatus DeviceStatus

	// PermitJoining payload.
	TimeLeft int

	// AppFoundation/AppFunctional payload: the originating device's
	// sending endpoint (to address the app's reply back to) and the raw
	// ZCL command/payload the app handler receives.
	RemoteEpID uint8
	Cmd        uint8
	Payload    []byte
}

// AFLayer is the external AF/ZCL frame builder collaborator.
type AFLayer interface {
	ZclFoundation(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error)
	ZclFunctional(ctx context.Context, srcEp, dstEp *Endpoint, dstIEEE string, cID uint16, cmd uint8, payload []byte) ([]byte, error)
	ZclClusterAttrsReq(ctx context.Context, ep *Endpoint, dstIEEE string, cID uint16) (map[string]interface{}, error)
}

// Catalog is the external ZCL identifier catalog collaborator.
// Unknown ids round-trip as their numeric form.
type Catalog interface {
	ClusterName(cID uint16) string
	AttrName(cID, attrID uint16) string
	AttrType(cID, attrID uint16) uint8
	StatusName(code uint8) string
}

// Store is the external DevBox collaborator: a generic indexed
// object collection. The registry is the only consumer.
type Store interface {
	Add(ctx context.Context, data []byte) (int64, error)
	Set(ctx context.Context, id int64, data []byte) error
	Get(ctx context.Context, id int64) ([]byte, error)
	Remove(ctx context.Context, id int64) error
	Sync(ctx context.Context, id int64, data []byte) error
	ExportAllIDs(ctx context.Context) ([]int64, error)
	ExportAllObjs(ctx context.Context) ([][]byte, error)
	IsEmpty(ctx context.Context) (bool, error)
}

// App is the external Zive collaborator: a local application
// mounted on the coordinator. SimpleDescriptor supplies the profile id,
// device id, and cluster lists Mount uses to build the Coordpoint.
type App interface {
	Name() string
	SimpleDescriptor() AppDescriptor

	// OnZclFoundation/OnZclFunctional are wired onto the endpoint by the
	// Mount Serializer and invoked when a remote peer addresses
	// this endpoint with a foundation/functional command.
	OnZclFoundation(ctx context.Context, cID uint16, cmd uint8, payload []byte) ([]byte, error)
	OnZclFunctional(ctx context.Context, cID uint16, cmd uint8, payload []byte) ([]byte, error)
}

// AppDescriptor is the declared shape of a mounted App's simple
// descriptor, validated against a JSON schema before mount() commits to
// the radio round-trip.
type AppDescriptor struct {
	ProfID         uint16   `json:"profId"`
	DevID          uint16   `json:"devId"`
	InClusterList  []uint16 `json:"inClusterList"`
	OutClusterList []uint16 `json:"outClusterList"`
}
