package shepherd

import "encoding/json"

// DeviceType classifies a node's role on the PAN.
type DeviceType string

const (
	DeviceTypeCoordinator DeviceType = "Coordinator"
	DeviceTypeRouter      DeviceType = "Router"
	DeviceTypeEndDevice   DeviceType = "EndDevice"
	DeviceTypeUnknown     DeviceType = "Unknown"
)

// DeviceStatus is the device's last-known reachability.
type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
)

// reservedDelegatorEndpoints is the count of coordinator endpoint ids
// (1-10) reserved for delegators.
const reservedDelegatorEndpoints = 10

// ClusterTable holds the last-known attribute values for one cluster,
// keyed by attribute name (unknown ids round-trip as their numeric
// string form per the catalog contract).
type ClusterTable map[string]interface{}

// diff returns the subset of next whose value differs from (or is new
// relative to) t. An empty table diffed against anything is a full diff.
func (t ClusterTable) diff(next ClusterTable) ClusterTable {
	out := ClusterTable{}
	for k, v := range next {
		old, ok := t[k]
		if !ok || !jsonEqual(old, v) {
			out[k] = v
		}
	}
	return out
}

func jsonEqual(a, b interface{}) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

// Endpoint belongs to exactly one Device. EpID is unique within its
// device. ProfID/DevID/InClusterList/OutClusterList come from the
// simple descriptor; Clusters is keyed by cluster id.
type Endpoint struct {
	EpID           uint8
	ProfID         uint16
	DevID          uint16
	InClusterList  []uint16
	OutClusterList []uint16
	Clusters       map[uint16]ClusterTable

	// IsDelegator marks a Coordpoint used as a binding target for
	// attribute reports on ProfID.
	IsDelegator bool
}

func newEndpoint(epID uint8, profID, devID uint16, inClusters, outClusters []uint16) *Endpoint {
	return &Endpoint{
		EpID:           epID,
		ProfID:         profID,
		DevID:          devID,
		InClusterList:  append([]uint16(nil), inClusters...),
		OutClusterList: append([]uint16(nil), outClusters...),
		Clusters:       make(map[uint16]ClusterTable),
	}
}

func (e *Endpoint) clusterTable(cID uint16) ClusterTable {
	t, ok := e.Clusters[cID]
	if !ok {
		t = ClusterTable{}
		e.Clusters[cID] = t
	}
	return t
}

// Device is the registry's unit of record. IEEEAddr is immutable and
// globally unique; NwkAddr may change over the device's lifetime.
type Device struct {
	// RegistryID is the DevBox-assigned id; 0 until first persisted.
	RegistryID int64

	IEEEAddr string
	NwkAddr  uint16
	Type     DeviceType
	Status   DeviceStatus
	JoinTime int64

	// Incomplete is set while the interview has not finished; such
	// devices are excluded from default listings.
	Incomplete bool

	Manufacturer string
	Firmware     string

	// EpList is the ordered list of endpoint ids; must always equal the
	// key set of Endpoints.
	EpList    []uint8
	Endpoints map[uint8]*Endpoint

	// recovered marks a device rehydrated from storage that has not yet
	// been re-registered (clears on the next register() call).
	recovered bool
}

func newDevice(ieee string, nwk uint16, devType DeviceType) *Device {
	return &Device{
		IEEEAddr:  ieee,
		NwkAddr:   nwk,
		Type:      devType,
		Status:    StatusOnline,
		EpList:    nil,
		Endpoints: make(map[uint8]*Endpoint),
	}
}

func (d *Device) addEndpoint(ep *Endpoint) {
	d.Endpoints[ep.EpID] = ep
	d.EpList = append(d.EpList, ep.EpID)
}

func (d *Device) removeEndpoint(epID uint8) {
	delete(d.Endpoints, epID)
	for i, id := range d.EpList {
		if id == epID {
			d.EpList = append(d.EpList[:i], d.EpList[i+1:]...)
			break
		}
	}
}

// Dump is the serializable, registry-shaped view of a Device used both
// for DevBox persistence and as the façade's list()/find() payload.
type Dump struct {
	RegistryID   int64               `json:"id,omitempty"`
	IEEEAddr     string              `json:"ieeeAddr"`
	NwkAddr      uint16              `json:"nwkAddr"`
	Type         DeviceType          `json:"type"`
	Status       DeviceStatus        `json:"status"`
	JoinTime     int64               `json:"joinTime"`
	Incomplete   bool                `json:"incomplete"`
	Manufacturer string              `json:"manufacturer,omitempty"`
	Firmware     string              `json:"firmware,omitempty"`
	EpList       []uint8             `json:"epList,omitempty"`
	Endpoints    map[uint8]*Endpoint `json:"endpoints,omitempty"`
}

// Dump returns the device's full serializable representation, including
// its registry id and endpoint map.
func (d *Device) Dump() Dump { return d.dump(false) }

// dump converts the device to its persisted/listing representation.
// When minimal is true, id and endpoints are omitted, the shape List
// returns.
func (d *Device) dump(minimal bool) Dump {
	out := Dump{
		IEEEAddr:     d.IEEEAddr,
		NwkAddr:      d.NwkAddr,
		Type:         d.Type,
		Status:       d.Status,
		JoinTime:     d.JoinTime,
		Incomplete:   d.Incomplete,
		Manufacturer: d.Manufacturer,
		Firmware:     d.Firmware,
	}
	if !minimal {
		out.RegistryID = d.RegistryID
		out.EpList = append([]uint8(nil), d.EpList...)
		out.Endpoints = d.Endpoints
	}
	return out
}

// NetInfo is the network-level snapshot returned by info().
type NetInfo struct {
	State    string `json:"state"`
	Channel  uint8  `json:"channel"`
	PanID    uint16 `json:"panId"`
	ExtPanID string `json:"extPanId"`
	IEEEAddr string `json:"ieeeAddr"`
	NwkAddr  uint16 `json:"nwkAddr"`
}

// Info is the façade's info() snapshot.
type Info struct {
	Enabled      bool    `json:"enabled"`
	Net          NetInfo `json:"net"`
	Firmware     string  `json:"firmware"`
	StartTime    int64   `json:"startTime"`
	JoinTimeLeft int     `json:"joinTimeLeft"`
}

// NeighborEntry is one record of an LQI/routing scan.
type NeighborEntry struct {
	IEEEAddr string       `json:"ieeeAddr"`
	NwkAddr  uint16       `json:"nwkAddr"`
	LQI      uint8        `json:"lqi"`
	Parent   string       `json:"parent,omitempty"`
	Status   DeviceStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
}

// RouteEntry is one row of a routing table query.
type RouteEntry struct {
	DestNwkAddr uint16 `json:"destNwkAddr"`
	NextHop     uint16 `json:"nextHop"`
	RouteStatus uint8  `json:"routeStatus"`
}
