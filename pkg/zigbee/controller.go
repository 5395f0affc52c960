package zigbee

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
	"github.com/zigbee-shepherd/shepherd/pkg/zcl"
)

// haProfileID is the Home Automation profile used for application-layer
// ZCL traffic; ZDO traffic always rides profile 0x0000.
const haProfileID uint16 = 0x0104

// iasZoneClusterID is ssIasZone, whose unsolicited zone status change
// notifications become IndStatusChange.
const iasZoneClusterID uint16 = 0x0500

const apsRequestTimeout = 8 * time.Second

const interviewTimeout = 10 * time.Second

// remoteNode is what the Controller has learned about one joined device
// between interview and leave: just enough to route ZDO/APS traffic by
// IEEE address, the addressing scheme the rest of the module uses.
type remoteNode struct {
	ieee string
	nwk  uint16
}

// NetConfig carries the NV network parameters used when the NCP has no
// network to resume and one must be formed. Zero values are filled with
// sensible defaults (channel 15, random PAN ids).
type NetConfig struct {
	Channel  uint8
	PanID    uint16
	ExtPanID [8]byte
}

// Config is the Controller's construction input: serial transport
// settings plus the NV network parameters forwarded to the radio. The
// zero value is usable.
type Config struct {
	Serial SerialConfig
	Net    NetConfig
}

// Controller drives a Sonoff/EZSP Zigbee dongle and implements
// shepherd.Radio: the serial transport, EZSP command codec, ZDO
// request layer, and APS send/receive primitive all live here. The
// Shepherd core never speaks EZSP or ZDO directly; it only sees the
// Radio interface.
type Controller struct {
	portPath string
	serial   *SerialPort
	ash      *ASHLayer
	ezsp     *EZSPLayer
	zdo      *ZDOLayer

	netCfg NetConfig

	coordIEEE string
	coordEUI  [8]byte
	firmware  string

	mu        sync.RWMutex
	nodes     map[string]*remoteNode // ieee -> node
	byNwk     map[uint16]string      // nwk -> ieee
	endpoints map[uint8]*shepherd.Endpoint

	apsMu      sync.Mutex
	apsPending map[uint8]chan []byte

	indCh chan shepherd.Indication
}

var _ shepherd.Radio = (*Controller)(nil)

// NewController opens the serial port and wires the ASH/EZSP/ZDO layers,
// but does not bring up the radio stack; that happens in Start, per the
// Radio interface's contract.
func NewController(portPath string, cfg Config) (*Controller, error) {
	s, err := OpenSerial(portPath, cfg.Serial)
	if err != nil {
		return nil, fmt.Errorf("open serial: %w", err)
	}

	ash := NewASHLayer(s)
	ezsp := NewEZSPLayer(ash)

	c := &Controller{
		portPath:   portPath,
		serial:     s,
		netCfg:     cfg.Net,
		ash:        ash,
		ezsp:       ezsp,
		zdo:        NewZDOLayer(ezsp),
		nodes:      make(map[string]*remoteNode),
		byNwk:      make(map[uint16]string),
		endpoints:  make(map[uint8]*shepherd.Endpoint),
		apsPending: make(map[uint8]chan []byte),
		indCh:      make(chan shepherd.Indication, 256),
	}
	ezsp.SetCallbackHandler(c.handleCallback)

	return c, nil
}

// SetNvParams replaces the NV network parameters applied the next time
// a network has to be formed (Start on a blank NCP, or a hard Reset).
// An already-running network is not reconfigured.
func (c *Controller) SetNvParams(cfg NetConfig) {
	c.mu.Lock()
	c.netCfg = cfg
	c.mu.Unlock()
}

// Start connects the ASH layer, negotiates EZSP, and brings up (or
// forms) the Zigbee network.
func (c *Controller) Start(ctx context.Context) (*shepherd.NetInfo, error) {
	log.Info().Str("port", c.portPath).Msg("zigbee: connecting ASH layer")
	if err := c.ash.Connect(); err != nil {
		return nil, fmt.Errorf("ASH connect: %w", err)
	}
	c.ezsp.Start()

	if err := c.initStack(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init stack: %w", err)
	}

	return c.buildNetInfo()
}

// initStack performs EZSP version negotiation, stack configuration, and
// network bring-up (resume or form), and caches the coordinator's
// identity and firmware string.
func (c *Controller) initStack() error {
	proto, _, stackVer, err := c.ezsp.NegotiateVersion()
	if err != nil {
		return err
	}
	c.firmware = fmt.Sprintf("ezsp-%d (stack 0x%04X)", proto, stackVer)

	if err := c.ezsp.ConfigureStack(); err != nil {
		return err
	}

	status, err := c.ezsp.NetworkInit()
	if err != nil {
		return err
	}

	if status != emberSuccess && status != emberNetworkUp {
		log.Info().Uint8("status", status).Msg("zigbee: no existing network, forming new one")

		c.mu.RLock()
		nv := c.netCfg
		c.mu.RUnlock()

		channel := nv.Channel
		if channel == 0 {
			channel = 15
		}
		panID := nv.PanID
		if panID == 0 {
			panID = uint16(rand.Intn(0xFFFE) + 1)
		}
		extPanID := nv.ExtPanID
		if extPanID == ([8]byte{}) {
			for i := range extPanID {
				extPanID[i] = byte(rand.Intn(256))
			}
		}
		if err := c.ezsp.FormNetwork(channel, panID, extPanID); err != nil {
			return fmt.Errorf("form network: %w", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	eui, err := c.ezsp.GetEUI64()
	if err != nil {
		return fmt.Errorf("get coordinator EUI64: %w", err)
	}
	c.coordEUI = eui
	c.coordIEEE = ieeeToString(eui)

	return nil
}

// Close tears down EZSP/ASH and the serial port.
func (c *Controller) Close() error {
	c.ezsp.Close()
	c.ash.Close()
	if err := c.serial.Close(); err != nil {
		return fmt.Errorf("close serial: %w", err)
	}
	return nil
}

// Reset issues a soft (stop permitting joins) or hard (leave + reform)
// reset of the NCP's network state.
func (c *Controller) Reset(ctx context.Context, hard bool) error {
	if !hard {
		return c.ezsp.PermitJoining(0)
	}
	if err := c.ezsp.LeaveNetwork(); err != nil {
		log.Warn().Err(err).Msg("zigbee: leaveNetwork failed during hard reset")
	}
	return c.initStack()
}

// PermitJoin opens (or closes, when seconds is 0) the join window.
// joinType is accepted for interface parity with shepherd.Radio; the
// NCP's permitJoining primitive does not distinguish "coord" from "all".
func (c *Controller) PermitJoin(ctx context.Context, seconds int, joinType string) error {
	dur := uint8(0)
	switch {
	case seconds <= 0:
		dur = 0
	case seconds > 254:
		dur = 254
	default:
		dur = uint8(seconds)
	}

	if err := c.ezsp.PermitJoining(dur); err != nil {
		return err
	}

	select {
	case c.indCh <- shepherd.Indication{Kind: shepherd.IndPermitJoining, TimeLeft: int(dur)}:
	default:
	}
	return nil
}

// RegisterEndpoint adds a local application endpoint to the NCP.
func (c *Controller) RegisterEndpoint(ctx context.Context, ep *shepherd.Endpoint) error {
	if err := c.ezsp.AddEndpoint(ep.EpID, ep.ProfID, ep.DevID, 1, ep.InClusterList, ep.OutClusterList); err != nil {
		return err
	}
	c.mu.Lock()
	c.endpoints[ep.EpID] = ep
	c.mu.Unlock()
	return nil
}

// Bind adds a binding table entry on the device owning srcIEEE/srcEp.
func (c *Controller) Bind(ctx context.Context, srcIEEE string, srcEp uint8, cID uint16, dstIEEE string, dstEp uint8) error {
	srcEUI, srcNwk, err := c.resolveEUIAndNwk(srcIEEE)
	if err != nil {
		return err
	}
	dstEUI, _, err := c.resolveEUIAndNwk(dstIEEE)
	if err != nil {
		return err
	}
	return c.zdo.BindReq(ctx, srcNwk, srcEUI, srcEp, cID, dstEUI, dstEp)
}

// Unbind removes a binding table entry previously added with Bind.
func (c *Controller) Unbind(ctx context.Context, srcIEEE string, srcEp uint8, cID uint16, dstIEEE string, dstEp uint8) error {
	srcEUI, srcNwk, err := c.resolveEUIAndNwk(srcIEEE)
	if err != nil {
		return err
	}
	dstEUI, _, err := c.resolveEUIAndNwk(dstIEEE)
	if err != nil {
		return err
	}
	return c.zdo.UnbindReq(ctx, srcNwk, srcEUI, srcEp, cID, dstEUI, dstEp)
}

// RemoveDevice asks the device to leave, then forgets it locally. The
// ZDO leave is best-effort: a device that has already gone dark cannot
// be reached, but the caller's registry entry should still be dropped.
func (c *Controller) RemoveDevice(ctx context.Context, ieeeAddr string) error {
	eui, nwk, err := c.resolveEUIAndNwk(ieeeAddr)
	if err == nil {
		if lerr := c.zdo.LeaveReq(ctx, nwk, eui); lerr != nil {
			log.Warn().Err(lerr).Str("ieeeAddr", ieeeAddr).Msg("zigbee: leave request failed")
		}
	}

	c.mu.Lock()
	if node, ok := c.nodes[ieeeAddr]; ok {
		delete(c.byNwk, node.nwk)
		delete(c.nodes, ieeeAddr)
	}
	c.mu.Unlock()
	return nil
}

// GetCoordInfo returns the coordinator's own registry-shaped snapshot.
func (c *Controller) GetCoordInfo(ctx context.Context) (*shepherd.Dump, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	epList := make([]uint8, 0, len(c.endpoints))
	for id := range c.endpoints {
		epList = append(epList, id)
	}
	return &shepherd.Dump{
		IEEEAddr:  c.coordIEEE,
		NwkAddr:   0x0000,
		Type:      shepherd.DeviceTypeCoordinator,
		Status:    shepherd.StatusOnline,
		EpList:    epList,
		Endpoints: c.endpoints,
	}, nil
}

// GetNetInfo returns the current network-level snapshot.
func (c *Controller) GetNetInfo(ctx context.Context) (*shepherd.NetInfo, error) {
	return c.buildNetInfo()
}

func (c *Controller) buildNetInfo() (*shepherd.NetInfo, error) {
	status, params, err := c.ezsp.GetNetworkParameters()
	if err != nil {
		return nil, err
	}
	state := "Down"
	if status == emberSuccess || status == emberNetworkUp {
		state = "Up"
	}
	return &shepherd.NetInfo{
		State:    state,
		Channel:  params.RadioChannel,
		PanID:    params.PanID,
		ExtPanID: "0x" + hex.EncodeToString(reverseBytes(params.ExtendedPanID[:])),
		IEEEAddr: c.coordIEEE,
		NwkAddr:  0x0000,
	}, nil
}

// GetFirmwareInfo returns the cached EZSP protocol/stack version string.
func (c *Controller) GetFirmwareInfo(ctx context.Context) (string, error) {
	return c.firmware, nil
}

// LQI issues a Mgmt_Lqi_req against nwkAddr and translates the neighbor
// table into the façade's NeighborEntry shape.
func (c *Controller) LQI(ctx context.Context, nwkAddr uint16) ([]shepherd.NeighborEntry, error) {
	neighbors, err := c.zdo.MgmtLqiReq(ctx, nwkAddr)
	if err != nil {
		return nil, err
	}
	out := make([]shepherd.NeighborEntry, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, shepherd.NeighborEntry{
			IEEEAddr: ieeeToString(n.IEEEAddr),
			NwkAddr:  n.NwkAddr,
			LQI:      n.LQI,
			Status:   shepherd.StatusOnline,
		})
	}
	return out, nil
}

// RoutingTable issues a Mgmt_Rtg_req against nwkAddr.
func (c *Controller) RoutingTable(ctx context.Context, nwkAddr uint16) ([]shepherd.RouteEntry, error) {
	routes, err := c.zdo.MgmtRtgReq(ctx, nwkAddr)
	if err != nil {
		return nil, err
	}
	out := make([]shepherd.RouteEntry, 0, len(routes))
	for _, r := range routes {
		out = append(out, shepherd.RouteEntry{
			DestNwkAddr: r.DestNwkAddr,
			NextHop:     r.NextHop,
			RouteStatus: r.Status,
		})
	}
	return out, nil
}

// SendAPSData sends one unicast APS data frame and waits for the
// correlated response, matched by the ZCL transaction sequence number
// carried in payload[1].
func (c *Controller) SendAPSData(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, clusterID uint16, payload []byte) ([]byte, error) {
	_, nwk, err := c.resolveEUIAndNwk(dstIEEE)
	if err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("zigbee: short ZCL payload")
	}
	seq := payload[1]

	ch := make(chan []byte, 1)
	c.apsMu.Lock()
	c.apsPending[seq] = ch
	c.apsMu.Unlock()
	defer func() {
		c.apsMu.Lock()
		delete(c.apsPending, seq)
		c.apsMu.Unlock()
	}()

	if err := c.ezsp.SendUnicast(nwk, haProfileID, clusterID, srcEp, dstEp, payload); err != nil {
		return nil, fmt.Errorf("send APS data: %w", err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-time.After(apsRequestTimeout):
		return nil, fmt.Errorf("zigbee: APS response timeout (seq %d, cluster 0x%04X)", seq, clusterID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendAPSReply sends one unsolicited unicast APS data frame without
// registering a pending response channel, used to answer an incoming
// command addressed to a mounted app's endpoint, where the
// originator sends nothing back that we'd need to correlate.
func (c *Controller) SendAPSReply(ctx context.Context, srcEp uint8, dstIEEE string, dstEp uint8, clusterID uint16, payload []byte) error {
	_, nwk, err := c.resolveEUIAndNwk(dstIEEE)
	if err != nil {
		return err
	}
	if err := c.ezsp.SendUnicast(nwk, haProfileID, clusterID, srcEp, dstEp, payload); err != nil {
		return fmt.Errorf("send APS reply: %w", err)
	}
	return nil
}

// Indications returns the channel of raw radio indications.
func (c *Controller) Indications() <-chan shepherd.Indication {
	return c.indCh
}

// --- callback handling ---

func (c *Controller) handleCallback(frameID uint16, data []byte) {
	switch frameID {
	case ezspTrustCenterJoinHandler:
		c.handleTrustCenterJoin(data)
	case ezspIncomingMessageHandler:
		c.handleIncomingMessage(data)
	case ezspMessageSentHandler:
		c.handleMessageSent(data)
	case ezspStackStatusHandler:
		c.handleStackStatus(data)
	default:
		log.Debug().Uint16("frameID", frameID).Msg("zigbee: unhandled EZSP callback")
	}
}

// handleTrustCenterJoin tracks joins/leaves and, on join, runs the
// wire-level interview (node descriptor + active endpoints + simple
// descriptors) before raising a single IndDevIncoming; the Controller
// owns the wire-level interview exchange.
func (c *Controller) handleTrustCenterJoin(data []byte) {
	if len(data) < 11 {
		return
	}
	nodeID := binary.LittleEndian.Uint16(data[0:2])
	var eui [8]byte
	copy(eui[:], data[2:10])
	status := data[10]
	ieeeStr := ieeeToString(eui)

	if status == 3 { // device left
		c.mu.Lock()
		delete(c.byNwk, nodeID)
		delete(c.nodes, ieeeStr)
		c.mu.Unlock()

		select {
		case c.indCh <- shepherd.Indication{Kind: shepherd.IndDevLeaving, IEEEAddr: ieeeStr, NwkAddr: nodeID}:
		default:
		}
		return
	}

	c.mu.Lock()
	c.nodes[ieeeStr] = &remoteNode{ieee: ieeeStr, nwk: nodeID}
	c.byNwk[nodeID] = ieeeStr
	c.mu.Unlock()

	go c.interview(ieeeStr, nodeID)
}

func (c *Controller) interview(ieeeStr string, nodeID uint16) {
	ctx, cancel := context.WithTimeout(context.Background(), interviewTimeout)
	defer cancel()

	devType := shepherd.DeviceTypeUnknown
	success := true

	logicalType, err := c.zdo.NodeDescReq(ctx, nodeID)
	if err != nil {
		success = false
	} else {
		switch logicalType {
		case 0:
			devType = shepherd.DeviceTypeCoordinator
		case 1:
			devType = shepherd.DeviceTypeRouter
		case 2:
			devType = shepherd.DeviceTypeEndDevice
		}
	}

	var endpoints []*shepherd.Endpoint
	if success {
		epIDs, err := c.zdo.ActiveEpReq(ctx, nodeID)
		if err != nil || len(epIDs) == 0 {
			success = false
		} else {
			for _, epID := range epIDs {
				sd, err := c.zdo.SimpleDescReq(ctx, nodeID, epID)
				if err != nil {
					continue
				}
				endpoints = append(endpoints, &shepherd.Endpoint{
					EpID:           sd.EpID,
					ProfID:         sd.ProfileID,
					DevID:          sd.DeviceID,
					InClusterList:  sd.InClusterList,
					OutClusterList: sd.OutClusterList,
					Clusters:       make(map[uint16]shepherd.ClusterTable),
				})
			}
			if len(endpoints) == 0 {
				success = false
			}
		}
	}

	log.Info().Str("ieeeAddr", ieeeStr).Bool("success", success).Msg("zigbee: interview complete")

	select {
	case c.indCh <- shepherd.Indication{
		Kind:      shepherd.IndDevIncoming,
		IEEEAddr:  ieeeStr,
		NwkAddr:   nodeID,
		DevType:   devType,
		Success:   success,
		Endpoints: endpoints,
	}:
	default:
		log.Warn().Str("ieeeAddr", ieeeStr).Msg("zigbee: indication channel full, dropped devIncoming")
	}
}

// handleIncomingMessage demultiplexes an APS data indication: ZDO
// responses go to the ZDO layer's transaction table, unsolicited ZCL
// attribute reports become IndAttReport, frames matching a pending
// SendAPSData call are delivered by their ZCL sequence number, and
// anything else addressed to a locally mounted app endpoint becomes
// IndAppFoundation/IndAppFunctional.
func (c *Controller) handleIncomingMessage(data []byte) {
	// type(1) + apsFrame(11) + lastHopLqi(1) + lastHopRssi(1) + sender(2) +
	// bindingIndex(1) + addressIndex(1) + messageLength(1) + message(N)
	if len(data) < 19 {
		return
	}

	profileID := binary.LittleEndian.Uint16(data[1:3])
	clusterID := binary.LittleEndian.Uint16(data[3:5])
	srcEp := data[5]
	dstEp := data[6]
	sender := binary.LittleEndian.Uint16(data[14:16])
	msgLen := int(data[18])
	if len(data) < 19+msgLen {
		return
	}
	message := data[19 : 19+msgLen]

	if profileID == zdoProfileID {
		c.zdo.deliver(message)
		return
	}

	header, body, ok := zcl.DecodeHeader(message)
	if !ok {
		return
	}

	if header.IsGlobal() && header.CommandID == zcl.CmdReport {
		c.mu.RLock()
		ieeeStr := c.byNwk[sender]
		c.mu.RUnlock()
		if ieeeStr == "" {
			return
		}
		select {
		case c.indCh <- shepherd.Indication{
			Kind:      shepherd.IndAttReport,
			IEEEAddr:  ieeeStr,
			NwkAddr:   sender,
			EpID:      srcEp,
			ClusterID: clusterID,
			RawAttrs:  decodeReportPayload(body),
		}:
		default:
			log.Warn().Str("ieeeAddr", ieeeStr).Msg("zigbee: indication channel full, dropped attReport")
		}
		return
	}

	// ssIasZone zoneStatusChangeNotification (cluster-specific command 0,
	// server to client): zoneStatus(2) + extendedStatus(1) + zoneId(1) +
	// delay(2).
	if !header.IsGlobal() && clusterID == iasZoneClusterID && header.CommandID == 0x00 && len(body) >= 2 {
		c.mu.RLock()
		ieeeStr := c.byNwk[sender]
		c.mu.RUnlock()
		if ieeeStr == "" {
			return
		}
		zoneStatus := binary.LittleEndian.Uint16(body[0:2])
		select {
		case c.indCh <- shepherd.Indication{
			Kind:       shepherd.IndStatusChange,
			IEEEAddr:   ieeeStr,
			NwkAddr:    sender,
			EpID:       srcEp,
			ClusterID:  clusterID,
			ZoneStatus: zoneStatus,
			Message:    "zone status change",
		}:
		default:
			log.Warn().Str("ieeeAddr", ieeeStr).Msg("zigbee: indication channel full, dropped statusChange")
		}
		return
	}

	c.apsMu.Lock()
	ch, ok := c.apsPending[header.SeqNumber]
	c.apsMu.Unlock()
	if ok {
		select {
		case ch <- message:
		default:
		}
		return
	}

	c.mu.RLock()
	_, isAppEndpoint := c.endpoints[dstEp]
	ieeeStr := c.byNwk[sender]
	c.mu.RUnlock()
	if !isAppEndpoint || ieeeStr == "" {
		return
	}

	kind := shepherd.IndAppFunctional
	if header.IsGlobal() {
		kind = shepherd.IndAppFoundation
	}
	select {
	case c.indCh <- shepherd.Indication{
		Kind:       kind,
		IEEEAddr:   ieeeStr,
		NwkAddr:    sender,
		EpID:       dstEp,
		RemoteEpID: srcEp,
		ClusterID:  clusterID,
		Cmd:        header.CommandID,
		Payload:    body,
	}:
	default:
		log.Warn().Str("ieeeAddr", ieeeStr).Msg("zigbee: indication channel full, dropped app command")
	}
}

// handleMessageSent surfaces the NCP's APS delivery confirm as an
// IndDataConfirm.
// messageSentHandler: type(1) + indexOrDestination(2) + apsFrame(11) +
// messageTag(1) + status(1) + messageLength(1) + message(N)
func (c *Controller) handleMessageSent(data []byte) {
	if len(data) < 16 {
		return
	}
	dest := binary.LittleEndian.Uint16(data[1:3])
	clusterID := binary.LittleEndian.Uint16(data[5:7])
	srcEp := data[7]
	status := data[15]

	c.mu.RLock()
	ieeeStr := c.byNwk[dest]
	c.mu.RUnlock()

	msg := "success"
	if status != emberSuccess {
		msg = fmt.Sprintf("delivery failed: status 0x%02X", status)
	}
	select {
	case c.indCh <- shepherd.Indication{
		Kind:      shepherd.IndDataConfirm,
		IEEEAddr:  ieeeStr,
		NwkAddr:   dest,
		EpID:      srcEp,
		ClusterID: clusterID,
		Status:    status,
		Message:   msg,
	}:
	default:
	}
}

func (c *Controller) handleStackStatus(data []byte) {
	if len(data) < 1 {
		return
	}
	switch data[0] {
	case emberNetworkUp:
		log.Info().Msg("zigbee: stack status: network up")
	case emberNetworkDown:
		log.Warn().Msg("zigbee: stack status: network down")
	default:
		log.Info().Uint8("status", data[0]).Msg("zigbee: stack status changed")
	}
}

// --- helpers ---

// resolveEUIAndNwk resolves a "0x"-prefixed IEEE address string to its
// 8-byte form and current network address, consulting the coordinator's
// own identity first.
func (c *Controller) resolveEUIAndNwk(ieeeAddr string) ([8]byte, uint16, error) {
	eui, err := ieeeFromString(ieeeAddr)
	if err != nil {
		return [8]byte{}, 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if ieeeAddr == c.coordIEEE {
		return eui, 0x0000, nil
	}
	node, ok := c.nodes[ieeeAddr]
	if !ok {
		return [8]byte{}, 0, fmt.Errorf("zigbee: unknown device %s", ieeeAddr)
	}
	return eui, node.nwk, nil
}

// decodeReportPayload parses a foundation "report" command body: a run
// of attrId(2)+dataType(1)+data(N) records with no status field.
func decodeReportPayload(data []byte) map[uint16][]byte {
	out := make(map[uint16][]byte)
	offset := 0
	for offset+3 <= len(data) {
		attrID := binary.LittleEndian.Uint16(data[offset:])
		offset += 2
		dataType := data[offset]
		offset++
		n := zcl.DataTypeLength(dataType, data[offset:])
		if n < 0 || offset+n > len(data) {
			break
		}
		out[attrID] = append([]byte(nil), data[offset:offset+n]...)
		offset += n
	}
	return out
}

// ieeeToString renders an 8-byte EUI64 (as returned over EZSP, LSB
// first) as a "0x"-prefixed, human-read-order hex string.
func ieeeToString(eui [8]byte) string {
	return "0x" + hex.EncodeToString(reverseBytes(eui[:]))
}

// ieeeFromString is the inverse of ieeeToString.
func ieeeFromString(s string) ([8]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 8 {
		return [8]byte{}, fmt.Errorf("zigbee: invalid IEEE address %q", s)
	}
	var out [8]byte
	copy(out[:], reverseBytes(b))
	return out, nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
