package shepherd

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zigbee-shepherd/shepherd/pkg/zcl"
)

// Foundation issues a generic ZCL command against a remote device's
// endpoint. read/write/writeUndiv/writeNoRsp post-process the
// response by refreshing the endpoint's cluster cache and, if the diff
// is non-empty, emitting devChange.
func (s *Shepherd) Foundation(ctx context.Context, ieeeAddr string, epID uint8, cID uint16, cmd uint8, payload []byte) ([]byte, error) {
	dev, ep, err := s.resolveEndpoint(ieeeAddr, epID)
	if err != nil {
		return nil, err
	}

	resp, err := s.af.ZclFoundation(ctx, s.coordpoint(), ep, ieeeAddr, cID, cmd, payload)
	if err != nil {
		return nil, NewTransportError("zclFoundation", err)
	}

	switch cmd {
	case zcl.CmdRead:
		s.refreshFromReadResponse(dev, ep, cID, resp)
	case zcl.CmdWrite, zcl.CmdWriteUndiv, zcl.CmdWriteNoRsp:
		// Post-processing is driven by a follow-up query, not the
		// response payload itself.
		go s.refreshViaQuery(context.Background(), dev, ep, ieeeAddr, cID)
	}

	return resp, nil
}

// Functional issues a cluster-specific command. No cache mutation unless
// skipFinalize is false, in which case the cluster cache is refreshed
// via a follow-up query.
func (s *Shepherd) Functional(ctx context.Context, ieeeAddr string, epID uint8, cID uint16, cmd uint8, payload []byte, skipFinalize bool) ([]byte, error) {
	dev, ep, err := s.resolveEndpoint(ieeeAddr, epID)
	if err != nil {
		return nil, err
	}

	resp, err := s.af.ZclFunctional(ctx, s.coordpoint(), ep, ieeeAddr, cID, cmd, payload)
	if err != nil {
		return nil, NewTransportError("zclFunctional", err)
	}

	if !skipFinalize {
		go s.refreshViaQuery(context.Background(), dev, ep, ieeeAddr, cID)
	}

	return resp, nil
}

// ReadAttr is the per-endpoint façade's read(cId, attrId): issues
// a foundation read of one attribute, returning its value on status 0 or
// RequestUnsuccessError otherwise.
func (s *Shepherd) ReadAttr(ctx context.Context, ieeeAddr string, epID uint8, cID, attrID uint16) (interface{}, error) {
	_, payload, _ := zcl.DecodeHeader(zcl.EncodeReadAttributes(attrID))
	resp, err := s.Foundation(ctx, ieeeAddr, epID, cID, zcl.CmdRead, payload)
	if err != nil {
		return nil, err
	}

	_, body, ok := zcl.DecodeHeader(resp)
	if !ok {
		return nil, &RequestUnsuccessError{Status: 0xFF}
	}
	records := zcl.DecodeReadAttributesResponse(body)
	if len(records) == 0 {
		return nil, &RequestUnsuccessError{Status: 0xFF}
	}
	rec := records[0]
	if rec.Status != 0 {
		return nil, &RequestUnsuccessError{Status: rec.Status}
	}
	return decodeAttrValue(rec.DataType, rec.Data), nil
}

// WriteAttr is the per-endpoint façade's write(cId, attrId, data).
func (s *Shepherd) WriteAttr(ctx context.Context, ieeeAddr string, epID uint8, cID, attrID uint16, dataType uint8, data []byte) (interface{}, error) {
	_, payload, _ := zcl.DecodeHeader(zcl.EncodeWriteAttributes(zcl.CmdWrite, []zcl.AttrRecord{{AttrID: attrID, DataType: dataType, Data: data}}))
	resp, err := s.Foundation(ctx, ieeeAddr, epID, cID, zcl.CmdWrite, payload)
	if err != nil {
		return nil, err
	}

	_, body, ok := zcl.DecodeHeader(resp)
	if ok {
		records := zcl.DecodeWriteAttributesResponse(body)
		if len(records) > 0 && records[0].Status != 0 {
			return nil, &RequestUnsuccessError{Status: records[0].Status}
		}
	}
	return decodeAttrValue(dataType, data), nil
}

// ReportAttr is the per-endpoint façade's report(cId, attrId, minInt,
// maxInt, repChange): requires a delegator endpoint on the
// coordinator sharing the remote endpoint's profile id. Binds the
// cluster to the delegator, then configures the report. Fails
// ProfileUnsupported if no delegator exists.
func (s *Shepherd) ReportAttr(ctx context.Context, ieeeAddr string, epID uint8, cID, attrID uint16, dataType uint8, minInt, maxInt uint16, repChange []byte) error {
	dev, ep, err := s.resolveEndpoint(ieeeAddr, epID)
	if err != nil {
		return err
	}

	delegator := s.findDelegator(ep.ProfID)
	if delegator == nil {
		return ErrProfileUnsupported
	}

	if err := s.radio.Bind(ctx, dev.IEEEAddr, ep.EpID, cID, s.coordIEEE(), delegator.EpID); err != nil {
		return NewTransportError("bind", err)
	}

	_, payload, _ := zcl.DecodeHeader(zcl.EncodeConfigReport([]zcl.ConfigReportRecord{{
		Direction:    0,
		AttrID:       attrID,
		DataType:     dataType,
		MinRepIntval: minInt,
		MaxRepIntval: maxInt,
		RepChange:    repChange,
	}}))
	_, err = s.af.ZclFoundation(ctx, s.coordpoint(), ep, ieeeAddr, cID, zcl.CmdConfigReport, payload)
	if err != nil {
		return NewTransportError("configReport", err)
	}
	_ = dev
	return nil
}

// Bind issues a plain bind of cId from (ieeeAddr, epID) to the
// delegator, without configuring an attribute report.
func (s *Shepherd) Bind(ctx context.Context, ieeeAddr string, epID uint8, cID uint16) error {
	dev, ep, err := s.resolveEndpoint(ieeeAddr, epID)
	if err != nil {
		return err
	}
	delegator := s.findDelegator(ep.ProfID)
	if delegator == nil {
		return ErrProfileUnsupported
	}
	if err := s.radio.Bind(ctx, dev.IEEEAddr, ep.EpID, cID, s.coordIEEE(), delegator.EpID); err != nil {
		return NewTransportError("bind", err)
	}
	return nil
}

// Unbind removes a previously configured binding.
func (s *Shepherd) Unbind(ctx context.Context, ieeeAddr string, epID uint8, cID uint16) error {
	dev, ep, err := s.resolveEndpoint(ieeeAddr, epID)
	if err != nil {
		return err
	}
	delegator := s.findDelegator(ep.ProfID)
	if delegator == nil {
		return ErrProfileUnsupported
	}
	if err := s.radio.Unbind(ctx, dev.IEEEAddr, ep.EpID, cID, s.coordIEEE(), delegator.EpID); err != nil {
		return NewTransportError("unbind", err)
	}
	return nil
}

func (s *Shepherd) resolveEndpoint(ieeeAddr string, epID uint8) (*Device, *Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev := s.registry.findByIEEE(ieeeAddr)
	if dev == nil {
		return nil, nil, ErrDeviceNotFound
	}
	ep, ok := dev.Endpoints[epID]
	if !ok {
		return nil, nil, ErrEndpointNotFound
	}
	return dev, ep, nil
}

func (s *Shepherd) coordIEEE() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if coord := s.registry.devices[s.coordID]; coord != nil {
		return coord.IEEEAddr
	}
	return ""
}

func (s *Shepherd) coordpoint() *Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	coord := s.registry.devices[s.coordID]
	if coord == nil || len(coord.EpList) == 0 {
		return nil
	}
	return coord.Endpoints[coord.EpList[0]]
}

// findDelegator returns the first coordinator endpoint marked IsDelegator
// for profID, or nil. The endpoint id is not checked against the 1-10
// delegator reservation.
func (s *Shepherd) findDelegator(profID uint16) *Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	coord := s.registry.devices[s.coordID]
	if coord == nil {
		return nil
	}
	for _, epID := range coord.EpList {
		ep := coord.Endpoints[epID]
		if ep.IsDelegator && ep.ProfID == profID {
			return ep
		}
	}
	return nil
}

// refreshFromReadResponse applies the read post-processing: update
// the cache per record (attrData on status 0, null otherwise), diff
// against the prior cache, and emit devChange if the diff is non-empty.
func (s *Shepherd) refreshFromReadResponse(dev *Device, ep *Endpoint, cID uint16, resp []byte) {
	_, body, ok := zcl.DecodeHeader(resp)
	if !ok {
		return
	}
	records := zcl.DecodeReadAttributesResponse(body)

	s.mu.Lock()
	table := ep.clusterTable(cID)
	next := ClusterTable{}
	for k, v := range table {
		next[k] = v
	}
	for _, rec := range records {
		name := s.catalog.AttrName(cID, rec.AttrID)
		if rec.Status == 0 {
			next[name] = decodeAttrValue(rec.DataType, rec.Data)
		} else {
			next[name] = nil
		}
	}
	diff := table.diff(next)
	ep.Clusters[cID] = next
	if syncErr := s.registry.syncOne(context.Background(), dev); syncErr != nil {
		log.Warn().Err(syncErr).Msg("shepherd: failed to persist device after attribute read")
	}
	s.mu.Unlock()

	if len(diff) > 0 {
		s.sink.emitInd(Event{
			Type:      EventDevChange,
			Endpoints: []*Endpoint{ep},
			Data:      ClusterDiff{ClusterID: cID, Data: diff},
		})
	}
}

// refreshViaQuery re-reads the whole cluster via the AF layer's
// zclClusterAttrsReq, then applies the same diff/emit procedure as a
// read response: write/writeUndiv/writeNoRsp are driven by a follow-up
// query, not the response payload.
func (s *Shepherd) refreshViaQuery(ctx context.Context, dev *Device, ep *Endpoint, ieeeAddr string, cID uint16) {
	values, err := s.af.ZclClusterAttrsReq(ctx, ep, ieeeAddr, cID)
	if err != nil {
		log.Debug().Err(err).Uint16("cluster", cID).Msg("shepherd: follow-up cluster query failed")
		return
	}

	s.mu.Lock()
	table := ep.clusterTable(cID)
	next := ClusterTable{}
	for k, v := range table {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	diff := table.diff(next)
	ep.Clusters[cID] = next
	if syncErr := s.registry.syncOne(ctx, dev); syncErr != nil {
		log.Warn().Err(syncErr).Msg("shepherd: failed to persist device after follow-up query")
	}
	s.mu.Unlock()

	if len(diff) > 0 {
		s.sink.emitInd(Event{
			Type:      EventDevChange,
			Endpoints: []*Endpoint{ep},
			Data:      ClusterDiff{ClusterID: cID, Data: diff},
		})
	}
}

// decodeAttrValue converts a raw ZCL attribute value to a Go value
// suitable for the cluster cache / JSON payloads.
func decodeAttrValue(dataType uint8, data []byte) interface{} {
	switch dataType {
	case zcl.DataTypeBool:
		if len(data) == 1 {
			return data[0] != 0
		}
	case zcl.DataTypeUint8, zcl.DataTypeEnum8, zcl.DataTypeBitmap8:
		if len(data) == 1 {
			return uint64(data[0])
		}
	case zcl.DataTypeUint16, zcl.DataTypeEnum16, zcl.DataTypeBitmap16, zcl.DataTypeInt16:
		if len(data) == 2 {
			return uint64(data[0]) | uint64(data[1])<<8
		}
	case zcl.DataTypeUint24:
		if len(data) == 3 {
			return uint64(data[0]) | uint64(data[1])<<8 | uint64(data[2])<<16
		}
	case zcl.DataTypeUint32:
		if len(data) == 4 {
			return uint64(data[0]) | uint64(data[1])<<8 | uint64(data[2])<<16 | uint64(data[3])<<24
		}
	case zcl.DataTypeOctetStr:
		if len(data) >= 1 {
			return string(data[1:])
		}
	}
	return data
}
