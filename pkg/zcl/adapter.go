package zcl

import "strconv"

// DefaultCatalog adapts the package-level lookup functions to the
// shepherd.Catalog collaborator shape without this package needing
// to import pkg/shepherd; the method set alone satisfies the interface
// structurally.
type DefaultCatalog struct{}

func (DefaultCatalog) ClusterName(cID uint16) string {
	if e := Cluster(cID); e != nil {
		return e.Key
	}
	return strconv.FormatUint(uint64(cID), 10)
}

func (DefaultCatalog) AttrName(cID, attrID uint16) string { return AttrName(cID, attrID) }

func (DefaultCatalog) AttrType(cID, attrID uint16) uint8 { return AttrType(cID, attrID) }

func (DefaultCatalog) StatusName(code uint8) string { return Status(code).Key }
