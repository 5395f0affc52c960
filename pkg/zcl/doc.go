// Package zcl is the ZCL identifier catalog: it maps between the numeric
// cluster, attribute, foundation command, and status ids the radio speaks
// and the names application code wants to use. Unknown ids round-trip as
// their numeric form rather than erroring, since new devices routinely
// expose manufacturer clusters the catalog has never seen.
package zcl
