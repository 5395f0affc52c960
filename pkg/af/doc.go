// Package af is the AF layer external collaborator: it builds and
// sends ZCL foundation/functional frames over a Radio's APS data
// primitive and reads back whole-cluster attribute snapshots, with
// attribute names resolved via the ZCL catalog.
package af
