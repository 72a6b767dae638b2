// Package policy implements the pluggable replacement policies of the cache
// controller: direct (none), FIFO, LRU, and random.
package policy

import (
	"github.com/sarchlab/opencache/geom"
)

// A Policy selects victims and maintains per-set replacement metadata.
//
// SelectVictim must not modify any state; OnAccess and OnFill perform the
// metadata updates the controller applies on a hit and on a miss fill.
// Advance accounts elapsed clock cycles, which only the random policy
// observes.
type Policy interface {
	SelectVictim(set int, valid []bool) int
	OnAccess(set, way int)
	OnFill(set, way int)
	Advance(cycles int)
	Reset()

	// Kind returns the policy name as it appears in the configuration.
	Kind() string

	// UsesMetadataArray reports whether the hardware needs a separate
	// use array for this policy.
	UsesMetadataArray() bool

	// MetadataBits returns the width of one use-array row, for the
	// array-generation collaborator. Zero when no use array is needed.
	MetadataBits() int

	// HazardOnReadHit reports whether a read hit writes replacement
	// metadata, making a same-set data hazard possible even without a
	// data write.
	HazardOnReadHit() bool
}

// New creates the policy for a geometry. The geometry has already validated
// the policy name, so an unknown name here is a programming error.
func New(g geom.Geometry) Policy {
	switch g.ReplacementPolicy {
	case geom.PolicyDirect:
		return &direct{}
	case geom.PolicyFIFO:
		return newFIFO(g)
	case geom.PolicyLRU:
		return newLRU(g)
	case geom.PolicyRandom:
		return newRandom(g)
	default:
		panic("unknown replacement policy: " + g.ReplacementPolicy)
	}
}

// direct is the no-op policy of a direct-mapped cache.
type direct struct{}

func (*direct) SelectVictim(int, []bool) int { return 0 }
func (*direct) OnAccess(int, int)            {}
func (*direct) OnFill(int, int)              {}
func (*direct) Advance(int)                  {}
func (*direct) Reset()                       {}
func (*direct) Kind() string                 { return geom.PolicyDirect }
func (*direct) UsesMetadataArray() bool      { return false }
func (*direct) MetadataBits() int            { return 0 }
func (*direct) HazardOnReadHit() bool        { return false }
