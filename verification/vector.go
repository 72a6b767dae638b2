// Package verification generates golden test vectors from the reference
// simulator and replays them cycle by cycle against the controller.
package verification

import (
	"github.com/sarchlab/opencache/controller"
)

// A Vector is one golden transaction: the request to present and the stall
// count and data word the controller must produce for it. A Flush vector
// presents the flush input instead of a request.
type Vector struct {
	Seq   int
	Flush bool

	WriteEnable bool
	Mask        uint64
	Addr        uint64
	Data        uint64

	StallCycles int
	DOut        uint64
}

// input returns the control-port signals that present this vector.
func (v Vector) input() controller.Input {
	if v.Flush {
		in := controller.IdleInput()
		in.Flush = true

		return in
	}

	return controller.Input{
		CSb:   false,
		WEb:   !v.WriteEnable,
		WMask: v.Mask,
		Addr:  v.Addr,
		DIn:   v.Data,
	}
}
