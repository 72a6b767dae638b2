package controller

import (
	"github.com/sarchlab/opencache/internal/fault"
)

// combSignals are the shared combinational values of one tick. Everything
// here derives from the current registers, the array outputs latched last
// cycle, and the current inputs; no field depends on another output
// computed in the same tick.
type combSignals struct {
	mainStall bool

	// view of the latched request's set: the bypass shadow when armed,
	// the live array read otherwise.
	tags tagRow
	data dataRow

	hit    bool
	hitWay int

	victimWay   int
	victimDirty bool
	victimTag   uint64

	// sameSet is true when a request is presented and it targets the set
	// currently held in the set register.
	sameSet bool
}

func (c *Controller) evaluate(in Input) combSignals {
	cmb := combSignals{
		mainStall: c.main.Stall(),
		hitWay:    -1,
	}

	if c.regs.bypass.active && c.regs.state != StateCompare {
		fault.Violatef("%s: bypass armed in state %s with no compare to serve",
			c.name, c.regs.state)
	}

	if c.regs.bypass.active {
		cmb.tags = c.regs.bypass.tags
		cmb.data = c.regs.bypass.data
	} else {
		cmb.tags = c.tagArray.DOut()
		cmb.data = c.dataArray.DOut()
	}

	cmb.sameSet = !in.CSb && c.g.Set(in.Addr) == c.regs.set

	if c.regs.state != StateCompare {
		return cmb
	}

	for way, entry := range cmb.tags {
		if entry.Valid && entry.Tag == c.regs.tag {
			if cmb.hit {
				fault.Violatef("%s: set %d ways %d and %d both hit tag %#x",
					c.name, c.regs.set, cmb.hitWay, way, c.regs.tag)
			}
			cmb.hit = true
			cmb.hitWay = way
		}
	}

	valid := make([]bool, len(cmb.tags))
	for way, entry := range cmb.tags {
		valid[way] = entry.Valid
	}

	cmb.victimWay = c.pol.SelectVictim(int(c.regs.set), valid)
	victim := cmb.tags[cmb.victimWay]
	cmb.victimDirty = victim.Valid && victim.Dirty
	cmb.victimTag = victim.Tag

	return cmb
}
