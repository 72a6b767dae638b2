package controller

// nextRegisters computes the register values for the next cycle. Rst and
// Flush take priority over the state table; the bypass shadow is re-armed
// from scratch every cycle so it never outlives the one compare it serves.
func (c *Controller) nextRegisters(in Input, cmb combSignals) registers {
	if in.Rst {
		return resetRegisters()
	}

	next := c.regs
	next.bypass = bypassRegs{}

	if in.Flush {
		next.state = StateFlush
		next.set = 0
		next.way = 0

		return next
	}

	switch c.regs.state {
	case StateReset:
		if c.regs.set == uint64(c.g.NumRows-1) {
			next.state = StateIdle
		}
		next.set = (c.regs.set + 1) % uint64(c.g.NumRows)

	case StateFlush:
		c.nextFlush(cmb, &next)

	case StateIdle:
		if !in.CSb {
			next.state = StateCompare
			c.decode(in, &next)
		}

	case StateWaitHazard:
		next.state = StateCompare

	case StateCompare:
		c.nextCompare(in, cmb, &next)

	case StateWrite:
		if !cmb.mainStall {
			next.state = StateWaitWrite
		}

	case StateWaitWrite:
		if !cmb.mainStall {
			next.state = StateWaitRead
		}

	case StateRead:
		if !cmb.mainStall {
			next.state = StateWaitRead
		}

	case StateWaitRead:
		c.nextWaitRead(in, cmb, &next)
	}

	return next
}

func (c *Controller) nextFlush(cmb combSignals, next *registers) {
	tags := c.tagArray.DOut()
	entry := tags[c.regs.way]
	dirty := entry.Valid && entry.Dirty

	if dirty && cmb.mainStall {
		return
	}

	if c.regs.way < c.g.NumWays-1 {
		next.way = c.regs.way + 1

		return
	}

	next.way = 0
	if c.regs.set == uint64(c.g.NumRows-1) {
		next.state = StateIdle
		next.set = 0

		return
	}
	next.set = c.regs.set + 1
}

func (c *Controller) nextCompare(in Input, cmb combSignals, next *registers) {
	if cmb.hit {
		if in.CSb {
			next.state = StateIdle

			return
		}

		next.state = StateCompare
		wrote := !c.regs.webReg
		if cmb.sameSet && (wrote || c.pol.HazardOnReadHit()) {
			c.armOrStall(cmb, next, wrote)
		}
		c.decode(in, next)

		return
	}

	next.way = cmb.victimWay
	if cmb.victimDirty {
		if cmb.mainStall {
			next.state = StateWrite
		} else {
			next.state = StateWaitWrite
		}

		return
	}

	if cmb.mainStall {
		next.state = StateRead
	} else {
		next.state = StateWaitRead
	}
}

func (c *Controller) nextWaitRead(in Input, cmb combSignals, next *registers) {
	if cmb.mainStall {
		return
	}

	if in.CSb {
		next.state = StateIdle

		return
	}

	next.state = StateCompare
	if cmb.sameSet {
		c.armOrStall(cmb, next, true)
	}
	c.decode(in, next)
}

// armOrStall resolves a same-set back-to-back access after a cycle that
// wrote the arrays. With bypassing enabled the written rows shadow the
// stale array output for the following compare; without it the controller
// spends one WAIT_HAZARD cycle re-reading the set.
func (c *Controller) armOrStall(cmb combSignals, next *registers, wrote bool) {
	if !c.g.DataHazard {
		next.state = StateWaitHazard

		return
	}

	if !wrote {
		return
	}

	var wt tagRow
	var wd dataRow
	if c.regs.state == StateCompare {
		wt, wd = c.hitWriteRows(cmb)
	} else {
		wt, wd = c.fillRows()
	}

	next.bypass = bypassRegs{active: true, tags: wt, data: wd}
}

// decode latches the presented request into the working registers.
func (c *Controller) decode(in Input, next *registers) {
	next.tag = c.g.Tag(in.Addr)
	next.set = c.g.Set(in.Addr)
	next.offset = c.g.Offset(in.Addr)
	next.webReg = in.WEb
	next.wmaskReg = in.WMask
	next.dinReg = in.DIn
}
