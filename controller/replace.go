package controller

// replacementBlock updates the replacement policy at the end of the cycle.
// The policy's cycle counter advances on every tick except the reset tick,
// mirroring the hardware counter that holds its reset value through the
// reset edge.
func (c *Controller) replacementBlock(in Input, cmb combSignals) {
	if in.Rst {
		c.pol.Reset()

		return
	}

	c.pol.Advance(1)

	if in.Flush {
		return
	}

	switch c.regs.state {
	case StateCompare:
		if cmb.hit {
			c.pol.OnAccess(int(c.regs.set), cmb.hitWay)
		}

	case StateWaitRead:
		if !cmb.mainStall {
			c.pol.OnFill(int(c.regs.set), c.regs.way)
		}
	}
}
