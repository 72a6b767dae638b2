package controller

// outputBlock computes the stall and data-out port values. Stall drops in
// exactly three places: IDLE, a compare that hits, and the cycle a fill
// returns from main memory.
func (c *Controller) outputBlock(cmb combSignals) Output {
	out := Output{Stall: true}

	switch c.regs.state {
	case StateIdle:
		out.Stall = false

	case StateCompare:
		if cmb.hit {
			out.Stall = false
			out.DOut = cmb.data[cmb.hitWay][c.regs.offset] & c.g.WordMask()
		}

	case StateWaitRead:
		if !cmb.mainStall {
			out.Stall = false
			line := c.main.DOut()
			out.DOut = line[c.regs.offset] & c.g.WordMask()
		}
	}

	return out
}
