package controller

// memoryBlock drives the array ports and the main-memory request port for
// one cycle. Each array accepts at most one read and one write per cycle;
// everything below funnels through a single read row and a single pair of
// write rows so the port limit holds by construction.
func (c *Controller) memoryBlock(in Input, cmb combSignals) {
	readRow := -1
	var tagWrite *tagRow
	var dataWrite *dataRow
	writeRow := -1

	switch {
	case in.Rst:
		row := make(tagRow, c.g.NumWays)
		writeRow = 0
		tagWrite = &row

	case in.Flush:
		readRow = 0

	default:
		switch c.regs.state {
		case StateReset:
			row := make(tagRow, c.g.NumWays)
			writeRow = int(c.regs.set)
			tagWrite = &row

		case StateFlush:
			readRow = c.flushMemory(cmb, &writeRow, &tagWrite)

		case StateIdle:
			readRow = int(c.g.Set(in.Addr))

		case StateWaitHazard:
			readRow = int(c.regs.set)

		case StateCompare:
			readRow = c.compareMemory(in, cmb, &writeRow, &tagWrite, &dataWrite)

		case StateWrite:
			readRow = int(c.regs.set)
			if !cmb.mainStall {
				tags := c.tagArray.DOut()
				data := c.dataArray.DOut()
				line := tags[c.regs.way]
				c.main.Request(true,
					c.g.LineAddr(line.Tag, c.regs.set), data[c.regs.way])
			}

		case StateWaitWrite, StateRead:
			readRow = int(c.regs.set)
			if !cmb.mainStall {
				c.main.Request(false,
					c.g.LineAddr(c.regs.tag, c.regs.set), nil)
			}

		case StateWaitRead:
			readRow = int(c.regs.set)
			if !cmb.mainStall {
				wt, wd := c.fillRows()
				writeRow = int(c.regs.set)
				tagWrite = &wt
				dataWrite = &wd
				if !in.CSb {
					readRow = int(c.g.Set(in.Addr))
				}
			}
		}
	}

	if readRow >= 0 {
		c.tagArray.Read(readRow)
		c.dataArray.Read(readRow)
	}
	if tagWrite != nil {
		c.tagArray.Write(writeRow, *tagWrite)
	}
	if dataWrite != nil {
		c.dataArray.Write(writeRow, *dataWrite)
	}
}

// flushMemory handles one (set, way) step of the flush walk. Dirty valid
// ways are written back when memory is free; everything else costs one
// cycle. The read address runs one set ahead so the next row's tags are
// ready when the way index wraps.
func (c *Controller) flushMemory(
	cmb combSignals,
	writeRow *int,
	tagWrite **tagRow,
) int {
	tags := c.tagArray.DOut()
	data := c.dataArray.DOut()
	entry := tags[c.regs.way]
	dirty := entry.Valid && entry.Dirty

	if dirty && !cmb.mainStall {
		c.main.Request(true,
			c.g.LineAddr(entry.Tag, c.regs.set), data[c.regs.way])

		wt := cloneTagRow(tags)
		wt[c.regs.way].Dirty = false
		*writeRow = int(c.regs.set)
		*tagWrite = &wt
	}

	advance := !dirty || !cmb.mainStall
	if advance && c.regs.way == c.g.NumWays-1 {
		return int((c.regs.set + 1) % uint64(c.g.NumRows))
	}

	return int(c.regs.set)
}

// compareMemory resolves the latched request against the tag view. On a
// write hit the merged line goes back into the arrays this cycle; on a
// dirty miss the victim line streams out to memory from the same view the
// comparison used.
func (c *Controller) compareMemory(
	in Input,
	cmb combSignals,
	writeRow *int,
	tagWrite **tagRow,
	dataWrite **dataRow,
) int {
	readRow := int(c.regs.set)

	if cmb.hit {
		if !c.regs.webReg {
			wt, wd := c.hitWriteRows(cmb)
			*writeRow = int(c.regs.set)
			*tagWrite = &wt
			*dataWrite = &wd
		}
		if !in.CSb {
			readRow = int(c.g.Set(in.Addr))
		}

		return readRow
	}

	if !cmb.mainStall {
		if cmb.victimDirty {
			c.main.Request(true,
				c.g.LineAddr(cmb.victimTag, c.regs.set), cmb.data[cmb.victimWay])
		} else {
			c.main.Request(false,
				c.g.LineAddr(c.regs.tag, c.regs.set), nil)
		}
	}

	return readRow
}

// hitWriteRows builds the tag and data rows a write hit commits: the hit
// way turns dirty and the addressed word takes the masked merge of the
// latched write data.
func (c *Controller) hitWriteRows(cmb combSignals) (tagRow, dataRow) {
	wt := cloneTagRow(cmb.tags)
	wt[cmb.hitWay] = TagEntry{Valid: true, Dirty: true, Tag: c.regs.tag}

	wd := cloneDataRow(cmb.data)
	wd[cmb.hitWay][c.regs.offset] = mergeWord(
		cmb.data[cmb.hitWay][c.regs.offset],
		c.regs.dinReg, c.regs.wmaskReg, c.g.NumBytesPerWord)

	return wt, wd
}

// fillRows builds the tag and data rows a completed fill installs into the
// chosen way. A write miss merges its latched data into the fetched line
// before installation and marks the way dirty.
func (c *Controller) fillRows() (tagRow, dataRow) {
	tags := c.tagArray.DOut()
	data := c.dataArray.DOut()

	wt := cloneTagRow(tags)
	wt[c.regs.way] = TagEntry{
		Valid: true,
		Dirty: !c.regs.webReg,
		Tag:   c.regs.tag,
	}

	wd := cloneDataRow(data)
	line := c.main.DOut()
	if !c.regs.webReg {
		line[c.regs.offset] = mergeWord(
			line[c.regs.offset],
			c.regs.dinReg, c.regs.wmaskReg, c.g.NumBytesPerWord)
	}
	wd[c.regs.way] = line

	return wt, wd
}
