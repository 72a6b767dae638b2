// Package controller implements the synchronous cache controller FSM. Each
// Cycle call is one clock tick: all combinational outputs are computed from
// the current register values and the current inputs, then the registers,
// arrays, and main memory update on the edge.
package controller

import (
	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/mem"
	"github.com/sarchlab/opencache/policy"
)

// Controller is the cache controller with its storage-array collaborators.
type Controller struct {
	name string
	g    geom.Geometry
	pol  policy.Policy
	main mem.MainMemory

	tagArray  *mem.Array[tagRow]
	dataArray *mem.Array[dataRow]

	regs registers
}

// registers hold the controller's synchronous state. They update once per
// Cycle and retain their values across stall cycles.
type registers struct {
	state  State
	tag    uint64
	set    uint64
	offset uint64
	way    int

	webReg   bool
	wmaskReg uint64
	dinReg   uint64

	bypass bypassRegs
}

// bypassRegs shadow one set's tag and data rows for exactly one cycle,
// substituting for the arrays' stale read output after a same-set write.
type bypassRegs struct {
	active bool
	tags   tagRow
	data   dataRow
}

// A Builder creates controllers.
type Builder struct {
	g       geom.Geometry
	mainMem mem.MainMemory
}

// MakeBuilder returns a new controller builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithGeometry sets the cache geometry.
func (b Builder) WithGeometry(g geom.Geometry) Builder {
	b.g = g
	return b
}

// WithMainMemory sets the backing-store collaborator.
func (b Builder) WithMainMemory(m mem.MainMemory) Builder {
	b.mainMem = m
	return b
}

// Build creates the controller. The controller powers up in the RESET state
// with the set register pre-cleared past row 0, exactly as the hardware's
// register reset values leave it.
func (b Builder) Build(name string) *Controller {
	c := &Controller{
		name: name,
		g:    b.g,
		pol:  policy.New(b.g),
		main: b.mainMem,
	}

	c.tagArray = mem.NewArray(
		name+".TagArray",
		b.g.NumRows,
		func() tagRow { return make(tagRow, b.g.NumWays) },
		cloneTagRow,
	)
	c.dataArray = mem.NewArray(
		name+".DataArray",
		b.g.NumRows,
		func() dataRow {
			row := make(dataRow, b.g.NumWays)
			for i := range row {
				row[i] = make([]uint64, b.g.WordsPerLine)
			}
			return row
		},
		cloneDataRow,
	)

	c.regs = resetRegisters()

	return c
}

func resetRegisters() registers {
	return registers{
		state:  StateReset,
		set:    1,
		webReg: true,
	}
}

// Cycle advances the controller by one clock tick.
func (c *Controller) Cycle(in Input) Output {
	cmb := c.evaluate(in)

	out := c.outputBlock(cmb)
	c.memoryBlock(in, cmb)
	next := c.nextRegisters(in, cmb)
	c.replacementBlock(in, cmb)

	c.tagArray.Tick()
	c.dataArray.Tick()
	c.main.Tick()
	c.regs = next

	return out
}

// Name returns the name the controller was built with.
func (c *Controller) Name() string {
	return c.name
}

// Geometry exposes the derived geometry for the array-generation
// collaborator.
func (c *Controller) Geometry() geom.Geometry {
	return c.g
}

// Policy returns the replacement policy instance.
func (c *Controller) Policy() policy.Policy {
	return c.pol
}

// State returns the current FSM state.
func (c *Controller) State() State {
	return c.regs.state
}

// Line returns a copy of the tag entry and data line of a (set, way) slot,
// bypassing the array ports. For tests and state inspection only.
func (c *Controller) Line(set, way int) (TagEntry, []uint64) {
	tags := c.tagArray.Peek(set)
	data := c.dataArray.Peek(set)

	return tags[way], data[way]
}
