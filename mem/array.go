// Package mem models the storage collaborators of the cache controller: the
// internal SRAM arrays (tag, data, use) and the main-memory interface.
package mem

import (
	"github.com/sarchlab/opencache/internal/fault"
)

// Array is a synchronous storage array with one read port and one write
// port. A read presented in cycle t is available from DOut in cycle t+1.
// A read and a write to the same row in the same cycle return the pre-write
// contents; resolving that hazard is the controller's job.
//
// At most one read and one write may be issued per cycle.
type Array[T any] struct {
	name  string
	rows  []T
	clone func(T) T

	dout     T
	readRow  int
	hasRead  bool
	writeRow int
	writeVal T
	hasWrite bool
}

// NewArray creates an array of numRows rows. init produces the reset value
// of a row; clone deep-copies a row so that readers never alias storage.
func NewArray[T any](
	name string,
	numRows int,
	init func() T,
	clone func(T) T,
) *Array[T] {
	a := &Array[T]{
		name:  name,
		clone: clone,
	}

	a.rows = make([]T, numRows)
	for i := range a.rows {
		a.rows[i] = init()
	}
	a.dout = init()

	return a
}

// Read presents a row address on the read port.
func (a *Array[T]) Read(row int) {
	if a.hasRead {
		fault.Violatef("%s: second read issued in one cycle", a.name)
	}

	a.readRow = row
	a.hasRead = true
}

// Write presents a row address and data on the write port.
func (a *Array[T]) Write(row int, value T) {
	if a.hasWrite {
		fault.Violatef("%s: second write issued in one cycle", a.name)
	}

	a.writeRow = row
	a.writeVal = a.clone(value)
	a.hasWrite = true
}

// DOut returns the row read in the previous cycle.
func (a *Array[T]) DOut() T {
	return a.dout
}

// Peek returns a copy of a row without going through the read port. It is
// for tests and state inspection only.
func (a *Array[T]) Peek(row int) T {
	return a.clone(a.rows[row])
}

// Tick is the clock edge: the read output latches the pre-write contents,
// then the write commits.
func (a *Array[T]) Tick() {
	if a.hasRead {
		a.dout = a.clone(a.rows[a.readRow])
		a.hasRead = false
	}

	if a.hasWrite {
		a.rows[a.writeRow] = a.writeVal
		a.hasWrite = false
	}
}
