package controller

// State is the controller's FSM state register.
type State int

const (
	// StateReset walks every set and invalidates its tag line.
	StateReset State = iota
	// StateFlush walks every set and writes dirty lines back.
	StateFlush
	// StateIdle waits for a request, prefetching the presented address.
	StateIdle
	// StateWaitHazard is the one-cycle bubble that avoids a read-after-write
	// collision on the single-port arrays when bypassing is disabled.
	StateWaitHazard
	// StateCompare resolves the latched request: hit, dirty miss, clean miss.
	StateCompare
	// StateWrite waits for main memory to accept a write-back.
	StateWrite
	// StateWaitWrite waits for the write-back to complete, then issues the
	// fill in the same cycle memory frees up.
	StateWaitWrite
	// StateRead waits for main memory to accept a fill on the clean-miss
	// path when memory was busy at compare time.
	StateRead
	// StateWaitRead waits for fill data and installs the new line.
	StateWaitRead
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "RESET"
	case StateFlush:
		return "FLUSH"
	case StateIdle:
		return "IDLE"
	case StateWaitHazard:
		return "WAIT_HAZARD"
	case StateCompare:
		return "COMPARE"
	case StateWrite:
		return "WRITE"
	case StateWaitWrite:
		return "WAIT_WRITE"
	case StateRead:
		return "READ"
	case StateWaitRead:
		return "WAIT_READ"
	default:
		return "UNKNOWN"
	}
}
