package verification

import (
	"fmt"

	"github.com/sarchlab/opencache/controller"
	"github.com/sarchlab/opencache/recording"
)

// A Runner replays golden vectors against a controller. Each vector is
// presented in the completion cycle of the previous one, so back-to-back
// hazards are exercised exactly as the golden stall counts assume.
type Runner struct {
	c        *controller.Controller
	recorder recording.Recorder
	progress Progress

	maxStall int
}

// Progress receives per-vector completion updates during a replay. The
// monitoring dashboard's progress bars satisfy it.
type Progress interface {
	Increment(n uint64)
}

// vectorResult is the recording row of one replayed vector.
type vectorResult struct {
	Seq           int
	Flush         bool
	WriteEnable   bool
	Addr          uint64
	ExpectedStall int
	ActualStall   int
	ExpectedDOut  uint64
	ActualDOut    uint64
	Pass          bool
}

// NewRunner creates a runner for a freshly built controller.
func NewRunner(c *controller.Controller) *Runner {
	g := c.Geometry()

	return &Runner{
		c: c,
		// Generous hang guard: a full dirty flush plus one dirty miss.
		maxStall: 64 * g.NumRows * g.NumWays,
	}
}

// WithRecorder makes the runner store per-vector results.
func (r *Runner) WithRecorder(rec recording.Recorder) *Runner {
	r.recorder = rec
	if rec != nil {
		rec.CreateTable("vector_results", vectorResult{})
	}

	return r
}

// WithProgress makes the runner report each replayed vector.
func (r *Runner) WithProgress(p Progress) *Runner {
	r.progress = p

	return r
}

// Run resets the controller and replays the vectors. It returns an error on
// the first stall-count or data mismatch.
func (r *Runner) Run(vectors []Vector) error {
	if err := r.reset(vectors); err != nil {
		return err
	}

	for i, v := range vectors {
		if err := r.replay(i, v, vectors); err != nil {
			return err
		}
		if r.progress != nil {
			r.progress.Increment(1)
		}
	}

	return nil
}

// hold returns the signals to drive while vector i-1 is still in flight.
// The controller only samples them in stall-low cycles. Flush vectors are
// held back as idle so the flush input never fires mid-transaction.
func hold(vectors []Vector, i int) controller.Input {
	if i >= len(vectors) || vectors[i].Flush {
		return controller.IdleInput()
	}

	return vectors[i].input()
}

func (r *Runner) reset(vectors []Vector) error {
	in := hold(vectors, 0)
	in.Rst = true

	out := r.c.Cycle(in)

	expected := r.c.Geometry().NumRows
	stalls := 0
	for out.Stall {
		stalls++
		if stalls > expected {
			return fmt.Errorf("reset walk did not finish in %d cycles",
				expected)
		}
		out = r.c.Cycle(hold(vectors, 0))
	}

	if stalls != expected {
		return fmt.Errorf("reset stalled %d cycles, want %d",
			stalls, expected)
	}

	return nil
}

func (r *Runner) replay(i int, v Vector, vectors []Vector) error {
	if v.Flush {
		// The previous completion held idle, so the controller sits in
		// IDLE now and samples the flush this cycle.
		out := r.c.Cycle(v.input())
		if out.Stall {
			return fmt.Errorf("vector %d: flush presented during a stall",
				v.Seq)
		}
	}

	stalls := 0
	out := r.c.Cycle(hold(vectors, i+1))
	for out.Stall {
		stalls++
		if stalls > r.maxStall {
			return fmt.Errorf("vector %d: controller stalled beyond %d cycles",
				v.Seq, r.maxStall)
		}
		out = r.c.Cycle(hold(vectors, i+1))
	}

	pass := stalls == v.StallCycles &&
		(v.Flush || out.DOut == v.DOut)
	r.record(v, stalls, out.DOut, pass)

	if stalls != v.StallCycles {
		return fmt.Errorf(
			"vector %d (%s addr %#x): stalled %d cycles, want %d",
			v.Seq, opName(v), v.Addr, stalls, v.StallCycles)
	}
	if !v.Flush && out.DOut != v.DOut {
		return fmt.Errorf(
			"vector %d (%s addr %#x): dout %#x, want %#x",
			v.Seq, opName(v), v.Addr, out.DOut, v.DOut)
	}

	return nil
}

func (r *Runner) record(v Vector, stalls int, dout uint64, pass bool) {
	if r.recorder == nil {
		return
	}

	r.recorder.Insert("vector_results", vectorResult{
		Seq:           v.Seq,
		Flush:         v.Flush,
		WriteEnable:   v.WriteEnable,
		Addr:          v.Addr,
		ExpectedStall: v.StallCycles,
		ActualStall:   stalls,
		ExpectedDOut:  v.DOut,
		ActualDOut:    dout,
		Pass:          pass,
	})
}

func opName(v Vector) string {
	switch {
	case v.Flush:
		return "flush"
	case v.WriteEnable:
		return "write"
	default:
		return "read"
	}
}
