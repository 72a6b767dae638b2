// Package fault defines the panic value used for internal invariant
// violations. A violation indicates a defect in the controller or policy
// implementation and must never be swallowed.
package fault

import "fmt"

// InvariantViolation is the value panicked with when internal state breaks
// an invariant (multi-way hit, broken LRU permutation, bypass armed with no
// prior write).
type InvariantViolation struct {
	Msg string
}

func (v InvariantViolation) Error() string {
	return "invariant violation: " + v.Msg
}

// Violatef panics with an InvariantViolation.
func Violatef(format string, args ...any) {
	panic(InvariantViolation{Msg: fmt.Sprintf(format, args...)})
}
