package air

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Air describes a computation as a set of transition constraints over
// adjacent trace rows and boundary assertions over single cells.
type Air interface {
	// TraceWidth returns the number of columns of the execution trace.
	TraceWidth() int
	// TransitionDegrees returns the algebraic degree of each transition
	// constraint in trace cells. The length of the returned slice is the
	// number of transition constraints.
	TransitionDegrees() []int
	// EvaluateTransition evaluates all transition constraints over the given
	// frame, writing one value per constraint into result.
	// The evaluations must be zero on every consecutive row pair of a valid trace.
	EvaluateTransition(frame *EvaluationFrame, result []fr.Element)
	// Assertions returns the boundary assertions against the trace.
	Assertions() []Assertion
}

// Assertion states that a trace cell holds a known value:
// trace[Column][Step] == Value.
type Assertion struct {
	Column int
	Step   int
	Value  fr.Element
}

// EvaluationFrame is a view over two consecutive rows of the (extended)
// execution trace, the window transition constraints are evaluated against.
type EvaluationFrame struct {
	current []fr.Element
	next    []fr.Element
}

// NewEvaluationFrame creates a new EvaluationFrame for a trace of the given width.
func NewEvaluationFrame(width int) *EvaluationFrame {
	return &EvaluationFrame{
		current: make([]fr.Element, width),
		next:    make([]fr.Element, width),
	}
}

// Current returns the current row of the frame.
func (f *EvaluationFrame) Current() []fr.Element {
	return f.current
}

// Next returns the next row of the frame.
func (f *EvaluationFrame) Next() []fr.Element {
	return f.next
}
