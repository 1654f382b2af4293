package trace

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/air"
	"github.com/sp301415/ringo-stark/domain"
)

// TraceLDE is the low-degree extension of an execution trace: every register
// interpolated over the trace domain and re-evaluated over the constraint
// evaluation coset.
type TraceLDE struct {
	evaluations [][]fr.Element
	blowup      int
}

// Extend computes the low-degree extension of the trace over the constraint
// evaluation domain of d.
//
// Panics if the trace length does not match the domain.
func (t *ExecutionTrace) Extend(d *domain.StarkDomain) *TraceLDE {
	if t.Length() != d.TraceLength() {
		panic("trace length does not match domain")
	}

	evaluations := make([][]fr.Element, t.Width())
	for i, column := range t.columns {
		extended := make([]fr.Element, d.Size())
		copy(extended, column)

		d.InterpolateTrace(extended[:t.Length()])
		d.EvaluateCe(extended)

		evaluations[i] = extended
	}

	return &TraceLDE{
		evaluations: evaluations,
		blowup:      d.Blowup(),
	}
}

// Width returns the number of registers of the extended trace.
func (t *TraceLDE) Width() int {
	return len(t.evaluations)
}

// NumRows returns the number of rows of the extended trace.
func (t *TraceLDE) NumRows() int {
	return len(t.evaluations[0])
}

// Get returns the value of the given register at the given row of the
// extended domain.
func (t *TraceLDE) Get(column, row int) fr.Element {
	return t.evaluations[column][row]
}

// ReadFrame reads the evaluation frame at the given row into frame.
// The next row of the frame is blowup steps ahead, which corresponds to one
// trace step.
func (t *TraceLDE) ReadFrame(row int, frame *air.EvaluationFrame) {
	next := (row + t.blowup) % t.NumRows()

	current := frame.Current()
	nextRow := frame.Next()
	for i := range t.evaluations {
		current[i].Set(&t.evaluations[i][row])
		nextRow[i].Set(&t.evaluations[i][next])
	}
}
