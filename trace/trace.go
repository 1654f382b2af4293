// Package trace implements the execution trace and its low-degree extension
// over the constraint evaluation domain.
package trace

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/num"
)

// ExecutionTrace is a table of field elements representing the state of a
// computation over time. Storage is column-major: one slice per register.
type ExecutionTrace struct {
	columns [][]fr.Element
}

// NewExecutionTrace creates a new ExecutionTrace with the given width and length.
//
// Panics if width is not positive, or if length is not a power of two.
func NewExecutionTrace(width, length int) *ExecutionTrace {
	if width <= 0 {
		panic("trace width is not positive")
	}
	if !num.IsPowerOfTwo(length) {
		panic("trace length is not a power of two")
	}

	columns := make([][]fr.Element, width)
	for i := range columns {
		columns[i] = make([]fr.Element, length)
	}
	return &ExecutionTrace{
		columns: columns,
	}
}

// Width returns the number of registers of the trace.
func (t *ExecutionTrace) Width() int {
	return len(t.columns)
}

// Length returns the number of steps of the trace.
func (t *ExecutionTrace) Length() int {
	return len(t.columns[0])
}

// Get returns the value of the given register at the given step.
func (t *ExecutionTrace) Get(column, step int) fr.Element {
	return t.columns[column][step]
}

// Set sets the value of the given register at the given step.
func (t *ExecutionTrace) Set(column, step int, value fr.Element) {
	t.columns[column][step].Set(&value)
}

// Fill fills the trace by executing the computation: init writes the first
// row into state, and update transforms state into the row of the next step.
func (t *ExecutionTrace) Fill(init func(state []fr.Element), update func(step int, state []fr.Element)) {
	state := make([]fr.Element, t.Width())

	init(state)
	for i := range state {
		t.columns[i][0].Set(&state[i])
	}

	for step := 0; step < t.Length()-1; step++ {
		update(step, state)
		for i := range state {
			t.columns[i][step+1].Set(&state[i])
		}
	}
}
