package composer

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// EvaluationTableFragment is a disjoint, mutable row-range view over every
// column of an EvaluationTable. Fragments partition the table rows exactly,
// so each fragment can be filled by an independent worker without
// synchronization. Fragments are write-only: rows are addressed relative to
// the fragment offset, and every row must be written exactly once before the
// table is consumed.
type EvaluationTableFragment struct {
	offset       int
	evaluations  [][]fr.Element
	tEvaluations [][]fr.Element

	fill *fragmentFill
}

// fragmentFill tracks which rows of a fragment have been written.
// Each fragment owns its own bitset, so concurrent fills of different
// fragments never touch the same word.
type fragmentFill struct {
	offset  int
	written *bitset.BitSet
}

func newFragmentFill(offset, numRows int) *fragmentFill {
	return &fragmentFill{
		offset:  offset,
		written: bitset.New(uint(numRows)),
	}
}

// Offset returns the table row at which the fragment starts.
func (f *EvaluationTableFragment) Offset() int {
	return f.offset
}

// NumRows returns the number of rows of the fragment.
func (f *EvaluationTableFragment) NumRows() int {
	return len(f.evaluations[0])
}

// NumColumns returns the number of columns of the fragment.
func (f *EvaluationTableFragment) NumColumns() int {
	return len(f.evaluations)
}

// UpdateRow writes one value per column at the given fragment-relative row.
//
// Panics if values does not hold exactly one value per column.
func (f *EvaluationTableFragment) UpdateRow(row int, values []fr.Element) {
	if len(values) != f.NumColumns() {
		panic("values length does not match column count")
	}

	for c := range f.evaluations {
		f.evaluations[c][row].Set(&values[c])
	}

	if f.fill != nil {
		f.fill.written.Set(uint(row))
	}
}

// UpdateTransitionEvaluations writes one value per individual transition
// constraint at the given fragment-relative row. Only available in
// verification mode.
//
// Panics if the table was not created with a degree check, or if values does
// not hold exactly one value per transition constraint.
func (f *EvaluationTableFragment) UpdateTransitionEvaluations(row int, values []fr.Element) {
	if f.tEvaluations == nil {
		panic("table is not in verification mode")
	}
	if len(values) != len(f.tEvaluations) {
		panic("values length does not match transition constraint count")
	}

	for c := range f.tEvaluations {
		f.tEvaluations[c][row].Set(&values[c])
	}
}
