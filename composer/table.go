// Package composer implements the constraint evaluation table and its
// reduction into a composition polynomial: per-row constraint evaluations are
// accumulated column by column, divided by each column's vanishing divisor,
// and interpolated into coefficient form.
package composer

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/air"
	"github.com/sp301415/ringo-stark/domain"
	"github.com/sp301415/ringo-stark/poly"
)

// MinFragmentSize is the minimum number of rows of a table fragment.
// Below this, dispatch overhead dominates useful work.
const MinFragmentSize = 16

// EvaluationTable accumulates constraint evaluations over the constraint
// evaluation domain, one column per divisor. Column 0 holds the combined
// transition constraint evaluations; the remaining columns hold boundary
// constraint groups sharing a divisor.
//
// The lifecycle is construct, fragment, fill, consume: the table is split
// into disjoint row-range fragments which workers fill independently, and
// once every row is written it is consumed into a CompositionPoly.
type EvaluationTable struct {
	evaluations [][]fr.Element
	divisors    []air.ConstraintDivisor
	domain      *domain.StarkDomain

	// Verification mode only.
	tEvaluations     [][]fr.Element
	tExpectedDegrees []int
	fills            []*fragmentFill

	fragmented bool
	consumed   bool
}

// NewEvaluationTable creates a new EvaluationTable over the constraint
// evaluation domain of d, with one column per divisor.
//
// Panics if divisors is empty.
func NewEvaluationTable(d *domain.StarkDomain, divisors []air.ConstraintDivisor) *EvaluationTable {
	if len(divisors) == 0 {
		panic("divisors is empty")
	}

	evaluations := make([][]fr.Element, len(divisors))
	for i := range evaluations {
		evaluations[i] = make([]fr.Element, d.Size())
	}

	return &EvaluationTable{
		evaluations: evaluations,
		divisors:    divisors,
		domain:      d,
	}
}

// NewEvaluationTableWithDegreeCheck creates a new EvaluationTable in
// verification mode: it additionally allocates one column per individual
// transition constraint, and consuming the table first checks that the
// measured constraint degrees match expectedDegrees.
//
// Verification mode exists to catch arithmetization bugs during development;
// it must not run in a production proving path.
func NewEvaluationTableWithDegreeCheck(d *domain.StarkDomain, divisors []air.ConstraintDivisor, expectedDegrees []int) *EvaluationTable {
	t := NewEvaluationTable(d, divisors)

	t.tEvaluations = make([][]fr.Element, len(expectedDegrees))
	for i := range t.tEvaluations {
		t.tEvaluations[i] = make([]fr.Element, d.Size())
	}
	t.tExpectedDegrees = expectedDegrees

	return t
}

// NumRows returns the number of rows of the table, which is the size of the
// constraint evaluation domain.
func (t *EvaluationTable) NumRows() int {
	return len(t.evaluations[0])
}

// NumColumns returns the number of columns of the table.
func (t *EvaluationTable) NumColumns() int {
	return len(t.evaluations)
}

func (t *EvaluationTable) verification() bool {
	return t.tEvaluations != nil
}

// Fragments breaks the table into numFragments disjoint row-range fragments.
// All fragments can be filled independently, e.g. in different goroutines.
//
// Panics if numFragments does not divide the number of rows evenly, if the
// resulting fragment size is smaller than MinFragmentSize, or if the table
// has already been fragmented.
func (t *EvaluationTable) Fragments(numFragments int) []*EvaluationTableFragment {
	if t.fragmented {
		panic("table is already fragmented")
	}
	if t.NumRows()%numFragments != 0 {
		panic(fmt.Sprintf("fragment count %v does not divide table rows %v", numFragments, t.NumRows()))
	}
	fragmentSize := t.NumRows() / numFragments
	if fragmentSize < MinFragmentSize {
		panic(fmt.Sprintf("fragment size must be at least %v, but was %v", MinFragmentSize, fragmentSize))
	}
	t.fragmented = true

	fragments := make([]*EvaluationTableFragment, numFragments)
	for i := range fragments {
		offset := i * fragmentSize

		evaluations := make([][]fr.Element, t.NumColumns())
		for c, column := range t.evaluations {
			evaluations[c] = column[offset : offset+fragmentSize]
		}

		var tEvaluations [][]fr.Element
		var fill *fragmentFill
		if t.verification() {
			tEvaluations = make([][]fr.Element, len(t.tEvaluations))
			for c, column := range t.tEvaluations {
				tEvaluations[c] = column[offset : offset+fragmentSize]
			}
			fill = newFragmentFill(offset, fragmentSize)
			t.fills = append(t.fills, fill)
		}

		fragments[i] = &EvaluationTableFragment{
			offset:       offset,
			evaluations:  evaluations,
			tEvaluations: tEvaluations,
			fill:         fill,
		}
	}

	return fragments
}

// IntoCompositionPoly consumes the table: every column is divided by its
// divisor in evaluation form, the results are summed into a single evaluation
// vector, and the vector is interpolated over the constraint evaluation coset
// into a composition polynomial in coefficient form.
//
// In verification mode, the fill completeness, the individual transition
// constraint degrees and the post-division column degrees are checked first;
// any mismatch is returned as a typed error.
//
// Panics if the table has already been consumed.
func (t *EvaluationTable) IntoCompositionPoly() (CompositionPoly, error) {
	if t.consumed {
		panic("table is already consumed")
	}
	t.consumed = true

	if t.verification() {
		if err := t.validateFill(); err != nil {
			return CompositionPoly{}, err
		}
		if err := t.validateTransitionDegrees(); err != nil {
			return CompositionPoly{}, err
		}
	}

	combined := make([]fr.Element, t.NumRows())
	for i, column := range t.evaluations {
		if t.verification() {
			if err := t.validateColumnDegree(i); err != nil {
				return CompositionPoly{}, err
			}
		}
		accColumn(column, t.divisors[i], t.domain, combined)
	}

	t.domain.InterpolateCe(combined)

	return CompositionPoly{
		coeffs:      poly.Poly{Coeffs: combined},
		traceLength: t.domain.TraceLength(),
	}, nil
}
