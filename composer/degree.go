package composer

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/num"
	"github.com/sp301415/ringo-stark/poly"
)

// validateFill checks that every row handed out through fragments has been
// written back. Rows never handed out (the table was consumed without
// fragmenting) cannot be checked and are skipped.
func (t *EvaluationTable) validateFill() error {
	var unfilled []int
	for _, fill := range t.fills {
		for i, ok := fill.written.NextClear(0); ok && i < uint(fill.written.Len()); i, ok = fill.written.NextClear(i + 1) {
			unfilled = append(unfilled, fill.offset+int(i))
		}
	}

	if len(unfilled) != 0 {
		return &UnfilledRowsError{Rows: unfilled}
	}
	return nil
}

// validateTransitionDegrees interpolates every individual transition
// constraint column, measures its degree, and compares the measured degrees
// against the declared ones. It also recomputes the domain size the measured
// degrees call for and compares it against the actual row count.
func (t *EvaluationTable) validateTransitionDegrees() error {
	actualDegrees := make([]int, len(t.tEvaluations))
	maxDegree := 0
	for i, evaluations := range t.tEvaluations {
		p := poly.Poly{Coeffs: make([]fr.Element, len(evaluations))}
		copy(p.Coeffs, evaluations)
		// The coset shift substitutes x -> offset*x, which preserves degree,
		// so interpolation over the plain subgroup is enough here.
		t.domain.InterpolateCeSubgroup(p.Coeffs)

		actualDegrees[i] = p.Degree()
		maxDegree = max(maxDegree, actualDegrees[i])
	}

	mismatch := false
	for i := range actualDegrees {
		if actualDegrees[i] != t.tExpectedDegrees[i] {
			mismatch = true
			break
		}
	}
	if mismatch {
		return &DegreeError{
			Expected: t.tExpectedDegrees,
			Actual:   actualDegrees,
		}
	}

	expectedDomainSize := num.NextPowerOfTwo(max(maxDegree, t.domain.TraceLength()+1))
	if expectedDomainSize != t.NumRows() {
		return &DomainSizeError{
			Expected: expectedDomainSize,
			Actual:   t.NumRows(),
		}
	}

	return nil
}

// validateColumnDegree checks that the post-division degree of column i is
// exactly NumRows()-1, the degree the composition coefficients target.
func (t *EvaluationTable) validateColumnDegree(i int) error {
	column := t.evaluations[i]
	divisor := t.divisors[i]

	points := poly.PowerSeries(t.domain.Generator(), t.domain.Offset(), len(column))

	quotient := poly.Poly{Coeffs: make([]fr.Element, len(column))}
	var div fr.Element
	for j := range column {
		div = divisor.EvaluateAt(points[j])
		div.Inverse(&div)
		quotient.Coeffs[j].Mul(&column[j], &div)
	}
	t.domain.InterpolateCe(quotient.Coeffs)

	if degree := quotient.Degree(); degree != t.NumRows()-1 {
		return &ColumnDegreeError{
			Column:   i,
			Expected: t.NumRows() - 1,
			Actual:   degree,
		}
	}
	return nil
}
