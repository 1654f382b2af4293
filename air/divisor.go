// Package air defines the arithmetization surface consumed by the prover:
// constraint divisors, transition constraint degrees, and boundary assertions.
package air

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// DivisorTerm is a single numerator term of a ConstraintDivisor,
// of the form x^Degree - Constant.
type DivisorTerm struct {
	Degree   uint64
	Constant fr.Element
}

// ConstraintDivisor is the vanishing polynomial of a constraint group.
// It is a fraction of the form (x^a - b) / (x - e_0) ... (x - e_k),
// where the numerator vanishes on every point the constraint must hold
// trivially, and the exclusion points remove the positions where it must not.
//
// The current divisor algebra supports a single numerator term and at most
// one exclusion point; the accumulation engine rejects anything else.
type ConstraintDivisor struct {
	numerator []DivisorTerm
	exclude   []fr.Element
}

// NewDivisor creates a new ConstraintDivisor from raw numerator terms and exclusion points.
func NewDivisor(numerator []DivisorTerm, exclude []fr.Element) ConstraintDivisor {
	if len(numerator) == 0 {
		panic("divisor numerator is empty")
	}
	return ConstraintDivisor{
		numerator: numerator,
		exclude:   exclude,
	}
}

// NewTransitionDivisor creates the divisor for transition constraints over a
// trace of the given length: (x^n - 1) / (x - g^(n-1)), where g is the
// generator of the trace domain. Transition constraints hold on every step
// but the last, hence the excluded last point.
func NewTransitionDivisor(traceLength int) ConstraintDivisor {
	g := traceDomainGenerator(traceLength)

	var one fr.Element
	one.SetOne()

	var lastPoint fr.Element
	lastPoint.Exp(g, big.NewInt(int64(traceLength-1)))

	return ConstraintDivisor{
		numerator: []DivisorTerm{{Degree: uint64(traceLength), Constant: one}},
		exclude:   []fr.Element{lastPoint},
	}
}

// NewBoundaryDivisor creates the divisor for boundary constraints asserted at
// a single step: (x - g^step).
func NewBoundaryDivisor(traceLength, step int) ConstraintDivisor {
	g := traceDomainGenerator(traceLength)

	var point fr.Element
	point.Exp(g, big.NewInt(int64(step)))

	return ConstraintDivisor{
		numerator: []DivisorTerm{{Degree: 1, Constant: point}},
	}
}

// NewPeriodicBoundaryDivisor creates the divisor for boundary constraints
// asserted every traceLength/numSteps steps starting at firstStep:
// (x^numSteps - g^(numSteps*firstStep)).
func NewPeriodicBoundaryDivisor(traceLength, numSteps, firstStep int) ConstraintDivisor {
	if traceLength%numSteps != 0 {
		panic("numSteps does not divide trace length")
	}
	g := traceDomainGenerator(traceLength)

	var constant fr.Element
	constant.Exp(g, big.NewInt(int64(numSteps*firstStep)))

	return ConstraintDivisor{
		numerator: []DivisorTerm{{Degree: uint64(numSteps), Constant: constant}},
	}
}

// Numerator returns the numerator terms of the divisor.
func (d ConstraintDivisor) Numerator() []DivisorTerm {
	return d.numerator
}

// Exclude returns the exclusion points of the divisor.
func (d ConstraintDivisor) Exclude() []fr.Element {
	return d.exclude
}

// Degree returns the degree of the divisor polynomial.
func (d ConstraintDivisor) Degree() int {
	degree := 0
	for _, term := range d.numerator {
		degree += int(term.Degree)
	}
	return degree - len(d.exclude)
}

// EvaluateAt evaluates the divisor at x.
func (d ConstraintDivisor) EvaluateAt(x fr.Element) fr.Element {
	var res fr.Element
	res.SetOne()

	var buf fr.Element
	for _, term := range d.numerator {
		buf.Exp(x, big.NewInt(int64(term.Degree)))
		buf.Sub(&buf, &term.Constant)
		res.Mul(&res, &buf)
	}

	for _, e := range d.exclude {
		buf.Sub(&x, &e)
		buf.Inverse(&buf)
		res.Mul(&res, &buf)
	}

	return res
}

// traceDomainGenerator returns the generator of the multiplicative subgroup
// of order traceLength.
func traceDomainGenerator(traceLength int) fr.Element {
	return fft.NewDomain(uint64(traceLength)).Generator
}
