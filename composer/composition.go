package composer

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/poly"
)

// CompositionPoly is the single polynomial combining all divided constraint
// evaluations. Its low degree is what the subsequent low-degree proof
// attests to.
type CompositionPoly struct {
	coeffs      poly.Poly
	traceLength int
}

// Coefficients returns the coefficients of the composition polynomial in
// ascending degree order.
func (p CompositionPoly) Coefficients() []fr.Element {
	return p.coeffs.Coeffs
}

// Degree returns the degree of the composition polynomial.
func (p CompositionPoly) Degree() int {
	return p.coeffs.Degree()
}

// TraceLength returns the length of the execution trace the polynomial was
// composed for.
func (p CompositionPoly) TraceLength() int {
	return p.traceLength
}

// EvaluateAt evaluates the composition polynomial at x.
func (p CompositionPoly) EvaluateAt(x fr.Element) fr.Element {
	return p.coeffs.Evaluate(x)
}
