// Package poly implements polynomials in coefficient form over the scalar field.
package poly

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Poly is a polynomial with field coefficients,
// stored in ascending degree order.
type Poly struct {
	Coeffs []fr.Element
}

// NewPoly creates a new Poly with N zero coefficients.
func NewPoly(N int) Poly {
	return Poly{
		Coeffs: make([]fr.Element, N),
	}
}

// Len returns the number of coefficients of the Poly.
func (p Poly) Len() int {
	return len(p.Coeffs)
}

// Degree returns the degree of the Poly,
// which is the index of the highest non-zero coefficient.
// Returns 0 for the zero polynomial.
func (p Poly) Degree() int {
	for i := len(p.Coeffs) - 1; i > 0; i-- {
		if !p.Coeffs[i].IsZero() {
			return i
		}
	}
	return 0
}

// Evaluate evaluates the Poly at x using Horner's method.
func (p Poly) Evaluate(x fr.Element) fr.Element {
	var res fr.Element
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		res.Mul(&res, &x)
		res.Add(&res, &p.Coeffs[i])
	}
	return res
}

// Clear clears the Poly.
func (p *Poly) Clear() {
	for i := range p.Coeffs {
		p.Coeffs[i].SetZero()
	}
}
