// Package domain implements the evaluation domains of the prover:
// the trace domain, a multiplicative subgroup of order equal to the trace
// length, and the constraint evaluation domain, a larger coset shifted off
// the subgroup by a domain offset.
package domain

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/sp301415/ringo-stark/num"
)

// StarkDomain holds the evaluation domains for a single proof.
type StarkDomain struct {
	traceLength int
	blowup      int

	traceDomain *fft.Domain
	ceDomain    *fft.Domain
}

// NewStarkDomain creates a new StarkDomain for the given trace length and
// blowup factor, using the field's multiplicative generator as the domain offset.
//
// Panics if traceLength or blowup is not a power of two, or if blowup < 2.
func NewStarkDomain(traceLength, blowup int) *StarkDomain {
	ceDomain := fft.NewDomain(uint64(checkSize(traceLength, blowup)))
	return &StarkDomain{
		traceLength: traceLength,
		blowup:      blowup,

		traceDomain: fft.NewDomain(uint64(traceLength)),
		ceDomain:    ceDomain,
	}
}

// NewStarkDomainWithOffset creates a new StarkDomain with a caller supplied
// domain offset.
//
// Panics if traceLength or blowup is not a power of two, if blowup < 2,
// or if offset is zero.
func NewStarkDomainWithOffset(traceLength, blowup int, offset fr.Element) *StarkDomain {
	if offset.IsZero() {
		panic("domain offset is zero")
	}
	ceDomain := fft.NewDomain(uint64(checkSize(traceLength, blowup)), fft.WithShift(offset))
	return &StarkDomain{
		traceLength: traceLength,
		blowup:      blowup,

		traceDomain: fft.NewDomain(uint64(traceLength)),
		ceDomain:    ceDomain,
	}
}

func checkSize(traceLength, blowup int) int {
	if !num.IsPowerOfTwo(traceLength) {
		panic("trace length is not a power of two")
	}
	if !num.IsPowerOfTwo(blowup) || blowup < 2 {
		panic("blowup is not a power of two at least 2")
	}
	return traceLength * blowup
}

// TraceLength returns the length of the original execution trace.
func (d *StarkDomain) TraceLength() int {
	return d.traceLength
}

// Size returns the size of the constraint evaluation domain.
func (d *StarkDomain) Size() int {
	return d.traceLength * d.blowup
}

// Blowup returns the blowup factor of the constraint evaluation domain
// over the trace domain.
func (d *StarkDomain) Blowup() int {
	return d.blowup
}

// Offset returns the coset offset of the constraint evaluation domain.
func (d *StarkDomain) Offset() fr.Element {
	return d.ceDomain.FrMultiplicativeGen
}

// Generator returns the generator of the constraint evaluation domain subgroup.
func (d *StarkDomain) Generator() fr.Element {
	return d.ceDomain.Generator
}

// TraceGenerator returns the generator of the trace domain.
func (d *StarkDomain) TraceGenerator() fr.Element {
	return d.traceDomain.Generator
}

// InterpolateTrace transforms evaluations over the trace domain into
// coefficient form, in place. Evaluations are in natural order, and so are
// the resulting coefficients.
func (d *StarkDomain) InterpolateTrace(values []fr.Element) {
	d.traceDomain.FFTInverse(values, fft.DIF)
	fft.BitReverse(values)
}

// InterpolateCe transforms evaluations over the constraint evaluation coset
// into coefficient form, in place. Evaluations are in natural order, and so
// are the resulting coefficients.
func (d *StarkDomain) InterpolateCe(values []fr.Element) {
	d.ceDomain.FFTInverse(values, fft.DIF, fft.OnCoset())
	fft.BitReverse(values)
}

// InterpolateCeSubgroup transforms evaluations over the constraint evaluation
// domain into coefficient form in place, treating the domain as the plain
// subgroup rather than the coset. The coset shift substitutes
// x -> offset * x, which preserves polynomial degrees; this is what the
// degree verification path uses.
func (d *StarkDomain) InterpolateCeSubgroup(values []fr.Element) {
	d.ceDomain.FFTInverse(values, fft.DIF)
	fft.BitReverse(values)
}

// EvaluateCe transforms coefficients into evaluations over the constraint
// evaluation coset, in place. Coefficients are in natural order, and so are
// the resulting evaluations.
func (d *StarkDomain) EvaluateCe(coeffs []fr.Element) {
	d.ceDomain.FFT(coeffs, fft.DIF, fft.OnCoset())
	fft.BitReverse(coeffs)
}
