package poly

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// PowerSeries returns the geometric sequence offset, offset*base, ..., offset*base^(N-1).
func PowerSeries(base, offset fr.Element, N int) []fr.Element {
	res := make([]fr.Element, N)
	res[0].Set(&offset)
	for i := 1; i < N; i++ {
		res[i].Mul(&res[i-1], &base)
	}
	return res
}

// EvaluatePowerSeries evaluates the Poly at every point of the geometric sequence
// offset, offset*base, ..., offset*base^(N-1).
func (p Poly) EvaluatePowerSeries(base, offset fr.Element, N int) []fr.Element {
	res := make([]fr.Element, N)
	x := offset
	for i := 0; i < N; i++ {
		res[i] = p.Evaluate(x)
		x.Mul(&x, &base)
	}
	return res
}
