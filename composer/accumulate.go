package composer

import (
	"math/big"
	"runtime"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/air"
	"github.com/sp301415/ringo-stark/domain"
)

// minChunkSize is the minimum chunk length of the parallel accumulation walks.
const minChunkSize = 128

// accColumn divides a constraint evaluation column by its divisor in
// evaluation form and accumulates the result into result.
//
// For boundary divisors (no exclusion point, (x^a - b)) the division is
// value * z, where z = 1 / (x^a - b). For transition divisors
// ((x^a - b) / (x - e)) it is value * (x - e) * z: the excluded factor is
// multiplied back in.
//
// Panics on unsupported divisor shapes before touching any data.
func accColumn(column []fr.Element, d air.ConstraintDivisor, dom *domain.StarkDomain, result []fr.Element) {
	if len(d.Numerator()) != 1 {
		panic("complex divisors are not yet supported")
	}
	if len(d.Exclude()) > 1 {
		panic("multiple exclusion points are not yet supported")
	}

	domainSize := len(column)
	z := invNumeratorEvaluations(d, domainSize, dom)

	if len(d.Exclude()) == 0 {
		runChunks(domainSize, func(start, end int) {
			var buf fr.Element
			for j := start; j < end; j++ {
				buf.Mul(&column[j], &z[j%len(z)])
				result[j].Add(&result[j], &buf)
			}
		})
		return
	}

	g := dom.Generator()
	offset := dom.Offset()
	e := d.Exclude()[0]
	runChunks(domainSize, func(start, end int) {
		// Each chunk recomputes its starting x by exponentiation, so chunks
		// have no serial dependency on each other.
		var x fr.Element
		x.Exp(g, big.NewInt(int64(start)))
		x.Mul(&x, &offset)

		var t, buf fr.Element
		for j := start; j < end; j++ {
			t.Sub(&x, &e)
			t.Mul(&t, &z[j%len(z)])
			buf.Mul(&column[j], &t)
			result[j].Add(&result[j], &buf)
			x.Mul(&x, &g)
		}
	})
}

// invNumeratorEvaluations computes 1 / (x^a - b) at every point of the
// constraint evaluation domain. The numerator evaluations repeat with period
// domainSize/a across the domain, so only one period is computed; all entries
// are inverted in a single batched pass.
func invNumeratorEvaluations(d air.ConstraintDivisor, domainSize int, dom *domain.StarkDomain) []fr.Element {
	term := d.Numerator()[0]
	a := int64(term.Degree)
	n := domainSize / int(a)

	var ga, offsetA fr.Element
	ga.Exp(dom.Generator(), big.NewInt(a))
	offsetA.Exp(dom.Offset(), big.NewInt(a))

	evaluations := make([]fr.Element, n)
	runChunks(n, func(start, end int) {
		var x fr.Element
		x.Exp(ga, big.NewInt(int64(start)))
		x.Mul(&x, &offsetA)
		for i := start; i < end; i++ {
			evaluations[i].Sub(&x, &term.Constant)
			x.Mul(&x, &ga)
		}
	})

	return fr.BatchInvert(evaluations)
}

// runChunks splits [0, n) into contiguous chunks and runs work over a pool of
// goroutines, one chunk each. Chunks are disjoint, so work may write freely
// within its own range.
func runChunks(n int, work func(start, end int)) {
	chunkSize := (n + runtime.NumCPU() - 1) / runtime.NumCPU()
	if chunkSize < minChunkSize {
		chunkSize = minChunkSize
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		start, end := start, min(start+chunkSize, n)

		wg.Add(1)
		go func() {
			defer wg.Done()
			work(start, end)
		}()
	}
	wg.Wait()
}
