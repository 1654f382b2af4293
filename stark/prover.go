// Package stark orchestrates the constraint evaluation and composition phase
// of the prover: the execution trace is extended over the constraint
// evaluation domain, constraints are evaluated row by row into an evaluation
// table through parallel fragments, and the table is reduced into a
// composition polynomial.
package stark

import (
	"encoding/binary"
	"math/big"
	"runtime"
	"sort"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sp301415/ringo-stark/air"
	"github.com/sp301415/ringo-stark/composer"
	"github.com/sp301415/ringo-stark/csprng"
	"github.com/sp301415/ringo-stark/domain"
	"github.com/sp301415/ringo-stark/logger"
	"github.com/sp301415/ringo-stark/num"
	"github.com/sp301415/ringo-stark/trace"
)

// ProverOptions configures a Prover.
type ProverOptions struct {
	// Blowup is the ratio between the constraint evaluation domain and the
	// trace length. If zero, the smallest power of two covering the maximum
	// transition constraint degree is used (at least 2).
	Blowup int
	// NumFragments is the number of table fragments filled in parallel.
	// If zero, a power of two matching runtime.NumCPU() is used, capped so
	// fragments stay at least composer.MinFragmentSize rows.
	NumFragments int
	// Executor schedules the fragment fill jobs.
	// If nil, a WorkerPoolExecutor is used.
	Executor Executor
	// DegreeCheck enables verification mode: individual transition constraint
	// evaluations are kept and their interpolated degrees checked against the
	// declared ones. Not for production proving paths.
	DegreeCheck bool
	// CoinSeed seeds the public coin the composition coefficients are drawn
	// from. May be nil.
	CoinSeed []byte
}

// Prover builds composition polynomials for a fixed Air.
type Prover struct {
	air     air.Air
	degrees []int
	opts    ProverOptions
}

// NewProver creates a new Prover for the given Air.
//
// Panics if the Air declares no transition constraints, or declares a
// constraint of degree less than 1.
func NewProver(a air.Air, opts ProverOptions) *Prover {
	degrees := a.TransitionDegrees()
	if len(degrees) == 0 {
		panic("air declares no transition constraints")
	}

	maxDegree := 0
	for _, d := range degrees {
		if d < 1 {
			panic("transition constraint degree is less than 1")
		}
		maxDegree = max(maxDegree, d)
	}

	if opts.Blowup == 0 {
		opts.Blowup = max(2, num.NextPowerOfTwo(maxDegree))
	}
	if opts.Executor == nil {
		opts.Executor = WorkerPoolExecutor{}
	}

	return &Prover{
		air:     a,
		degrees: degrees,
		opts:    opts,
	}
}

// boundaryGroup is a set of assertions against the same trace step.
// They share the divisor (x - g^step) and are merged into one table column.
type boundaryGroup struct {
	step       int
	assertions []air.Assertion
}

// fillContext is the read-only state shared by all fragment fill jobs.
type fillContext struct {
	lde    *trace.TraceLDE
	domain *domain.StarkDomain
	groups []boundaryGroup

	// Composition coefficient pairs (alpha, beta): each constraint
	// contributes (alpha + beta*x^adj) * evaluation, where adj raises the
	// post-division degree of every column to exactly domain.Size()-1.
	tCoeffs [][2]fr.Element
	bCoeffs [][][2]fr.Element

	adjs    []int
	tAdjIdx []int
	bAdjIdx int
}

// BuildCompositionPoly runs the constraint evaluation and composition phase
// over the given execution trace and returns the composition polynomial.
//
// A typed error is returned only in verification mode (DegreeCheck), when a
// measured constraint degree contradicts the arithmetization.
func (p *Prover) BuildCompositionPoly(tr *trace.ExecutionTrace) (composer.CompositionPoly, error) {
	log := logger.Logger().With().Str("component", "prover").Logger()
	start := time.Now()

	if tr.Width() != p.air.TraceWidth() {
		panic("trace width does not match air")
	}

	n := tr.Length()
	d := domain.NewStarkDomain(n, p.opts.Blowup)

	lde := tr.Extend(d)
	log.Debug().
		Int("traceLength", n).
		Int("ceDomainSize", d.Size()).
		Dur("took", time.Since(start)).
		Msg("trace extended")

	groups := p.groupAssertions(n)

	divisors := make([]air.ConstraintDivisor, 1+len(groups))
	divisors[0] = air.NewTransitionDivisor(n)
	for i, group := range groups {
		divisors[1+i] = air.NewBoundaryDivisor(n, group.step)
	}

	ctx := p.newFillContext(lde, d, groups)

	var table *composer.EvaluationTable
	if p.opts.DegreeCheck {
		expectedDegrees := make([]int, len(p.degrees))
		for j, deg := range p.degrees {
			expectedDegrees[j] = deg * (n - 1)
		}
		table = composer.NewEvaluationTableWithDegreeCheck(d, divisors, expectedDegrees)
	} else {
		table = composer.NewEvaluationTable(d, divisors)
	}

	numFragments := p.opts.NumFragments
	if numFragments == 0 {
		numFragments = defaultNumFragments(d.Size())
	}

	fillStart := time.Now()
	fragments := table.Fragments(numFragments)
	jobs := make([]func(), len(fragments))
	for i, fragment := range fragments {
		fragment := fragment
		jobs[i] = func() {
			p.fillFragment(fragment, ctx)
		}
	}
	p.opts.Executor.Run(jobs)
	log.Debug().
		Int("numFragments", numFragments).
		Dur("took", time.Since(fillStart)).
		Msg("evaluation table filled")

	comp, err := table.IntoCompositionPoly()
	if err != nil {
		return composer.CompositionPoly{}, err
	}

	log.Info().
		Int("degree", comp.Degree()).
		Dur("took", time.Since(start)).
		Msg("composition polynomial built")

	return comp, nil
}

// groupAssertions validates the boundary assertions of the Air and groups
// them by asserted step, in ascending step order.
//
// Panics if an assertion addresses a cell outside the trace.
func (p *Prover) groupAssertions(traceLength int) []boundaryGroup {
	groupMap := make(map[int][]air.Assertion)
	for _, assertion := range p.air.Assertions() {
		if assertion.Column < 0 || assertion.Column >= p.air.TraceWidth() {
			panic("assertion column out of bounds")
		}
		if assertion.Step < 0 || assertion.Step >= traceLength {
			panic("assertion step out of bounds")
		}
		groupMap[assertion.Step] = append(groupMap[assertion.Step], assertion)
	}

	steps := make([]int, 0, len(groupMap))
	for step := range groupMap {
		steps = append(steps, step)
	}
	sort.Ints(steps)

	groups := make([]boundaryGroup, len(steps))
	for i, step := range steps {
		groups[i] = boundaryGroup{
			step:       step,
			assertions: groupMap[step],
		}
	}
	return groups
}

// newFillContext draws the composition coefficients from the public coin and
// precomputes the degree adjustment exponents.
func (p *Prover) newFillContext(lde *trace.TraceLDE, d *domain.StarkDomain, groups []boundaryGroup) *fillContext {
	coin := p.publicCoin(groups)

	tCoeffs := make([][2]fr.Element, len(p.degrees))
	for j := range tCoeffs {
		coin.SampleFrAssign(&tCoeffs[j][0])
		coin.SampleFrAssign(&tCoeffs[j][1])
	}

	bCoeffs := make([][][2]fr.Element, len(groups))
	for i, group := range groups {
		bCoeffs[i] = make([][2]fr.Element, len(group.assertions))
		for j := range bCoeffs[i] {
			coin.SampleFrAssign(&bCoeffs[i][j][0])
			coin.SampleFrAssign(&bCoeffs[i][j][1])
		}
	}

	// Post-division degree of a degree-deg transition constraint is
	// deg*(n-1) - (n-1); of a boundary constraint, (n-1) - 1. The adjustment
	// exponents lift both to exactly R-1.
	n := d.TraceLength()
	R := d.Size()

	adjIdx := make(map[int]int)
	var adjs []int
	index := func(adj int) int {
		if i, ok := adjIdx[adj]; ok {
			return i
		}
		adjIdx[adj] = len(adjs)
		adjs = append(adjs, adj)
		return len(adjs) - 1
	}

	tAdjIdx := make([]int, len(p.degrees))
	for j, deg := range p.degrees {
		tAdjIdx[j] = index(R - 1 - (deg-1)*(n-1))
	}
	bAdjIdx := index(R - n + 1)

	return &fillContext{
		lde:    lde,
		domain: d,
		groups: groups,

		tCoeffs: tCoeffs,
		bCoeffs: bCoeffs,

		adjs:    adjs,
		tAdjIdx: tAdjIdx,
		bAdjIdx: bAdjIdx,
	}
}

// publicCoin builds the sampler the composition coefficients are drawn from,
// seeded with the coin seed and bound to the public boundary assertions.
func (p *Prover) publicCoin(groups []boundaryGroup) *csprng.UniformSampler {
	coin := csprng.NewUniformSamplerWithSeed(p.opts.CoinSeed)

	var buf [8]byte
	for _, group := range groups {
		for _, assertion := range group.assertions {
			binary.LittleEndian.PutUint64(buf[:], uint64(assertion.Column))
			coin.Write(buf[:])
			binary.LittleEndian.PutUint64(buf[:], uint64(assertion.Step))
			coin.Write(buf[:])

			valueBytes := assertion.Value.Bytes()
			coin.Write(valueBytes[:])
		}
	}
	coin.Finalize()

	return coin
}

// fillFragment evaluates all constraints over the rows of one fragment.
func (p *Prover) fillFragment(f *composer.EvaluationTableFragment, ctx *fillContext) {
	frame := air.NewEvaluationFrame(p.air.TraceWidth())
	tValues := make([]fr.Element, len(p.degrees))
	row := make([]fr.Element, f.NumColumns())
	powers := make([]fr.Element, len(ctx.adjs))

	g := ctx.domain.Generator()
	offset := ctx.domain.Offset()

	// x is walked incrementally within the fragment; the starting point is
	// recomputed from the fragment offset, so fragments stay independent.
	var x fr.Element
	x.Exp(g, big.NewInt(int64(f.Offset())))
	x.Mul(&x, &offset)

	var term, acc, ldeValue fr.Element
	for local := 0; local < f.NumRows(); local++ {
		r := f.Offset() + local

		ctx.lde.ReadFrame(r, frame)
		for j := range tValues {
			tValues[j].SetZero()
		}
		p.air.EvaluateTransition(frame, tValues)

		for k, adj := range ctx.adjs {
			powers[k].Exp(x, big.NewInt(int64(adj)))
		}

		acc.SetZero()
		for j := range tValues {
			term.Mul(&ctx.tCoeffs[j][1], &powers[ctx.tAdjIdx[j]])
			term.Add(&term, &ctx.tCoeffs[j][0])
			term.Mul(&term, &tValues[j])
			acc.Add(&acc, &term)
		}
		row[0].Set(&acc)

		for gi, group := range ctx.groups {
			acc.SetZero()
			for ai, assertion := range group.assertions {
				ldeValue = ctx.lde.Get(assertion.Column, r)
				ldeValue.Sub(&ldeValue, &assertion.Value)

				term.Mul(&ctx.bCoeffs[gi][ai][1], &powers[ctx.bAdjIdx])
				term.Add(&term, &ctx.bCoeffs[gi][ai][0])
				term.Mul(&term, &ldeValue)
				acc.Add(&acc, &term)
			}
			row[1+gi].Set(&acc)
		}

		f.UpdateRow(local, row)
		if p.opts.DegreeCheck {
			f.UpdateTransitionEvaluations(local, tValues)
		}

		x.Mul(&x, &g)
	}
}

// defaultNumFragments returns the largest power-of-two fragment count not
// exceeding runtime.NumCPU() that keeps fragments at MinFragmentSize rows.
func defaultNumFragments(domainSize int) int {
	k := 1
	for 2*k <= runtime.NumCPU() && domainSize/(2*k) >= composer.MinFragmentSize {
		k <<= 1
	}
	return k
}
