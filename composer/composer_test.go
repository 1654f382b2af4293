package composer_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/sp301415/ringo-stark/air"
	"github.com/sp301415/ringo-stark/composer"
	"github.com/sp301415/ringo-stark/csprng"
	"github.com/sp301415/ringo-stark/domain"
	"github.com/sp301415/ringo-stark/poly"
)

const (
	traceLength = 16
	blowup      = 2
)

// randPoly samples a polynomial of exactly the given degree, padded with
// zero coefficients up to size.
func randPoly(us *csprng.UniformSampler, degree, size int) poly.Poly {
	p := poly.NewPoly(size)
	for i := 0; i < degree; i++ {
		us.SampleFrAssign(&p.Coeffs[i])
	}
	for p.Coeffs[degree].IsZero() {
		us.SampleFrAssign(&p.Coeffs[degree])
	}
	return p
}

// fillTable fills every column of the table with quotient * divisor evaluated
// over the constraint evaluation coset, so that consuming the table recovers
// the sum of the quotients.
func fillTable(table *composer.EvaluationTable, d *domain.StarkDomain, divisors []air.ConstraintDivisor, quotients []poly.Poly, numFragments int) {
	points := poly.PowerSeries(d.Generator(), d.Offset(), d.Size())

	for _, f := range table.Fragments(numFragments) {
		row := make([]fr.Element, f.NumColumns())
		for local := 0; local < f.NumRows(); local++ {
			x := points[f.Offset()+local]
			for c := range divisors {
				div := divisors[c].EvaluateAt(x)
				row[c] = quotients[c].Evaluate(x)
				row[c].Mul(&row[c], &div)
			}
			f.UpdateRow(local, row)
		}
	}
}

func sumCoeffs(quotients []poly.Poly, size int) []fr.Element {
	sum := make([]fr.Element, size)
	for _, q := range quotients {
		for i := range q.Coeffs {
			sum[i].Add(&sum[i], &q.Coeffs[i])
		}
	}
	return sum
}

func TestIntoCompositionPoly(t *testing.T) {
	us := csprng.NewUniformSamplerWithSeed([]byte("composer-test"))
	d := domain.NewStarkDomain(traceLength, blowup)
	R := d.Size()

	t.Run("BoundaryRoundTrip", func(t *testing.T) {
		divisors := []air.ConstraintDivisor{air.NewBoundaryDivisor(traceLength, 0)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)

		comp, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Equal(t, quotients[0].Coeffs, comp.Coefficients())
		assert.Equal(t, R-1, comp.Degree())
		assert.Equal(t, traceLength, comp.TraceLength())
	})

	t.Run("PeriodicBoundaryRoundTrip", func(t *testing.T) {
		// (x^4 - 1): a numerator of degree > 1 with no exclusion point, so
		// the inverse evaluations repeat with period R/4.
		divisors := []air.ConstraintDivisor{air.NewPeriodicBoundaryDivisor(traceLength, 4, 0)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)

		comp, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Equal(t, quotients[0].Coeffs, comp.Coefficients())
	})

	t.Run("TransitionRoundTrip", func(t *testing.T) {
		divisors := []air.ConstraintDivisor{air.NewTransitionDivisor(traceLength)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)

		comp, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Equal(t, quotients[0].Coeffs, comp.Coefficients())
	})

	t.Run("MultipleColumns", func(t *testing.T) {
		divisors := []air.ConstraintDivisor{
			air.NewTransitionDivisor(traceLength),
			air.NewBoundaryDivisor(traceLength, 0),
			air.NewBoundaryDivisor(traceLength, traceLength-1),
		}
		quotients := []poly.Poly{
			randPoly(us, R-1, R),
			randPoly(us, R-1, R),
			randPoly(us, R-1, R),
		}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)

		comp, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Equal(t, sumCoeffs(quotients, R), comp.Coefficients())
	})

	t.Run("Fragmented", func(t *testing.T) {
		// Filling through two fragments must give the same result as one.
		divisors := []air.ConstraintDivisor{air.NewTransitionDivisor(traceLength)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 2)

		comp, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Equal(t, quotients[0].Coeffs, comp.Coefficients())
	})

	t.Run("ConsumedTwice", func(t *testing.T) {
		divisors := []air.ConstraintDivisor{air.NewBoundaryDivisor(traceLength, 0)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)

		_, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Panics(t, func() { table.IntoCompositionPoly() })
	})

	t.Run("EmptyDivisors", func(t *testing.T) {
		assert.Panics(t, func() { composer.NewEvaluationTable(d, nil) })
	})
}

func TestFragments(t *testing.T) {
	d := domain.NewStarkDomain(traceLength, blowup)
	divisors := []air.ConstraintDivisor{air.NewBoundaryDivisor(traceLength, 0)}

	t.Run("Partition", func(t *testing.T) {
		table := composer.NewEvaluationTable(d, divisors)
		fragments := table.Fragments(2)

		assert.Equal(t, 2, len(fragments))
		assert.Equal(t, 0, fragments[0].Offset())
		assert.Equal(t, d.Size()/2, fragments[0].NumRows())
		assert.Equal(t, d.Size()/2, fragments[1].Offset())
		assert.Equal(t, 1, fragments[0].NumColumns())
	})

	t.Run("UnevenCount", func(t *testing.T) {
		table := composer.NewEvaluationTable(d, divisors)
		assert.Panics(t, func() { table.Fragments(3) })
	})

	t.Run("TooSmall", func(t *testing.T) {
		table := composer.NewEvaluationTable(d, divisors)
		assert.Panics(t, func() { table.Fragments(d.Size() / 8) })
	})

	t.Run("AlreadyFragmented", func(t *testing.T) {
		table := composer.NewEvaluationTable(d, divisors)
		table.Fragments(2)
		assert.Panics(t, func() { table.Fragments(2) })
	})

	t.Run("RowLengthMismatch", func(t *testing.T) {
		table := composer.NewEvaluationTable(d, divisors)
		fragment := table.Fragments(1)[0]
		assert.Panics(t, func() { fragment.UpdateRow(0, make([]fr.Element, 2)) })
	})

	t.Run("TransitionEvaluationsWithoutDegreeCheck", func(t *testing.T) {
		table := composer.NewEvaluationTable(d, divisors)
		fragment := table.Fragments(1)[0]
		assert.Panics(t, func() { fragment.UpdateTransitionEvaluations(0, make([]fr.Element, 1)) })
	})
}

func TestUnsupportedDivisors(t *testing.T) {
	us := csprng.NewUniformSamplerWithSeed([]byte("composer-test"))
	d := domain.NewStarkDomain(traceLength, blowup)
	R := d.Size()

	var one fr.Element
	one.SetOne()

	t.Run("MultipleNumeratorTerms", func(t *testing.T) {
		divisors := []air.ConstraintDivisor{air.NewDivisor(
			[]air.DivisorTerm{
				{Degree: 1, Constant: one},
				{Degree: 2, Constant: one},
			},
			nil,
		)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)
		assert.Panics(t, func() { table.IntoCompositionPoly() })
	})

	t.Run("MultipleExclusionPoints", func(t *testing.T) {
		var e0, e1 fr.Element
		e0.SetUint64(2)
		e1.SetUint64(3)

		divisors := []air.ConstraintDivisor{air.NewDivisor(
			[]air.DivisorTerm{{Degree: uint64(traceLength), Constant: one}},
			[]fr.Element{e0, e1},
		)}
		quotients := []poly.Poly{randPoly(us, R-1, R)}

		table := composer.NewEvaluationTable(d, divisors)
		fillTable(table, d, divisors, quotients, 1)
		assert.Panics(t, func() { table.IntoCompositionPoly() })
	})
}

// fillVerificationTable fills a verification mode table like fillTable, and
// additionally writes the evaluations of the given transition constraint
// polynomials.
func fillVerificationTable(table *composer.EvaluationTable, d *domain.StarkDomain, divisors []air.ConstraintDivisor, quotients, transitions []poly.Poly, skipRows int) {
	points := poly.PowerSeries(d.Generator(), d.Offset(), d.Size())

	for _, f := range table.Fragments(1) {
		row := make([]fr.Element, f.NumColumns())
		tRow := make([]fr.Element, len(transitions))
		for local := 0; local < f.NumRows()-skipRows; local++ {
			x := points[f.Offset()+local]
			for c := range divisors {
				div := divisors[c].EvaluateAt(x)
				row[c] = quotients[c].Evaluate(x)
				row[c].Mul(&row[c], &div)
			}
			for c := range transitions {
				tRow[c] = transitions[c].Evaluate(x)
			}
			f.UpdateRow(local, row)
			f.UpdateTransitionEvaluations(local, tRow)
		}
	}
}

func TestDegreeCheck(t *testing.T) {
	us := csprng.NewUniformSamplerWithSeed([]byte("composer-test"))
	d := domain.NewStarkDomain(traceLength, blowup)
	R := d.Size()

	divisors := []air.ConstraintDivisor{air.NewTransitionDivisor(traceLength)}

	t.Run("Valid", func(t *testing.T) {
		quotients := []poly.Poly{randPoly(us, R-1, R)}
		transitions := []poly.Poly{randPoly(us, traceLength-1, R)}

		table := composer.NewEvaluationTableWithDegreeCheck(d, divisors, []int{traceLength - 1})
		fillVerificationTable(table, d, divisors, quotients, transitions, 0)

		comp, err := table.IntoCompositionPoly()
		assert.NoError(t, err)
		assert.Equal(t, quotients[0].Coeffs, comp.Coefficients())
	})

	t.Run("UnfilledRows", func(t *testing.T) {
		quotients := []poly.Poly{randPoly(us, R-1, R)}
		transitions := []poly.Poly{randPoly(us, traceLength-1, R)}

		table := composer.NewEvaluationTableWithDegreeCheck(d, divisors, []int{traceLength - 1})
		fillVerificationTable(table, d, divisors, quotients, transitions, 2)

		_, err := table.IntoCompositionPoly()

		var unfilledErr *composer.UnfilledRowsError
		assert.ErrorAs(t, err, &unfilledErr)
		assert.Equal(t, []int{R - 2, R - 1}, unfilledErr.Rows)
	})

	t.Run("DegreeMismatch", func(t *testing.T) {
		quotients := []poly.Poly{randPoly(us, R-1, R)}
		transitions := []poly.Poly{randPoly(us, 3, R)}

		table := composer.NewEvaluationTableWithDegreeCheck(d, divisors, []int{2})
		fillVerificationTable(table, d, divisors, quotients, transitions, 0)

		_, err := table.IntoCompositionPoly()

		var degreeErr *composer.DegreeError
		assert.ErrorAs(t, err, &degreeErr)
		assert.Equal(t, []int{2}, degreeErr.Expected)
		assert.Equal(t, []int{3}, degreeErr.Actual)
	})

	t.Run("DomainSizeMismatch", func(t *testing.T) {
		// With blowup 4 the table has twice the rows the measured degrees
		// call for.
		dLarge := domain.NewStarkDomain(traceLength, 4)
		RLarge := dLarge.Size()

		quotients := []poly.Poly{randPoly(us, RLarge-1, RLarge)}
		transitions := []poly.Poly{randPoly(us, traceLength-1, RLarge)}

		table := composer.NewEvaluationTableWithDegreeCheck(dLarge, divisors, []int{traceLength - 1})
		fillVerificationTable(table, dLarge, divisors, quotients, transitions, 0)

		_, err := table.IntoCompositionPoly()

		var sizeErr *composer.DomainSizeError
		assert.ErrorAs(t, err, &sizeErr)
		assert.Equal(t, 2*traceLength, sizeErr.Expected)
		assert.Equal(t, RLarge, sizeErr.Actual)
	})

	t.Run("ColumnDegreeMismatch", func(t *testing.T) {
		// A post-division degree below R-1 means the composition coefficients
		// were not degree adjusted correctly.
		quotients := []poly.Poly{randPoly(us, R-2, R)}
		transitions := []poly.Poly{randPoly(us, traceLength-1, R)}

		table := composer.NewEvaluationTableWithDegreeCheck(d, divisors, []int{traceLength - 1})
		fillVerificationTable(table, d, divisors, quotients, transitions, 0)

		_, err := table.IntoCompositionPoly()

		var columnErr *composer.ColumnDegreeError
		assert.ErrorAs(t, err, &columnErr)
		assert.Equal(t, 0, columnErr.Column)
		assert.Equal(t, R-1, columnErr.Expected)
		assert.Equal(t, R-2, columnErr.Actual)
	})
}

func TestRoundTripProperty(t *testing.T) {
	d := domain.NewStarkDomain(traceLength, blowup)
	R := d.Size()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("division and interpolation recover the quotient", prop.ForAll(
		func(seed uint64, step int, transition bool) bool {
			var seedBytes [8]byte
			binary.LittleEndian.PutUint64(seedBytes[:], seed)
			us := csprng.NewUniformSamplerWithSeed(seedBytes[:])

			var divisor air.ConstraintDivisor
			if transition {
				divisor = air.NewTransitionDivisor(traceLength)
			} else {
				divisor = air.NewBoundaryDivisor(traceLength, step)
			}
			divisors := []air.ConstraintDivisor{divisor}
			quotients := []poly.Poly{randPoly(us, R-1, R)}

			table := composer.NewEvaluationTable(d, divisors)
			fillTable(table, d, divisors, quotients, 2)

			comp, err := table.IntoCompositionPoly()
			if err != nil {
				return false
			}

			for i, coeff := range comp.Coefficients() {
				if !coeff.Equal(&quotients[0].Coeffs[i]) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(0, traceLength-1),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestErrors(t *testing.T) {
	t.Run("Messages", func(t *testing.T) {
		var err error = &composer.DegreeError{Expected: []int{2}, Actual: []int{3}}
		assert.Contains(t, err.Error(), "2")
		assert.Contains(t, err.Error(), "3")

		err = &composer.UnfilledRowsError{Rows: []int{7}}
		assert.Contains(t, err.Error(), "7")
	})

	t.Run("NotWrapped", func(t *testing.T) {
		err := &composer.DegreeError{Expected: []int{2}, Actual: []int{3}}
		var sizeErr *composer.DomainSizeError
		assert.False(t, errors.As(err, &sizeErr))
	})
}
