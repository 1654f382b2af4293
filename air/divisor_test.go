package air_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/stretchr/testify/assert"

	"github.com/sp301415/ringo-stark/air"
	"github.com/sp301415/ringo-stark/csprng"
)

const traceLength = 16

func tracePoint(step int) fr.Element {
	g := fft.NewDomain(uint64(traceLength)).Generator

	var point fr.Element
	point.Exp(g, big.NewInt(int64(step)))
	return point
}

func TestTransitionDivisor(t *testing.T) {
	d := air.NewTransitionDivisor(traceLength)

	t.Run("Degree", func(t *testing.T) {
		assert.Equal(t, traceLength-1, d.Degree())
	})

	t.Run("VanishesOnAllButLastStep", func(t *testing.T) {
		for step := 0; step < traceLength-1; step++ {
			v := d.EvaluateAt(tracePoint(step))
			assert.True(t, v.IsZero())
		}
	})

	t.Run("MatchesFactoredForm", func(t *testing.T) {
		// (x^n - 1) / (x - g^(n-1)) at a random point.
		us := csprng.NewUniformSamplerWithSeed([]byte("divisor-test"))
		x := us.SampleFr()

		var one, num, den, expected fr.Element
		one.SetOne()
		num.Exp(x, big.NewInt(traceLength))
		num.Sub(&num, &one)
		lastPoint := tracePoint(traceLength - 1)
		den.Sub(&x, &lastPoint)
		expected.Div(&num, &den)

		assert.Equal(t, expected, d.EvaluateAt(x))
	})
}

func TestBoundaryDivisor(t *testing.T) {
	const step = 5
	d := air.NewBoundaryDivisor(traceLength, step)

	t.Run("Degree", func(t *testing.T) {
		assert.Equal(t, 1, d.Degree())
	})

	t.Run("VanishesOnStep", func(t *testing.T) {
		v := d.EvaluateAt(tracePoint(step))
		assert.True(t, v.IsZero())

		v = d.EvaluateAt(tracePoint(step + 1))
		assert.False(t, v.IsZero())
	})
}

func TestPeriodicBoundaryDivisor(t *testing.T) {
	const (
		numSteps  = 4
		firstStep = 1
	)
	d := air.NewPeriodicBoundaryDivisor(traceLength, numSteps, firstStep)

	t.Run("Degree", func(t *testing.T) {
		assert.Equal(t, numSteps, d.Degree())
	})

	t.Run("VanishesOnPeriodicSteps", func(t *testing.T) {
		period := traceLength / numSteps
		for step := firstStep; step < traceLength; step += period {
			v := d.EvaluateAt(tracePoint(step))
			assert.True(t, v.IsZero())
		}

		v := d.EvaluateAt(tracePoint(firstStep + 1))
		assert.False(t, v.IsZero())
	})

	t.Run("InvalidNumSteps", func(t *testing.T) {
		assert.Panics(t, func() { air.NewPeriodicBoundaryDivisor(traceLength, 3, 0) })
	})
}

func TestNewDivisor(t *testing.T) {
	assert.Panics(t, func() { air.NewDivisor(nil, nil) })
}
