package bessel

import (
	"math"

	"github.com/roach88/besselx/pkg/kernel"
)

// reflectI evaluates I over a batch starting at the signed order o using
//
//	I_{-ν}(z) = I_ν(z) + (2/π) sin(πν) K_ν(z)
//
// with the sine taken per element at that element's magnitude. For integer
// magnitudes every sine vanishes and K is never requested.
func (e *Evaluator) reflectI(function string, o order, z complex128, scaling kernel.Scaling, n int) ([]complex128, error) {
	values, err := e.call(function, n, e.kernel.I(z, o.magnitude, scaling, n))
	if err != nil {
		return nil, err
	}
	if !o.negative || o.integer() {
		return values, nil
	}

	k, err := e.call(function, n, e.kernel.K(z, o.magnitude, scaling, n))
	if err != nil {
		return nil, err
	}
	mult := ScalingMultiplier(z, scaling)
	for i := range values {
		s := 2 / math.Pi * math.Sin(math.Pi*o.shifted(i))
		values[i] += complex(s, 0) * mult * k[i]
	}
	return values, nil
}
