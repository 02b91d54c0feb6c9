package bessel

import (
	"math"
	"math/cmplx"

	"github.com/roach88/besselx/pkg/kernel"
)

// reflectH evaluates H1 or H2 over a batch starting at the signed order o.
// Negative orders are a phase rotation of the positive ones:
//
//	H1_{-ν}(z) = e^{iπν} H1_ν(z),  H2_{-ν}(z) = e^{-iπν} H2_ν(z)
func (e *Evaluator) reflectH(function string, o order, z complex128, scaling kernel.Scaling, kind kernel.HankelKind, n int) ([]complex128, error) {
	values, err := e.call(function, n, e.kernel.H(z, o.magnitude, scaling, kind, n))
	if err != nil {
		return nil, err
	}
	if !o.negative {
		return values, nil
	}

	sign := 1.0
	if kind == kernel.HankelSecond {
		sign = -1
	}
	for i := range values {
		values[i] *= cmplx.Exp(complex(0, sign*math.Pi*o.shifted(i)))
	}
	return values, nil
}
