package bessel

import (
	"math"
	"math/cmplx"

	"github.com/roach88/besselx/pkg/kernel"
)

// ScalingMultiplier returns the factor that turns a K-kernel value computed
// in the given scaling mode into a term compatible with an I-kernel value in
// the same mode.
//
// Unscaled values need no correction. Scaled I carries e^{-|Re z|} while
// scaled K carries e^{z}, so a scaled K term must be multiplied by
// e^{-|Re z| - z} before it can be added to a scaled I value.
func ScalingMultiplier(z complex128, scaling kernel.Scaling) complex128 {
	if scaling != kernel.Scaled {
		return 1
	}
	return cmplx.Exp(complex(-math.Abs(real(z)), 0) - z)
}
