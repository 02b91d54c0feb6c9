// Package series is a pure-Go kernel backend built on ascending power series.
//
// It is meant as a dependable reference for small and moderate |z|: every
// order of a batch is summed independently, so there is no recurrence error
// to propagate, and the loss of accuracy caused by cancellation between terms
// is measured and reported through the usual kernel status codes instead of
// being silently returned.
//
// Backend is a value type with no mutable state and is safe for concurrent use.
package series

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/besselx/pkg/kernel"
)

// Config tunes the series backend.
type Config struct {
	// MaxTerms bounds the number of series terms summed per component.
	MaxTerms int
	// Tolerance is the relative size of the last term at which a series
	// is considered converged.
	Tolerance float64
	// MaxModulus is the largest |z| the backend attempts. Beyond it the
	// series would need more range than float64 offers and the call reports
	// StatusSeverePrecisionLoss.
	MaxModulus float64
	// LossThreshold is the cancellation ratio above which a result is
	// reported with StatusPrecisionLoss.
	LossThreshold float64
	// SevereLossThreshold is the cancellation ratio above which a result is
	// discarded and reported with StatusSeverePrecisionLoss.
	SevereLossThreshold float64
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		MaxTerms:            1000,
		Tolerance:           1e-17,
		MaxModulus:          100,
		LossThreshold:       1e5,
		SevereLossThreshold: 1e13,
	}
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	if c.MaxTerms < 1 {
		return fmt.Errorf("max_terms must be at least 1, got %d", c.MaxTerms)
	}
	if !(c.Tolerance > 0) || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in (0, 1), got %g", c.Tolerance)
	}
	if !(c.MaxModulus > 0) {
		return fmt.Errorf("max_modulus must be positive, got %g", c.MaxModulus)
	}
	if !(c.LossThreshold >= 1) {
		return fmt.Errorf("loss_threshold must be at least 1, got %g", c.LossThreshold)
	}
	if !(c.SevereLossThreshold > c.LossThreshold) {
		return fmt.Errorf("severe_loss_threshold (%g) must exceed loss_threshold (%g)",
			c.SevereLossThreshold, c.LossThreshold)
	}
	return nil
}

// Backend implements kernel.Kernel.
type Backend struct {
	cfg Config
}

var _ kernel.Kernel = Backend{}

// New returns a backend using cfg. Zero fields fall back to DefaultConfig.
func New(cfg Config) Backend {
	def := DefaultConfig()
	if cfg.MaxTerms == 0 {
		cfg.MaxTerms = def.MaxTerms
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MaxModulus == 0 {
		cfg.MaxModulus = def.MaxModulus
	}
	if cfg.LossThreshold == 0 {
		cfg.LossThreshold = def.LossThreshold
	}
	if cfg.SevereLossThreshold == 0 {
		cfg.SevereLossThreshold = def.SevereLossThreshold
	}
	return Backend{cfg: cfg}
}

// Config returns the effective configuration.
func (b Backend) Config() Config {
	return b.cfg
}

// component is one evaluated order before status classification.
type component struct {
	value     complex128
	ratio     float64 // cancellation ratio, >= 1 when meaningful
	converged bool
}

// I evaluates I_{nu+i}(z), i in [0, n).
func (b Backend) I(z complex128, nu float64, scaling kernel.Scaling, n int) kernel.Outcome {
	if st, bad := b.checkArgs(z, nu, scaling, n, true); bad {
		return failed(n, st)
	}
	comps := make([]component, n)
	for i := range comps {
		comps[i] = b.ascending(nu+float64(i), z, 1)
	}
	var factor complex128 = 1
	if scaling == kernel.Scaled {
		factor = complex(math.Exp(-math.Abs(real(z))), 0)
	}
	return b.finish(z, comps, factor)
}

// K evaluates K_{nu+i}(z), i in [0, n).
func (b Backend) K(z complex128, nu float64, scaling kernel.Scaling, n int) kernel.Outcome {
	if st, bad := b.checkArgs(z, nu, scaling, n, false); bad {
		return failed(n, st)
	}
	comps := make([]component, n)
	for i := range comps {
		comps[i] = b.modifiedK(nu+float64(i), z)
	}
	var factor complex128 = 1
	if scaling == kernel.Scaled {
		factor = cmplx.Exp(z)
	}
	return b.finish(z, comps, factor)
}

// H evaluates H1_{nu+i}(z) or H2_{nu+i}(z), i in [0, n).
func (b Backend) H(z complex128, nu float64, scaling kernel.Scaling, kind kernel.HankelKind, n int) kernel.Outcome {
	if !kind.Valid() {
		return failed(n, kernel.StatusInputError)
	}
	if st, bad := b.checkArgs(z, nu, scaling, n, false); bad {
		return failed(n, st)
	}
	sign := 1.0
	if kind == kernel.HankelSecond {
		sign = -1
	}
	comps := make([]component, n)
	for i := range comps {
		comps[i] = b.hankel(nu+float64(i), z, sign)
	}
	var factor complex128 = 1
	if scaling == kernel.Scaled {
		// e^{-iz} for H1, e^{iz} for H2
		factor = cmplx.Exp(complex(0, -sign) * z)
	}
	return b.finish(z, comps, factor)
}

// checkArgs applies the argument rules shared by all three primitives.
func (b Backend) checkArgs(z complex128, nu float64, scaling kernel.Scaling, n int, zeroOK bool) (kernel.Status, bool) {
	switch {
	case n < 1, !scaling.Valid(), nu < 0, math.IsNaN(nu), math.IsInf(nu, 0):
		return kernel.StatusInputError, true
	case cmplx.IsNaN(z), cmplx.IsInf(z):
		return kernel.StatusInputError, true
	case z == 0 && !zeroOK:
		return kernel.StatusInputError, true
	case cmplx.Abs(z) > b.cfg.MaxModulus:
		return kernel.StatusSeverePrecisionLoss, true
	}
	return kernel.StatusNormal, false
}

// finish applies the scaling factor and classifies the batch.
func (b Backend) finish(z complex128, comps []component, factor complex128) kernel.Outcome {
	out := kernel.Outcome{Values: make([]complex128, len(comps))}
	worst := 1.0
	overflow := false
	for i, c := range comps {
		if !c.converged {
			return failed(len(comps), kernel.StatusNonConvergence)
		}
		v := c.value
		if factor != 1 && !cmplx.IsInf(v) {
			v *= factor
		}
		out.Values[i] = v
		if cmplx.IsInf(v) || cmplx.IsNaN(v) {
			overflow = true
			continue
		}
		if c.ratio > worst {
			worst = c.ratio
		}
		// A zero whose parts cancelled exactly has ratio +Inf and is a loss
		// of significance, not an underflow.
		if v == 0 && z != 0 && !math.IsInf(c.ratio, 1) {
			out.Underflow++
		}
	}

	switch {
	case overflow:
		out.Status = kernel.StatusOverflow
	case worst > b.cfg.SevereLossThreshold:
		return failed(len(comps), kernel.StatusSeverePrecisionLoss)
	case worst > b.cfg.LossThreshold:
		out.Status = kernel.StatusPrecisionLoss
	}
	return out
}

// failed builds an outcome for a call that produced no usable values.
func failed(n int, st kernel.Status) kernel.Outcome {
	if n < 0 {
		n = 0
	}
	out := kernel.Outcome{Values: make([]complex128, n), Status: st}
	if st != kernel.StatusInputError {
		for i := range out.Values {
			out.Values[i] = cmplx.NaN()
		}
	}
	return out
}
