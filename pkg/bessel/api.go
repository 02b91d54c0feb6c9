package bessel

import (
	"sync/atomic"

	"github.com/roach88/besselx/pkg/kernel/series"
)

var defaultEvaluator atomic.Pointer[Evaluator]

func init() {
	defaultEvaluator.Store(New(series.New(series.DefaultConfig())))
}

// Default returns the evaluator used by the package-level functions: the
// series backend with default settings and a LogSink.
func Default() *Evaluator {
	return defaultEvaluator.Load()
}

// SetDefault replaces the evaluator used by the package-level functions.
// A nil e restores the built-in default.
func SetDefault(e *Evaluator) {
	if e == nil {
		e = New(series.New(series.DefaultConfig()))
	}
	defaultEvaluator.Store(e)
}

// Evaluate calls Default().Evaluate.
func Evaluate(req Request) ([]complex128, error) { return Default().Evaluate(req) }

// Iv returns I_ν(z) from the default evaluator.
func Iv(nu float64, z complex128) (complex128, error) { return Default().Iv(nu, z) }

// Ive returns I_ν(z)·e^{-|Re z|} from the default evaluator.
func Ive(nu float64, z complex128) (complex128, error) { return Default().Ive(nu, z) }

// IvVec returns I_{ν±i}(z) for i in [0, n) from the default evaluator.
func IvVec(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().IvVec(nu, z, n)
}

// IveVec is the scaled form of IvVec.
func IveVec(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().IveVec(nu, z, n)
}

// IvReal returns the real part of I_ν(x) from the default evaluator.
func IvReal(nu, x float64) (float64, error) { return Default().IvReal(nu, x) }

// IveReal is the scaled form of IvReal.
func IveReal(nu, x float64) (float64, error) { return Default().IveReal(nu, x) }

// IvRealVec is the batched form of IvReal.
func IvRealVec(nu, x float64, n int) ([]float64, error) {
	return Default().IvRealVec(nu, x, n)
}

// IveRealVec is the scaled form of IvRealVec.
func IveRealVec(nu, x float64, n int) ([]float64, error) {
	return Default().IveRealVec(nu, x, n)
}

// Kv returns K_ν(z) from the default evaluator.
func Kv(nu float64, z complex128) (complex128, error) { return Default().Kv(nu, z) }

// Kve returns K_ν(z)·e^{z} from the default evaluator.
func Kve(nu float64, z complex128) (complex128, error) { return Default().Kve(nu, z) }

// KvVec returns K_{ν±i}(z) for i in [0, n) from the default evaluator.
func KvVec(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().KvVec(nu, z, n)
}

// KveVec is the scaled form of KvVec.
func KveVec(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().KveVec(nu, z, n)
}

// Hankel1 returns H1_{ν±i}(z) for i in [0, n) from the default evaluator.
func Hankel1(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().Hankel1(nu, z, n)
}

// Hankel1e returns Hankel1 scaled by e^{-iz}.
func Hankel1e(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().Hankel1e(nu, z, n)
}

// Hankel2 returns H2_{ν±i}(z) for i in [0, n) from the default evaluator.
func Hankel2(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().Hankel2(nu, z, n)
}

// Hankel2e returns Hankel2 scaled by e^{iz}.
func Hankel2e(nu float64, z complex128, n int) ([]complex128, error) {
	return Default().Hankel2e(nu, z, n)
}
