package bessel

import (
	"github.com/roach88/besselx/pkg/kernel"
)

// Evaluator extends a non-negative-order kernel to arbitrary real orders.
type Evaluator struct {
	kernel kernel.Kernel
	sink   Sink
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSink routes kernel warnings to s. A nil sink discards them.
func WithSink(s Sink) Option {
	return func(e *Evaluator) {
		if s == nil {
			s = Discard
		}
		e.sink = s
	}
}

// New returns an evaluator over k. Warnings go to a LogSink unless
// WithSink says otherwise.
func New(k kernel.Kernel, opts ...Option) *Evaluator {
	e := &Evaluator{kernel: k, sink: LogSink{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kernel returns the evaluator's kernel.
func (e *Evaluator) Kernel() kernel.Kernel { return e.kernel }

// Sink returns the evaluator's warning sink.
func (e *Evaluator) Sink() Sink { return e.sink }

// Evaluate validates req and computes its n values.
//
// Element i of the result is the function at order sign(ν)·(|ν|+i).
// Recoverable kernel anomalies are reported to the sink; a non-nil error
// is always an *Error and comes with nil values.
func (e *Evaluator) Evaluate(req Request) ([]complex128, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fn := req.FunctionName()
	o := normalize(req.Nu)

	switch req.Family {
	case FamilyI:
		return e.reflectI(fn, o, req.Z, req.Scaling, req.N)
	case FamilyK:
		// K is even in its order; no reflection.
		return e.call(fn, req.N, e.kernel.K(req.Z, o.magnitude, req.Scaling, req.N))
	case FamilyHankel1:
		return e.reflectH(fn, o, req.Z, req.Scaling, kernel.HankelFirst, req.N)
	default:
		return e.reflectH(fn, o, req.Z, req.Scaling, kernel.HankelSecond, req.N)
	}
}

// call checks a kernel outcome against its contract, interprets its status
// and returns a private copy of its values.
func (e *Evaluator) call(function string, n int, out kernel.Outcome) ([]complex128, error) {
	if len(out.Values) != n {
		return nil, newInvariantError(function, out.Underflow, out.Status,
			"kernel returned %d values, want %d", len(out.Values), n)
	}
	if _, err := Interpret(function, out.Underflow, out.Status, e.sink); err != nil {
		return nil, err
	}
	values := make([]complex128, n)
	copy(values, out.Values)
	return values, nil
}

func (e *Evaluator) vec(f Family, s kernel.Scaling, nu float64, z complex128, n int) ([]complex128, error) {
	return e.Evaluate(Request{Family: f, Scaling: s, Nu: nu, Z: z, N: n})
}

func (e *Evaluator) scalar(f Family, s kernel.Scaling, nu float64, z complex128) (complex128, error) {
	values, err := e.vec(f, s, nu, z, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

func (e *Evaluator) realVec(s kernel.Scaling, nu, x float64, n int) ([]float64, error) {
	values, err := e.vec(FamilyI, s, nu, complex(x, 0), n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = real(v)
	}
	return out, nil
}

// Iv returns I_ν(z).
func (e *Evaluator) Iv(nu float64, z complex128) (complex128, error) {
	return e.scalar(FamilyI, kernel.Unscaled, nu, z)
}

// Ive returns I_ν(z)·e^{-|Re z|}.
func (e *Evaluator) Ive(nu float64, z complex128) (complex128, error) {
	return e.scalar(FamilyI, kernel.Scaled, nu, z)
}

// IvVec returns I at the n orders ν, ν±1, ... (see Evaluate).
func (e *Evaluator) IvVec(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyI, kernel.Unscaled, nu, z, n)
}

// IveVec is the scaled form of IvVec.
func (e *Evaluator) IveVec(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyI, kernel.Scaled, nu, z, n)
}

// IvReal returns the real part of I_ν(x). It is the whole value whenever
// I_ν(x) is real, i.e. for x >= 0 or integer ν.
func (e *Evaluator) IvReal(nu, x float64) (float64, error) {
	v, err := e.Iv(nu, complex(x, 0))
	return real(v), err
}

// IveReal is the scaled form of IvReal.
func (e *Evaluator) IveReal(nu, x float64) (float64, error) {
	v, err := e.Ive(nu, complex(x, 0))
	return real(v), err
}

// IvRealVec is the batched form of IvReal.
func (e *Evaluator) IvRealVec(nu, x float64, n int) ([]float64, error) {
	return e.realVec(kernel.Unscaled, nu, x, n)
}

// IveRealVec is the batched form of IveReal.
func (e *Evaluator) IveRealVec(nu, x float64, n int) ([]float64, error) {
	return e.realVec(kernel.Scaled, nu, x, n)
}

// Kv returns K_ν(z).
func (e *Evaluator) Kv(nu float64, z complex128) (complex128, error) {
	return e.scalar(FamilyK, kernel.Unscaled, nu, z)
}

// Kve returns K_ν(z)·e^{z}.
func (e *Evaluator) Kve(nu float64, z complex128) (complex128, error) {
	return e.scalar(FamilyK, kernel.Scaled, nu, z)
}

// KvVec returns K at the n orders ν, ν±1, ....
func (e *Evaluator) KvVec(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyK, kernel.Unscaled, nu, z, n)
}

// KveVec is the scaled form of KvVec.
func (e *Evaluator) KveVec(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyK, kernel.Scaled, nu, z, n)
}

// Hankel1 returns H1 at the n orders ν, ν±1, ....
func (e *Evaluator) Hankel1(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyHankel1, kernel.Unscaled, nu, z, n)
}

// Hankel1e returns H1·e^{-iz} at the n orders ν, ν±1, ....
func (e *Evaluator) Hankel1e(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyHankel1, kernel.Scaled, nu, z, n)
}

// Hankel2 returns H2 at the n orders ν, ν±1, ....
func (e *Evaluator) Hankel2(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyHankel2, kernel.Unscaled, nu, z, n)
}

// Hankel2e returns H2·e^{iz} at the n orders ν, ν±1, ....
func (e *Evaluator) Hankel2e(nu float64, z complex128, n int) ([]complex128, error) {
	return e.vec(FamilyHankel2, kernel.Scaled, nu, z, n)
}
