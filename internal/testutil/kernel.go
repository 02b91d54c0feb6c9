package testutil

import (
	"sync"

	"github.com/roach88/besselx/pkg/kernel"
)

// Primitive names a kernel entry point.
type Primitive string

const (
	PrimitiveI Primitive = "I"
	PrimitiveK Primitive = "K"
	PrimitiveH Primitive = "H"
)

// KernelCall records one invocation of a StubKernel primitive.
type KernelCall struct {
	Primitive Primitive
	Z         complex128
	Nu        float64
	Scaling   kernel.Scaling
	Kind      kernel.HankelKind // zero for I and K
	N         int
}

// StubKernel is a scripted, call-recording kernel.
//
// By default each primitive fills element i with the corresponding Value
// function at order nu+i and reports a clean status. Setting an Outcome
// field makes that primitive return a copy of it verbatim instead, which is
// how tests inject underflow counts, status codes and malformed results.
//
// Thread-safety: safe for concurrent use once configured.
type StubKernel struct {
	IValue func(order float64, z complex128) complex128
	KValue func(order float64, z complex128) complex128
	HValue func(order float64, z complex128, kind kernel.HankelKind) complex128

	IOutcome *kernel.Outcome
	KOutcome *kernel.Outcome
	HOutcome *kernel.Outcome

	mu    sync.Mutex
	calls []KernelCall
}

var _ kernel.Kernel = (*StubKernel)(nil)

// NewStubKernel returns a stub using StubI, StubK and StubH.
func NewStubKernel() *StubKernel {
	return &StubKernel{IValue: StubI, KValue: StubK, HValue: StubH}
}

// StubI is an arbitrary smooth stand-in for I at a given order.
func StubI(order float64, z complex128) complex128 {
	return complex(order+1, 0.25) * z
}

// StubK is an arbitrary stand-in for K, distinct from StubI.
func StubK(order float64, z complex128) complex128 {
	return complex(2, -order) + z
}

// StubH is an arbitrary stand-in for H1 and H2.
func StubH(order float64, z complex128, kind kernel.HankelKind) complex128 {
	if kind == kernel.HankelSecond {
		return complex(order, -1) * z
	}
	return complex(order, 1) * z
}

func (s *StubKernel) I(z complex128, nu float64, scaling kernel.Scaling, n int) kernel.Outcome {
	s.record(KernelCall{Primitive: PrimitiveI, Z: z, Nu: nu, Scaling: scaling, N: n})
	if s.IOutcome != nil {
		return cloneOutcome(*s.IOutcome)
	}
	return fill(n, func(order float64) complex128 { return s.IValue(order, z) }, nu)
}

func (s *StubKernel) K(z complex128, nu float64, scaling kernel.Scaling, n int) kernel.Outcome {
	s.record(KernelCall{Primitive: PrimitiveK, Z: z, Nu: nu, Scaling: scaling, N: n})
	if s.KOutcome != nil {
		return cloneOutcome(*s.KOutcome)
	}
	return fill(n, func(order float64) complex128 { return s.KValue(order, z) }, nu)
}

func (s *StubKernel) H(z complex128, nu float64, scaling kernel.Scaling, kind kernel.HankelKind, n int) kernel.Outcome {
	s.record(KernelCall{Primitive: PrimitiveH, Z: z, Nu: nu, Scaling: scaling, Kind: kind, N: n})
	if s.HOutcome != nil {
		return cloneOutcome(*s.HOutcome)
	}
	return fill(n, func(order float64) complex128 { return s.HValue(order, z, kind) }, nu)
}

// Calls returns every recorded call in order.
func (s *StubKernel) Calls() []KernelCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]KernelCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times p was invoked.
func (s *StubKernel) CallCount(p Primitive) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.calls {
		if c.Primitive == p {
			count++
		}
	}
	return count
}

// Reset forgets recorded calls. Scripted outcomes are kept.
func (s *StubKernel) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *StubKernel) record(c KernelCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func fill(n int, value func(order float64) complex128, nu float64) kernel.Outcome {
	out := kernel.Outcome{Values: make([]complex128, max(n, 0))}
	for i := range out.Values {
		out.Values[i] = value(nu + float64(i))
	}
	return out
}

func cloneOutcome(o kernel.Outcome) kernel.Outcome {
	o.Values = append([]complex128(nil), o.Values...)
	return o
}
