// Package kernel defines the boundary between the order-extension layer in
// package bessel and the numeric routines that evaluate Bessel functions of
// non-negative order.
//
// A kernel only ever sees an order nu >= 0. Reflection to negative orders,
// scaling reconciliation and status interpretation all happen above this
// boundary, so any backend (the bundled series backend, a cgo binding to
// AMOS, a remote service) can be swapped in without touching that logic.
//
// # Reentrancy
//
// Implementations MUST be safe for concurrent use. package bessel keeps no
// state of its own and calls kernels from whatever goroutine the caller is
// on; a backend that caches or reuses work buffers must synchronise them.
package kernel

import "fmt"

// Scaling selects between the raw function value and its exponentially
// scaled form. The numeric values match the AMOS KODE argument.
type Scaling int

const (
	// Unscaled requests the plain function value (KODE=1).
	Unscaled Scaling = 1
	// Scaled requests the exponentially scaled value (KODE=2):
	// I·e^{-|Re z|}, K·e^{z}, H1·e^{-iz}, H2·e^{iz}.
	Scaled Scaling = 2
)

// Valid reports whether s is one of the two defined modes.
func (s Scaling) Valid() bool {
	return s == Unscaled || s == Scaled
}

func (s Scaling) String() string {
	switch s {
	case Unscaled:
		return "unscaled"
	case Scaled:
		return "scaled"
	default:
		return fmt.Sprintf("scaling(%d)", int(s))
	}
}

// HankelKind selects H1 or H2. The numeric values match the AMOS M argument.
type HankelKind int

const (
	HankelFirst  HankelKind = 1
	HankelSecond HankelKind = 2
)

// Valid reports whether k is H1 or H2.
func (k HankelKind) Valid() bool {
	return k == HankelFirst || k == HankelSecond
}

func (k HankelKind) String() string {
	switch k {
	case HankelFirst:
		return "hankel1"
	case HankelSecond:
		return "hankel2"
	default:
		return fmt.Sprintf("hankel(%d)", int(k))
	}
}

// Status is the kernel-reported outcome class (the AMOS IERR value).
type Status int

const (
	// StatusNormal is a normal return.
	StatusNormal Status = 0
	// StatusInputError means the kernel rejected its arguments.
	StatusInputError Status = 1
	// StatusOverflow means no computation was done; values are typically ±Inf.
	StatusOverflow Status = 2
	// StatusPrecisionLoss means the computation completed with reduced accuracy.
	StatusPrecisionLoss Status = 3
	// StatusSeverePrecisionLoss means no reliable computation was possible.
	StatusSeverePrecisionLoss Status = 4
	// StatusNonConvergence means the algorithm's termination condition was not met.
	StatusNonConvergence Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusInputError:
		return "input error"
	case StatusOverflow:
		return "overflow"
	case StatusPrecisionLoss:
		return "loss of significance"
	case StatusSeverePrecisionLoss:
		return "complete loss of significance"
	case StatusNonConvergence:
		return "termination condition not met"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one kernel invocation.
//
// Values holds n components for orders nu, nu+1, ..., nu+n-1. Underflow is
// the number of components set to zero because they underflowed (AMOS NZ).
// An Outcome belongs to the call that produced it and is never shared.
type Outcome struct {
	Values    []complex128
	Underflow int
	Status    Status
}

// IKernel evaluates the modified Bessel function of the first kind for nu >= 0.
type IKernel interface {
	I(z complex128, nu float64, scaling Scaling, n int) Outcome
}

// KKernel evaluates the modified Bessel function of the second kind for nu >= 0.
type KKernel interface {
	K(z complex128, nu float64, scaling Scaling, n int) Outcome
}

// HKernel evaluates the Hankel functions H1 and H2 for nu >= 0.
type HKernel interface {
	H(z complex128, nu float64, scaling Scaling, kind HankelKind, n int) Outcome
}

// Kernel bundles the three primitives package bessel consumes.
type Kernel interface {
	IKernel
	KKernel
	HKernel
}
