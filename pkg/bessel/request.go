package bessel

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/roach88/besselx/pkg/kernel"
)

// Family selects which function a request evaluates.
type Family int

const (
	FamilyI Family = iota + 1
	FamilyK
	FamilyHankel1
	FamilyHankel2
)

// Families lists every supported family in a stable order.
var Families = []Family{FamilyI, FamilyK, FamilyHankel1, FamilyHankel2}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f >= FamilyI && f <= FamilyHankel2
}

func (f Family) String() string {
	switch f {
	case FamilyI:
		return "i"
	case FamilyK:
		return "k"
	case FamilyHankel1:
		return "hankel1"
	case FamilyHankel2:
		return "hankel2"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily accepts the String form of a family, case-insensitively,
// plus the aliases "h1" and "h2".
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i":
		return FamilyI, nil
	case "k":
		return FamilyK, nil
	case "hankel1", "h1":
		return FamilyHankel1, nil
	case "hankel2", "h2":
		return FamilyHankel2, nil
	}
	return 0, fmt.Errorf("unknown family %q (want i, k, hankel1 or hankel2)", s)
}

// ParseScaling accepts "unscaled", "scaled" or the numeric codes "1" and "2".
// Any other integer is returned as-is so that request validation, not
// parsing, rejects it.
func ParseScaling(s string) (kernel.Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unscaled":
		return kernel.Unscaled, nil
	case "scaled":
		return kernel.Scaled, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid scaling %q (want unscaled, scaled, 1 or 2)", s)
	}
	return kernel.Scaling(n), nil
}

// Request describes one batched evaluation.
type Request struct {
	Family  Family
	Scaling kernel.Scaling
	Nu      float64
	Z       complex128
	N       int
}

// FunctionName is the public operation name used in diagnostics
// (iv, ive, kv, kve, hankel1, hankel1e, hankel2, hankel2e).
func (r Request) FunctionName() string {
	var base string
	switch r.Family {
	case FamilyI:
		base = "iv"
	case FamilyK:
		base = "kv"
	case FamilyHankel1:
		base = "hankel1"
	case FamilyHankel2:
		base = "hankel2"
	default:
		return r.Family.String()
	}
	if r.Scaling == kernel.Scaled {
		if r.Family == FamilyI || r.Family == FamilyK {
			return base[:1] + "ve"
		}
		return base + "e"
	}
	return base
}

// Validate checks every precondition that must hold before a kernel call.
func (r Request) Validate() error {
	fn := r.FunctionName()
	switch {
	case !r.Family.Valid():
		return newInputError(fn, "unknown family %d", int(r.Family))
	case !r.Scaling.Valid():
		return newInputError(fn, "scaling must be 1 (unscaled) or 2 (scaled), got %d", int(r.Scaling))
	case r.N < 1:
		return newInputError(fn, "n must be at least 1, got %d", r.N)
	case math.IsNaN(r.Nu) || math.IsInf(r.Nu, 0):
		return newInputError(fn, "order must be finite, got %g", r.Nu)
	case cmplx.IsNaN(r.Z) || cmplx.IsInf(r.Z):
		return newInputError(fn, "argument must be finite, got %v", r.Z)
	}
	if r.Z == 0 && r.needsKernelAtZero() {
		return newInputError(fn, "argument must be non-zero for order %g", r.Nu)
	}
	return nil
}

// needsKernelAtZero reports whether evaluating r calls a K or Hankel kernel,
// both of which are singular at z = 0.
func (r Request) needsKernelAtZero() bool {
	if r.Family != FamilyI {
		return true
	}
	o := normalize(r.Nu)
	return o.negative && !o.integer()
}

// Orders returns the order of each output element: sign·(|ν|+i).
func (r Request) Orders() []float64 {
	if r.N < 1 {
		return nil
	}
	o := normalize(r.Nu)
	out := make([]float64, r.N)
	for i := range out {
		out[i] = o.at(i)
	}
	return out
}

// order is a signed order split into the part the kernel sees and the sign
// the reflectors restore. Zero, including negative zero, is non-negative.
type order struct {
	negative  bool
	magnitude float64
}

func normalize(nu float64) order {
	if nu < 0 {
		return order{negative: true, magnitude: -nu}
	}
	return order{magnitude: math.Abs(nu)}
}

func (o order) integer() bool {
	return o.magnitude == math.Trunc(o.magnitude)
}

// shifted is the magnitude of batch element i.
func (o order) shifted(i int) float64 {
	return o.magnitude + float64(i)
}

// at is the signed order of batch element i.
func (o order) at(i int) float64 {
	if o.negative {
		return -o.shifted(i)
	}
	return o.shifted(i)
}
