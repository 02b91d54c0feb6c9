package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Float encodes f as its 16-digit hex IEEE-754 bit pattern.
func Float(f float64) String {
	return String(FloatBits(f))
}

// FloatBits is the string form used by Float.
func FloatBits(f float64) string {
	return fmt.Sprintf("%016x", math.Float64bits(f))
}

// ParseFloatBits reverses FloatBits.
func ParseFloatBits(s string) (float64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("float bits %q: want 16 hex digits", s)
	}
	u, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("float bits %q: %w", s, err)
	}
	return math.Float64frombits(u), nil
}

// Complex encodes z as [re, im] float bit patterns.
func Complex(z complex128) Array {
	return Array{Float(real(z)), Float(imag(z))}
}

// Complexes encodes each element of zs with Complex.
func Complexes(zs []complex128) Array {
	out := make(Array, len(zs))
	for i, z := range zs {
		out[i] = Complex(z)
	}
	return out
}

// ComplexBits is the [re, im] bit-pattern pair of z.
type ComplexBits [2]string

// BitsOf returns the bit patterns of every element of zs.
func BitsOf(zs []complex128) []ComplexBits {
	out := make([]ComplexBits, len(zs))
	for i, z := range zs {
		out[i] = ComplexBits{FloatBits(real(z)), FloatBits(imag(z))}
	}
	return out
}

// Complex decodes the pair.
func (b ComplexBits) Complex() (complex128, error) {
	re, err := ParseFloatBits(b[0])
	if err != nil {
		return 0, err
	}
	im, err := ParseFloatBits(b[1])
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}
