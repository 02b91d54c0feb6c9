package series

import (
	"math"
	"math/cmplx"
)

const eulerGamma = 0.57721566490153286061

// ascending sums (z/2)^mu · Σ_k (sign·z²/4)^k / (k! Γ(mu+k+1)).
// sign = +1 gives I_mu, sign = -1 gives J_mu. mu must not be a negative
// integer; every other real order, negative ones included, is accepted.
func (b Backend) ascending(mu float64, z complex128, sign float64) component {
	if z == 0 {
		if mu == 0 {
			return component{value: 1, ratio: 1, converged: true}
		}
		return component{value: 0, ratio: 1, converged: true}
	}

	lg, s := math.Lgamma(mu + 1)
	lead := cmplx.Exp(complex(mu, 0)*cmplx.Log(z/2) - complex(lg, 0))
	if s < 0 {
		lead = -lead
	}
	if lead == 0 || cmplx.IsInf(lead) {
		return component{value: lead, ratio: 1, converged: true}
	}

	w := complex(sign, 0) * z * z / 4
	term, sum := lead, lead
	peak := cmplx.Abs(lead)
	for k := 0; k < b.cfg.MaxTerms; k++ {
		term = scale(term*w, 1/(float64(k+1)*(mu+float64(k)+1)))
		sum += term
		a := cmplx.Abs(term)
		if a > peak {
			peak = a
		}
		if a <= b.cfg.Tolerance*cmplx.Abs(sum) || term == 0 {
			return component{value: sum, ratio: peak / cmplx.Abs(sum), converged: true}
		}
	}
	return component{value: sum}
}

// modifiedK evaluates K_nu(z) for nu >= 0, z != 0.
func (b Backend) modifiedK(nu float64, z complex128) component {
	if nu == math.Trunc(nu) {
		return b.integerK(int(nu), z)
	}
	neg := b.ascending(-nu, z, 1)
	pos := b.ascending(nu, z, 1)
	if !neg.converged || !pos.converged {
		return component{}
	}
	diff := neg.value - pos.value
	v := scale(diff, math.Pi/(2*math.Sin(nu*math.Pi)))
	return component{
		value:     v,
		ratio:     math.Max(neg.ratio, pos.ratio) * cancellation(diff, neg.value, pos.value),
		converged: true,
	}
}

// hankel evaluates J_nu(z) + sign·i·Y_nu(z) for nu >= 0, z != 0.
func (b Backend) hankel(nu float64, z complex128, sign float64) component {
	j := b.ascending(nu, z, -1)
	if !j.converged {
		return component{}
	}
	var y component
	if nu == math.Trunc(nu) {
		y = b.integerY(int(nu), z, j.value)
	} else {
		jneg := b.ascending(-nu, z, -1)
		if !jneg.converged {
			return component{}
		}
		num := scale(j.value, math.Cos(nu*math.Pi)) - jneg.value
		y = component{
			value:     scale(num, 1/math.Sin(nu*math.Pi)),
			ratio:     math.Max(j.ratio, jneg.ratio) * cancellation(num, j.value, jneg.value),
			converged: true,
		}
	}
	if !y.converged {
		return component{}
	}
	iy := complex(0, sign) * y.value
	h := j.value + iy
	return component{
		value:     h,
		ratio:     math.Max(j.ratio, y.ratio) * cancellation(h, j.value, iy),
		converged: true,
	}
}

// integerK evaluates K_n(z) from the logarithmic series (A&S 9.6.11).
func (b Backend) integerK(n int, z complex128) component {
	in := b.ascending(float64(n), z, 1)
	f, s, ok := b.integerParts(n, z, 1)
	if !in.converged || !ok {
		return component{}
	}
	h := z / 2
	parity := 1.0
	if n%2 == 1 {
		parity = -1
	}
	finite := scale(f*cmplx.Pow(h, complex(-float64(n), 0)), 0.5)
	logTerm := scale(cmplx.Log(h)*in.value, -parity)
	tail := scale(s*cmplx.Pow(h, complex(float64(n), 0)), 0.5*parity)
	v := finite + logTerm + tail
	return component{
		value:     v,
		ratio:     in.ratio * cancellation(v, finite, logTerm, tail),
		converged: true,
	}
}

// integerY evaluates Y_n(z) from the logarithmic series (A&S 9.1.11),
// reusing the already computed J_n(z).
func (b Backend) integerY(n int, z complex128, jn complex128) component {
	f, s, ok := b.integerParts(n, z, -1)
	if !ok {
		return component{}
	}
	h := z / 2
	finite := scale(f*cmplx.Pow(h, complex(-float64(n), 0)), -1/math.Pi)
	logTerm := scale(cmplx.Log(h)*jn, 2/math.Pi)
	tail := scale(s*cmplx.Pow(h, complex(float64(n), 0)), -1/math.Pi)
	v := finite + logTerm + tail
	return component{
		value:     v,
		ratio:     cancellation(v, finite, logTerm, tail),
		converged: true,
	}
}

// integerParts returns the two sums of the integer-order logarithmic series
// with w = z²/4:
//
//	F = Σ_{k<n} (n-k-1)!/k! · (-sign·w)^k
//	S = Σ_{k>=0} (ψ(k+1) + ψ(n+k+1)) · (sign·w)^k / (k! (n+k)!)
//
// sign = +1 serves K_n and sign = -1 serves Y_n.
func (b Backend) integerParts(n int, z complex128, sign float64) (f, s complex128, ok bool) {
	w := z * z / 4
	u := complex(-sign, 0) * w
	v := complex(sign, 0) * w

	var p complex128 = 1
	for k := 0; k < n; k++ {
		lnA, _ := math.Lgamma(float64(n - k))
		lnB, _ := math.Lgamma(float64(k + 1))
		f += scale(p, math.Exp(lnA-lnB))
		p *= u
	}

	lnN, _ := math.Lgamma(float64(n + 1))
	c := complex(math.Exp(-lnN), 0) // v^k / (k! (n+k)!)
	psiA := -eulerGamma             // ψ(k+1)
	psiB := -eulerGamma             // ψ(n+k+1)
	for m := 1; m <= n; m++ {
		psiB += 1 / float64(m)
	}
	for k := 0; k < b.cfg.MaxTerms; k++ {
		term := scale(c, psiA+psiB)
		s += term
		if k > 0 && (cmplx.Abs(term) <= b.cfg.Tolerance*cmplx.Abs(s) || term == 0) {
			return f, s, true
		}
		c = scale(c*v, 1/(float64(k+1)*float64(n+k+1)))
		psiA += 1 / float64(k+1)
		psiB += 1 / float64(n+k+1)
	}
	return f, s, false
}

// cancellation is Σ|parts| / |total|: how many times larger the pieces were
// than what survived their sum.
func cancellation(total complex128, parts ...complex128) float64 {
	var mass float64
	for _, p := range parts {
		mass += cmplx.Abs(p)
	}
	t := cmplx.Abs(total)
	if t == 0 {
		if mass == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return math.Max(1, mass/t)
}

// scale multiplies z by a real factor component-wise, keeping infinities
// intact where complex multiplication would produce NaN.
func scale(z complex128, f float64) complex128 {
	return complex(real(z)*f, imag(z)*f)
}
