// Package bessel evaluates the modified Bessel functions I and K and the
// Hankel functions H1 and H2 for any finite real order and complex argument,
// on top of a kernel.Kernel that only accepts non-negative orders.
//
// # Order extension
//
// A request for order ν is normalised to a sign and a magnitude m = |ν|; the
// kernel is only ever called with m. Negative orders are recovered with the
// connection formulas
//
//	I_{-ν}(z) = I_ν(z) + (2/π) sin(πν) K_ν(z)
//	H1_{-ν}(z) = H1_ν(z) e^{iπν}
//	H2_{-ν}(z) = H2_ν(z) e^{-iπν}
//	K_{-ν}(z) = K_ν(z)
//
// The K term of the I formula vanishes for integer ν, in which case the
// second kernel call is skipped.
//
// # Batches
//
// The Vec forms evaluate n orders in one kernel call. Element i has order
// sign·(m+i): ν, ν+1, ... for ν >= 0 and ν, ν-1, ... for ν < 0. Reflection
// is applied per element with that element's own order.
//
// # Diagnostics
//
// Every kernel status is routed through Interpret. Recoverable anomalies
// (underflow, overflow, loss of significance, non-convergence) are reported
// to the evaluator's Sink and the computed values are still returned. Input
// validation failures and kernel contract violations are returned as *Error
// and no values are produced.
//
// # Concurrency
//
// An Evaluator holds no mutable state. It is safe for concurrent use when its
// kernel and sink are; the bundled series backend and sinks are.
package bessel
