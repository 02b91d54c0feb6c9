package bessel

import (
	"fmt"

	"github.com/roach88/besselx/pkg/kernel"
)

// Status is the interpreted report of a single kernel call.
type Status struct {
	// Underflow is the number of components the kernel set to zero.
	Underflow int
	// Code is the kernel status; never kernel.StatusInputError, which is fatal.
	Code kernel.Status
}

// OK reports a clean call with nothing to warn about.
func (s Status) OK() bool {
	return s.Underflow == 0 && s.Code == kernel.StatusNormal
}

// Interpret maps a kernel's raw (nz, ierr) pair to a Status.
//
// Each recoverable anomaly produces exactly one sink warning: underflow first
// when nz > 0, then one for ierr in 2..5. ierr = 1 is a fatal kernel contract
// violation because every input is validated before the kernel is called;
// so are nz < 0 and ierr outside 0..5. sink may be nil.
func Interpret(function string, nz int, ierr kernel.Status, sink Sink) (Status, error) {
	if nz < 0 || ierr < kernel.StatusNormal || ierr > kernel.StatusNonConvergence {
		return Status{}, newInvariantError(function, nz, ierr,
			"kernel reported out-of-range status (nz=%d, ierr=%d)", nz, int(ierr))
	}
	if ierr == kernel.StatusInputError {
		return Status{}, newInvariantError(function, nz, ierr,
			"kernel rejected arguments that passed validation")
	}

	st := Status{Underflow: nz, Code: ierr}
	if st.OK() {
		return st, nil
	}
	if sink == nil {
		sink = Discard
	}

	if nz > 0 {
		sink.Warn(function, fmt.Sprintf("Underflow: %d components set to zero", nz))
	}
	switch ierr {
	case kernel.StatusOverflow:
		sink.Warn(function, "Overflow: no computation done, result may be infinite")
	case kernel.StatusPrecisionLoss:
		sink.Warn(function, "Loss of significance: |z| or nu+n-1 is large, result is degraded")
	case kernel.StatusSeverePrecisionLoss:
		sink.Warn(function, "Complete loss of significance: |z| or nu+n-1 is too large, result is undefined")
	case kernel.StatusNonConvergence:
		sink.Warn(function, "Termination condition not met: result is unreliable")
	}
	return st, nil
}
