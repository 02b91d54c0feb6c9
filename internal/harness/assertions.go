package harness

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/roach88/besselx/internal/store"
	"github.com/roach88/besselx/pkg/bessel"
)

// checkCase compares an evaluation with its case and returns every
// difference found.
func checkCase(c Case, e store.Evaluation, tol float64) []string {
	var errs []string

	switch {
	case c.Error != "" && e.ErrorCode != c.Error:
		errs = append(errs, fmt.Sprintf("expected error %s, got %s", c.Error, describeOutcome(e)))
	case c.Error == "" && e.Failed():
		errs = append(errs, fmt.Sprintf("unexpected error %s: %s", e.ErrorCode, e.Error))
	}

	if c.Expect != nil && !e.Failed() {
		errs = append(errs, checkValues(c.Expect, e.Values, tol)...)
	}
	errs = append(errs, checkWarnings(c.Warnings, e.Warnings)...)
	return errs
}

func describeOutcome(e store.Evaluation) string {
	if e.Failed() {
		return e.ErrorCode
	}
	return fmt.Sprintf("%d values", len(e.Values))
}

// checkValues applies the mixed tolerance |got-want| <= tol*max(1, |want|)
// to each component.
func checkValues(want [][2]float64, got []complex128, tol float64) []string {
	if len(want) != len(got) {
		return []string{fmt.Sprintf("expected %d values, got %d", len(want), len(got))}
	}

	var errs []string
	for i, w := range want {
		wz := complex(w[0], w[1])
		diff := cmplx.Abs(got[i] - wz)
		limit := tol * math.Max(1, cmplx.Abs(wz))
		if math.IsNaN(diff) || diff > limit {
			errs = append(errs, fmt.Sprintf("values[%d]: expected %v, got %v (|diff| %.3g > %.3g)",
				i, wz, got[i], diff, limit))
		}
	}
	return errs
}

// checkWarnings requires the same number of warnings, each containing the
// expected substring, in order.
func checkWarnings(want []string, got []bessel.Warning) []string {
	if len(want) != len(got) {
		return []string{fmt.Sprintf("expected %d warnings, got %d: %s",
			len(want), len(got), formatWarnings(got))}
	}

	var errs []string
	for i, w := range want {
		if !strings.Contains(got[i].Message, w) {
			errs = append(errs, fmt.Sprintf("warnings[%d]: expected %q in %q", i, w, got[i].Message))
		}
	}
	return errs
}

func formatWarnings(ws []bessel.Warning) string {
	if len(ws) == 0 {
		return "none"
	}
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = fmt.Sprintf("%s: %s", w.Function, w.Message)
	}
	return strings.Join(parts, "; ")
}
