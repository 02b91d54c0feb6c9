package store

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/roach88/besselx/pkg/bessel"
)

// Mismatch is one difference between a stored evaluation and its replay.
type Mismatch struct {
	EvaluationID string
	Seq          int64
	Function     string
	Field        string // "error", "values[i]", "len(values)" or "warnings"
	Stored       string
	Replayed     string
}

// ReplayResult summarizes a replay of one run.
type ReplayResult struct {
	RunID      string
	Checked    int
	Mismatches []Mismatch
}

// OK reports whether every evaluation reproduced exactly.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-evaluates every request of a run through ev and compares the
// outcome with the log bit for bit: error code, every value, and the
// warning sequence.
//
// Evaluation is deterministic, so any mismatch means the kernel or its
// configuration changed since the run was recorded.
func (s *Store) Replay(ctx context.Context, runID string, ev *bessel.Evaluator) (ReplayResult, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	stored, err := s.ListEvaluations(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	result := ReplayResult{RunID: runID, Mismatches: []Mismatch{}}
	for _, want := range stored {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("replay: %w", err)
		}
		got, err := Evaluate(ev, want.Request)
		if err != nil {
			return result, fmt.Errorf("replay %s: %w", want.ID, err)
		}
		result.Checked++
		result.Mismatches = append(result.Mismatches, compare(want, got)...)
	}
	return result, nil
}

func compare(want, got Evaluation) []Mismatch {
	mismatch := func(field, stored, replayed string) Mismatch {
		return Mismatch{
			EvaluationID: want.ID,
			Seq:          want.Seq,
			Function:     want.Request.FunctionName(),
			Field:        field,
			Stored:       stored,
			Replayed:     replayed,
		}
	}

	var out []Mismatch
	if want.ErrorCode != got.ErrorCode {
		out = append(out, mismatch("error", want.ErrorCode, got.ErrorCode))
	}
	if len(want.Values) != len(got.Values) {
		out = append(out, mismatch("len(values)",
			fmt.Sprint(len(want.Values)), fmt.Sprint(len(got.Values))))
	} else {
		for i := range want.Values {
			if !sameBits(want.Values[i], got.Values[i]) {
				out = append(out, mismatch(fmt.Sprintf("values[%d]", i),
					formatValue(want.Values[i]), formatValue(got.Values[i])))
			}
		}
	}
	if !sameWarnings(want.Warnings, got.Warnings) {
		out = append(out, mismatch("warnings",
			fmt.Sprint(want.Warnings), fmt.Sprint(got.Warnings)))
	}
	return out
}

func sameBits(a, b complex128) bool {
	return math.Float64bits(real(a)) == math.Float64bits(real(b)) &&
		math.Float64bits(imag(a)) == math.Float64bits(imag(b))
}

func sameWarnings(a, b []bessel.Warning) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
