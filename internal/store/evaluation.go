package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/besselx/internal/ir"
	"github.com/roach88/besselx/pkg/bessel"
)

// ErrNotFound is returned by reads that match no row.
var ErrNotFound = errors.New("not found")

// Run groups the evaluations made by one CLI invocation or test run.
type Run struct {
	ID      string
	Seq     int64
	Label   string
	Backend string
	Version string
}

// Evaluation is one recorded request and its outcome.
//
// A fatal evaluation has a non-empty ErrorCode and no Values. Warnings
// are the sink calls the request produced, in order.
type Evaluation struct {
	RunID     string
	ID        string
	Seq       int64
	Request   bessel.Request
	Values    []complex128
	ErrorCode string
	Error     string
	Warnings  []bessel.Warning
}

// Failed reports whether the evaluation ended in a fatal error.
func (e Evaluation) Failed() bool {
	return e.ErrorCode != ""
}

// RequestKey is the canonical identity of req.
func RequestKey(req bessel.Request) ir.EvaluationKey {
	return ir.EvaluationKey{
		Family:  req.Family.String(),
		Scaling: int(req.Scaling),
		Nu:      req.Nu,
		Z:       req.Z,
		N:       req.N,
	}
}

// Evaluate runs req through ev and captures its outcome as an Evaluation,
// without storing it. Warnings are collected and still forwarded to ev's
// own sink.
func Evaluate(ev *bessel.Evaluator, req bessel.Request) (Evaluation, error) {
	id, err := ir.EvaluationID(RequestKey(req))
	if err != nil {
		return Evaluation{}, err
	}

	collector := &bessel.Collector{Next: ev.Sink()}
	values, evalErr := bessel.New(ev.Kernel(), bessel.WithSink(collector)).Evaluate(req)

	out := Evaluation{
		ID:       id,
		Request:  req,
		Values:   values,
		Warnings: collector.Warnings(),
	}
	if evalErr != nil {
		var be *bessel.Error
		if errors.As(evalErr, &be) {
			out.ErrorCode = string(be.Code)
			out.Error = be.Message
		} else {
			out.ErrorCode = "ERROR"
			out.Error = evalErr.Error()
		}
	}
	return out, nil
}

// StartRun allocates and writes a new run.
func (s *Store) StartRun(ctx context.Context, label, backend string) (Run, error) {
	run := Run{
		ID:      s.ids.Generate(),
		Seq:     s.clock.Next(),
		Label:   label,
		Backend: backend,
		Version: ir.Version,
	}
	if err := s.WriteRun(ctx, run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Record evaluates req and appends the outcome to run runID.
// A fatal evaluation error is recorded, not returned; the returned error
// is about storage only.
func (s *Store) Record(ctx context.Context, runID string, ev *bessel.Evaluator, req bessel.Request) (Evaluation, error) {
	e, err := Evaluate(ev, req)
	if err != nil {
		return Evaluation{}, fmt.Errorf("record: %w", err)
	}
	e.RunID = runID
	e.Seq = s.clock.Next()
	if err := s.WriteEvaluation(ctx, e); err != nil {
		return Evaluation{}, err
	}
	return e, nil
}
