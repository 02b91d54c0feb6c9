package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/besselx/internal/ir"
	"github.com/roach88/besselx/internal/testutil"
	"github.com/roach88/besselx/pkg/bessel"
	"github.com/roach88/besselx/pkg/kernel"
)

func TestRecordStoresValuesAndWarnings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stub := testutil.NewStubKernel()
	stub.IOutcome = &kernel.Outcome{Values: []complex128{0, 0}, Underflow: 2}
	ev := stubEvaluator(stub)

	run, err := s.StartRun(ctx, "underflow", "stub")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, ir.Version, run.Version)

	req := bessel.Request{Family: bessel.FamilyI, Scaling: kernel.Unscaled, Nu: 3, Z: complex(1, 2), N: 2}
	rec, err := s.Record(ctx, run.ID, ev, req)
	require.NoError(t, err)
	assert.Equal(t, ir.MustEvaluationID(RequestKey(req)), rec.ID)
	assert.Equal(t, int64(2), rec.Seq)
	assert.False(t, rec.Failed())

	got, err := s.ReadEvaluation(ctx, run.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got.Request)
	assert.Equal(t, []complex128{0, 0}, got.Values)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "iv", got.Warnings[0].Function)
	assert.Contains(t, got.Warnings[0].Message, "Underflow")
}

func TestRecordForwardsWarningsToEvaluatorSink(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stub := testutil.NewStubKernel()
	stub.KOutcome = &kernel.Outcome{Values: []complex128{1}, Status: kernel.StatusPrecisionLoss}
	sink := &bessel.Collector{}
	ev := bessel.New(stub, bessel.WithSink(sink))

	run, err := s.StartRun(ctx, "", "stub")
	require.NoError(t, err)
	_, err = s.Record(ctx, run.ID, ev, bessel.Request{Family: bessel.FamilyK, Scaling: kernel.Scaled, Nu: 1, Z: 2, N: 1})
	require.NoError(t, err)

	require.Equal(t, 1, sink.Len())
	assert.Equal(t, "kve", sink.Warnings()[0].Function)
}

func TestRecordKeepsFatalErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	stub := testutil.NewStubKernel()

	run, err := s.StartRun(ctx, "", "stub")
	require.NoError(t, err)

	req := bessel.Request{Family: bessel.FamilyI, Scaling: kernel.Scaling(3), Nu: 0, Z: 1, N: 1}
	rec, err := s.Record(ctx, run.ID, stubEvaluator(stub), req)
	require.NoError(t, err, "evaluation errors are data, not storage failures")
	assert.True(t, rec.Failed())
	assert.Equal(t, string(bessel.ErrCodeInvalidInput), rec.ErrorCode)
	assert.Empty(t, stub.Calls())

	got, err := s.ReadEvaluation(ctx, run.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "INVALID_INPUT", got.ErrorCode)
	assert.Contains(t, got.Error, "scaling")
	assert.Nil(t, got.Values)
	assert.Equal(t, kernel.Scaling(3), got.Request.Scaling)
}

func TestValuesRoundTripBitExact(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payloadNaN := math.Float64frombits(0x7ff8000000000123)
	negZero := math.Copysign(0, -1)
	values := []complex128{
		complex(payloadNaN, 1),
		complex(negZero, math.Inf(-1)),
		complex(math.SmallestNonzeroFloat64, -math.MaxFloat64),
	}
	stub := testutil.NewStubKernel()
	stub.HOutcome = &kernel.Outcome{Values: values}

	run, err := s.StartRun(ctx, "", "stub")
	require.NoError(t, err)
	req := bessel.Request{Family: bessel.FamilyHankel2, Scaling: kernel.Unscaled, Nu: negZero, Z: complex(0.1, negZero), N: 3}
	rec, err := s.Record(ctx, run.ID, stubEvaluator(stub), req)
	require.NoError(t, err)

	got, err := s.ReadEvaluation(ctx, run.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, ir.BitsOf(values), ir.BitsOf(got.Values))
	assert.True(t, math.Signbit(got.Request.Nu))
	assert.True(t, math.Signbit(imag(got.Request.Z)))
}

func TestWriteEvaluationIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stub := testutil.NewStubKernel()
	stub.IOutcome = &kernel.Outcome{Values: []complex128{0}, Underflow: 1}
	ev := stubEvaluator(stub)

	run, err := s.StartRun(ctx, "", "stub")
	require.NoError(t, err)
	req := bessel.Request{Family: bessel.FamilyI, Scaling: kernel.Unscaled, Nu: 1, Z: 1, N: 1}

	first, err := s.Record(ctx, run.ID, ev, req)
	require.NoError(t, err)
	_, err = s.Record(ctx, run.ID, ev, req)
	require.NoError(t, err)

	evals, err := s.ListEvaluations(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, evals, 1)
	assert.Equal(t, first.Seq, evals[0].Seq, "the first write wins")
	assert.Len(t, evals[0].Warnings, 1, "warnings are not duplicated")
}

func TestWriteEvaluationRequiresRun(t *testing.T) {
	s := openTestStore(t)

	e, err := Evaluate(stubEvaluator(testutil.NewStubKernel()),
		bessel.Request{Family: bessel.FamilyK, Scaling: kernel.Unscaled, Nu: 0, Z: 1, N: 1})
	require.NoError(t, err)
	e.RunID = "missing"

	assert.Error(t, s.WriteEvaluation(context.Background(), e))
}

func TestWriteEvaluationRejectsUnknownFamily(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run, err := s.StartRun(ctx, "", "stub")
	require.NoError(t, err)

	_, err = s.Record(ctx, run.ID, stubEvaluator(testutil.NewStubKernel()),
		bessel.Request{Family: bessel.Family(9), Scaling: kernel.Unscaled, Z: 1, N: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown family")
}

func TestListOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ev := stubEvaluator(testutil.NewStubKernel())

	first, err := s.StartRun(ctx, "a", "stub")
	require.NoError(t, err)
	second, err := s.StartRun(ctx, "b", "stub")
	require.NoError(t, err)

	var want []string
	for _, nu := range []float64{2, 0.5, 1} {
		rec, err := s.Record(ctx, second.ID, ev,
			bessel.Request{Family: bessel.FamilyK, Scaling: kernel.Unscaled, Nu: nu, Z: 1, N: 1})
		require.NoError(t, err)
		want = append(want, rec.ID)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	evals, err := s.ListEvaluations(ctx, second.ID)
	require.NoError(t, err)
	var got []string
	for _, e := range evals {
		got = append(got, e.ID)
	}
	assert.Equal(t, want, got, "evaluations come back in seq order")

	empty, err := s.ListEvaluations(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReadNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ReadRun(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.ReadEvaluation(ctx, "nope", "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.LatestRun(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))
}
