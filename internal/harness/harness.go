package harness

import (
	"context"
	"fmt"

	"github.com/roach88/besselx/internal/store"
	"github.com/roach88/besselx/internal/testutil"
	"github.com/roach88/besselx/pkg/bessel"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	store   *store.Store
	backend string
}

// WithStore records the run in st instead of a throwaway in-memory store.
// The caller owns st.
func WithStore(st *store.Store) Option {
	return func(c *runConfig) { c.store = st }
}

// WithBackend sets the backend name recorded on the run.
func WithBackend(name string) Option {
	return func(c *runConfig) { c.backend = name }
}

// Run evaluates every case of a scenario through ev and checks the
// outcomes.
//
// By default each scenario runs in a fresh in-memory store with a
// deterministic clock and the scenario name as run id, so reports are
// reproducible. Case failures are reported in the Result; the returned
// error is reserved for storage failures.
func Run(ctx context.Context, scenario *Scenario, ev *bessel.Evaluator, opts ...Option) (*Result, error) {
	cfg := runConfig{backend: "series"}
	for _, opt := range opts {
		opt(&cfg)
	}

	st := cfg.store
	if st == nil {
		var err error
		st, err = store.Open(":memory:",
			store.WithClock(testutil.NewDeterministicClock()),
			store.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
	}

	run, err := st.StartRun(ctx, scenario.Name, cfg.backend)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.RunID = run.ID
	tol := scenario.tolerance()

	for i, c := range scenario.Cases {
		name := scenario.CaseName(i)
		req, err := scenario.Request(i)
		if err != nil {
			result.AddCase(CaseResult{Name: name, Errors: []string{err.Error()}})
			continue
		}

		e, err := st.Record(ctx, run.ID, ev, req)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %s: %w", scenario.Name, name, err)
		}

		cr := CaseResult{
			Name:      name,
			Function:  req.FunctionName(),
			Orders:    req.Orders(),
			Values:    e.Values,
			ErrorCode: e.ErrorCode,
			Warnings:  e.Warnings,
			Errors:    checkCase(c, e, tol),
		}
		cr.Pass = len(cr.Errors) == 0
		result.AddCase(cr)
	}

	return result, nil
}

// RunAll runs scenarios in order with the same evaluator and options.
func RunAll(ctx context.Context, scenarios []*Scenario, ev *bessel.Evaluator, opts ...Option) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, s := range scenarios {
		r, err := Run(ctx, s, ev, opts...)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
