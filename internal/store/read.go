package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/besselx/internal/ir"
	"github.com/roach88/besselx/pkg/bessel"
	"github.com/roach88/besselx/pkg/kernel"
)

const evaluationColumns = `
	run_id, id, seq, family, scaling, nu_bits, z_re_bits, z_im_bits, n,
	error_code, error, result`

// ListRuns returns every run, oldest first.
// Ordering is deterministic: ORDER BY seq ASC, id COLLATE BINARY ASC.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, label, backend, version
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Label, &r.Backend, &r.Version); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, label, backend, version FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.Label, &r.Backend, &r.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return r, nil
}

// LatestRun returns the run with the highest seq, or ErrNotFound when the
// log is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, label, backend, version
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&r.ID, &r.Seq, &r.Label, &r.Backend, &r.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// ReadEvaluation returns one evaluation with its warnings, or ErrNotFound.
func (s *Store) ReadEvaluation(ctx context.Context, runID, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE run_id = ? AND id = ?
	`, runID, id)

	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, fmt.Errorf("evaluation %s/%s: %w", runID, id, ErrNotFound)
	}
	if err != nil {
		return Evaluation{}, err
	}

	warnings, err := s.readWarnings(ctx, runID)
	if err != nil {
		return Evaluation{}, err
	}
	e.Warnings = warnings[e.ID]
	return e, nil
}

// ListEvaluations returns every evaluation of a run with its warnings.
// Ordering is deterministic: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the run has no evaluations.
func (s *Store) ListEvaluations(ctx context.Context, runID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	rows.Close()

	warnings, err := s.readWarnings(ctx, runID)
	if err != nil {
		return nil, err
	}
	for i := range evals {
		evals[i].Warnings = warnings[evals[i].ID]
	}
	return evals, nil
}

// readWarnings returns a run's warnings keyed by evaluation id, each list
// in emission order.
func (s *Store) readWarnings(ctx context.Context, runID string) (map[string][]bessel.Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT evaluation_id, function, message
		FROM warnings
		WHERE run_id = ?
		ORDER BY evaluation_id COLLATE BINARY ASC, ord ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]bessel.Warning)
	for rows.Next() {
		var id string
		var w bessel.Warning
		if err := rows.Scan(&id, &w.Function, &w.Message); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		out[id] = append(out[id], w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warnings: %w", err)
	}
	return out, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (Evaluation, error) {
	var (
		e                      Evaluation
		family                 string
		scaling                int
		nuBits, reBits, imBits string
		result                 string
	)
	err := row.Scan(&e.RunID, &e.ID, &e.Seq, &family, &scaling, &nuBits, &reBits, &imBits,
		&e.Request.N, &e.ErrorCode, &e.Error, &result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, err
		}
		return Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}

	if e.Request.Family, err = bessel.ParseFamily(family); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s: %w", e.ID, err)
	}
	e.Request.Scaling = kernel.Scaling(scaling)
	if e.Request.Nu, err = ir.ParseFloatBits(nuBits); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s: nu: %w", e.ID, err)
	}
	if e.Request.Z, err = parseComplexBits(reBits, imBits); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s: z: %w", e.ID, err)
	}
	if e.Values, err = unmarshalValues(result); err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s: %w", e.ID, err)
	}
	return e, nil
}
