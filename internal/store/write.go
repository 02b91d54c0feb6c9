package store

import (
	"context"
	"fmt"

	"github.com/roach88/besselx/internal/ir"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, label, backend, version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Seq, run.Label, run.Backend, run.Version)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvaluation inserts an evaluation and its warnings in one transaction.
//
// The (run_id, id) key is content-addressed: writing the same request to
// the same run again leaves the first record untouched, warnings included.
// The run must exist (foreign key constraint).
func (s *Store) WriteEvaluation(ctx context.Context, e Evaluation) error {
	if !e.Request.Family.Valid() {
		return fmt.Errorf("write evaluation: unknown family %d", int(e.Request.Family))
	}

	result, err := marshalValues(e.Values)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	digest := ""
	if !e.Failed() {
		if digest, err = ir.ValuesDigest(e.Values); err != nil {
			return fmt.Errorf("write evaluation: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write evaluation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	req := e.Request
	res, err := tx.ExecContext(ctx, `
		INSERT INTO evaluations
		(run_id, id, seq, family, scaling, nu_bits, z_re_bits, z_im_bits, n,
		 error_code, error, result, values_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO NOTHING
	`,
		e.RunID,
		e.ID,
		e.Seq,
		req.Family.String(),
		int(req.Scaling),
		ir.FloatBits(req.Nu),
		ir.FloatBits(real(req.Z)),
		ir.FloatBits(imag(req.Z)),
		req.N,
		e.ErrorCode,
		e.Error,
		result,
		digest,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: insert: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write evaluation: rows affected: %w", err)
	}
	if inserted > 0 {
		for i, w := range e.Warnings {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO warnings (run_id, evaluation_id, ord, function, message)
				VALUES (?, ?, ?, ?, ?)
			`, e.RunID, e.ID, i, w.Function, w.Message)
			if err != nil {
				return fmt.Errorf("write evaluation: warning %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write evaluation: commit: %w", err)
	}
	return nil
}
