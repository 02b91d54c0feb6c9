package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/besselx/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	All      bool // replay every run instead of one
}

// ReplayMismatch is one field that did not reproduce.
type ReplayMismatch struct {
	Evaluation string `json:"evaluation"`
	Function   string `json:"function"`
	Field      string `json:"field"`
	Stored     string `json:"stored"`
	Replayed   string `json:"replayed"`
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string           `json:"run_id"`
	Label         string           `json:"label"`
	Backend       string           `json:"backend"`
	Checked       int              `json:"checked"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// RenderText prints one block per run.
func (r ReplayResult) RenderText(w io.Writer) {
	for _, run := range r.Runs {
		status := "\u2713"
		if !run.Deterministic {
			status = "\u2717"
		}
		fmt.Fprintf(w, "%s %s (%s): %d evaluation(s) checked\n", status, run.RunID, run.Label, run.Checked)
		for _, m := range run.Mismatches {
			fmt.Fprintf(w, "  %s %s %s: stored %s, replayed %s\n",
				shortID(m.Evaluation), m.Function, m.Field, m.Stored, m.Replayed)
		}
	}
	fmt.Fprintln(w)
	if r.AllDeterministic {
		fmt.Fprintf(w, "\u2713 %d run(s) reproduced exactly\n", r.TotalRuns)
	}
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Re-evaluate recorded runs and verify bit-exact reproduction",
		Long: `Re-evaluate every request of a recorded run with the configured kernel
and compare the outcome with the log: error code, every value bit for bit,
and the warning sequence.

Without a run id the most recent run is replayed; --all replays every run.

Exit codes:
  0 - Every evaluation reproduced exactly
  1 - One or more evaluations differ from the log
  2 - Command error (database or run not found, etc.)

Examples:
  besselx replay --db ./besselx.db
  besselx replay 0190c1d2-... --db ./besselx.db
  besselx replay --all --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			if err := runReplay(cmd.Context(), opts, args, formatter); err != nil {
				return formatter.Report(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default store.path)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "replay every run")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, args []string, formatter *OutputFormatter) error {
	if opts.All && len(args) > 0 {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "--all and a run id are mutually exclusive"}
	}

	st, err := opts.openStore(opts.Database, false)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := selectRuns(ctx, st, args, opts.All)
	if err != nil {
		return err
	}

	ev := opts.quietEvaluator()
	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	for _, run := range runs {
		if run.Backend != opts.backend() {
			opts.Logger.Warn("run was recorded with a different backend",
				"run", run.ID, "recorded", run.Backend, "configured", opts.backend())
		}
		rr, err := st.Replay(ctx, run.ID, ev)
		if err != nil {
			return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore,
				Message: fmt.Sprintf("failed to replay run %s", run.ID), Err: err}
		}
		result.Runs = append(result.Runs, newReplayRunResult(run, rr))
		if !rr.OK() {
			result.AllDeterministic = false
		}
	}

	if !result.AllDeterministic {
		msg := "replay did not reproduce the log"
		_ = formatter.Failure(ErrCodeReplayMismatch, msg, result)
		return failed(ExitFailure, ErrCodeReplayMismatch, msg)
	}
	return formatter.Success(result)
}

// selectRuns resolves the runs to replay: the named run, every run, or
// the latest.
func selectRuns(ctx context.Context, st *store.Store, args []string, all bool) ([]store.Run, error) {
	var (
		runs []store.Run
		err  error
	)
	switch {
	case all:
		runs, err = st.ListRuns(ctx)
	case len(args) == 1:
		var run store.Run
		run, err = st.ReadRun(ctx, args[0])
		runs = []store.Run{run}
	default:
		var run store.Run
		run, err = st.LatestRun(ctx)
		runs = []store.Run{run}
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound, Message: "no such run", Err: err}
	}
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to read runs", Err: err}
	}
	return runs, nil
}

func newReplayRunResult(run store.Run, rr store.ReplayResult) ReplayRunResult {
	out := ReplayRunResult{
		RunID:         run.ID,
		Label:         run.Label,
		Backend:       run.Backend,
		Checked:       rr.Checked,
		Deterministic: rr.OK(),
	}
	for _, m := range rr.Mismatches {
		out.Mismatches = append(out.Mismatches, ReplayMismatch{
			Evaluation: m.EvaluationID,
			Function:   m.Function,
			Field:      m.Field,
			Stored:     m.Stored,
			Replayed:   m.Replayed,
		})
	}
	return out
}
