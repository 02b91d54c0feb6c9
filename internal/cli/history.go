package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/besselx/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// RunSummary is one line of the run listing.
type RunSummary struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Label       string `json:"label"`
	Backend     string `json:"backend"`
	Version     string `json:"version"`
	Evaluations int    `json:"evaluations"`
	Failed      int    `json:"failed"`
	Warnings    int    `json:"warnings"`
}

// RunList is the payload of history without a run id.
type RunList struct {
	Runs []RunSummary `json:"runs"`
}

// RenderText prints one line per run.
func (l RunList) RenderText(w io.Writer) {
	if len(l.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range l.Runs {
		fmt.Fprintf(w, "%-36s  %-20s  %3d evaluation(s), %d failed, %d warning(s)\n",
			r.ID, r.Label, r.Evaluations, r.Failed, r.Warnings)
	}
}

// EvaluationSummary is one recorded evaluation.
type EvaluationSummary struct {
	ID       string   `json:"id"`
	Seq      int64    `json:"seq"`
	Function string   `json:"function"`
	Nu       float64  `json:"nu"`
	Z        string   `json:"z"`
	N        int      `json:"n"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// RunDetail is the payload of history with a run id.
type RunDetail struct {
	Run         RunSummary          `json:"run"`
	Evaluations []EvaluationSummary `json:"evaluations"`
}

// RenderText prints the run header and one line per evaluation.
func (d RunDetail) RenderText(w io.Writer) {
	fmt.Fprintf(w, "run %s (%s, backend %s, %s)\n", d.Run.ID, d.Run.Label, d.Run.Backend, d.Run.Version)
	for _, e := range d.Evaluations {
		outcome := "ok"
		if e.Error != "" {
			outcome = e.Error
		}
		fmt.Fprintf(w, "  %4d  %s  %s(%s, %s) n=%d  %s\n",
			e.Seq, shortID(e.ID), e.Function, strconv.FormatFloat(e.Nu, 'g', -1, 64), e.Z, e.N, outcome)
		for _, warn := range e.Warnings {
			fmt.Fprintf(w, "        warning: %s\n", warn)
		}
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the evaluations of one run",
		Long: `List the runs in the evaluation log, oldest first. With a run id, list
that run's evaluations in the order they were made, with their error
codes and warnings.

Examples:
  besselx history --db ./besselx.db
  besselx history 0190c1d2-... --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			if err := runHistory(cmd.Context(), opts, args, formatter); err != nil {
				return formatter.Report(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default store.path)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, args []string, formatter *OutputFormatter) error {
	st, err := opts.openStore(opts.Database, false)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		detail, err := runDetail(ctx, st, args[0])
		if err != nil {
			return err
		}
		return formatter.Success(detail)
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to list runs", Err: err}
	}
	list := RunList{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		evals, err := st.ListEvaluations(ctx, run.ID)
		if err != nil {
			return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to list evaluations", Err: err}
		}
		list.Runs = append(list.Runs, summarizeRun(run, evals))
	}
	return formatter.Success(list)
}

func runDetail(ctx context.Context, st *store.Store, runID string) (RunDetail, error) {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return RunDetail{}, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound, Message: "no such run", Err: err}
	}
	if err != nil {
		return RunDetail{}, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to read run", Err: err}
	}
	evals, err := st.ListEvaluations(ctx, runID)
	if err != nil {
		return RunDetail{}, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore, Message: "failed to list evaluations", Err: err}
	}

	detail := RunDetail{
		Run:         summarizeRun(run, evals),
		Evaluations: make([]EvaluationSummary, 0, len(evals)),
	}
	for _, e := range evals {
		s := EvaluationSummary{
			ID:       e.ID,
			Seq:      e.Seq,
			Function: e.Request.FunctionName(),
			Nu:       e.Request.Nu,
			Z:        strconv.FormatComplex(e.Request.Z, 'g', -1, 128),
			N:        e.Request.N,
			Error:    e.ErrorCode,
		}
		for _, w := range e.Warnings {
			s.Warnings = append(s.Warnings, w.Message)
		}
		detail.Evaluations = append(detail.Evaluations, s)
	}
	return detail, nil
}

func summarizeRun(run store.Run, evals []store.Evaluation) RunSummary {
	s := RunSummary{
		ID:          run.ID,
		Seq:         run.Seq,
		Label:       run.Label,
		Backend:     run.Backend,
		Version:     run.Version,
		Evaluations: len(evals),
	}
	for _, e := range evals {
		if e.Failed() {
			s.Failed++
		}
		s.Warnings += len(e.Warnings)
	}
	return s
}
