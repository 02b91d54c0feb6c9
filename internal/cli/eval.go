package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/besselx/internal/store"
	"github.com/roach88/besselx/pkg/bessel"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Nu       float64
	Z        []float64 // re[,im]
	N        int
	Scaling  string
	Database string
	Record   bool
	Label    string
}

// EvalValue is one output element. Components are strings so that NaN
// and infinities survive JSON encoding.
type EvalValue struct {
	Order float64 `json:"order"`
	Re    string  `json:"re"`
	Im    string  `json:"im"`
}

// EvalResult is the payload of the eval command.
type EvalResult struct {
	Function     string           `json:"function"`
	Nu           float64          `json:"nu"`
	Z            [2]float64       `json:"z"`
	Values       []EvalValue      `json:"values"`
	Warnings     []bessel.Warning `json:"warnings,omitempty"`
	RunID        string           `json:"run_id,omitempty"`
	EvaluationID string           `json:"evaluation_id"`

	values []complex128
}

// RenderText writes one line per order.
func (r EvalResult) RenderText(w io.Writer) {
	z := complex(r.Z[0], r.Z[1])
	for i, v := range r.Values {
		fmt.Fprintf(w, "%s(%s, %s) = %s\n", r.Function,
			strconv.FormatFloat(v.Order, 'g', -1, 64),
			strconv.FormatComplex(z, 'g', -1, 128),
			strconv.FormatComplex(r.values[i], 'g', -1, 128))
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning [%s]: %s\n", warn.Function, warn.Message)
	}
	if r.RunID != "" {
		fmt.Fprintf(w, "recorded %s in run %s\n", shortID(r.EvaluationID), r.RunID)
	}
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <family>",
		Short: "Evaluate a batch of consecutive orders",
		Long: `Evaluate I, K, H1 or H2 at orders nu, nu+1, ... (or nu, nu-1, ... for
negative nu) and complex argument z.

Families: i, k, hankel1 (h1), hankel2 (h2).
Scaling: unscaled (1) or scaled (2). Scaled results are
  I*exp(-|Re z|), K*exp(z), H1*exp(-iz), H2*exp(iz).

Kernel warnings (overflow, underflow, loss of significance) are logged
and included in the output; they do not change the exit code.

Exit codes:
  0 - Values computed (possibly with warnings)
  1 - Kernel invariant violated, or the log could not be written
  2 - Invalid input (rejected before any kernel call)

Examples:
  besselx eval i --nu 0 --z 1,1 -n 3
  besselx eval hankel1 --nu -0.5 --z 2 --scaling scaled
  besselx eval k --nu 2.5 --z 0.5,0.25 --db ./besselx.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			if err := runEval(cmd.Context(), opts, args[0], formatter); err != nil {
				return formatter.Report(err)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.Nu, "nu", 0, "first order")
	cmd.Flags().Float64SliceVar(&opts.Z, "z", nil, "argument as re[,im]")
	cmd.Flags().IntVarP(&opts.N, "count", "n", 1, "number of consecutive orders")
	cmd.Flags().StringVar(&opts.Scaling, "scaling", "unscaled", "unscaled|scaled|1|2")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the evaluation in this SQLite log")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record in the configured log (store.path)")
	cmd.Flags().StringVar(&opts.Label, "label", "eval", "run label for recorded evaluations")

	return cmd
}

func runEval(ctx context.Context, opts *EvalOptions, family string, formatter *OutputFormatter) error {
	req, err := opts.request(family)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidInput, Message: "invalid input", Err: err}
	}

	ev := opts.evaluator()
	var e store.Evaluation
	if opts.Database != "" || opts.Record {
		st, err := opts.openStore(opts.Database, true)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.StartRun(ctx, opts.Label, opts.backend())
		if err != nil {
			return &ExitError{Code: ExitFailure, ErrCode: ErrCodeStore, Message: "failed to start run", Err: err}
		}
		e, err = st.Record(ctx, run.ID, ev, req)
		if err != nil {
			return &ExitError{Code: ExitFailure, ErrCode: ErrCodeStore, Message: "failed to record evaluation", Err: err}
		}
		opts.Logger.Info("recorded evaluation", "run", run.ID, "evaluation", shortID(e.ID))
	} else {
		e, err = store.Evaluate(ev, req)
		if err != nil {
			return err
		}
	}

	if e.Failed() {
		return evaluationExitError(&bessel.Error{
			Code:     bessel.ErrorCode(e.ErrorCode),
			Function: req.FunctionName(),
			Message:  e.Error,
		})
	}

	return formatter.Success(newEvalResult(req, e))
}

// request builds and validates the request named by the flags.
func (o *EvalOptions) request(family string) (bessel.Request, error) {
	f, err := bessel.ParseFamily(family)
	if err != nil {
		return bessel.Request{}, err
	}
	scaling, err := bessel.ParseScaling(o.Scaling)
	if err != nil {
		return bessel.Request{}, err
	}
	var z complex128
	switch len(o.Z) {
	case 1:
		z = complex(o.Z[0], 0)
	case 2:
		z = complex(o.Z[0], o.Z[1])
	default:
		return bessel.Request{}, fmt.Errorf("--z takes re or re,im, got %d component(s)", len(o.Z))
	}

	req := bessel.Request{Family: f, Scaling: scaling, Nu: o.Nu, Z: z, N: o.N}
	if err := req.Validate(); err != nil {
		return bessel.Request{}, err
	}
	return req, nil
}

func newEvalResult(req bessel.Request, e store.Evaluation) EvalResult {
	orders := req.Orders()
	values := make([]EvalValue, len(e.Values))
	for i, v := range e.Values {
		values[i] = EvalValue{
			Order: orders[i],
			Re:    strconv.FormatFloat(real(v), 'g', -1, 64),
			Im:    strconv.FormatFloat(imag(v), 'g', -1, 64),
		}
	}
	return EvalResult{
		Function:     req.FunctionName(),
		Nu:           req.Nu,
		Z:            [2]float64{real(req.Z), imag(req.Z)},
		Values:       values,
		Warnings:     e.Warnings,
		RunID:        e.RunID,
		EvaluationID: e.ID,
		values:       e.Values,
	}
}

// shortID abbreviates a content hash for text output.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
