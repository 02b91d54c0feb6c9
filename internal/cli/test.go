package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/besselx/internal/harness"
	"github.com/roach88/besselx/pkg/bessel"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Database string // record runs in this log instead of throwaway stores
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Cases  int      `json:"cases"`
	RunID  string   `json:"run_id,omitempty"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "mismatch"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// RenderText prints one line per scenario and a summary.
func (r TestResult) RenderText(w io.Writer) {
	for _, s := range r.Scenarios {
		mark := "\u2713"
		if !s.Pass {
			mark = "\u2717"
		}
		suffix := ""
		if s.Golden == "updated" {
			suffix = " (golden updated)"
		}
		fmt.Fprintf(w, "%s %s (%d cases)%s\n", mark, s.Name, s.Cases, suffix)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		fmt.Fprintln(w, "\u2713 All scenarios passed")
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run reference-table conformance scenarios",
		Long: `Run conformance scenarios against the configured kernel backend.

Each YAML scenario lists requests with expected values, fatal error codes
and warnings. When <scenarios-dir>/golden/<name>.golden exists, the
scenario's canonical report must also match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  besselx test ./scenarios
  besselx test ./scenarios --filter "iv_*"
  besselx test ./scenarios --update
  besselx test ./scenarios --db ./besselx.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			if err := runTests(cmd.Context(), opts, args[0], formatter); err != nil {
				return formatter.Report(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record scenario runs in this SQLite log")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, scenariosDir string, formatter *OutputFormatter) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound,
			Message: fmt.Sprintf("scenarios directory not found: %s", scenariosDir)}
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound, Message: "failed to find scenarios", Err: err}
	}
	if len(files) == 0 {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNoScenarios,
			Message: fmt.Sprintf("no scenarios found in %s", scenariosDir)}
	}

	var runOpts []harness.Option
	runOpts = append(runOpts, harness.WithBackend(opts.backend()))
	if opts.Database != "" {
		st, err := opts.openStore(opts.Database, true)
		if err != nil {
			return err
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithStore(st))
	}

	ev := opts.quietEvaluator()
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr, err := runScenario(ctx, opts, file, ev, runOpts)
		if err != nil {
			return err
		}
		opts.Logger.Debug("scenario finished", "scenario", sr.Name, "pass", sr.Pass, "run", sr.RunID)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		_ = formatter.Failure(ErrCodeScenarioFailed, msg, result)
		return failed(ExitFailure, ErrCodeScenarioFailed, msg)
	}
	return formatter.Success(result)
}

// findScenarioFiles finds all YAML scenario files under dir, skipping
// the golden directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario loads and runs one scenario file. Load and case failures
// are reported in the ScenarioResult; the returned error means the run
// itself could not proceed (storage failures).
func runScenario(ctx context.Context, opts *TestOptions, file string, ev *bessel.Evaluator, runOpts []harness.Option) (ScenarioResult, error) {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr, nil
	}
	sr.Name = scenario.Name
	sr.Cases = len(scenario.Cases)

	result, err := harness.Run(ctx, scenario, ev, runOpts...)
	if err != nil {
		return sr, &ExitError{Code: ExitFailure, ErrCode: ErrCodeStore,
			Message: fmt.Sprintf("scenario %s", scenario.Name), Err: err}
	}
	sr.RunID = result.RunID
	sr.Pass = result.Pass
	sr.Errors = append(sr.Errors, result.Errors...)

	golden := goldenFilePath(file)
	switch {
	case opts.Update:
		if err := updateGoldenFile(result, golden); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
			return sr, nil
		}
		sr.Golden = "updated"
	case fileExists(golden):
		match, err := compareWithGolden(result, golden)
		if err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("golden comparison failed: %v", err))
			return sr, nil
		}
		if !match {
			sr.Pass = false
			sr.Golden = "mismatch"
			sr.Errors = append(sr.Errors, "report does not match golden file (run with --update to regenerate)")
			return sr, nil
		}
		sr.Golden = "match"
	}
	return sr, nil
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// updateGoldenFile writes the canonical report as the golden file.
func updateGoldenFile(result *harness.Result, goldenPath string) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	data, err := harness.MarshalReport(result)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the canonical report against the golden file.
func compareWithGolden(result *harness.Result, goldenPath string) (bool, error) {
	want, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	got, err := harness.MarshalReport(result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal report: %w", err)
	}
	return bytes.Equal(want, got), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
