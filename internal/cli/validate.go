package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/besselx/internal/harness"
)

// ValidationError is one invalid scenario file.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"` // CUE error details for schema violations
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Files     int               `json:"files"`
	Scenarios []string          `json:"scenarios"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// RenderText prints a verdict and one block per invalid file.
func (r ValidationResult) RenderText(w io.Writer) {
	if r.Valid {
		fmt.Fprintf(w, "\u2713 %d scenario file(s) valid\n", r.Files)
		return
	}
	fmt.Fprintln(w, "\u2717 Validation failed")
	fmt.Fprintln(w)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "%s\n  %s: %s\n", e.File, e.Code, e.Message)
		if e.Details != "" {
			fmt.Fprintf(w, "  %s\n", e.Details)
		}
		fmt.Fprintln(w)
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file|dir>...",
		Short: "Validate scenario files without running them",
		Long: `Validate conformance scenario files without evaluating any case.

Performs strict YAML decoding, checks against the embedded CUE schema, and
runs the consistency checks the schema cannot express (expect length
matches n, expect and error are exclusive). Scenario names must be unique
across all given files.

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error (path not found, no scenario files)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if err := runValidate(rootOpts, args, formatter); err != nil {
				return formatter.Report(err)
			}
			return nil
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, formatter *OutputFormatter) error {
	files, err := collectScenarioFiles(paths)
	if err != nil {
		return err
	}

	result := ValidationResult{Files: len(files), Scenarios: []string{}}
	seen := make(map[string]string)
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)

		scenario, err := harness.LoadScenario(file)
		if err != nil {
			result.Errors = append(result.Errors, scenarioValidationError(file, err))
			continue
		}
		if prev, ok := seen[scenario.Name]; ok {
			result.Errors = append(result.Errors, ValidationError{
				File:    file,
				Code:    ErrCodeScenarioInvalid,
				Message: fmt.Sprintf("duplicate scenario name %q (also in %s)", scenario.Name, prev),
			})
			continue
		}
		seen[scenario.Name] = file
		result.Scenarios = append(result.Scenarios, scenario.Name)
	}
	opts.Logger.Debug("validated scenarios", "files", len(files), "errors", len(result.Errors))

	result.Valid = len(result.Errors) == 0
	if !result.Valid {
		msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))
		_ = formatter.Failure(ErrCodeScenarioInvalid, msg, result)
		return failed(ExitFailure, ErrCodeScenarioInvalid, msg)
	}
	return formatter.Success(result)
}

// collectScenarioFiles expands directories to the scenario files they
// contain. Explicit files are taken as given.
func collectScenarioFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound,
				Message: fmt.Sprintf("path not found: %s", p), Err: err}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := findScenarioFiles(p, "")
		if err != nil {
			return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound,
				Message: fmt.Sprintf("failed to scan %s", p), Err: err}
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNoScenarios, Message: "no scenario files found"}
	}
	return files, nil
}

func scenarioValidationError(file string, err error) ValidationError {
	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		return ValidationError{
			File:    file,
			Code:    ErrCodeScenarioInvalid,
			Message: "schema violation",
			Details: schemaErr.Details,
		}
	}
	return ValidationError{File: file, Code: ErrCodeScenarioInvalid, Message: err.Error()}
}
