package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/besselx/pkg/bessel"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failure, replay mismatch, kernel invariant violation
	ExitCommandError = 2 // Invalid input, bad paths, unreadable config or database
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeNotFound        = "E002" // Path or record not found
	ErrCodeNoScenarios     = "E003" // No scenario files found
	ErrCodeConfig          = "E004" // Config or flag error
	ErrCodeStore           = "E005" // Evaluation log error
	ErrCodeInvalidInput    = "E010" // Request rejected before any kernel call
	ErrCodeKernelInvariant = "E011" // Kernel broke its contract
	ErrCodeScenarioInvalid = "E020" // Scenario file failed validation
	ErrCodeScenarioFailed  = "E021" // Scenario cases failed
	ErrCodeReplayMismatch  = "E030" // Replay did not reproduce the log
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // Output code ("E001", ...); defaults to ErrCodeGeneric
	Message string // Error message
	Err     error  // Underlying error (optional)

	// reported is set once the error has been written through an
	// OutputFormatter, so Execute does not print it twice.
	reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// evaluationExitError maps a fatal evaluation error to its exit code:
// rejected input is a command error, a kernel invariant violation a failure.
func evaluationExitError(err error) *ExitError {
	switch {
	case bessel.IsInputError(err):
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidInput, Message: "invalid input", Err: err}
	case bessel.IsKernelInvariant(err):
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeKernelInvariant, Message: "kernel invariant violated", Err: err}
	}
	return &ExitError{Code: ExitFailure, ErrCode: ErrCodeGeneric, Message: "evaluation failed", Err: err}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload, or partial results on error
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// textRenderer is implemented by payloads with a human-readable form.
type textRenderer interface {
	RenderText(w io.Writer)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	f.renderText(data)
	return nil
}

// Failure outputs a result that ran to completion but did not pass
// (failed scenarios, replay mismatches). In JSON the payload is kept next
// to the error.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	f.renderText(data)
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Report writes err through the formatter and returns it as an
// *ExitError marked as reported.
func (f *OutputFormatter) Report(err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitFailure, "command failed", err)
	}
	if exitErr.reported {
		return exitErr
	}
	code := exitErr.ErrCode
	if code == "" {
		code = ErrCodeGeneric
	}
	var details any
	if exitErr.Err != nil {
		details = exitErr.Err.Error()
	}
	_ = f.Error(code, exitErr.Error(), details)
	exitErr.reported = true
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func (f *OutputFormatter) renderText(data any) {
	switch d := data.(type) {
	case nil:
	case textRenderer:
		d.RenderText(f.Writer)
	default:
		fmt.Fprintln(f.Writer, d)
	}
}

// failed returns the error for a result already written with Failure.
func failed(code int, errCode, message string) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message, reported: true}
}

// reported reports whether err has already been written to the user.
func reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}
