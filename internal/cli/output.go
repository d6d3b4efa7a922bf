package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/clintdigital/terraform-provider-danswer/internal/ccpair"
	"github.com/clintdigital/terraform-provider-danswer/internal/client"
	"github.com/clintdigital/terraform-provider-danswer/internal/poll"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A wait timed out or failed, or verification found a mismatch
	ExitCommandError = 2 // Bad arguments, bad configuration or an API error
)

// Error codes reported in JSON output.
const (
	ErrCodeTimeout  = "timeout"
	ErrCodeFatal    = "fatal"
	ErrCodeMismatch = "mismatch"
	ErrCodeAPI      = "api"
	ErrCodeUsage    = "usage"
	ErrCodeGeneric  = "error"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps an operation error onto an exit code and JSON error code.
func classify(err error) (int, string) {
	var (
		exitErr    *ExitError
		timeoutErr *poll.TimeoutError
		fatalErr   *poll.FatalError
		mismatch   *ccpair.MismatchError
		apiErr     *client.APIError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return ExitFailure, ErrCodeTimeout
	case errors.As(err, &fatalErr):
		return ExitFailure, ErrCodeFatal
	case errors.As(err, &mismatch):
		return ExitFailure, ErrCodeMismatch
	case errors.As(err, &apiErr):
		return ExitCommandError, ErrCodeAPI
	case errors.As(err, &exitErr):
		if exitErr.Code == ExitCommandError {
			return exitErr.Code, ErrCodeUsage
		}
		return exitErr.Code, ErrCodeGeneric
	}
	return ExitCommandError, ErrCodeGeneric
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
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs data as JSON, or text in text mode.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Fail reports err in the configured format and returns it as an ExitError.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, errCode := classify(err)
	full := fmt.Sprintf("%s: %v", message, err)

	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: errCode, Message: full},
		})
	} else {
		fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", errCode, full)
	}
	return WrapExitError(code, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
