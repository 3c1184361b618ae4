package cli

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes. A command either succeeds, reports a negative
// answer (invalid release, unresolved reference, failed scenario), or
// cannot run at all.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// Response codes for CLI output. Release validation reports the
// compiler's own E2xx codes instead.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002" // walking a release directory failed
	ErrCodeNoFiles     = "E003" // no .cue release documents
	ErrCodeLoadFailed  = "E004" // CUE parse or graph compile failed
	ErrCodeNotFound    = "E005"
	ErrCodeIngest      = "E006" // ingestion abandoned by the ecosystem
	ErrCodeWriteFailed = "E007"
	ErrCodeNoAnswer    = "E008" // path or reference did not resolve
	ErrCodeCycle       = "E009" // documentation inheritance loops
)

// CLIResponse is the envelope of every --format=json output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes why a command produced a negative answer.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ExitError carries the process exit code up to main.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError with no underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and context to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure when
// err carries none.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON
// CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; Writer when nil
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

// Success reports a positive result. Text output prints data with its
// default formatting.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error reports a result that has no payload. Text output shows details
// only in verbose mode.
func (f *OutputFormatter) Error(code, message string, details any) error {
	cliErr := &CLIError{Code: code, Message: message, Details: details}
	if f.isJSON() {
		return f.encode(CLIResponse{Status: "error", Error: cliErr})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Failure reports an error together with the data explaining it, such
// as every validation error of a release. It always writes JSON; text
// callers print their own summary.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	return f.encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	})
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog writes a line to the verbose writer when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns the writer for verbose output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	return cmp.Or(f.ErrWriter, f.Writer)
}
