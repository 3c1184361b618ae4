package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docket/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Releases []string                   `json:"releases"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <release-file-or-dir>...",
		Short: "Validate release documents without ingesting them",
		Long: `Validate CUE release documents without ingesting them.

Checks document syntax and shape, graph consistency, era tags and version
patterns, and the reference syntax of doc comments. Documentation
inheritance cycles are reported as warnings.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	releases, err := compiler.LoadPaths(paths)
	if err != nil {
		code := loadErrorCode(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, code, err)
	}

	result := ValidationResult{Valid: true, Releases: make([]string, 0, len(releases))}
	for _, r := range releases {
		name := r.Graph.Package + "@" + r.Tag()
		formatter.VerboseLog("Validating release: %s", name)
		result.Releases = append(result.Releases, name)
		result.Errors = append(result.Errors, compiler.Validate(r)...)
		result.Warnings = append(result.Warnings, compiler.AnalyzeInheritance(r.Graph)...)
	}
	result.Valid = len(result.Errors) == 0

	if formatter.Format == "json" {
		if !result.Valid {
			if err := formatter.Failure(result.Errors[0].Code, result.Errors[0].Message, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.Message)
	}
	if !result.Valid {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
		}
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintf(w, "✓ %d release(s) valid: %s\n", len(result.Releases), strings.Join(result.Releases, ", "))
	return nil
}

// loadErrorCode classifies a compiler.LoadPaths failure.
func loadErrorCode(err error) string {
	var cErr *compiler.CompileError
	switch {
	case errors.As(err, &cErr):
		return ErrCodeLoadFailed
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	case strings.HasPrefix(err.Error(), "no CUE files found"):
		return ErrCodeNoFiles
	case strings.HasPrefix(err.Error(), "scanning"):
		return ErrCodeScanError
	default:
		return ErrCodeLoadFailed
	}
}
