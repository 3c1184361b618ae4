package cli

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/docket/internal/compiler"
	"github.com/roach88/docket/internal/ecosystem"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Database string
}

// IngestedRelease summarizes one ingestion report.
type IngestedRelease struct {
	Package     string                 `json:"package"`
	Tag         string                 `json:"tag"`
	Version     int64                  `json:"version"`
	Pins        map[string]string      `json:"pins,omitempty"`
	Symbols     int                    `json:"symbols"`
	Hints       int                    `json:"hints"`
	Diagnostics []ecosystem.Diagnostic `json:"diagnostics,omitempty"`
	Persisted   bool                   `json:"persisted"`
}

// IngestResult holds the ingest command's output.
type IngestResult struct {
	Releases []IngestedRelease `json:"releases"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <release-file-or-dir>...",
		Short: "Ingest release documents into the release log",
		Long: `Validate and ingest CUE release documents, in argument order.

Releases already in the database are replayed first, so dependency
patterns can pin releases ingested by earlier runs. Unresolvable doc
comment references are reported as diagnostics; they do not fail the
ingestion.

Exit codes:
  0 - All releases ingested
  1 - A release failed validation or was rejected
  2 - Command error (invalid paths, database errors, etc.)

Examples:
  docket ingest --db ./docket.db ./releases
  docket ingest --db ./docket.db base-1.cue kit-1.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite release log (overrides config)")

	return cmd
}

func runIngest(opts *IngestOptions, paths []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	releases, err := compiler.LoadPaths(paths)
	if err != nil {
		code := loadErrorCode(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, code, err)
	}
	for _, r := range releases {
		if errs := compiler.Validate(r); len(errs) > 0 {
			msg := fmt.Sprintf("%s@%s: %s", r.Graph.Package, r.Tag(), errs[0].Error())
			_ = formatter.Error(errs[0].Code, msg, errs)
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
		}
	}

	s, err := opts.newSession(ctx, cmd, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.store == nil {
		s.logger.Warn("no database configured, releases are not persisted")
	}

	result := IngestResult{Releases: make([]IngestedRelease, 0, len(releases))}
	for _, r := range releases {
		report, err := s.service.Ingest(ctx, r.Graph, r.Era)
		if err != nil {
			code := ingestErrorCode(err)
			_ = formatter.Error(code, err.Error(), nil)
			return WrapExitError(ExitFailure, fmt.Sprintf("ingesting %s@%s", r.Graph.Package, r.Tag()), err)
		}
		result.Releases = append(result.Releases, IngestedRelease{
			Package:     report.Package,
			Tag:         report.Tag,
			Version:     int64(report.Version),
			Pins:        report.Pins,
			Symbols:     report.Symbols,
			Hints:       len(report.Hints),
			Diagnostics: report.Diagnostics,
			Persisted:   report.Persisted,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, r := range result.Releases {
		fmt.Fprintf(w, "✓ %s@%s (version %d, %d symbols, %d hints, %d diagnostics)\n",
			r.Package, r.Tag, r.Version, r.Symbols, r.Hints, len(r.Diagnostics))
		for dep, tag := range sortedPins(r.Pins) {
			fmt.Fprintf(w, "  pin %s@%s\n", dep, tag)
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  %s: %q in %s\n", d.Kind, d.Text, d.Subject)
		}
	}
	return nil
}

func sortedPins(pins map[string]string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, dep := range slices.Sorted(maps.Keys(pins)) {
			if !yield(dep, pins[dep]) {
				return
			}
		}
	}
}
