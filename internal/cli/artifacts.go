package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ArtifactsOptions holds flags for the artifacts command.
type ArtifactsOptions struct {
	SessionOptions
	Output string
}

// ArtifactsResult lists the files written.
type ArtifactsResult struct {
	Files []string `json:"files"`
}

// NewArtifactsCommand creates the artifacts command.
func NewArtifactsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArtifactsOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "artifacts [package]...",
		Short: "Write sitemaps and search indexes",
		Long: `Write each package's sitemap and search index under --output, laid out
the way the server serves them:

  <output>/<sitemaps>/<package>.txt
  <output>/<search>/<package>/search.json

With no arguments every package is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifacts(opts, args, cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runArtifacts(opts *ArtifactsOptions, packages []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	s, err := opts.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.service.Snapshot()
	if len(packages) == 0 {
		for _, p := range snap.Registry().Packages() {
			packages = append(packages, p.Name)
		}
	}

	prefixes := snap.Prefixes()
	result := ArtifactsResult{Files: []string{}}
	for _, pkg := range packages {
		a, ok := snap.Artifacts(pkg)
		if !ok {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("unknown package %q", pkg), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: unknown package %q", ErrCodeNotFound, pkg))
		}
		files := []struct {
			path string
			data []byte
		}{
			{filepath.Join(opts.Output, prefixes.Sitemaps, pkg+".txt"), []byte(a.Sitemap)},
			{filepath.Join(opts.Output, prefixes.Search, pkg, "search.json"), a.Search},
		}
		for _, f := range files {
			if err := writeFile(f.path, f.data); err != nil {
				_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
			}
			formatter.VerboseLog("Wrote %s (%d bytes)", f.path, len(f.data))
			result.Files = append(result.Files, f.path)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", f)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
