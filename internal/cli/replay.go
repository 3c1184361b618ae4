package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/docket/internal/ecosystem"
	"github.com/roach88/docket/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayPackageResult holds the replay result for a single package.
type ReplayPackageResult struct {
	Package       string `json:"package"`
	Releases      int    `json:"releases"`
	Latest        string `json:"latest"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Packages         []ReplayPackageResult `json:"packages"`
	TotalReleases    int                   `json:"total_releases"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the release log and verify determinism",
		Long: `Rebuild the ecosystem from the release log and verify determinism.

The log is replayed twice into independent services. Every package's
sitemap and search index must come out byte-identical.

Exit codes:
  0 - Replay is deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  docket replay --db ./docket.db
  docket replay --db ./docket.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	first, n, err := replayInto(ctx, st)
	if err != nil {
		return err
	}
	second, _, err := replayInto(ctx, st)
	if err != nil {
		return err
	}

	result := ReplayResult{
		Packages:         []ReplayPackageResult{},
		TotalReleases:    n,
		AllDeterministic: true,
	}
	for _, p := range first.Registry().Packages() {
		latest, _ := p.Releases.Latest()
		a, _ := first.Artifacts(p.Name)
		b, ok := second.Artifacts(p.Name)
		same := ok && a.Sitemap == b.Sitemap && bytes.Equal(a.Search, b.Search)
		formatter.VerboseLog("Replayed %s: %d release(s), deterministic=%v", p.Name, len(p.Releases), same)

		result.Packages = append(result.Packages, ReplayPackageResult{
			Package:       p.Name,
			Releases:      len(p.Releases),
			Latest:        latest.Tag.String(),
			Deterministic: same,
		})
		if !same {
			result.AllDeterministic = false
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay is not deterministic")
	}
	return nil
}

// replayInto rebuilds a fresh service from st and returns its snapshot.
func replayInto(ctx context.Context, st *store.Store) (*ecosystem.Ecosystem, int, error) {
	svc := ecosystem.NewService(ecosystem.WithStore(st), ecosystem.WithLogger(discardLogger()))
	n, err := svc.Replay(ctx)
	if err != nil {
		return nil, 0, WrapExitError(ExitCommandError, "failed to replay database", err)
	}
	return svc.Snapshot(), n, nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	w := formatter.Writer
	if result.TotalReleases == 0 {
		fmt.Fprintln(w, "No releases found in database.")
		return
	}
	for _, p := range result.Packages {
		mark := "✓"
		if !p.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s: %d release(s), latest %s\n", mark, p.Package, p.Releases, p.Latest)
	}
	fmt.Fprintf(w, "\nReplayed %d release(s) across %d package(s)\n", result.TotalReleases, len(result.Packages))
}
