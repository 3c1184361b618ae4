package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/docket/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	SessionOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documentation pages over HTTP",
		Long: `Serve the query API over HTTP until interrupted.

The release log is replayed at startup. GET requests answer with pages
(200), redirects (301 for legacy spellings, 302 for version patterns) or
404. /healthz and /metrics are served alongside.

Example:
  docket serve --db ./docket.db --listen :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := opts.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := s.cfg.Listen
	if opts.Listen != "" {
		addr = opts.Listen
	}

	srv := server.New(s.service, server.WithLogger(s.logger))
	s.logger.Info("server starting", "addr", addr, "packages", s.service.Snapshot().Registry().Len())
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", addr)

	if err := srv.Run(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
