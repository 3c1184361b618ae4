package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/docket/internal/compiler"
	"github.com/roach88/docket/internal/config"
	"github.com/roach88/docket/internal/ecosystem"
	"github.com/roach88/docket/internal/store"
)

// SessionOptions are the flags of commands that answer queries: an
// optional release log and release documents ingested before answering.
type SessionOptions struct {
	*RootOptions
	Database string
	Releases []string
}

func (o *SessionOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite release log (overrides config)")
	cmd.Flags().StringSliceVar(&o.Releases, "release", nil, "release documents or directories to ingest first")
}

// session is an ecosystem service plus what it was built from.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	service *ecosystem.Service
}

// openSession loads configuration, opens and replays the release log when
// one is configured, and ingests the --release documents.
func (o *SessionOptions) openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	s, err := o.newSession(ctx, cmd, o.Database)
	if err != nil {
		return nil, err
	}
	if len(o.Releases) == 0 {
		return s, nil
	}

	releases, err := compiler.LoadPaths(o.Releases)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load releases", err)
	}
	for _, r := range releases {
		if _, err := s.service.Ingest(ctx, r.Graph, r.Era); err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to ingest %s@%s", r.Graph.Package, r.Tag()), err)
		}
	}
	return s, nil
}

func (o *RootOptions) newSession(ctx context.Context, cmd *cobra.Command, database string) (*session, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if database != "" {
		cfg.Database = database
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	s := &session{cfg: cfg, logger: logger}
	svcOpts := []ecosystem.Option{
		ecosystem.WithLogger(logger),
		ecosystem.WithPrefixes(prefixes(cfg)),
	}
	if cfg.Database != "" {
		logger.Debug("opening database", "path", cfg.Database)
		st, err := store.Open(cfg.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.store = st
		svcOpts = append(svcOpts, ecosystem.WithStore(st))
	}
	s.service = ecosystem.NewService(svcOpts...)

	if s.store != nil {
		n, err := s.service.Replay(ctx)
		if err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to replay database", err)
		}
		logger.Debug("database replayed", "releases", n)
	}
	return s, nil
}

// Close closes the release log, if any.
func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

func prefixes(cfg config.Config) ecosystem.Prefixes {
	return ecosystem.Prefixes{
		Symbols:  cfg.Prefixes.Symbols,
		Articles: cfg.Prefixes.Articles,
		Sitemaps: cfg.Prefixes.Sitemaps,
		Search:   cfg.Prefixes.Search,
	}
}

// ingestErrorCode maps an ingestion failure to a CLI error code.
func ingestErrorCode(err error) string {
	var ie *ecosystem.IngestError
	if errors.As(err, &ie) {
		return string(ie.Code)
	}
	return ErrCodeIngest
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
