package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	SessionOptions
	Query []string
	Body  bool
}

// ResolveResult describes a query answer.
type ResolveResult struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Exact     string `json:"exact,omitempty"`
	Canonical string `json:"canonical,omitempty"`
	Location  string `json:"location,omitempty"`
	Body      string `json:"body,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Answer a query path the way the server would",
		Long: `Answer a query API path against the ingested releases.

Pages report their exact and canonical URIs; redirects report where they
point. Query parameters (id, host, lens) are given with --query.

Examples:
  docket resolve --db ./docket.db /reference/base/1/Base/Shape
  docket resolve --release ./releases /reference/kit/Kit/Square --query lens=kit@1 --body`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringSliceVarP(&opts.Query, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Body, "body", false, "include the response body")

	return cmd
}

func runResolve(opts *ResolveOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	query := url.Values{}
	for _, kv := range opts.Query {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid query parameter %q: want key=value", kv))
		}
		query.Add(k, v)
	}

	s, err := opts.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	resp, ok := s.service.Resolve(path, query)
	if !ok {
		_ = formatter.Error(ErrCodeNoAnswer, fmt.Sprintf("not found: %s", path), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: not found: %s", ErrCodeNoAnswer, path))
	}

	result := ResolveResult{
		Path:      path,
		Kind:      resp.Kind.String(),
		Exact:     resp.Exact,
		Canonical: resp.Canonical,
		Location:  resp.Location(),
	}
	if opts.Body {
		result.Body = resp.Body
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, result.Kind)
	if result.Location != "" {
		fmt.Fprintf(w, "  location:  %s\n", result.Location)
	}
	if result.Exact != "" {
		fmt.Fprintf(w, "  exact:     %s\n", result.Exact)
	}
	if result.Canonical != "" {
		fmt.Fprintf(w, "  canonical: %s\n", result.Canonical)
	}
	if result.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, result.Body)
	}
	return nil
}
