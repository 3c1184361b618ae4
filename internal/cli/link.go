package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docket/internal/resolver"
)

// LinkOptions holds flags for the link command.
type LinkOptions struct {
	SessionOptions
	In     string // pkg[@pattern]
	Module string
}

// LinkResult describes a resolved reference.
type LinkResult struct {
	Reference  string   `json:"reference"`
	Kind       string   `json:"kind"`
	Redirected bool     `json:"redirected,omitempty"`
	Exact      string   `json:"exact,omitempty"`
	Canonical  string   `json:"canonical,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// NewLinkCommand creates the link command.
func NewLinkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LinkOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "link <reference>",
		Short: "Resolve a doc comment reference",
		Long: "Resolve a reference as if it appeared in a doc comment of --module in the\n" +
			"release named by --in (pkg or pkg@pattern; the latest release when no\n" +
			"pattern is given).\n\n" +
			"Examples:\n" +
			"  docket link --db ./docket.db --in kit@1 --module Kit Shape\n" +
			"  docket link --db ./docket.db --in kit --module Kit '/base/2/Base/Circle'",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(opts, args[0], cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.In, "in", "", "release the reference is written in, as pkg[@pattern] (required)")
	cmd.Flags().StringVar(&opts.Module, "module", "", "module the reference is written in (required)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

func runLink(opts *LinkOptions, reference string, cmd *cobra.Command) error {
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

	pkg, pattern, _ := strings.Cut(opts.In, "@")
	link, err := s.service.Snapshot().Link(pkg, pattern, opts.Module, reference)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to resolve reference", err)
	}

	result := LinkResult{
		Reference:  reference,
		Kind:       link.Kind.String(),
		Redirected: link.Redirected,
		Exact:      link.Exact,
		Canonical:  link.Canonical,
		Candidates: link.Candidates,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputLinkText(formatter, result)
	}

	if link.Kind != resolver.One {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: reference %q is %s", ErrCodeNoAnswer, reference, result.Kind))
	}
	return nil
}

func outputLinkText(formatter *OutputFormatter, result LinkResult) {
	w := formatter.Writer
	switch result.Kind {
	case resolver.One.String():
		fmt.Fprintf(w, "%s -> %s\n", result.Reference, result.Exact)
		fmt.Fprintf(w, "  canonical: %s\n", result.Canonical)
		if result.Redirected {
			fmt.Fprintln(w, "  matched by legacy spelling")
		}
	case resolver.Ambiguous.String():
		fmt.Fprintf(w, "%s is ambiguous:\n", result.Reference)
		for _, c := range result.Candidates {
			fmt.Fprintf(w, "  %s\n", c)
		}
	default:
		fmt.Fprintf(w, "%s does not resolve\n", result.Reference)
	}
}
