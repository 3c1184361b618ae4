package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/docket/internal/ecosystem"
	"github.com/roach88/docket/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			if event.Type == EventIngest {
				fmt.Fprintf(&buf, "  [%d] ingest %s@%s\n", i+1, event.Package, event.Tag)
			} else {
				fmt.Fprintf(&buf, "  [%d] query %s -> %s\n", i+1, event.Path, event.Kind)
			}
		}
	}
	return buf.String()
}

// AssertionContext carries what assertions inspect.
type AssertionContext struct {
	Ctx     context.Context
	Service *ecosystem.Service
	Store   *store.Store

	// Replay answers every scenario query from a service rebuilt from the
	// store. Answers holds the original answers, in the same order.
	Replay  func() ([]answer, error)
	Answers []answer
}

// EvaluateAssertions runs all assertions and returns error messages for
// failures.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %s", i, a.Type, err.Error()))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertPin:
		return assertPin(result, a, actx)
	case AssertHint:
		return assertHint(result, a, actx)
	case AssertDiagnosticCount:
		return assertDiagnosticCount(result, a, actx)
	case AssertStored:
		return assertStored(a, actx)
	case AssertReplayIdentical:
		return assertReplayIdentical(actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func report(result *Result, a Assertion, actx *AssertionContext) (*ecosystem.Report, error) {
	r, ok := actx.Service.Snapshot().Report(a.Package, a.Tag)
	if !ok {
		return nil, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("release %s@%s", a.Package, a.Tag),
			Actual:   "release not ingested",
			Trace:    result.Trace,
		}
	}
	return r, nil
}

// assertPin checks the tag a release pinned a dependency to.
func assertPin(result *Result, a Assertion, actx *AssertionContext) error {
	r, err := report(result, a, actx)
	if err != nil {
		return err
	}
	got, ok := r.Pins[a.Dependency]
	if !ok {
		got = "(not pinned)"
	}
	if got != a.Pinned {
		return &AssertionError{
			Type:     AssertPin,
			Expected: fmt.Sprintf("%s@%s pins %s to %s", a.Package, a.Tag, a.Dependency, a.Pinned),
			Actual:   got,
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertHint checks that a symbol inherits its documentation from origin.
func assertHint(result *Result, a Assertion, actx *AssertionContext) error {
	r, err := report(result, a, actx)
	if err != nil {
		return err
	}
	for _, h := range r.Hints {
		if h.Symbol == a.Symbol {
			if h.Origin == a.Origin {
				return nil
			}
			return &AssertionError{
				Type:     AssertHint,
				Expected: fmt.Sprintf("%s inherits from %s", a.Symbol, a.Origin),
				Actual:   fmt.Sprintf("inherits from %s", h.Origin),
			}
		}
	}
	return &AssertionError{
		Type:     AssertHint,
		Expected: fmt.Sprintf("%s inherits from %s", a.Symbol, a.Origin),
		Actual:   "no inherited documentation",
	}
}

// assertDiagnosticCount checks how many references a release left unlinked.
func assertDiagnosticCount(result *Result, a Assertion, actx *AssertionContext) error {
	r, err := report(result, a, actx)
	if err != nil {
		return err
	}
	if len(r.Diagnostics) != a.Count {
		texts := make([]string, len(r.Diagnostics))
		for i, d := range r.Diagnostics {
			texts[i] = fmt.Sprintf("%s %q in %s", d.Kind, d.Text, d.Subject)
		}
		return &AssertionError{
			Type:     AssertDiagnosticCount,
			Expected: fmt.Sprintf("%d diagnostics", a.Count),
			Actual:   fmt.Sprintf("%d diagnostics %v", len(r.Diagnostics), texts),
		}
	}
	return nil
}

// assertStored checks the release log row and its diagnostics.
func assertStored(a Assertion, actx *AssertionContext) error {
	rec, err := actx.Store.ReadRelease(actx.Ctx, a.Package, a.Tag)
	if err != nil {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("release %s@%s in store", a.Package, a.Tag),
			Actual:   err.Error(),
		}
	}
	diags, err := actx.Store.ReadDiagnostics(actx.Ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("read diagnostics: %w", err)
	}
	if r, ok := actx.Service.Snapshot().Report(a.Package, a.Tag); ok && len(diags) != len(r.Diagnostics) {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("%d stored diagnostics", len(r.Diagnostics)),
			Actual:   fmt.Sprintf("%d", len(diags)),
		}
	}
	return nil
}

// assertReplayIdentical checks that a service rebuilt from the store
// answers every query exactly as the original did.
func assertReplayIdentical(actx *AssertionContext) error {
	replayed, err := actx.Replay()
	if err != nil {
		return err
	}
	for i, want := range actx.Answers {
		got := replayed[i]
		if got != want {
			return &AssertionError{
				Type:     AssertReplayIdentical,
				Expected: fmt.Sprintf("query %d: %s %s", i, describe(want), want.resp.Exact),
				Actual:   fmt.Sprintf("%s %s", describe(got), got.resp.Exact),
			}
		}
	}
	return nil
}

func describe(a answer) string {
	if !a.ok {
		return NotFound
	}
	return a.resp.Kind.String()
}
