package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/roach88/docket/internal/compiler"
	"github.com/roach88/docket/internal/ecosystem"
	"github.com/roach88/docket/internal/store"
	"github.com/roach88/docket/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	store   *store.Store
	service *ecosystem.Service
	logger  *slog.Logger
	seq     int64

	// answers holds each query's response, in query order, for
	// replay_identical.
	answers []answer
}

// answer is a query response; ok is false for not found.
type answer struct {
	resp ecosystem.Response
	ok   bool
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and service
// 2. Compile and ingest each release document in order
// 3. Answer each query and validate its expect clause
// 4. Evaluate assertions
// 5. Return result with pass/fail, trace, and errors
//
// A release that fails to compile or ingest is an error, not a failed
// result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store:  st,
		logger: logger,
	}
	h.service = newService(st, scenario.Name, logger)

	ctx := context.Background()
	result := NewResult()

	if err := h.ingest(ctx, scenario.Releases, result); err != nil {
		return nil, err
	}
	h.query(scenario.Queries, result)

	actx := &AssertionContext{
		Ctx:     ctx,
		Service: h.service,
		Store:   st,
		Replay: func() ([]answer, error) {
			return h.replay(ctx, scenario)
		},
		Answers: h.answers,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

func newService(st *store.Store, name string, logger *slog.Logger) *ecosystem.Service {
	return ecosystem.NewService(
		ecosystem.WithStore(st),
		ecosystem.WithLogger(logger),
		ecosystem.WithIDGenerator(testutil.NewSequentialIDs(name)),
	)
}

func (h *Harness) ingest(ctx context.Context, paths []string, result *Result) error {
	for i, path := range paths {
		release, err := compiler.LoadFile(path)
		if err != nil {
			return fmt.Errorf("release %d: %w", i, err)
		}
		report, err := h.service.Ingest(ctx, release.Graph, release.Era)
		if err != nil {
			return fmt.Errorf("release %d (%s): %w", i, path, err)
		}

		h.seq++
		result.Trace = append(result.Trace, TraceEvent{
			Type:        EventIngest,
			Seq:         h.seq,
			Package:     report.Package,
			Tag:         report.Tag,
			Version:     int64(report.Version),
			Pins:        report.Pins,
			Symbols:     report.Symbols,
			Hints:       len(report.Hints),
			Diagnostics: len(report.Diagnostics),
		})
		h.logger.Info("release ingested", "step", i, "package", report.Package, "tag", report.Tag)
	}
	return nil
}

func (h *Harness) query(steps []QueryStep, result *Result) {
	for i, step := range steps {
		resp, ok := h.service.Resolve(step.Path, queryValues(step.Query))
		h.answers = append(h.answers, answer{resp: resp, ok: ok})

		h.seq++
		event := TraceEvent{Type: EventQuery, Seq: h.seq, Path: step.Path, Kind: NotFound}
		if ok {
			event.Kind = resp.Kind.String()
			event.Exact = resp.Exact
			event.Canonical = resp.Canonical
		}
		result.Trace = append(result.Trace, event)

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, event, resp.Body) {
				result.AddError(fmt.Sprintf("queries[%d] %s: %s", i, step.Path, msg))
			}
		}
	}
}

func checkExpect(want *ExpectClause, got TraceEvent, body string) []string {
	var errs []string
	if want.Kind != got.Kind {
		errs = append(errs, fmt.Sprintf("expected kind %q, got %q", want.Kind, got.Kind))
	}
	if want.Exact != "" && want.Exact != got.Exact {
		errs = append(errs, fmt.Sprintf("expected exact %q, got %q", want.Exact, got.Exact))
	}
	if want.Canonical != "" && want.Canonical != got.Canonical {
		errs = append(errs, fmt.Sprintf("expected canonical %q, got %q", want.Canonical, got.Canonical))
	}
	for _, s := range want.Contains {
		if !strings.Contains(body, s) {
			errs = append(errs, fmt.Sprintf("expected body to contain %q", s))
		}
	}
	return errs
}

// replay rebuilds a second service from the store and answers every query
// again.
func (h *Harness) replay(ctx context.Context, scenario *Scenario) ([]answer, error) {
	svc := newService(h.store, scenario.Name+"-replay", h.logger)
	if _, err := svc.Replay(ctx); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	answers := make([]answer, len(scenario.Queries))
	for i, step := range scenario.Queries {
		resp, ok := svc.Resolve(step.Path, queryValues(step.Query))
		answers[i] = answer{resp: resp, ok: ok}
	}
	return answers, nil
}

func queryValues(q map[string]string) url.Values {
	if len(q) == 0 {
		return nil
	}
	v := make(url.Values, len(q))
	for k, val := range q {
		v.Set(k, val)
	}
	return v
}
