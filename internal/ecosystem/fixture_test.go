package ecosystem

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/docket/internal/ir"
	"github.com/roach88/docket/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(testutil.NewSequentialIDs("rel")),
	}
	return NewService(append(base, opts...)...)
}

func baseGraph(withCircle bool) ir.PackageGraph {
	b := testutil.NewGraph("base").
		Module("Base").
		Symbol("Base", "s:Shape", "protocol", "Shape", testutil.Doc("A drawable shape.")).
		Symbol("Base", "s:Shape.area", "func", "Shape.area()",
			testutil.Doc("Computes the area. See ``Shape``."),
			testutil.Rel(ir.RelMemberOf, "s:Shape")).
		Symbol("Base", "s:Shape.describe", "func", "Shape.describe()",
			testutil.Doc("Describes the shape."),
			testutil.Rel(ir.RelMemberOf, "s:Shape"))
	if withCircle {
		b.Symbol("Base", "s:Circle", "struct", "Circle",
			testutil.Doc("A circle."),
			testutil.Rel(ir.RelConformsTo, "s:Shape"))
	}
	return b.Build()
}

func kitGraph() ir.PackageGraph {
	return testutil.NewGraph("kit").
		Depends("base").
		Module("Kit", "Base").
		ModuleDoc("Kit", "Squares. See ``Square.scale(by:)``.").
		Symbol("Kit", "s:Square", "struct", "Square",
			testutil.Doc("A square ``Shape``."),
			testutil.Rel(ir.RelConformsTo, "s:Shape")).
		Symbol("Kit", "s:Square.area", "func", "Square.area()",
			testutil.Rel(ir.RelImplements, "s:Shape.area"),
			testutil.Rel(ir.RelMemberOf, "s:Square")).
		Symbol("Kit", "s:Square.side", "var", "Square.side",
			testutil.Doc("Side length, ``Missing``.")).
		Symbol("Kit", "s:Square.scale.Int", "func", "Square.scale(by:)",
			testutil.Doc("Scales by an integer.")).
		Symbol("Kit", "s:Square.scale.Double", "func", "Square.scale(by:)",
			testutil.Doc("Scales by a fraction.")).
		Feature("Kit", "s:Square", "s:Shape.describe").
		Article("Kit", "GettingStarted", "Getting Started", "Start with ``Square``.").
		Build()
}

// ingestFixture ingests base 1.0.0 (v1), base 2.0.0 (v2) and kit 1.0.0
// pinned to base 1 (v3).
func ingestFixture(t *testing.T, s *Service) []*Report {
	t.Helper()
	ctx := context.Background()
	var reports []*Report
	for _, step := range []struct {
		graph ir.PackageGraph
		era   map[string]string
	}{
		{baseGraph(false), map[string]string{"base": "1.0.0"}},
		{baseGraph(true), map[string]string{"base": "2.0.0"}},
		{kitGraph(), map[string]string{"kit": "1.0.0", "base": "1"}},
	} {
		report, err := s.Ingest(ctx, step.graph, step.era)
		require.NoError(t, err)
		reports = append(reports, report)
	}
	return reports
}
