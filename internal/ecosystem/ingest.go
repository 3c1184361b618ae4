package ecosystem

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
	"github.com/roach88/docket/internal/ir"
	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/store"
)

// Report summarizes one committed ingestion.
type Report struct {
	ReleaseID string
	Package   string
	Index     address.PackageIndex
	Tag       string
	Version   history.Version

	// Pins maps each direct dependency to the tag it was pinned to.
	Pins map[string]string

	Symbols     int
	Hints       []Hint
	Diagnostics []Diagnostic
	Persisted   bool
}

// Hint records a symbol whose documentation is rendered from another
// symbol's. Pruned is set when the symbol carried an identical copy of
// the text, which was dropped instead of stored twice.
type Hint struct {
	Symbol string
	Origin string
	Pruned bool
}

// UpdateRelease ingests one release of graph's package. era maps package
// names to version patterns: the entry for graph's own package is its
// precise tag, the entries for dependencies select their pins (a missing
// entry pins the dependency's latest release).
func (s *Service) UpdateRelease(ctx context.Context, graph ir.PackageGraph, era map[string]string) (address.PackageIndex, error) {
	report, err := s.Ingest(ctx, graph, era)
	if err != nil {
		return 0, err
	}
	return report.Index, nil
}

// Ingest is UpdateRelease returning the full report.
func (s *Service) Ingest(ctx context.Context, graph ir.PackageGraph, era map[string]string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingest(ctx, ingestRequest{graph: graph, era: era, persist: s.store != nil})
}

type ingestRequest struct {
	graph ir.PackageGraph
	era   map[string]string

	// version and id are fixed when replaying; zero values allocate.
	version history.Version
	id      string
	persist bool
}

// ingestion carries the state of one release through the phases.
type ingestion struct {
	s    *Service
	req  ingestRequest
	base *Ecosystem

	working *registry.Registry
	pkg     *registry.Package
	tag     registry.Tag
	v       history.Version
	id      string
	deps    []*registry.Package
	within  []address.PackageIndex
	pins    registry.Pins
	lens    registry.Lens

	modules  map[string]address.ModuleID
	symbols  []address.SymbolID
	articles []address.ArticleID

	report *Report
	next   *Ecosystem
}

func (s *Service) ingest(ctx context.Context, req ingestRequest) (*Report, error) {
	in := &ingestion{
		s:       s,
		req:     req,
		base:    s.current.Load(),
		modules: make(map[string]address.ModuleID),
		pins:    registry.Pins{},
		report:  &Report{Package: req.graph.Package, Pins: map[string]string{}},
	}

	phases := []struct {
		phase Phase
		run   func(context.Context) error
	}{
		{PhaseAllocateIdentity, in.allocate},
		{PhaseRegisterModules, in.registerModules},
		{PhaseResolvePins, in.resolvePins},
		{PhaseRegisterSymbols, in.registerSymbols},
		{PhaseInheritDocumentation, in.inheritDocumentation},
		{PhaseCompile, in.compile},
		{PhaseCommit, in.commit},
	}
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			ingestionsTotal.WithLabelValues("cancelled").Inc()
			s.logger.Info("ingestion cancelled", "package", req.graph.Package, "phase", p.phase)
			return nil, &IngestError{Code: ErrCodeCancelled, Phase: p.phase, Package: req.graph.Package, Err: err}
		}
		start := time.Now()
		if err := p.run(ctx); err != nil {
			ingestionsTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("ingestion failed", "package", req.graph.Package, "phase", p.phase, "error", err)
			if ie, ok := err.(*IngestError); ok && ie.Phase == "" {
				ie.Phase = p.phase
			}
			return nil, err
		}
		phaseDuration.WithLabelValues(string(p.phase)).Observe(time.Since(start).Seconds())
	}

	ingestionsTotal.WithLabelValues("committed").Inc()
	s.logger.Info("release committed",
		"package", in.report.Package,
		"tag", in.report.Tag,
		"version", in.report.Version,
		"symbols", in.report.Symbols,
		"hints", len(in.report.Hints),
		"diagnostics", len(in.report.Diagnostics),
	)
	return in.report, nil
}

func (in *ingestion) allocate(context.Context) error {
	g := &in.req.graph
	if errs := g.Validate(); len(errs) > 0 {
		msg := errs[0].Error()
		if len(errs) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
		}
		return structural(PhaseAllocateIdentity, g.Package, ErrInvalidGraph, "%s", msg)
	}

	text, ok := in.req.era[g.Package]
	if !ok {
		return structural(PhaseAllocateIdentity, g.Package, ErrMissingEra, "no tag for %q", g.Package)
	}
	tag, err := registry.ParseTag(text)
	if err != nil {
		return structural(PhaseAllocateIdentity, g.Package, err, "release tag")
	}
	in.tag = tag

	in.working = in.base.registry.Clone()
	pkg, fresh := in.working.RegisterPackage(g.Package)
	if !fresh {
		pkg = in.working.Writable(pkg.Index)
	}
	if _, dup := pkg.Releases.Tagged(tag); dup {
		return &IngestError{
			Code:    ErrCodeDuplicate,
			Phase:   PhaseAllocateIdentity,
			Package: g.Package,
			Message: fmt.Sprintf("release %s already ingested", tag),
			Err:     registry.ErrDuplicateRelease,
		}
	}
	in.pkg = pkg

	if in.req.version != 0 {
		in.v = in.req.version
		in.s.clock.Observe(in.v)
	} else {
		in.v = in.s.clock.Next()
	}
	in.id = in.req.id
	if in.id == "" {
		in.id = in.s.ids.Generate()
	}

	in.report.ReleaseID = in.id
	in.report.Index = pkg.Index
	in.report.Tag = tag.String()
	in.report.Version = in.v
	return nil
}

func (in *ingestion) registerModules(context.Context) error {
	g := &in.req.graph
	in.pkg.Begin(in.v)
	for _, m := range g.Modules {
		id := in.pkg.RegisterModule(m.Name)
		in.modules[m.Name] = id
		in.pkg.SetModuleDocumentation(id, registry.Documentation{Text: m.Doc})
	}

	in.within = []address.PackageIndex{in.pkg.Index}
	for _, d := range g.Dependencies {
		dep, ok := in.working.PackageNamed(d.Package)
		if !ok {
			return structural(PhaseRegisterModules, g.Package, ErrUnknownDependency, "%q", d.Package)
		}
		in.deps = append(in.deps, dep)
		in.within = append(in.within, dep.Index)
	}
	return nil
}

func (in *ingestion) resolvePins(context.Context) error {
	g := &in.req.graph
	for _, dep := range in.deps {
		release, err := in.pin(dep)
		if err != nil {
			return err
		}
		in.pins[dep.Index] = release.Version
		in.report.Pins[dep.Name] = release.Tag.String()
	}

	err := in.pkg.RecordRelease(registry.Release{ID: in.id, Version: in.v, Tag: in.tag, Pins: in.pins})
	if err != nil {
		return structural(PhaseResolvePins, g.Package, err, "record release")
	}

	for _, m := range g.Modules {
		var imports []address.ModuleID
		for _, name := range m.Imports {
			id, ok := in.working.ModuleNamed(name, in.within)
			if !ok {
				in.s.logger.Debug("import outside ecosystem", "package", g.Package, "module", m.Name, "import", name)
				continue
			}
			imports = append(imports, id)
		}
		in.pkg.SetImports(in.modules[m.Name], imports)
	}

	in.lens = in.working.LensAt(in.pkg, in.v)
	return nil
}

func (in *ingestion) pin(dep *registry.Package) (registry.Release, error) {
	pattern, ok := in.req.era[dep.Name]
	if !ok || pattern == "" {
		release, ok := dep.Releases.Latest()
		if !ok {
			return release, structural(PhaseResolvePins, in.req.graph.Package, ErrUnsnappable, "%q has no releases", dep.Name)
		}
		return release, nil
	}
	mask, err := registry.ParseMask(pattern)
	if err != nil {
		return registry.Release{}, structural(PhaseResolvePins, in.req.graph.Package, err, "pattern for %q", dep.Name)
	}
	release, ok := dep.Releases.Snap(mask)
	if !ok {
		return release, structural(PhaseResolvePins, in.req.graph.Package, ErrUnsnappable, "%s@%s", dep.Name, pattern)
	}
	return release, nil
}

func (in *ingestion) registerSymbols(context.Context) error {
	g := &in.req.graph
	in.symbols = make([]address.SymbolID, len(g.Symbols))
	for i, s := range g.Symbols {
		culture := in.modules[s.Module]
		namespace := culture
		if s.Scope != "" && s.Scope != s.Module {
			id, ok := in.working.ModuleNamed(s.Scope, in.within)
			if !ok {
				return structural(PhaseRegisterSymbols, g.Package, ErrUnknownModule, "scope %q of %s", s.Scope, s.USR)
			}
			namespace = id
		}
		in.symbols[i], _ = in.working.RegisterSymbol(in.pkg, registry.SymbolDecl{
			USR:           s.USR,
			Culture:       culture,
			Namespace:     namespace,
			Path:          s.Path,
			Suffix:        s.Suffix,
			Kind:          s.Kind,
			Declaration:   s.Declaration,
			Availability:  s.Availability,
			Relationships: canonicalRelationships(s.Relationships),
		})
	}

	for _, f := range g.Features {
		host, ok := in.working.SymbolByUSR(f.Host)
		if !ok {
			return structural(PhaseRegisterSymbols, g.Package, ErrUnknownSymbol, "feature host %q", f.Host)
		}
		member, ok := in.working.SymbolByUSR(f.Member)
		if !ok {
			return structural(PhaseRegisterSymbols, g.Package, ErrUnknownSymbol, "feature member %q", f.Member)
		}
		in.pkg.RegisterFeature(address.Feature(member, host, in.modules[f.Module]))
	}

	in.articles = make([]address.ArticleID, len(g.Articles))
	for i, a := range g.Articles {
		in.articles[i] = in.pkg.RegisterArticle(in.modules[a.Module], a.Name, a.Title, a.Body)
	}

	in.pkg.Seal()
	in.working.RebuildRoutes(in.pkg)
	in.report.Symbols = len(g.Symbols)
	return nil
}

func (in *ingestion) commit(ctx context.Context) error {
	in.pkg.Close()

	artifacts, err := buildArtifacts(ctx, in.working, in.base.prefixes)
	if err != nil {
		return &IngestError{Code: artifactsErrorCode(err), Phase: PhaseCommit, Package: in.pkg.Name, Err: err}
	}

	reports := maps.Clone(in.base.reports)
	reports[in.v] = in.report
	in.next = &Ecosystem{
		registry:  in.working,
		prefixes:  in.base.prefixes,
		artifacts: artifacts,
		reports:   reports,
	}

	if in.req.persist {
		if err := in.persist(ctx); err != nil {
			return err
		}
	}

	in.s.current.Store(in.next)
	keyframesGauge.WithLabelValues(in.pkg.Name).Set(float64(in.pkg.KeyframeCount()))
	for _, d := range in.report.Diagnostics {
		linkDiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	}
	return nil
}

// artifactsErrorCode tells a cancelled rebuild from a failed one.
func artifactsErrorCode(err error) IngestErrorCode {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeCancelled
	}
	return ErrCodeArtifacts
}

func (in *ingestion) persist(ctx context.Context) error {
	if in.s.store == nil {
		return &IngestError{Code: ErrCodePersist, Phase: PhaseCommit, Package: in.pkg.Name, Err: ErrNoStore}
	}
	fingerprint, err := ir.ReleaseFingerprint(in.req.graph, in.req.era)
	if err != nil {
		return &IngestError{Code: ErrCodePersist, Phase: PhaseCommit, Package: in.pkg.Name, Err: err}
	}
	diags := make([]store.DiagnosticRecord, len(in.report.Diagnostics))
	for i, d := range in.report.Diagnostics {
		diags[i] = store.DiagnosticRecord{Kind: string(d.Kind), Subject: d.Subject, Text: d.Text, Candidates: d.Candidates}
	}
	inserted, err := in.s.store.WriteRelease(ctx, store.ReleaseRecord{
		Version:       int32(in.v),
		ID:            in.id,
		Package:       in.pkg.Name,
		Tag:           in.report.Tag,
		Graph:         in.req.graph,
		Era:           in.req.era,
		Fingerprint:   fingerprint,
		EngineVersion: ir.EngineVersion,
		GraphVersion:  ir.GraphVersion,
	}, diags)
	if err != nil {
		return &IngestError{Code: ErrCodePersist, Phase: PhaseCommit, Package: in.pkg.Name, Err: err}
	}
	if !inserted {
		return &IngestError{
			Code:    ErrCodeDuplicate,
			Phase:   PhaseCommit,
			Package: in.pkg.Name,
			Message: fmt.Sprintf("release %s already in store", in.report.Tag),
			Err:     registry.ErrDuplicateRelease,
		}
	}
	in.report.Persisted = true
	return nil
}

// canonicalRelationships renders a relationship list as a comparable
// keyframe value: "kind target" lines, sorted.
func canonicalRelationships(rels []ir.Relationship) string {
	lines := make([]string, len(rels))
	for i, r := range rels {
		lines[i] = r.Kind + " " + r.Target
	}
	slices.Sort(lines)
	return strings.Join(slices.Compact(lines), "\n")
}
