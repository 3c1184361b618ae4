package ecosystem

import (
	"context"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/ir"
	"github.com/roach88/docket/internal/registry"
)

// rendered is the documentation a symbol ends up showing: its text and
// the symbol that owns that text.
type rendered struct {
	text   string
	origin address.SymbolID
	ok     bool
}

// inheritor decides the documentation record of every symbol declared by
// the release being ingested.
type inheritor struct {
	in      *ingestion
	own     map[address.SymbolID]string
	sources map[address.SymbolID][]address.SymbolID

	decided  map[address.SymbolID]registry.Documentation
	pruned   map[address.SymbolID]bool
	visiting map[address.SymbolID]bool
}

func (in *ingestion) inheritDocumentation(context.Context) error {
	g := &in.req.graph
	d := &inheritor{
		in:       in,
		own:      make(map[address.SymbolID]string, len(g.Symbols)),
		sources:  make(map[address.SymbolID][]address.SymbolID),
		decided:  make(map[address.SymbolID]registry.Documentation, len(g.Symbols)),
		pruned:   make(map[address.SymbolID]bool),
		visiting: make(map[address.SymbolID]bool),
	}
	for i, s := range g.Symbols {
		id := in.symbols[i]
		d.own[id] = s.Doc
		for _, rel := range s.Relationships {
			if !rel.InheritsDocumentation() {
				continue
			}
			if target, ok := in.working.SymbolByUSR(rel.Target); ok && target != id {
				d.sources[id] = append(d.sources[id], target)
			}
		}
	}

	for _, id := range in.symbols {
		doc := d.decide(id)
		in.pkg.SetDocumentation(id, doc)
		if doc.Inherited {
			in.report.Hints = append(in.report.Hints, Hint{
				Symbol: in.working.Symbol(id).USR,
				Origin: in.working.Symbol(doc.Origin).USR,
				Pruned: d.pruned[id],
			})
		}
	}
	return nil
}

// decide returns id's documentation record. Inherited records always
// point at the symbol that owns the text, so readers never follow more
// than one hop for documentation recorded here.
func (d *inheritor) decide(id address.SymbolID) registry.Documentation {
	if doc, ok := d.decided[id]; ok {
		return doc
	}
	d.visiting[id] = true
	defer delete(d.visiting, id)

	text := d.own[id]
	var doc registry.Documentation
	upstream := d.upstream(id)
	switch {
	case text == "" && upstream.ok:
		doc = registry.Documentation{Origin: upstream.origin, Inherited: true}
	case text != "" && upstream.ok && ir.DocHash(text) == ir.DocHash(upstream.text):
		doc = registry.Documentation{Origin: upstream.origin, Inherited: true}
		d.pruned[id] = true
	default:
		doc = registry.Documentation{Text: text}
	}
	d.decided[id] = doc
	return doc
}

// upstream is the documentation id would inherit: that of its first
// inheriting relationship target that renders any text.
func (d *inheritor) upstream(id address.SymbolID) rendered {
	for _, target := range d.sources[id] {
		if r := d.effective(target); r.ok && r.origin != id {
			return r
		}
	}
	return rendered{}
}

// effective is the documentation id renders in the lens of the release.
func (d *inheritor) effective(id address.SymbolID) rendered {
	if id.Package != d.in.pkg.Index {
		text, origin, ok := d.in.working.Documentation(id, d.in.lens)
		return rendered{text: text, origin: origin, ok: ok}
	}
	text, declared := d.own[id]
	if !declared {
		return rendered{}
	}
	if d.visiting[id] {
		// A cycle through id: it can only contribute its own text.
		return rendered{text: text, origin: id, ok: text != ""}
	}
	doc := d.decide(id)
	if doc.Inherited {
		return rendered{text: d.textOf(doc.Origin), origin: doc.Origin, ok: true}
	}
	return rendered{text: doc.Text, origin: id, ok: doc.Text != ""}
}

func (d *inheritor) textOf(origin address.SymbolID) string {
	if text, ok := d.own[origin]; ok && origin.Package == d.in.pkg.Index {
		return text
	}
	text, _, _ := d.in.working.Documentation(origin, d.in.lens)
	return text
}
