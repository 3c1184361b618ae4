package registry

import (
	"maps"
	"slices"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
)

// Lens is an isotropic pin set: one version for the viewed package and
// for every package transitively reachable from it.
type Lens map[address.PackageIndex]history.Version

// Packages returns the lens's packages in index order.
func (l Lens) Packages() []address.PackageIndex {
	return slices.Sorted(maps.Keys(l))
}

// Isotropic expands pins transitively into a lens rooted at self@v.
//
// The walk is breadth first and visits dependencies in package index
// order, so when two paths reach the same package the pin nearest to self
// wins, and ties go to the lower-indexed dependent. self itself is in the
// lens only when includingSelf is set; it is never overridden by a
// downstream pin.
func (r *Registry) Isotropic(self address.PackageIndex, v history.Version, pins Pins, includingSelf bool) Lens {
	lens := make(Lens, len(pins)+1)
	if includingSelf {
		lens[self] = v
	}
	visited := map[address.PackageIndex]bool{self: true}

	type node struct {
		pkg address.PackageIndex
		v   history.Version
	}
	var queue []node
	enqueue := func(pins Pins) {
		for _, dep := range slices.Sorted(maps.Keys(pins)) {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			lens[dep] = pins[dep]
			queue = append(queue, node{pkg: dep, v: pins[dep]})
		}
	}

	enqueue(pins)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if int(n.pkg) >= len(r.packages) {
			continue
		}
		enqueue(r.packages[n.pkg].Pins(n.v))
	}
	return lens
}

// LensAt is the lens of package p viewed at its own release v.
func (r *Registry) LensAt(p *Package, v history.Version) Lens {
	return r.Isotropic(p.Index, v, p.Pins(v), true)
}
