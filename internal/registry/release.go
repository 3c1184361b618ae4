package registry

import (
	"maps"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
)

// Release is one published version of a package.
type Release struct {
	ID      string
	Version history.Version
	Tag     Tag

	// Pins records the upstream version each direct dependency was
	// resolved to when this release was ingested.
	Pins Pins
}

// Releases is a package's release list in version order.
type Releases []Release

// Snap resolves a masked pattern to the release with the greatest precise
// tag among those the mask matches. There is no fallback to a nearby
// non-matching release: no match means no version.
func (rs Releases) Snap(m Mask) (Release, bool) {
	var (
		best  Release
		found bool
	)
	for _, r := range rs {
		if !m.Matches(r.Tag) {
			continue
		}
		if !found || CompareTags(r.Tag, best.Tag) > 0 {
			best, found = r, true
		}
	}
	return best, found
}

// Latest returns the release with the greatest tag. Releases are not
// always ingested in tag order (a patch for an old major may arrive
// after a new major).
func (rs Releases) Latest() (Release, bool) {
	var (
		best  Release
		found bool
	)
	for _, r := range rs {
		if !found || CompareTags(r.Tag, best.Tag) > 0 {
			best, found = r, true
		}
	}
	return best, found
}

// At returns the release recorded at version v.
func (rs Releases) At(v history.Version) (Release, bool) {
	for _, r := range rs {
		if r.Version == v {
			return r, true
		}
	}
	return Release{}, false
}

// Tagged returns the release carrying tag t.
func (rs Releases) Tagged(t Tag) (Release, bool) {
	for _, r := range rs {
		if CompareTags(r.Tag, t) == 0 {
			return r, true
		}
	}
	return Release{}, false
}

// Newest returns the most recently ingested release.
func (rs Releases) Newest() (Release, bool) {
	if len(rs) == 0 {
		return Release{}, false
	}
	return rs[len(rs)-1], true
}

// Pins maps each upstream package to the version chosen for it.
type Pins map[address.PackageIndex]history.Version

// Clone returns an independent copy.
func (p Pins) Clone() Pins {
	if p == nil {
		return Pins{}
	}
	return maps.Clone(p)
}
