package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
)

// Dependency diamond: app -> (net, log); net -> log.
// app pins log@10 directly, net@20 pins log@11.
func diamond(t *testing.T) (*Registry, map[string]*Package) {
	t.Helper()
	r := New(address.NewStems())
	pkgs := make(map[string]*Package)
	for _, name := range []string{"log", "net", "app"} {
		pkgs[name], _ = r.RegisterPackage(name)
	}
	log, net, app := pkgs["log"], pkgs["net"], pkgs["app"]

	require.NoError(t, log.RecordRelease(Release{Version: 10, Tag: MustParseTag("1.0.0")}))
	require.NoError(t, log.RecordRelease(Release{Version: 11, Tag: MustParseTag("1.1.0")}))
	require.NoError(t, net.RecordRelease(Release{Version: 20, Tag: MustParseTag("2.0.0"), Pins: Pins{log.Index: 11}}))
	require.NoError(t, app.RecordRelease(Release{Version: 30, Tag: MustParseTag("0.1.0"), Pins: Pins{log.Index: 10, net.Index: 20}}))
	return r, pkgs
}

func TestIsotropic_NearestPinWins(t *testing.T) {
	r, pkgs := diamond(t)
	app := pkgs["app"]

	lens := r.LensAt(app, 30)
	assert.Equal(t, Lens{
		app.Index:          30,
		pkgs["net"].Index: 20,
		pkgs["log"].Index: 10,
	}, lens)
}

func TestIsotropic_Transitive(t *testing.T) {
	r, pkgs := diamond(t)
	app := pkgs["app"]

	// Only net pinned: log comes from net's own pins.
	lens := r.Isotropic(app.Index, 30, Pins{pkgs["net"].Index: 20}, false)
	assert.Equal(t, Lens{pkgs["net"].Index: 20, pkgs["log"].Index: 11}, lens)
	_, hasSelf := lens[app.Index]
	assert.False(t, hasSelf)
}

func TestIsotropic_SelfNeverOverridden(t *testing.T) {
	r := New(address.NewStems())
	a, _ := r.RegisterPackage("a")
	b, _ := r.RegisterPackage("b")
	require.NoError(t, b.RecordRelease(Release{Version: 2, Tag: MustParseTag("1.0.0"), Pins: Pins{a.Index: 1}}))
	require.NoError(t, a.RecordRelease(Release{Version: 3, Tag: MustParseTag("1.0.0"), Pins: Pins{b.Index: 2}}))

	lens := r.LensAt(a, 3)
	assert.Equal(t, Lens{a.Index: 3, b.Index: 2}, lens)
}

func TestIsotropic_Deterministic(t *testing.T) {
	r, pkgs := diamond(t)
	app := pkgs["app"]
	first := r.LensAt(app, 30)
	for range 20 {
		assert.Equal(t, first, r.LensAt(app, 30))
	}
	assert.Equal(t, []address.PackageIndex{0, 1, 2}, first.Packages())
}

func TestPackage_Pins(t *testing.T) {
	_, pkgs := diamond(t)
	app := pkgs["app"]
	pins := app.Pins(30)
	assert.Equal(t, history.Version(10), pins[pkgs["log"].Index])

	pins[pkgs["log"].Index] = 99
	assert.Equal(t, history.Version(10), app.Pins(30)[pkgs["log"].Index], "Pins returns a copy")

	assert.Nil(t, app.Pins(31))
}
