package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file and one release document next to it.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	release := `name: "base", tag: "1.0.0", module: Base: {}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.cue"), []byte(release), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
releases:
  - base.cue
queries:
  - path: /reference/base
    query: { lens: "base@1" }
    expect:
      kind: page
      contains: ["Base"]
assertions:
  - type: stored
    package: base
    tag: 1.0.0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "base.cue")}, scenario.Releases, "release paths resolve against the scenario directory")
	require.Len(t, scenario.Queries, 1)
	assert.Equal(t, map[string]string{"lens": "base@1"}, scenario.Queries[0].Query)
	assert.Equal(t, "page", scenario.Queries[0].Expect.Kind)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertStored, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Misspelled key"
releases: [base.cue]
query:
  - path: /reference/base
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing name",
			content: "description: d\nreleases: [base.cue]\nqueries: [{path: /x}]\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nreleases: [base.cue]\nqueries: [{path: /x}]\n",
			want:    "description is required",
		},
		{
			name:    "no releases",
			content: "name: n\ndescription: d\nqueries: [{path: /x}]\n",
			want:    "releases list is required",
		},
		{
			name:    "nothing to check",
			content: "name: n\ndescription: d\nreleases: [base.cue]\n",
			want:    "at least one query or assertion",
		},
		{
			name:    "release not found",
			content: "name: n\ndescription: d\nreleases: [nope.cue]\nqueries: [{path: /x}]\n",
			want:    "release file not found",
		},
		{
			name:    "query without path",
			content: "name: n\ndescription: d\nreleases: [base.cue]\nqueries: [{expect: {kind: page}}]\n",
			want:    "queries[0]: path is required",
		},
		{
			name:    "unknown kind",
			content: "name: n\ndescription: d\nreleases: [base.cue]\nqueries: [{path: /x, expect: {kind: moved}}]\n",
			want:    `unknown kind "moved"`,
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\nreleases: [base.cue]\nassertions: [{type: final_state}]\n",
			want:    `unknown assertion type "final_state"`,
		},
		{
			name:    "pin without dependency",
			content: "name: n\ndescription: d\nreleases: [base.cue]\nassertions: [{type: pin, package: kit, tag: 1.0.0}]\n",
			want:    "dependency and pinned are required",
		},
		{
			name:    "hint without release",
			content: "name: n\ndescription: d\nreleases: [base.cue]\nassertions: [{type: hint, symbol: a, origin: b}]\n",
			want:    "package and tag are required for hint",
		},
		{
			name:    "negative count",
			content: "name: n\ndescription: d\nreleases: [base.cue]\nassertions: [{type: diagnostic_count, package: kit, tag: 1.0.0, count: -1}]\n",
			want:    "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
