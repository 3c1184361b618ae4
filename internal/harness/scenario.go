package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Releases lists CUE release documents, ingested in order.
	Releases []string `yaml:"releases"`

	// Queries are answered after every release is ingested.
	Queries []QueryStep `yaml:"queries,omitempty"`

	// Assertions validate ingestion reports and the store.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// QueryStep is one query API request.
type QueryStep struct {
	Path  string            `yaml:"path"`
	Query map[string]string `yaml:"query,omitempty"`

	// Expect is optional; a query without one is only traced.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected answer.
type ExpectClause struct {
	// Kind is a response kind ("page", "temporary_redirect",
	// "permanent_redirect", "sitemap", "search") or "not_found".
	Kind string `yaml:"kind"`

	// Exact and Canonical are compared when non-empty.
	Exact     string `yaml:"exact,omitempty"`
	Canonical string `yaml:"canonical,omitempty"`

	// Contains lists substrings the body must contain.
	Contains []string `yaml:"contains,omitempty"`
}

// Assertion validates ingestion reports or the store.
type Assertion struct {
	Type string `yaml:"type"`

	// Package and Tag select a release (pin, hint, diagnostic_count,
	// stored).
	Package string `yaml:"package,omitempty"`
	Tag     string `yaml:"tag,omitempty"`

	// Dependency and Pinned are used by pin.
	Dependency string `yaml:"dependency,omitempty"`
	Pinned     string `yaml:"pinned,omitempty"`

	// Symbol and Origin are USRs used by hint.
	Symbol string `yaml:"symbol,omitempty"`
	Origin string `yaml:"origin,omitempty"`

	// Count is used by diagnostic_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPin             = "pin"
	AssertHint            = "hint"
	AssertDiagnosticCount = "diagnostic_count"
	AssertStored          = "stored"
	AssertReplayIdentical = "replay_identical"
)

// NotFound is the expected kind of a query that does not resolve.
const NotFound = "not_found"

// LoadScenario reads and parses a scenario YAML file, resolving release
// paths relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving release paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Releases {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Releases[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Releases) == 0 {
		return fmt.Errorf("releases list is required and must be non-empty")
	}
	if len(s.Queries) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one query or assertion is required")
	}

	for _, p := range s.Releases {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("release file not found: %s", p)
		}
	}

	for i, q := range s.Queries {
		if q.Path == "" {
			return fmt.Errorf("queries[%d]: path is required", i)
		}
		if q.Expect != nil && !validKinds[q.Expect.Kind] {
			return fmt.Errorf("queries[%d].expect: unknown kind %q", i, q.Expect.Kind)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

var validKinds = map[string]bool{
	"page":               true,
	"temporary_redirect": true,
	"permanent_redirect": true,
	"sitemap":            true,
	"search":             true,
	NotFound:             true,
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needRelease := func() error {
		if a.Package == "" || a.Tag == "" {
			return fmt.Errorf("assertions[%d]: package and tag are required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertPin:
		if err := needRelease(); err != nil {
			return err
		}
		if a.Dependency == "" || a.Pinned == "" {
			return fmt.Errorf("assertions[%d]: dependency and pinned are required for pin", index)
		}
	case AssertHint:
		if err := needRelease(); err != nil {
			return err
		}
		if a.Symbol == "" || a.Origin == "" {
			return fmt.Errorf("assertions[%d]: symbol and origin are required for hint", index)
		}
	case AssertDiagnosticCount:
		if err := needRelease(); err != nil {
			return err
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for diagnostic_count", index)
		}
	case AssertStored:
		return needRelease()
	case AssertReplayIdentical:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
