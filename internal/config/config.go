package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved configuration.
type Config struct {
	// Database is the SQLite release log path. Empty keeps releases in
	// memory only.
	Database string   `json:"database"`
	Listen   string   `json:"listen"`
	LogLevel string   `json:"log_level"`
	Prefixes Prefixes `json:"prefixes"`
}

// Prefixes are the root path segments of the query surface.
type Prefixes struct {
	Symbols  string `json:"symbols"`
	Articles string `json:"articles"`
	Sitemaps string `json:"sitemaps"`
	Search   string `json:"search"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := compile(cuecontext.New(), nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads a CUE configuration file. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, path)
}

// Parse unifies CUE source with the schema. filename is used in error
// positions.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("compiling config: %w", err)
	}
	return compile(ctx, &v)
}

func compile(ctx *cue.Context, file *cue.Value) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, err
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))
	if file != nil {
		v = v.Unify(*file)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]string, 4)
	for _, p := range []struct{ name, value string }{
		{"symbols", c.Prefixes.Symbols},
		{"articles", c.Prefixes.Articles},
		{"sitemaps", c.Prefixes.Sitemaps},
		{"search", c.Prefixes.Search},
	} {
		if other, dup := seen[p.value]; dup {
			return fmt.Errorf("invalid config: prefixes.%s and prefixes.%s are both %q", other, p.name, p.value)
		}
		seen[p.value] = p.name
	}
	return nil
}

// Level maps LogLevel onto a slog level.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
