package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, Config{
		Database: "",
		Listen:   ":8080",
		LogLevel: "info",
		Prefixes: Prefixes{
			Symbols:  "reference",
			Articles: "learn",
			Sitemaps: "sitemaps",
			Search:   "lunr",
		},
	}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
database:  "/var/lib/docket/releases.db"
log_level: "debug"
prefixes: symbols: "documentation"
`), "docket.cue")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/docket/releases.db", cfg.Database)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "documentation", cfg.Prefixes.Symbols)
	assert.Equal(t, "learn", cfg.Prefixes.Articles)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown field", `port: 80`, "invalid config"},
		{"bad level", `log_level: "loud"`, "invalid config"},
		{"bad prefix", `prefixes: search: "a/b"`, "invalid config"},
		{"duplicate prefix", `prefixes: articles: "reference"`, `prefixes.symbols and prefixes.articles are both "reference"`},
		{"syntax", `listen: `, "compiling config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "docket.cue")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "docket.cue")
	require.NoError(t, os.WriteFile(path, []byte(`listen: "127.0.0.1:9000"`), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.ErrorContains(t, err, "reading config")
}

func TestLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		assert.Equal(t, want, Config{LogLevel: level}.Level(), level)
	}
}
