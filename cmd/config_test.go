package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg, found, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "sources:\n  - giro.tsv\n  - https://example.com/card.tsv\nlanguage: de\nfetch_timeout: 30s\npage_size: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, found, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"giro.tsv", "https://example.com/card.tsv"}, cfg.Sources)
	assert.Equal(t, "de", cfg.Language)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [unclosed"), 0o644))
	_, found, err := LoadConfig(path)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := defaultConfig()
	cfg.Sources = []string{"a.tsv"}
	cfg.LanguageOverride = "de"
	require.NoError(t, SaveConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "language_override")

	loaded, found, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a.tsv"}, loaded.Sources)
	assert.Empty(t, loaded.LanguageOverride)
}

func TestSplitSources(t *testing.T) {
	assert.Equal(t, []string{"a.tsv", "b.tsv", "c.tsv"}, splitSources("a.tsv, b.tsv\tc.tsv"))
	assert.Empty(t, splitSources(" , "))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FINBOARD_SOURCE", "a.tsv,b.tsv")
	t.Setenv("FINBOARD_DB", "/tmp/x.db")
	t.Setenv("FINBOARD_LANG", "de")

	cfg := defaultConfig()
	cfg.Language = "en"
	applyEnv(&cfg)
	assert.Equal(t, []string{"a.tsv", "b.tsv"}, cfg.Sources)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "de", cfg.LanguageOverride)
	assert.Equal(t, "en", cfg.Language)
}

func TestFillPathsUsesSystemLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "de_DE.UTF-8")

	cfg := Config{DBPath: "db", LogFile: "log"}
	require.NoError(t, fillPaths(&cfg))
	assert.Equal(t, "de_DE.UTF-8", cfg.Language)
	assert.Equal(t, "db", cfg.DBPath)
}

func TestRootCommandPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [file.tsv]\nlanguage: en\npage_size: 40\n"), 0o644))
	t.Setenv("FINBOARD_SOURCE", "env.tsv")
	t.Setenv("FINBOARD_LANG", "")

	var got Config
	run := func(ctx context.Context, cfg Config, logger *slog.Logger) error {
		got = cfg
		return nil
	}

	root := NewRootCmd("test", run)
	root.SetArgs([]string{
		"--config", path,
		"--source", "flag.tsv",
		"--lang", "de",
		"--db", filepath.Join(dir, "finboard.db"),
		"--log-file", filepath.Join(dir, "finboard.log"),
		"--page-increment", "7",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Equal(t, []string{"flag.tsv"}, got.Sources)
	assert.Equal(t, "de", got.LanguageOverride)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, 40, got.PageSize)
	assert.Equal(t, 7, got.PageIncrement)
	assert.Equal(t, filepath.Join(dir, "finboard.db"), got.DBPath)
}

func TestRootCommandUsesEnvSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [file.tsv]\n"), 0o644))
	t.Setenv("FINBOARD_SOURCE", "env1.tsv env2.tsv")

	var got Config
	root := NewRootCmd("test", func(ctx context.Context, cfg Config, logger *slog.Logger) error {
		got = cfg
		return nil
	})
	root.SetArgs([]string{"--config", path, "--db", filepath.Join(dir, "db"), "--log-file", filepath.Join(dir, "log")})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, []string{"env1.tsv", "env2.tsv"}, got.Sources)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "# comment\nFINBOARD_TEST_A=\"one\"\nFINBOARD_TEST_B=two\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("FINBOARD_TEST_A", "")
	t.Setenv("FINBOARD_TEST_B", "set")

	loadDotEnv(path)
	assert.Equal(t, "one", os.Getenv("FINBOARD_TEST_A"))
	assert.Equal(t, "set", os.Getenv("FINBOARD_TEST_B"))
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd("1.2.3", nil)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "finboard 1.2.3\n", out.String())
}
