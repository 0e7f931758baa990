package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/poster-to-web/internal/export"
)

// isolate runs the test in an empty directory with an empty home so no
// stray config or .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("GEMINI_API_KEY", "")
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "poster2web.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "poster2web.db", cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "standalone", cfg.Export.Format)
	assert.Equal(t, export.DefaultStyle(), cfg.Export.Style())
}

func TestLoadFileFromWorkingDir(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
log:
  level: debug
export:
  format: mdx
  color_scheme: nature
  headline_size: 48
ai:
  provider: gemini
  exclusive: true
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mdx", cfg.Export.Format)
	assert.Equal(t, "nature", cfg.Export.ColorScheme)
	assert.Equal(t, 48, cfg.Export.HeadlineSize)
	assert.Equal(t, 16, cfg.Export.BodySize)
	assert.True(t, cfg.AI.Enabled())
	assert.True(t, cfg.AI.Exclusive)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	p := writeConfig(t, dir, "server:\n  addr: \":9000\"\n")
	t.Setenv("POSTER2WEB_SERVER_ADDR", ":7000")
	t.Setenv("POSTER2WEB_EXPORT_LAYOUT", "slides")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "slides", cfg.Export.Layout)
}

func TestLoadAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "from-sdk-var")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-sdk-var", cfg.AI.APIKey)

	t.Setenv("POSTER2WEB_AI_API_KEY", "from-prefixed-var")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-prefixed-var", cfg.AI.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("POSTER2WEB_STORE_PATH=/tmp/from-dotenv.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("POSTER2WEB_STORE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Store.Path)
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	tests := []struct {
		name string
		body string
	}{
		{"log level", "log:\n  level: loud\n"},
		{"log format", "log:\n  format: xml\n"},
		{"provider", "ai:\n  provider: openai\n"},
		{"export format", "export:\n  format: pptx\n"},
		{"color scheme", "export:\n  color_scheme: neon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(p)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	log.WithField("page", 2).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"page":2`)

	_, err = LogConfig{Level: "loud"}.NewLogger(&buf)
	assert.Error(t, err)
}
