package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/pdfredact/internal/layout"
)

func TestParseRules_OverridesDefaults(t *testing.T) {
	data := []byte(`
header_markers:
  - "Foundation Level"
exclude_markers: []
header_band: 0.1
`)

	rules, err := ParseRules(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Foundation Level"}, rules.HeaderMarkers)
	assert.Empty(t, rules.ExcludeMarkers)
	assert.Equal(t, 0.1, rules.HeaderBand)
	// untouched fields keep defaults
	assert.Equal(t, 0.85, rules.FooterBand)
	assert.Equal(t, []string{"copyright"}, rules.CandidateExclusions)
}

func TestParseRules_UnknownField(t *testing.T) {
	_, err := ParseRules([]byte("header_marker: [x]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check for typos")
}

func TestParseRules_Invalid(t *testing.T) {
	_, err := ParseRules([]byte("footer_band: 0.05\n"))
	assert.Error(t, err)
}

func TestRulesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, WriteRules(layout.DefaultRules(), path))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, layout.DefaultRules(), rules)
}

func TestLoadRules_Missing(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PDFREDACT_STRATEGY", "split")
	t.Setenv("PDFREDACT_DPI", "300")
	t.Setenv("PDFREDACT_WORKERS", "zero")
	t.Setenv("PDFREDACT_LOG_LEVEL", "DEBUG")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, "split", cfg.Strategy)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, LogLevelDebug, cfg.Log.Level)
}

func TestParseRules_EmptyKeepsDefaults(t *testing.T) {
	rules, err := ParseRules(nil)
	require.NoError(t, err)
	assert.Equal(t, layout.DefaultRules(), rules)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1, cfg.InspectPage)
	assert.Equal(t, "marker", cfg.Strategy)
	assert.Equal(t, 150, cfg.DPI)
	assert.True(t, cfg.WriteText, "redacted text is written next to the image-only PDF")
	assert.Equal(t, layout.DefaultRules(), cfg.Rules)
}
