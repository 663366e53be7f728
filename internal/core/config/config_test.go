package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cyclerider/internal/core/models"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, models.DefaultParams(), cfg.Params())
	assert.True(t, cfg.ChargeFirst)
	assert.Equal(t, "cycles.txt", cfg.ExportPath)
}

func TestLoadFile_EmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
current_a = 0.05
volume_l = 0
charge_first = false
strict_header = true
overlay = "efficiency"
show_energy_density = true
efficiency_pairing = "by-cycle"
plot_dir = "plots"
export_path = "out.tsv"
log_level = "debug"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, models.Params{CurrentA: 0.05, VolumeL: 0}, cfg.Params())
	assert.False(t, cfg.ChargeFirst)
	assert.True(t, cfg.StrictHeader)
	assert.Equal(t, models.DisplayOptions{Overlay: models.OverlayEfficiency, ShowEnergyDensity: true}, cfg.Display())
	assert.Equal(t, models.PairingByCycle, cfg.Pairing)
	assert.Equal(t, "plots", cfg.PlotDir)
	assert.Equal(t, "out.tsv", cfg.ExportPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `volume_l = 0.5`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.VolumeL)
	assert.Equal(t, models.DefaultCurrentA, cfg.CurrentA)
	assert.True(t, cfg.ChargeFirst)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `current_a = `},
		{"wrong type", `current_a = "lots"`},
		{"overlay", `overlay = "both"`},
		{"pairing", `efficiency_pairing = "random"`},
		{"nan", `current_a = nan`},
		{"missing template", `summary_template = "missing.mustache"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, t.TempDir(), tt.body))
			require.Error(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestLoadFile_SummaryTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.mustache"), []byte("{{cycles}} cycles"), 0644))
	path := writeConfig(t, dir, `summary_template = "mine.mustache"`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{{cycles}} cycles", cfg.SummaryTemplate)
}

func TestLoadFile_TemplateNextToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, templateFile), []byte("custom"), 0644))

	cfg, err := LoadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.SummaryTemplate)
}
