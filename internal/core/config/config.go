package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/neilberkman/cyclerider/internal/core/models"
)

const (
	configFile   = "config.toml"
	templateFile = "summary.mustache"
)

type Config struct {
	CurrentA          float64
	VolumeL           float64
	ChargeFirst       bool
	StrictHeader      bool
	Overlay           models.Overlay
	ShowEnergyDensity bool
	Pairing           models.Pairing
	PlotDir           string // empty means the working directory
	ExportPath        string
	LogLevel          string
	SummaryTemplate   string // template text, empty means the built-in one
}

// Every field is a pointer so an absent key keeps its default.
type tomlConfig struct {
	CurrentA          *float64 `toml:"current_a"`
	VolumeL           *float64 `toml:"volume_l"`
	ChargeFirst       *bool    `toml:"charge_first"`
	StrictHeader      *bool    `toml:"strict_header"`
	Overlay           *string  `toml:"overlay"`
	ShowEnergyDensity *bool    `toml:"show_energy_density"`
	Pairing           *string  `toml:"efficiency_pairing"`
	PlotDir           *string  `toml:"plot_dir"`
	ExportPath        *string  `toml:"export_path"`
	LogLevel          *string  `toml:"log_level"`
	SummaryTemplate   *string  `toml:"summary_template"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		CurrentA:    models.DefaultCurrentA,
		VolumeL:     models.DefaultVolumeL,
		ChargeFirst: true,
		Overlay:     models.OverlayNone,
		Pairing:     models.PairingAdjacent,
		ExportPath:  "cycles.txt",
		LogLevel:    "info",
	}
}

// Dir is ~/.config/cyclerider, or "" when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cyclerider")
}

// DefaultPath is the config file Load reads.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, configFile)
}

// Load reads config from ~/.config/cyclerider/
func Load() (*Config, error) {
	return LoadFile(DefaultPath())
}

// LoadFile reads the TOML file at path over the defaults. A missing file is
// not an error. On a broken file the defaults are returned with the error so
// callers can warn and carry on.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg.loadDefaultTemplate(filepath.Dir(path))
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to stat config: %w", err)
	}

	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.apply(tc, filepath.Dir(path)); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(tc tomlConfig, dir string) error {
	if tc.CurrentA != nil {
		c.CurrentA = *tc.CurrentA
	}
	if tc.VolumeL != nil {
		c.VolumeL = *tc.VolumeL
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if tc.ChargeFirst != nil {
		c.ChargeFirst = *tc.ChargeFirst
	}
	if tc.StrictHeader != nil {
		c.StrictHeader = *tc.StrictHeader
	}
	if tc.ShowEnergyDensity != nil {
		c.ShowEnergyDensity = *tc.ShowEnergyDensity
	}
	if tc.Overlay != nil {
		o, err := models.ParseOverlay(*tc.Overlay)
		if err != nil {
			return err
		}
		c.Overlay = o
	}
	if tc.Pairing != nil {
		p, err := models.ParsePairing(*tc.Pairing)
		if err != nil {
			return err
		}
		c.Pairing = p
	}
	if tc.PlotDir != nil {
		c.PlotDir = *tc.PlotDir
	}
	if tc.ExportPath != nil && *tc.ExportPath != "" {
		c.ExportPath = *tc.ExportPath
	}
	if tc.LogLevel != nil && *tc.LogLevel != "" {
		c.LogLevel = *tc.LogLevel
	}

	if tc.SummaryTemplate == nil || *tc.SummaryTemplate == "" {
		c.loadDefaultTemplate(dir)
		return nil
	}
	path := *tc.SummaryTemplate
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read summary template: %w", err)
	}
	c.SummaryTemplate = string(data)
	return nil
}

// If a custom template sits next to the config, use it
func (c *Config) loadDefaultTemplate(dir string) {
	if data, err := os.ReadFile(filepath.Join(dir, templateFile)); err == nil {
		c.SummaryTemplate = string(data)
	}
}

// Params returns the derivation parameters the config starts a session with.
func (c *Config) Params() models.Params {
	return models.Params{CurrentA: c.CurrentA, VolumeL: c.VolumeL}
}

func (c *Config) Display() models.DisplayOptions {
	return models.DisplayOptions{Overlay: c.Overlay, ShowEnergyDensity: c.ShowEnergyDensity}
}
