// Package config loads BFSK pipeline settings from a YAML document. It is
// a thin ambient loader, not a second source of truth: every value it
// parses is re-validated through modem.NewModConfig's own constructor
// invariants before use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hsong/ultramodem/internal/modem"
)

// File is the on-disk YAML shape. Fields absent from the document keep
// modem.DefaultModConfig's values; a field set explicitly to 0 stays 0.
type File struct {
	SampleRate        int     `yaml:"sample_rate"`
	Freq0             float64 `yaml:"freq_0"`
	Freq1             float64 `yaml:"freq_1"`
	SymbolDurationSec float64 `yaml:"symbol_duration_sec"`
	RampDurationSec   float64 `yaml:"ramp_duration_sec"`
	Amplitude         float64 `yaml:"amplitude"`

	ForwardErrorCorrection bool `yaml:"forward_error_correction"`
	RSDataShards           int  `yaml:"rs_data_shards"`
	RSParityShards         int  `yaml:"rs_parity_shards"`
}

// Default returns a File populated with modem.DefaultModConfig's values
// and FEC disabled.
func Default() File {
	d := modem.DefaultModConfig()
	return File{
		SampleRate:        d.SampleRate,
		Freq0:             d.Freq0,
		Freq1:             d.Freq1,
		SymbolDurationSec: d.SymbolDurationSec,
		RampDurationSec:   d.RampDurationSec,
		Amplitude:         d.Amplitude,
	}
}

// Load reads and parses a YAML configuration file at path over a
// Default()-valued File, so fields absent from the document keep
// modem.DefaultModConfig's values, then runs the result through
// NewModConfig's validation.
func Load(path string) (modem.ModConfig, File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return modem.ModConfig{}, File{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	f := Default()
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return modem.ModConfig{}, File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg, err := modem.NewModConfig(f.SampleRate, f.Freq0, f.Freq1, f.SymbolDurationSec, f.RampDurationSec, f.Amplitude)
	if err != nil {
		return modem.ModConfig{}, File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, f, nil
}
