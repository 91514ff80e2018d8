package modem

import (
	"fmt"
	"math"
)

// Default ModConfig parameters, per the pinned acoustic band (18-22 kHz).
const (
	DefaultSampleRate        = 44100
	DefaultFreq0             = 18000.0
	DefaultFreq1             = 20000.0
	DefaultSymbolDurationSec = 0.01
	DefaultRampDurationSec   = 0.002
	DefaultAmplitude         = 0.3
)

// ModConfig holds the immutable BFSK parameters shared by the Modulator
// and Demodulator. It is cheap to copy by value and carries no locks;
// construct it once via NewModConfig or DefaultModConfig and pass it
// around read-only.
type ModConfig struct {
	SampleRate        int
	Freq0             float64
	Freq1             float64
	SymbolDurationSec float64
	RampDurationSec   float64
	Amplitude         float64

	samplesPerSymbol int
	rampSamples      int
}

// DefaultModConfig returns the default 18-22kHz ultrasonic BFSK
// configuration.
func DefaultModConfig() ModConfig {
	cfg, err := NewModConfig(DefaultSampleRate, DefaultFreq0, DefaultFreq1,
		DefaultSymbolDurationSec, DefaultRampDurationSec, DefaultAmplitude)
	if err != nil {
		// The defaults are pinned and known-valid; a failure here would be
		// a programming error in this package, not a runtime condition.
		panic(fmt.Sprintf("modem: default config is invalid: %v", err))
	}
	return cfg
}

// NewModConfig validates and constructs a ModConfig. All derived fields
// (samples per symbol, ramp samples) are computed once here.
func NewModConfig(sampleRate int, freq0, freq1, symbolDurationSec, rampDurationSec, amplitude float64) (ModConfig, error) {
	if sampleRate <= 0 {
		return ModConfig{}, fmt.Errorf("%w: sample_rate must be positive, got %d", ErrConfig, sampleRate)
	}
	if freq0 == freq1 {
		return ModConfig{}, fmt.Errorf("%w: freq_0 and freq_1 must be distinct", ErrConfig)
	}
	nyquist := float64(sampleRate) / 2
	if freq0 <= 0 || freq0 >= nyquist {
		return ModConfig{}, fmt.Errorf("%w: freq_0 (%v) must be in (0, %v)", ErrConfig, freq0, nyquist)
	}
	if freq1 <= 0 || freq1 >= nyquist {
		return ModConfig{}, fmt.Errorf("%w: freq_1 (%v) must be in (0, %v)", ErrConfig, freq1, nyquist)
	}
	if symbolDurationSec <= 0 {
		return ModConfig{}, fmt.Errorf("%w: symbol_duration_sec must be positive, got %v", ErrConfig, symbolDurationSec)
	}
	if rampDurationSec < 0 || rampDurationSec > symbolDurationSec/2 {
		return ModConfig{}, fmt.Errorf("%w: ramp_duration_sec (%v) must be in [0, %v]", ErrConfig, rampDurationSec, symbolDurationSec/2)
	}
	if amplitude <= 0 || amplitude > 1 {
		return ModConfig{}, fmt.Errorf("%w: amplitude (%v) must be in (0, 1]", ErrConfig, amplitude)
	}

	sps := int(math.Round(float64(sampleRate) * symbolDurationSec))
	ramp := int(math.Round(float64(sampleRate) * rampDurationSec))
	if sps < 2*ramp {
		return ModConfig{}, fmt.Errorf("%w: samples_per_symbol (%d) must be >= 2*ramp_samples (%d)", ErrConfig, sps, 2*ramp)
	}

	return ModConfig{
		SampleRate:        sampleRate,
		Freq0:             freq0,
		Freq1:             freq1,
		SymbolDurationSec: symbolDurationSec,
		RampDurationSec:   rampDurationSec,
		Amplitude:         amplitude,
		samplesPerSymbol:  sps,
		rampSamples:       ramp,
	}, nil
}

// SamplesPerSymbol returns round(sample_rate * symbol_duration_sec).
func (c ModConfig) SamplesPerSymbol() int { return c.samplesPerSymbol }

// RampSamples returns round(sample_rate * ramp_duration_sec).
func (c ModConfig) RampSamples() int { return c.rampSamples }
