package modem

import "math"

// Modulator turns a bit sequence into a BFSK-modulated PCM waveform. A
// Modulator is immutable once built and safe for concurrent use, since
// Encode allocates its own output buffer per call and touches no shared
// state beyond the read-only ModConfig.
type Modulator struct {
	cfg ModConfig
}

// NewModulator builds a Modulator from a validated ModConfig.
func NewModulator(cfg ModConfig) *Modulator {
	return &Modulator{cfg: cfg}
}

// Config returns the Modulator's ModConfig.
func (m *Modulator) Config() ModConfig { return m.cfg }

// OutputLen returns the number of PCM samples Encode will produce for the
// given number of bits.
func (m *Modulator) OutputLen(numBits int) int {
	return numBits * m.cfg.SamplesPerSymbol()
}

// Encode synthesizes one symbol per bit, applying a linear amplitude ramp
// over the leading RampSamples of the first symbol and the trailing
// RampSamples of the last symbol to suppress the audible click a hard
// onset/offset produces. No ramping is applied at internal symbol
// boundaries.
func (m *Modulator) Encode(bits []bool) []float64 {
	out := make([]float64, m.OutputLen(len(bits)))
	m.EncodeInto(bits, out)
	return out
}

// EncodeInto writes the modulated waveform for bits into out, which must be
// at least OutputLen(len(bits)) samples long. It panics if out is too
// short, the same contract the rest of this package's buffer-reuse helpers
// use.
func (m *Modulator) EncodeInto(bits []bool, out []float64) {
	sps := m.cfg.SamplesPerSymbol()
	need := len(bits) * sps
	if len(out) < need {
		panic("modem: EncodeInto output buffer too small")
	}

	ramp := m.cfg.RampSamples()
	sampleRate := float64(m.cfg.SampleRate)
	last := len(bits) - 1

	for i, bit := range bits {
		freq := m.cfg.Freq0
		if bit {
			freq = m.cfg.Freq1
		}
		base := out[i*sps : i*sps+sps]
		angularFreq := 2 * math.Pi * freq / sampleRate
		rampLeading := i == 0
		rampTrailing := i == last
		for n := 0; n < sps; n++ {
			amp := m.cfg.Amplitude
			if ramp > 0 {
				if rampLeading && n < ramp {
					amp *= float64(n) / float64(ramp)
				} else if rampTrailing && n >= sps-ramp {
					amp *= float64(sps-1-n) / float64(ramp)
				}
			}
			base[n] = amp * math.Sin(angularFreq*float64(n))
		}
	}
}

// BitsFromBytes expands a byte slice into a bool slice, MSB-first within
// each byte.
func BitsFromBytes(data []byte) []bool {
	bits := make([]bool, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b>>(7-j))&1 == 1
		}
	}
	return bits
}

// BytesFromBits packs a bool slice back into bytes, MSB-first within each
// byte. len(bits) must be a multiple of 8.
func BytesFromBits(bits []bool) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			if bits[i*8+j] {
				b |= 1 << (7 - j)
			}
		}
		out[i] = b
	}
	return out
}
