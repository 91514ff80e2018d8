package modem

import "fmt"

// binSearchWidth is how many FFT bins on either side of a target frequency's
// nominal bin the classifier searches for its peak, absorbing small
// frequency drift between transmitter and receiver clocks.
const binSearchWidth = 3

// Demodulator classifies fixed-size symbol windows of PCM samples back into
// bits by comparing FFT energy at Freq0's bin against Freq1's bin. It holds
// a cached FFTPlan and a reusable scratch buffer, so it is not safe for
// concurrent use — matching the single-threaded-by-contract rule the rest
// of this package follows.
type Demodulator struct {
	cfg     ModConfig
	plan    *FFTPlan
	fftSize int
	bin0    int
	bin1    int
}

// NewDemodulator builds a Demodulator from a validated ModConfig. It picks
// the smallest power-of-two FFT size at least as large as SamplesPerSymbol
// and verifies that Freq0 and Freq1 fall into distinct, adequately
// separated bins at that resolution.
func NewDemodulator(cfg ModConfig) (*Demodulator, error) {
	sps := cfg.SamplesPerSymbol()
	fftSize := NextPowerOfTwo(sps)

	plan, err := NewFFTPlan(fftSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	binHz := float64(cfg.SampleRate) / float64(fftSize)
	bin0 := int(cfg.Freq0/binHz + 0.5)
	bin1 := int(cfg.Freq1/binHz + 0.5)
	if bin0 > fftSize/2 || bin1 > fftSize/2 {
		return nil, fmt.Errorf("%w: freq_0/freq_1 bins (%d, %d) exceed Nyquist bin %d at FFT size %d", ErrConfig, bin0, bin1, fftSize/2, fftSize)
	}
	if bin0 == bin1 {
		return nil, fmt.Errorf("%w: freq_0 and freq_1 resolve to the same FFT bin at size %d", ErrConfig, fftSize)
	}
	sep := bin1 - bin0
	if sep < 0 {
		sep = -sep
	}
	if sep <= 2*binSearchWidth {
		return nil, fmt.Errorf("%w: freq_0/freq_1 bins (%d, %d) are too close for a +/-%d bin search", ErrConfig, bin0, bin1, binSearchWidth)
	}

	return &Demodulator{
		cfg:     cfg,
		plan:    plan,
		fftSize: fftSize,
		bin0:    bin0,
		bin1:    bin1,
	}, nil
}

// SamplesPerSymbol returns the number of PCM samples DecodeSymbol expects
// per call, i.e. the Demodulator's symbol window size.
func (d *Demodulator) SamplesPerSymbol() int { return d.cfg.SamplesPerSymbol() }

// Decode classifies a contiguous run of symbol windows, returning one bit
// per SamplesPerSymbol()-sized window. Trailing samples shorter than a full
// window are ignored.
func (d *Demodulator) Decode(samples []float64) []bool {
	sps := d.SamplesPerSymbol()
	n := len(samples) / sps
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = d.DecodeSymbol(samples[i*sps : i*sps+sps])
	}
	return bits
}

// DecodeSymbol classifies a single symbol window of exactly
// SamplesPerSymbol() samples (shorter windows are zero-padded by FFTPlan.Execute).
func (d *Demodulator) DecodeSymbol(window []float64) bool {
	spectrum := d.plan.Execute(window)
	p0 := peakPower(spectrum, d.bin0, binSearchWidth)
	p1 := peakPower(spectrum, d.bin1, binSearchWidth)
	return p1 > p0
}

// peakPower returns the largest squared magnitude among bins in
// [center-width, center+width], wrapping into the spectrum's conjugate-
// symmetric range as needed.
func peakPower(spectrum []complex128, center, width int) float64 {
	n := len(spectrum)
	best := 0.0
	for off := -width; off <= width; off++ {
		bin := ((center+off)%n + n) % n
		c := spectrum[bin]
		power := real(c)*real(c) + imag(c)*imag(c)
		if power > best {
			best = power
		}
	}
	return best
}
