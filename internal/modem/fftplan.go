package modem

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FFTPlan is a cached forward FFT of a fixed power-of-two size N. Building
// one precomputes the bit-reversal permutation and every stage's twiddle
// factors; Execute then runs the transform against that cached plan without
// touching math/cmplx.Exp or allocating, reusing the plan's own scratch
// buffer.
//
// Execute is not safe for concurrent use: it returns a slice aliasing the
// plan's scratch buffer, valid only until the next call. This matches
// Demodulator's single-threaded-by-contract rule.
type FFTPlan struct {
	n        int
	bitrev   []int
	twiddles [][]complex128 // one slice per stage, indexed by doubling size
	scratch  []complex128
}

// NewFFTPlan builds a cached forward-FFT plan for transform size n, which
// must be a power of two.
func NewFFTPlan(n int) (*FFTPlan, error) {
	if n < 1 || n&(n-1) != 0 {
		return nil, fmt.Errorf("modem: fft plan size %d is not a power of two", n)
	}

	bits := 0
	for tmp := n; tmp > 1; tmp >>= 1 {
		bits++
	}
	bitrev := make([]int, n)
	for i := range bitrev {
		bitrev[i] = reverseBits(i, bits)
	}

	var twiddles [][]complex128
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		stage := make([]complex128, half)
		wn := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		w := complex(1.0, 0)
		for j := 0; j < half; j++ {
			stage[j] = w
			w *= wn
		}
		twiddles = append(twiddles, stage)
	}

	return &FFTPlan{
		n:        n,
		bitrev:   bitrev,
		twiddles: twiddles,
		scratch:  make([]complex128, n),
	}, nil
}

// Size returns the plan's transform size N.
func (p *FFTPlan) Size() int { return p.n }

// Execute runs the cached forward FFT over real-valued samples, zero-padding
// or truncating to the plan size N, and returns the plan's scratch buffer.
// The returned slice is only valid until the next call to Execute.
func (p *FFTPlan) Execute(samples []float64) []complex128 {
	n := p.n
	for i := 0; i < n; i++ {
		if i < len(samples) {
			p.scratch[i] = complex(samples[i], 0)
		} else {
			p.scratch[i] = 0
		}
	}

	for i, j := range p.bitrev {
		if i < j {
			p.scratch[i], p.scratch[j] = p.scratch[j], p.scratch[i]
		}
	}

	stage := 0
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		tw := p.twiddles[stage]
		for start := 0; start < n; start += size {
			for j := 0; j < half; j++ {
				u := p.scratch[start+j]
				v := tw[j] * p.scratch[start+j+half]
				p.scratch[start+j] = u + v
				p.scratch[start+j+half] = u - v
			}
		}
		stage++
	}

	return p.scratch
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
