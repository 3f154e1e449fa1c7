// Package analysis measures filters offline: FIR convolution, impulse
// and magnitude responses. It backs the filter report command and the
// reference checks in tests, never the real-time path.
package analysis

import (
	"github.com/tphakala/simd/c128"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

const (
	// minKernelForFFT is the kernel length above which overlap-save FFT
	// convolution beats the direct SIMD kernel.
	minKernelForFFT = 400

	defaultFFTBlockSize = 512
)

// Convolver correlates a signal with a fixed kernel by overlap-save FFT:
// dst[i] = Σ signal[i+k]*kernel[k].
type Convolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int
	kernelLen int
	scale     float64

	kernelFFT   []complex128
	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	result      []float64
}

// NewConvolver transforms kernel once for reuse. It returns nil for an
// empty kernel.
func NewConvolver(kernel []float64) *Convolver {
	n := len(kernel)
	if n == 0 {
		return nil
	}

	size := defaultFFTBlockSize
	for size < 2*n {
		size *= 2
	}
	fft := fourier.NewFFT(size)

	// Reversing the kernel turns circular convolution into correlation.
	padded := make([]float64, size)
	for i := range n {
		padded[i] = kernel[n-1-i]
	}
	bins := size/2 + 1

	return &Convolver{
		fft:         fft,
		fftSize:     size,
		blockSize:   size - n + 1,
		kernelLen:   n,
		scale:       1 / float64(size),
		kernelFFT:   fft.Coefficients(nil, padded),
		signalBlock: make([]float64, size),
		signalFFT:   make([]complex128, bins),
		productFFT:  make([]complex128, bins),
		result:      make([]float64, size),
	}
}

// Correlate writes len(signal)-len(kernel)+1 outputs to dst. It does
// nothing if the signal is shorter than the kernel or dst is too short.
func (c *Convolver) Correlate(dst, signal []float64) {
	outLen := len(signal) - c.kernelLen + 1
	if outLen <= 0 || len(dst) < outLen {
		return
	}

	overlap := c.kernelLen - 1
	for out := 0; out < outLen; {
		clear(c.signalBlock)
		copy(c.signalBlock, signal[out:min(out+c.fftSize, len(signal))])

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)
		c128.Mul(c.productFFT, c.signalFFT, c.kernelFFT)
		c.result = c.fft.Sequence(c.result, c.productFFT)
		simdops.Float64Ops().Scale(c.result, c.result, c.scale)

		valid := min(c.blockSize, outLen-out)
		copy(dst[out:out+valid], c.result[overlap:overlap+valid])
		out += valid
	}
}

// FIR filters x with the causal kernel h, y[n] = Σ h[k]*x[n-k], and
// returns len(x) samples. Long kernels go through the FFT.
func FIR(h, x []float64) []float64 {
	if len(h) == 0 {
		return make([]float64, len(x))
	}

	// Zero history in front, reversed kernel: correlation becomes convolution.
	padded := make([]float64, len(h)-1+len(x))
	copy(padded[len(h)-1:], x)
	out := make([]float64, len(x))

	if len(h) >= minKernelForFFT {
		NewConvolver(reversed(h)).Correlate(out, padded)
		return out
	}
	simdops.Float64Ops().ConvolveValid(out, padded, reversed(h))
	return out
}

func reversed(s []float64) []float64 {
	r := make([]float64, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}
