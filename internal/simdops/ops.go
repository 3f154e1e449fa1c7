// Package simdops exposes the SIMD kernels used by the DSP packages
// through one function table per float type, so callers pick the
// precision once and keep the hot loop free of type switches.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// Ops is a table of SIMD kernels for F.
type Ops[F Float] struct {
	// DotProductUnsafe computes Σ a[i]*b[i]. The slices must have equal length.
	DotProductUnsafe func(a, b []F) F

	// ConvolveValid computes dst[i] = Σ signal[i+k]*kernel[k] for every
	// position where the kernel fits inside signal.
	ConvolveValid func(dst, signal, kernel []F)

	// Interleave2 writes dst[2i]=a[i], dst[2i+1]=b[i].
	Interleave2 func(dst, a, b []F)

	// Sum returns Σ a[i].
	Sum func(a []F) F

	// Scale writes dst[i] = a[i]*s.
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		ConvolveValid:    f32.ConvolveValid,
		Interleave2:      f32.Interleave2,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		ConvolveValid:    f64.ConvolveValid,
		Interleave2:      f64.Interleave2,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// Float32Ops returns the float32 kernels.
func Float32Ops() *Ops[float32] {
	return &ops32
}

// Float64Ops returns the float64 kernels.
func Float64Ops() *Ops[float64] {
	return &ops64
}

// CPUInfo describes the instruction sets the kernels dispatch to.
func CPUInfo() string {
	return cpu.Info()
}
