// Package simdops converts the session's int16 output to floating point and
// interleaves stereo frames using the SIMD kernels of tphakala/simd.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Int16Scale maps a full-scale int16 sample to [-1, 1).
const Int16Scale = 1.0 / 32768.0

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		Interleave2: f32.Interleave2,
		Sum:         f32.Sum,
		Scale:       f32.Scale,
	}
	ops64 = Ops[float64]{
		Interleave2: f64.Interleave2,
		Sum:         f64.Sum,
		Scale:       f64.Scale,
	}
)

// For returns the Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// FromInt16 converts src to floats in [-1, 1), writing min(len(dst),
// len(src)) samples, and returns the count.
func FromInt16[F Float](dst []F, src []int16) int {
	n := min(len(dst), len(src))
	dst = dst[:n]
	for i, v := range src[:n] {
		dst[i] = F(v)
	}
	For[F]().Scale(dst, dst, F(Int16Scale))
	return n
}

// Int16ToFloat32 converts src to float32 in [-1, 1).
func Int16ToFloat32(dst []float32, src []int16) int {
	return FromInt16(dst, src)
}

// Interleave2 interleaves two float32 channels into dst, which must hold
// 2*min(len(a), len(b)) samples.
func Interleave2(dst, a, b []float32) {
	n := min(len(a), len(b), len(dst)/2)
	ops32.Interleave2(dst[:2*n], a[:n], b[:n])
}
