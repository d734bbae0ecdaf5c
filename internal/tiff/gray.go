package tiff

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Gray converts the buffer's samples to 8-bit grayscale, one byte per
// sample. Native u8 data is already in the output domain and is returned
// as is; every other kind is linearly rescaled to [0,255] from its own
// observed min/max.
func (b *SampleBuffer) Gray() []uint8 {
	switch b.Kind {
	case U8:
		return b.U8s
	case U16:
		return grayInt(b.U16s)
	case U32:
		return grayInt(b.U32s)
	case U64:
		return grayInt(b.U64s)
	case I8:
		return grayInt(b.I8s)
	case I16:
		return grayInt(b.I16s)
	case I32:
		return grayInt(b.I32s)
	case I64:
		return grayInt(b.I64s)
	case F32:
		return grayFloat(b.F32s)
	case F64:
		return grayFloat(b.F64s)
	}
	return nil
}

// grayInt rescales integer samples to [0,255], truncating the scaled
// value. A constant buffer maps entirely to 0 (span substituted with 1).
func grayInt[T constraints.Integer](buf []T) []uint8 {
	out := make([]uint8, len(buf))
	if len(buf) == 0 {
		return out
	}
	minv, maxv := buf[0], buf[0]
	for _, v := range buf[1:] {
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	lo := float64(minv)
	span := float64(maxv) - lo
	if span == 0 {
		span = 1
	}
	for i, v := range buf {
		frac := (float64(v) - lo) / span
		out[i] = uint8(clamp01(frac) * 255)
	}
	return out
}

// grayFloat rescales floating samples to [0,255], rounding to nearest to
// reduce banding in smoothly varying data. The min/max reduction runs
// over the finite samples only, so those still map to the full range;
// NaN maps to 0, +Inf to 255 and -Inf to 0.
func grayFloat[T constraints.Float](buf []T) []uint8 {
	out := make([]uint8, len(buf))
	if len(buf) == 0 {
		return out
	}
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range buf {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	// Constant and no-finite-sample buffers degrade to span 1; the clamp
	// keeps every output in range either way.
	span := hi - lo
	if !(span > 0) {
		span = 1
	}
	for i, v := range buf {
		f := float64(v)
		if math.IsNaN(f) {
			continue
		}
		frac := (f - lo) / span
		out[i] = uint8(math.Round(clamp01(frac) * 255))
	}
	return out
}

func clamp01(f float64) float64 {
	if !(f > 0) { // also catches NaN
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
