package filter

import (
	"math"

	"github.com/gogpu/dither/internal/image"
)

// Quantizer maps a normalized sample to one of a finite set of levels.
// Quantizers act on one channel at a time; color images apply the same
// quantizer to every channel.
type Quantizer func(v float32) float32

// Threshold returns a binary quantizer: 1 if v > t, else 0.
// Values exactly at t quantize down.
func Threshold(t float32) Quantizer {
	return func(v float32) float32 {
		if v > t {
			return 1
		}
		return 0
	}
}

// EvenPalette returns a quantizer snapping to levels evenly spaced values
// in [0,1]. levels is clamped to [2,255]; an RGB image quantized with it
// uses at most levels³ distinct colors.
func EvenPalette(levels int) Quantizer {
	n := float64(min(max(levels, 2), 255) - 1)
	return func(v float32) float32 {
		return image.Clamp01(float32(math.Round(float64(v)*n) / n))
	}
}

// Bias maps a value in [0,1] (a random draw or a threshold-matrix entry)
// to the offset added to a sample before quantization.
type Bias func(v float32) float32

// Remap returns the Bias mapping [0,1] linearly onto [a,b].
func Remap(a, b float32) Bias {
	return func(v float32) float32 {
		return v*(b-a) + a
	}
}
