// Package color converts samples between sRGB and linear light.
//
// Images arrive sRGB-encoded. Dithering the encoded values keeps the
// perceived brightness of flat areas, while dithering linear values keeps
// the emitted light; the pipeline offers both. The lookup tables give O(1)
// byte conversions in both directions.
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
package color

import "math"

// SRGBToLinear converts an sRGB component to linear (EOTF - Electro-Optical Transfer Function).
// Formula: if s <= 0.04045: s/12.92; else: pow((s+0.055)/1.055, 2.4)
// Input and output are in range [0,1].
func SRGBToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// LinearToSRGB converts a linear component to sRGB (OETF - Opto-Electronic Transfer Function).
// Formula: if l <= 0.0031308: l*12.92; else: 1.055*pow(l, 1/2.4)-0.055
// Input and output are in range [0,1].
func LinearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

// toByte clamps a [0,1] value and rounds it to [0,255].
func toByte(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
