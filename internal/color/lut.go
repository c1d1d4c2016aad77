package color

// sRGBToLinearLUT maps an sRGB byte to its linear value in [0,1].
var sRGBToLinearLUT [256]float32

// linearToSRGBLUT maps a linear value quantized to 12 bits to an sRGB byte.
// 4096 entries are enough to hit every output byte.
var linearToSRGBLUT [4096]uint8

func init() {
	for i := range sRGBToLinearLUT {
		sRGBToLinearLUT[i] = float32(SRGBToLinear(float64(i) / 255.0))
	}
	for i := range linearToSRGBLUT {
		linearToSRGBLUT[i] = toByte(LinearToSRGB(float64(i) / 4095.0))
	}
}

// SRGBToLinearFast converts an sRGB byte to a linear sample using a
// lookup table.
//
// Example:
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// LinearToSRGBFast converts a linear sample to an sRGB byte using a lookup
// table. Input is clamped to [0,1]; NaN maps to 0.
//
// Example:
//
//	s := LinearToSRGBFast(0.5) // 188 (not 128!)
func LinearToSRGBFast(l float32) uint8 {
	if !(l > 0) {
		return linearToSRGBLUT[0]
	}
	if l > 1 {
		l = 1
	}
	return linearToSRGBLUT[int(l*4095.0+0.5)]
}

// SRGBToLinearSlow converts an sRGB byte to linear with math.Pow.
// Reference for the table version.
func SRGBToLinearSlow(s uint8) float32 {
	return float32(SRGBToLinear(float64(s) / 255.0))
}

// LinearToSRGBSlow converts a linear sample to an sRGB byte with math.Pow.
// Reference for the table version.
func LinearToSRGBSlow(l float32) uint8 {
	return toByte(LinearToSRGB(min(max(float64(l), 0), 1)))
}
