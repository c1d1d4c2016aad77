package filter

import "github.com/gogpu/dither/internal/image"

// DiffusionStats reports what an error-diffusion pass pushed past the
// image borders.
type DiffusionStats struct {
	// Escaped is the error mass per channel that fell outside the image.
	// For every channel, sum(original) - sum(quantized) == Escaped.
	Escaped []float64
}

// ErrorDiffusion quantizes img in place, spreading each pixel's
// quantization error over its unvisited neighbors according to k.
//
// Pixels are visited row-major, top to bottom and left to right, so only
// pixels visited later receive error. Returns img.
func ErrorDiffusion(img *image.Buf, k Kernel, q Quantizer) *image.Buf {
	ErrorDiffusionStats(img, k, q)
	return img
}

// ErrorDiffusionStats is ErrorDiffusion returning the border losses.
//
// Carried error is accumulated in a separate plane, so stored samples stay
// within [0,1] while the quantizer sees the biased value.
func ErrorDiffusionStats(img *image.Buf, k Kernel, q Quantizer) DiffusionStats {
	w, h, ch := img.Width(), img.Height(), img.Channels()
	stats := DiffusionStats{Escaped: make([]float64, ch)}
	carry := make([]float32, w*h*ch)
	anchor := k.Anchor()

	biased := make([]float32, ch)
	errs := make([]float32, ch)

	for y := range h {
		for x := range w {
			px := img.PixelAt(x, y)
			base := (y*w + x) * ch
			for c := range ch {
				biased[c] = px[c] + carry[base+c]
				px[c] = image.Clamp01(q(biased[c]))
				errs[c] = biased[c] - px[c]
			}

			for ky := range k.height {
				for kx := range k.width {
					wt := k.weights[ky*k.width+kx]
					if wt == 0 {
						continue
					}
					tx, ty := x+kx-anchor, y+ky
					if !img.InBounds(tx, ty) {
						for c := range ch {
							stats.Escaped[c] += float64(errs[c] * wt)
						}
						continue
					}
					t := (ty*w + tx) * ch
					for c := range ch {
						carry[t+c] += errs[c] * wt
					}
				}
			}
		}
	}
	return stats
}
