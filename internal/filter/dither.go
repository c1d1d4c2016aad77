package filter

import (
	"github.com/gogpu/dither/internal/image"
	"github.com/gogpu/dither/internal/parallel"
)

// Quantize applies q to every sample of img in place.
// A non-nil pool spreads rows across its workers.
func Quantize(img *image.Buf, q Quantizer, pool *parallel.WorkerPool) *image.Buf {
	parallel.Rows(pool, img.Height(), func(y0, y1 int) {
		img.MapRows(y0, y1, func(v float32, _ image.Pos) float32 {
			return q(v)
		})
	})
	return img
}

// Random dithers img in place: each sample becomes q(v + bias(r)) where r
// is a fresh draw from rnd in [0,1). rnd must be safe for concurrent use
// when a pool is given.
func Random(img *image.Buf, q Quantizer, bias Bias, rnd func() float32, pool *parallel.WorkerPool) *image.Buf {
	parallel.Rows(pool, img.Height(), func(y0, y1 int) {
		img.MapRows(y0, y1, func(v float32, _ image.Pos) float32 {
			return q(v + bias(rnd()))
		})
	})
	return img
}

// Ordered dithers img in place against a threshold mask tiled over the
// image: each sample becomes q(v + bias(mask(x mod w, y mod h))).
func Ordered(img, mask *image.Buf, q Quantizer, bias Bias, pool *parallel.WorkerPool) *image.Buf {
	parallel.Rows(pool, img.Height(), func(y0, y1 int) {
		img.MapRows(y0, y1, func(v float32, at image.Pos) float32 {
			return q(v + bias(mask.WrapAt(at.X, at.Y)[0]))
		})
	})
	return img
}
