package filter

import (
	"errors"
	"fmt"
	"math"
)

// Kernel errors.
var (
	// ErrKernelShape is returned when weights do not match width*height.
	ErrKernelShape = errors.New("filter: kernel weights do not match shape")

	// ErrZeroKernel is returned when a kernel's weights sum to zero.
	ErrZeroKernel = errors.New("filter: kernel weights sum to zero")
)

// Kernel is an error-diffusion kernel: a small weight matrix describing how
// the quantization error of the current pixel spreads to pixels that have
// not been visited yet.
//
// The current pixel sits on row 0 at column Anchor(). Its cell, and every
// cell left of it on row 0, must be zero. Kernels built by NewKernel are
// normalized so the weights sum to 1 and are immutable afterwards.
type Kernel struct {
	width   int
	height  int
	weights []float32
}

// NewKernel creates a normalized kernel from row-major weights.
func NewKernel(weights []float32, width, height int) (Kernel, error) {
	if width <= 0 || height <= 0 || len(weights) != width*height {
		return Kernel{}, fmt.Errorf("%w: %d weights for %dx%d", ErrKernelShape, len(weights), width, height)
	}
	k := Kernel{width: width, height: height, weights: make([]float32, len(weights))}
	copy(k.weights, weights)
	return k.Normalized()
}

// mustKernel is used by the built-in library, whose weights are known good.
func mustKernel(weights []float32, width, height int) Kernel {
	k, err := NewKernel(weights, width, height)
	if err != nil {
		panic(err)
	}
	return k
}

// Simple2D is the 2x2 kernel sending half the error right and half down.
func Simple2D() Kernel {
	return mustKernel([]float32{
		0, 1,
		1, 0,
	}, 2, 2)
}

// FloydSteinberg is the classic 3x2 Floyd-Steinberg kernel.
func FloydSteinberg() Kernel {
	return mustKernel([]float32{
		0, 0, 7,
		1, 5, 3,
	}, 3, 2)
}

// JarvisJudiceNinke is the 5x3 Jarvis-Judice-Ninke kernel.
func JarvisJudiceNinke() Kernel {
	return mustKernel([]float32{
		0, 0, 0, 7, 5,
		3, 5, 7, 5, 3,
		1, 3, 5, 3, 1,
	}, 5, 3)
}

// Width returns the kernel width.
func (k Kernel) Width() int {
	return k.width
}

// Height returns the kernel height.
func (k Kernel) Height() int {
	return k.height
}

// Anchor returns the column of the current pixel on row 0.
func (k Kernel) Anchor() int {
	return (k.width - 1) / 2
}

// Weight returns the weight at (x, y), or 0 outside the kernel.
func (k Kernel) Weight(x, y int) float32 {
	if x < 0 || x >= k.width || y < 0 || y >= k.height {
		return 0
	}
	return k.weights[y*k.width+x]
}

// Weights returns a copy of the row-major weights.
func (k Kernel) Weights() []float32 {
	w := make([]float32, len(k.weights))
	copy(w, k.weights)
	return w
}

// Normalized returns a copy of k whose non-anchor weights sum to 1.
// The anchor cell is forced to zero.
func (k Kernel) Normalized() (Kernel, error) {
	out := Kernel{width: k.width, height: k.height, weights: make([]float32, len(k.weights))}
	copy(out.weights, k.weights)
	out.weights[k.Anchor()] = 0

	sum := float64(0)
	for _, w := range out.weights {
		sum += float64(w)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Kernel{}, ErrZeroKernel
	}

	inv := 1 / sum
	for i, w := range out.weights {
		out.weights[i] = float32(float64(w) * inv)
	}
	return out, nil
}

// GaussianKernel generates a 1D Gaussian kernel for the given radius.
// The kernel is normalized so all values sum to 1.0.
//
// The kernel size is computed as 2 * ceil(radius * 3) + 1, which covers
// 99.7% of the Gaussian distribution (3 standard deviations).
//
// For radius <= 0, returns a single-element kernel [1.0] (identity).
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1.0}
	}

	sigma := radius
	halfSize := int(math.Ceil(sigma * 3))
	size := halfSize*2 + 1

	kernel := make([]float32, size)

	// exp(-x²/(2σ²)); the constant factor cancels when normalizing.
	twoSigmaSq := 2 * sigma * sigma
	sum := float64(0)

	for i := range size {
		x := float64(i - halfSize)
		val := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(val)
		sum += val
	}

	invSum := float32(1.0 / sum)
	for i := range kernel {
		kernel[i] *= invSum
	}

	return kernel
}
