// Package filter implements the quantization and dithering algorithms.
//
// Pointwise methods:
//   - Quantize: plain quantization (threshold or even palette)
//   - Random: quantization biased by uniform noise
//   - Ordered: quantization biased by a tiled threshold mask (Bayer, blue noise)
//
// Neighborhood method:
//   - ErrorDiffusion: row-major quantization spreading each pixel's error
//     over its unvisited neighbors with a normalized Kernel
//
// All methods mutate the buffer they are given; callers own a private copy.
package filter
