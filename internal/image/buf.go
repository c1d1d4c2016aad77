// Package image provides the normalized sample buffers dithering works on.
//
// A Buf holds float32 samples in [0,1] for one (gray) or three (RGB)
// interleaved channels. Raw 8-bit buffers are converted in and out with
// FromBytes and Buf.Bytes.
package image

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/gogpu/dither/internal/color"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the raw format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidChannels is returned when a buffer is not 1 or 3 channels.
	ErrInvalidChannels = errors.New("image: channels must be 1 or 3")

	// ErrShapeMismatch is returned when a buffer length does not match
	// width*height*channels.
	ErrShapeMismatch = errors.New("image: buffer length does not match shape")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// Encoding selects the transfer function used when converting 8-bit
// samples to and from normalized values.
type Encoding uint8

const (
	// EncodingGamma rescales bytes linearly: v = b/255.
	EncodingGamma Encoding = iota

	// EncodingLinear decodes sRGB bytes to linear light and encodes back.
	EncodingLinear
)

// Pos identifies a sample position passed to mapping functions.
// I is the linear pixel index y*width+x.
type Pos struct {
	X, Y, I int
}

// Pixel is one element of the Buf.Pixels sequence.
// Value is a view into the buffer, not a copy.
type Pixel struct {
	X, Y  int
	Value []float32
}

// MapFunc transforms one sample.
type MapFunc func(v float32, at Pos) float32

// Buf is a fixed-size 2-D buffer of normalized float32 samples.
//
// Samples are stored row-major with channels interleaved. Every write made
// through Set, SetPixel, Map and MapSelf is clamped to [0,1].
//
// Thread safety: Buf is safe for concurrent reads. Writes require exclusive
// ownership; callers that mutate must Clone first.
type Buf struct {
	samples  []float32
	width    int
	height   int
	channels int
}

// MaxPixels bounds width*height of any buffer.
const MaxPixels = 1 << 28

// validDims reports whether a width x height image is non-empty and within
// MaxPixels. The check divides so it cannot overflow.
func validDims(width, height int) bool {
	return width > 0 && height > 0 && width <= MaxPixels/height
}

// NewBuf creates a zeroed buffer.
func NewBuf(width, height, channels int) (*Buf, error) {
	if !validDims(width, height) {
		return nil, ErrInvalidDimensions
	}
	if channels != 1 && channels != 3 {
		return nil, ErrInvalidChannels
	}
	return &Buf{
		samples:  make([]float32, width*height*channels),
		width:    width,
		height:   height,
		channels: channels,
	}, nil
}

// FromSamples creates a buffer from normalized samples. The samples are
// copied and clamped to [0,1].
func FromSamples(samples []float32, width, height, channels int) (*Buf, error) {
	b, err := NewBuf(width, height, channels)
	if err != nil {
		return nil, err
	}
	if len(samples) != len(b.samples) {
		return nil, ErrShapeMismatch
	}
	for i, v := range samples {
		b.samples[i] = Clamp01(v)
	}
	return b, nil
}

// FromBytes converts an interleaved 8-bit buffer into a normalized buffer
// with the requested channel count. Color sources converted to one channel
// use Rec. 601 luma weights.
func FromBytes(pix []byte, width, height int, format Format, channels int, enc Encoding) (*Buf, error) {
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if !validDims(width, height) {
		return nil, ErrInvalidDimensions
	}
	if len(pix) != format.ImageBytes(width, height) {
		return nil, ErrShapeMismatch
	}
	b, err := NewBuf(width, height, channels)
	if err != nil {
		return nil, err
	}

	bpp := format.BytesPerPixel()
	decode := decoder(enc)
	for i := range width * height {
		src := pix[i*bpp : i*bpp+bpp]
		dst := b.samples[i*channels : i*channels+channels]
		switch {
		case format.Channels() == 1:
			v := decode(src[0])
			for c := range dst {
				dst[c] = v
			}
		case channels == 1:
			r, g, bl := decode(src[0]), decode(src[1]), decode(src[2])
			dst[0] = Clamp01(0.299*r + 0.587*g + 0.114*bl)
		default:
			dst[0], dst[1], dst[2] = decode(src[0]), decode(src[1]), decode(src[2])
		}
	}
	return b, nil
}

func decoder(enc Encoding) func(byte) float32 {
	if enc == EncodingLinear {
		return color.SRGBToLinearFast
	}
	return func(v byte) float32 { return float32(v) / 255 }
}

// Clone creates a deep copy of the buffer.
func (b *Buf) Clone() *Buf {
	samples := make([]float32, len(b.samples))
	copy(samples, b.samples)
	return &Buf{
		samples:  samples,
		width:    b.width,
		height:   b.height,
		channels: b.channels,
	}
}

// CopyFrom overwrites b with the samples of src, which must have the same
// shape.
func (b *Buf) CopyFrom(src *Buf) error {
	if src.width != b.width || src.height != b.height || src.channels != b.channels {
		return fmt.Errorf("%w: %dx%dx%d into %dx%dx%d", ErrShapeMismatch,
			src.width, src.height, src.channels, b.width, b.height, b.channels)
	}
	copy(b.samples, src.samples)
	return nil
}

// Width returns the image width in pixels.
func (b *Buf) Width() int {
	return b.width
}

// Height returns the image height in pixels.
func (b *Buf) Height() int {
	return b.height
}

// Channels returns the number of samples per pixel.
func (b *Buf) Channels() int {
	return b.channels
}

// Samples returns the underlying sample slice. It must be treated as
// read-only; use Set or MapSelf to write.
func (b *Buf) Samples() []float32 {
	return b.samples
}

// InBounds reports whether (x, y) addresses a pixel of the buffer.
func (b *Buf) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// PixelAt returns a view of the channels of pixel (x, y), or nil when the
// coordinates are out of bounds. Writes through the view bypass clamping.
func (b *Buf) PixelAt(x, y int) []float32 {
	if !b.InBounds(x, y) {
		return nil
	}
	i := (y*b.width + x) * b.channels
	return b.samples[i : i+b.channels : i+b.channels]
}

// WrapAt returns a view of pixel (x mod width, y mod height).
// Negative coordinates wrap as well.
func (b *Buf) WrapAt(x, y int) []float32 {
	x %= b.width
	if x < 0 {
		x += b.width
	}
	y %= b.height
	if y < 0 {
		y += b.height
	}
	return b.PixelAt(x, y)
}

// At returns channel c of pixel (x, y). Out-of-bounds reads return 0.
func (b *Buf) At(x, y, c int) float32 {
	p := b.PixelAt(x, y)
	if p == nil || c < 0 || c >= b.channels {
		return 0
	}
	return p[c]
}

// Set writes channel c of pixel (x, y), clamped to [0,1].
func (b *Buf) Set(x, y, c int, v float32) error {
	p := b.PixelAt(x, y)
	if p == nil || c < 0 || c >= b.channels {
		return ErrOutOfBounds
	}
	p[c] = Clamp01(v)
	return nil
}

// SetPixel writes all channels of pixel (x, y), clamped to [0,1].
// Extra values are ignored; missing ones leave channels untouched.
func (b *Buf) SetPixel(x, y int, v []float32) error {
	p := b.PixelAt(x, y)
	if p == nil {
		return ErrOutOfBounds
	}
	for c := range min(len(p), len(v)) {
		p[c] = Clamp01(v[c])
	}
	return nil
}

// Map returns a new buffer with f applied to every sample.
func (b *Buf) Map(f MapFunc) *Buf {
	return b.Clone().MapSelf(f)
}

// MapSelf applies f to every sample in place and returns b.
func (b *Buf) MapSelf(f MapFunc) *Buf {
	b.MapRows(0, b.height, f)
	return b
}

// MapRows applies f in place to the rows [y0, y1). Disjoint row ranges may
// be mapped from different goroutines.
func (b *Buf) MapRows(y0, y1 int, f MapFunc) {
	y0 = max(y0, 0)
	y1 = min(y1, b.height)
	for y := y0; y < y1; y++ {
		for x := range b.width {
			i := y*b.width + x
			at := Pos{X: x, Y: y, I: i}
			px := b.samples[i*b.channels : (i+1)*b.channels]
			for c, v := range px {
				px[c] = Clamp01(f(v, at))
			}
		}
	}
}

// Pixels returns the pixels in row-major order. The sequence is lazy and
// may be ranged over more than once.
func (b *Buf) Pixels() iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		for y := range b.height {
			for x := range b.width {
				if !yield(Pixel{X: x, Y: y, Value: b.PixelAt(x, y)}) {
					return
				}
			}
		}
	}
}

// Bytes converts the buffer into an interleaved 8-bit buffer of the given
// format, rounding to the nearest byte. Gray buffers are replicated into
// every color channel; alpha bytes are set to 255.
func (b *Buf) Bytes(format Format, enc Encoding) ([]byte, error) {
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	bpp := format.BytesPerPixel()
	out := make([]byte, format.ImageBytes(b.width, b.height))
	encode := encoder(enc)
	for i := range b.width * b.height {
		src := b.samples[i*b.channels : (i+1)*b.channels]
		dst := out[i*bpp : (i+1)*bpp]
		switch {
		case format.Channels() == 1 && b.channels == 3:
			dst[0] = encode(0.299*src[0] + 0.587*src[1] + 0.114*src[2])
		case format.Channels() == 1:
			dst[0] = encode(src[0])
		case b.channels == 1:
			v := encode(src[0])
			dst[0], dst[1], dst[2] = v, v, v
		default:
			dst[0], dst[1], dst[2] = encode(src[0]), encode(src[1]), encode(src[2])
		}
		if format.HasAlpha() {
			dst[3] = 255
		}
	}
	return out, nil
}

func encoder(enc Encoding) func(float32) byte {
	if enc == EncodingLinear {
		return color.LinearToSRGBFast
	}
	return ToByte
}

// ToByte rescales a normalized sample to [0,255], rounding to nearest.
func ToByte(v float32) byte {
	return byte(math.Round(float64(Clamp01(v)) * 255))
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
