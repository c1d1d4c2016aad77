package dither

import (
	"fmt"

	"github.com/gogpu/dither/internal/image"
	"github.com/gogpu/dither/internal/ordered"
)

// Image is an interleaved 8-bit pixel buffer: Width x Height pixels of
// Format, row-major, no padding.
type Image = image.Raw

// Format is the byte layout of an Image.
type Format = image.Format

// Supported formats. Alpha is ignored on input and written as 255.
const (
	FormatGray8 = image.FormatGray8
	FormatRGB8  = image.FormatRGB8
	FormatRGBA8 = image.FormatRGBA8
)

// Buf is a normalized image: float32 samples in [0,1], one (gray) or three
// (RGB) interleaved channels. Steps and masks work on Bufs.
type Buf = image.Buf

// Encoding selects the transfer between bytes and normalized samples.
type Encoding = image.Encoding

// Encodings.
const (
	EncodingGamma  = image.EncodingGamma
	EncodingLinear = image.EncodingLinear
)

// Normalize converts img to the buffer the steps of mode work on.
// Gray mode reduces RGB(A) to luma.
func Normalize(img Image, mode Mode, enc Encoding) (*Buf, error) {
	return img.Normalize(mode.channels(), enc)
}

// MaskKind selects an ordered-dithering threshold mask.
type MaskKind = ordered.Kind

// Mask kinds.
const (
	MaskBayer     = ordered.KindBayer
	MaskBlueNoise = ordered.KindBlueNoise
)

// Mode selects the step catalogue a job runs through.
type Mode uint8

const (
	// ModeGray converts the image to gray and runs the binary catalogue.
	ModeGray Mode = iota

	// ModeColor keeps RGB and runs the even-palette catalogue.
	ModeColor
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeColor:
		return "color"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

func (m Mode) channels() int {
	if m == ModeColor {
		return 3
	}
	return 1
}

// Job is one source image submitted to a Pipeline.
type Job struct {
	// ID tags every event and asset request of the job. Empty means a
	// generated id.
	ID string

	Mode  Mode
	Image Image
}
