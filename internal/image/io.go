package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrEmptyImage is returned when a decoded image has no pixels.
	ErrEmptyImage = errors.New("image: empty image")
)

// Decode decodes an image from r, auto-detecting the format (PNG, JPEG,
// GIF, BMP, TIFF, WebP), and converts it to an RGBA8 Raw buffer. When
// maxWidth is positive and the image is wider, it is scaled down
// preserving the aspect ratio.
func Decode(r io.Reader, maxWidth int) (Raw, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Raw{}, fmt.Errorf("image: decode: %w", err)
	}
	return FromStdImage(img, maxWidth)
}

// FromStdImage converts a standard library image to an RGBA8 Raw buffer,
// scaling it down to maxWidth when needed.
func FromStdImage(img image.Image, maxWidth int) (Raw, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return Raw{}, ErrEmptyImage
	}

	dstW, dstH := width, height
	if maxWidth > 0 && width > maxWidth {
		dstW = maxWidth
		dstH = max(1, height*maxWidth/width)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	if dstW == width {
		xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	}

	return Raw{Width: dstW, Height: dstH, Format: FormatRGBA8, Pix: dst.Pix}, nil
}

// ToStdImage converts a Raw buffer to a standard library image.
// Gray8 becomes *image.Gray, the color formats *image.NRGBA.
func ToStdImage(r Raw) (image.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, r.Width, r.Height)

	switch r.Format {
	case FormatGray8:
		gray := image.NewGray(rect)
		copy(gray.Pix, r.Pix)
		return gray, nil

	case FormatRGB8:
		nrgba := image.NewNRGBA(rect)
		for i := range r.Width * r.Height {
			copy(nrgba.Pix[i*4:i*4+3], r.Pix[i*3:i*3+3])
			nrgba.Pix[i*4+3] = 255
		}
		return nrgba, nil

	default:
		nrgba := image.NewNRGBA(rect)
		copy(nrgba.Pix, r.Pix)
		return nrgba, nil
	}
}

// EncodePNG encodes r as PNG to w.
func EncodePNG(w io.Writer, r Raw) error {
	img, err := ToStdImage(r)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}
