package image

import "fmt"

// Raw is an interleaved 8-bit pixel buffer, the form images take on the
// way into and out of the dithering core.
type Raw struct {
	Width  int
	Height int
	Format Format
	Pix    []byte
}

// Validate checks that the declared shape matches the buffer length.
func (r Raw) Validate() error {
	if !validDims(r.Width, r.Height) {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, r.Width, r.Height)
	}
	if !r.Format.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidFormat, r.Format)
	}
	if want := r.Format.ImageBytes(r.Width, r.Height); len(r.Pix) != want {
		return fmt.Errorf("%w: %dx%d %s needs %d bytes, got %d",
			ErrShapeMismatch, r.Width, r.Height, r.Format, want, len(r.Pix))
	}
	return nil
}

// Normalize converts r into a normalized buffer with the given channel count.
func (r Raw) Normalize(channels int, enc Encoding) (*Buf, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return FromBytes(r.Pix, r.Width, r.Height, r.Format, channels, enc)
}

// Raw converts b into an 8-bit buffer of the given format.
func (b *Buf) Raw(format Format, enc Encoding) (Raw, error) {
	pix, err := b.Bytes(format, enc)
	if err != nil {
		return Raw{}, err
	}
	return Raw{Width: b.width, Height: b.height, Format: format, Pix: pix}, nil
}

// Clone returns a deep copy of r.
func (r Raw) Clone() Raw {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	r.Pix = pix
	return r
}
