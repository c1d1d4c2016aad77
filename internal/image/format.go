package image

// Format describes how 8-bit samples are interleaved in a raw pixel buffer.
type Format uint8

const (
	// FormatGray8 is 8-bit grayscale (1 byte per pixel).
	FormatGray8 Format = iota

	// FormatRGB8 is 24-bit RGB (3 bytes per pixel, no alpha).
	FormatRGB8

	// FormatRGBA8 is 32-bit RGBA (4 bytes per pixel).
	// Alpha is ignored when decoding and written as 255 when encoding.
	FormatRGBA8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// Channels is the number of color channels, excluding alpha.
	Channels int

	// HasAlpha indicates if the format carries an alpha byte.
	HasAlpha bool
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatGray8: {BytesPerPixel: 1, Channels: 1},
	FormatRGB8:  {BytesPerPixel: 3, Channels: 3},
	FormatRGBA8: {BytesPerPixel: 4, Channels: 3, HasAlpha: true},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// Channels returns the number of color channels.
func (f Format) Channels() int {
	return f.Info().Channels
}

// HasAlpha returns true if this format has an alpha byte.
func (f Format) HasAlpha() bool {
	return f.Info().HasAlpha
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// ImageBytes calculates the total number of bytes needed for an image.
// It returns -1 for dimensions a Buf cannot hold.
func (f Format) ImageBytes(width, height int) int {
	if !validDims(width, height) {
		return -1
	}
	return width * height * f.BytesPerPixel()
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "Gray8"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return "Unknown"
	}
}
