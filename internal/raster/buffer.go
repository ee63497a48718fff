package raster

import "image"

// Buffer is a raw grid of 8-bit pixel channel values.
//
// Channels is 1 for grayscale buffers and 4 for RGBA buffers. Pix holds
// Width*Height*Channels bytes in row-major order. A Buffer with zero area
// is valid; transforms return zero-area input unchanged rather than failing.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed buffer of the given dimensions.
//
// channels must be 1 or 4; any other value is coerced to 4.
func New(width, height, channels int) *Buffer {
	if channels != 1 && channels != 4 {
		channels = 4
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// FromImage converts a decoded image into a four-channel RGBA buffer.
//
// 16-bit source channels are scaled down to 8 bits. The buffer is a copy;
// the source image is not retained.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	buf := New(bounds.Dx(), bounds.Dy(), 4)

	// Fast path for the common decode type.
	if rgba, ok := img.(*image.RGBA); ok && bounds == rgba.Rect {
		for y := 0; y < buf.Height; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+buf.Width*4]
			dst := buf.Pix[y*buf.Width*4 : (y+1)*buf.Width*4]
			copy(dst, src)
		}
		return buf
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			i := (y*buf.Width + x) * 4
			buf.Pix[i] = uint8(r >> 8)
			buf.Pix[i+1] = uint8(g >> 8)
			buf.Pix[i+2] = uint8(b >> 8)
			buf.Pix[i+3] = uint8(a >> 8)
		}
	}
	return buf
}

// Empty reports whether the buffer has zero area.
func (b *Buffer) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	dup := &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Pix:      make([]uint8, len(b.Pix)),
	}
	copy(dup.Pix, b.Pix)
	return dup
}

// offset returns the Pix index of channel 0 at (x, y). Callers must ensure
// the coordinates are in bounds.
func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// Intensity returns the first-channel value at (x, y). After a grayscale
// pass all color channels carry the same value, so channel 0 is the pixel
// intensity.
func (b *Buffer) Intensity(x, y int) uint8 {
	return b.Pix[b.offset(x, y)]
}

// SetIntensity writes v into every color channel at (x, y). The alpha
// channel of a four-channel buffer is left untouched.
func (b *Buffer) SetIntensity(x, y int, v uint8) {
	i := b.offset(x, y)
	b.Pix[i] = v
	if b.Channels == 4 {
		b.Pix[i+1] = v
		b.Pix[i+2] = v
	}
}

// At returns the value of channel c at (x, y).
func (b *Buffer) At(x, y, c int) uint8 {
	return b.Pix[b.offset(x, y)+c]
}

// Set writes the value of channel c at (x, y).
func (b *Buffer) Set(x, y, c int, v uint8) {
	b.Pix[b.offset(x, y)+c] = v
}

// ToImage converts the buffer back into a standard image for encoding or
// for handing to a recognition backend.
//
// Single-channel buffers become *image.Gray; four-channel buffers become
// *image.RGBA.
func (b *Buffer) ToImage() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	if b.Channels == 1 {
		gray := image.NewGray(rect)
		copy(gray.Pix, b.Pix)
		return gray
	}
	rgba := image.NewRGBA(rect)
	copy(rgba.Pix, b.Pix)
	return rgba
}

// ToGray collapses the buffer to a single-channel copy using the value of
// channel 0. Intended for buffers that have already been through grayscale.
func (b *Buffer) ToGray() *Buffer {
	out := New(b.Width, b.Height, 1)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			out.Pix[y*b.Width+x] = b.Intensity(x, y)
		}
	}
	return out
}

// Fill sets every color channel of every pixel to v. Four-channel buffers
// get an opaque alpha. Useful for constructing test fixtures.
func (b *Buffer) Fill(v uint8) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := b.offset(x, y)
			b.Pix[i] = v
			if b.Channels == 4 {
				b.Pix[i+1] = v
				b.Pix[i+2] = v
				b.Pix[i+3] = 255
			}
		}
	}
}
