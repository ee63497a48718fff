package preprocess

import (
	"math"

	"github.com/anthonynsimon/bild/effect"

	"github.com/cartotext/cadscan/internal/raster"
)

// Grayscale converts the buffer to grayscale in place using ITU-R BT.601
// luminosity weights (0.299*R + 0.587*G + 0.114*B), replicating the result
// into all color channels. Single-channel buffers are returned unchanged.
func Grayscale(buf *raster.Buffer) *raster.Buffer {
	if buf.Empty() || buf.Channels == 1 {
		return buf
	}
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r := float64(buf.At(x, y, 0))
			g := float64(buf.At(x, y, 1))
			b := float64(buf.At(x, y, 2))
			lum := uint8(0.299*r + 0.587*g + 0.114*b)
			buf.SetIntensity(x, y, lum)
		}
	}
	return buf
}

// Contrast applies the linear transform v' = clamp(0,255, v*factor +
// 128*(1-factor)) to every color channel in place. A factor of 1 is the
// identity; factors above 1 spread values away from mid-gray.
func Contrast(buf *raster.Buffer, factor float64) *raster.Buffer {
	if buf.Empty() || factor == 1 {
		return buf
	}
	// Precomputed lookup: the transform depends only on the input value.
	var lut [256]uint8
	offset := 128 * (1 - factor)
	for v := 0; v < 256; v++ {
		lut[v] = clampByte(float64(v)*factor + offset)
	}
	channels := buf.Channels
	if channels == 4 {
		channels = 3 // leave alpha alone
	}
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			for c := 0; c < channels; c++ {
				buf.Set(x, y, c, lut[buf.At(x, y, c)])
			}
		}
	}
	return buf
}

// GaussianBlur smooths the buffer with a 2D Gaussian kernel generated from
// sigma = radius/2, normalized to sum 1.
//
// Border policy is clamp-skip: pixels within radius of any edge are copied
// through unprocessed rather than wrapped or reflected. A radius of 0 or a
// buffer smaller than the kernel returns the input unchanged.
func GaussianBlur(buf *raster.Buffer, radius int) *raster.Buffer {
	if buf.Empty() || radius <= 0 {
		return buf
	}
	size := radius*2 + 1
	if buf.Width < size || buf.Height < size {
		return buf
	}

	kernel := gaussianKernel(radius)
	out := buf.Clone()

	for y := radius; y < buf.Height-radius; y++ {
		for x := radius; x < buf.Width-radius; x++ {
			var sum float64
			for ky := -radius; ky <= radius; ky++ {
				for kx := -radius; kx <= radius; kx++ {
					w := kernel[ky+radius][kx+radius]
					sum += w * float64(buf.Intensity(x+kx, y+ky))
				}
			}
			out.SetIntensity(x, y, clampByte(sum))
		}
	}
	return out
}

// gaussianKernel builds a normalized (2r+1)x(2r+1) Gaussian kernel with
// sigma = r/2.
func gaussianKernel(radius int) [][]float64 {
	sigma := float64(radius) / 2
	if sigma <= 0 {
		sigma = 0.5
	}
	size := radius*2 + 1
	kernel := make([][]float64, size)
	var total float64
	for y := 0; y < size; y++ {
		kernel[y] = make([]float64, size)
		for x := 0; x < size; x++ {
			dx := float64(x - radius)
			dy := float64(y - radius)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			kernel[y][x] = v
			total += v
		}
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			kernel[y][x] /= total
		}
	}
	return kernel
}

// Denoise removes speckle noise from the scan with a 3x3 median filter.
// Returns a new buffer; the input is not modified.
func Denoise(buf *raster.Buffer) *raster.Buffer {
	if buf.Empty() {
		return buf
	}
	filtered := effect.Median(buf.ToImage(), 3)
	return raster.FromImage(filtered)
}

// clampByte converts a float to a byte, clamping to [0, 255].
func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
