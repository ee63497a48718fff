package preprocess

import "github.com/cartotext/cadscan/internal/raster"

// Dilate thickens foreground strokes in a binarized buffer: every pixel
// within the kernel neighborhood of a foreground (value-0, black) pixel
// becomes foreground. Thin pen strokes survive recognition better after a
// single dilation pass.
//
// kernelSize is the kernel edge (3 means each foreground pixel spreads to
// its 8 neighbors). Returns a new buffer; the input is not modified.
func Dilate(buf *raster.Buffer, kernelSize int) *raster.Buffer {
	if buf.Empty() || kernelSize < 3 {
		return buf
	}
	half := kernelSize / 2
	out := buf.Clone()

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if buf.Intensity(x, y) != 0 {
				continue
			}
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < buf.Width && ny >= 0 && ny < buf.Height {
						out.SetIntensity(nx, ny, 0)
					}
				}
			}
		}
	}
	return out
}
