package preprocess

import (
	"github.com/anthonynsimon/bild/segment"

	"github.com/cartotext/cadscan/internal/raster"
)

// OtsuLevel computes the global binarization threshold maximizing the
// between-class variance w0*w1*(mean0-mean1)^2 of the intensity histogram.
//
// Candidate thresholds where either class has zero weight are skipped.
// A zero-area buffer yields the mid-level 128.
func OtsuLevel(buf *raster.Buffer) uint8 {
	if buf.Empty() {
		return 128
	}

	var histogram [256]int
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			histogram[buf.Intensity(x, y)]++
		}
	}

	total := buf.Width * buf.Height
	var totalSum float64
	for i := 0; i < 256; i++ {
		totalSum += float64(i) * float64(histogram[i])
	}

	var sumBelow float64
	var weightBelow int
	var maxVariance float64
	bestLo, bestHi := 0, 0

	for t := 0; t < 256; t++ {
		weightBelow += histogram[t]
		if weightBelow == 0 {
			continue
		}
		weightAbove := total - weightBelow
		if weightAbove == 0 {
			break
		}

		sumBelow += float64(t) * float64(histogram[t])
		meanBelow := sumBelow / float64(weightBelow)
		meanAbove := (totalSum - sumBelow) / float64(weightAbove)

		variance := float64(weightBelow) * float64(weightAbove) *
			(meanBelow - meanAbove) * (meanBelow - meanAbove)
		if variance > maxVariance {
			maxVariance = variance
			bestLo, bestHi = t, t
		} else if variance == maxVariance {
			bestHi = t
		}
	}

	// On a bimodal histogram every level between the modes yields the same
	// class split; take the plateau midpoint so the cut lands between the
	// modes instead of on the lower one.
	return uint8((bestLo + bestHi) / 2)
}

// BinarizeOtsu binarizes the buffer in place at the Otsu threshold:
// intensities at or below the level become foreground (0), the rest
// background (255).
func BinarizeOtsu(buf *raster.Buffer) *raster.Buffer {
	if buf.Empty() {
		return buf
	}
	return binarizeAt(buf, OtsuLevel(buf))
}

// BinarizeFixed binarizes the buffer at a fixed level.
func BinarizeFixed(buf *raster.Buffer, level uint8) *raster.Buffer {
	if buf.Empty() {
		return buf
	}
	binary := segment.Threshold(buf.ToImage(), level)
	// segment.Threshold maps values >= level to white; dark ink stays 0.
	return raster.FromImage(binary)
}

// BinarizeAdaptive binarizes each pixel against the mean intensity of its
// (2*radius+1)^2 neighborhood: a pixel becomes foreground (0) when its
// value is below the local average minus offset, background (255)
// otherwise. Suited to scans with uneven illumination where a single
// global threshold fails.
func BinarizeAdaptive(buf *raster.Buffer, radius, offset int) *raster.Buffer {
	if buf.Empty() {
		return buf
	}

	means := localMeans(buf, radius)
	out := buf.Clone()
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if float64(buf.Intensity(x, y)) < means[y*buf.Width+x]-float64(offset) {
				out.SetIntensity(x, y, 0)
			} else {
				out.SetIntensity(x, y, 255)
			}
		}
	}
	return out
}

// localMeans computes the neighborhood mean intensity for every pixel using
// a summed-area table. Neighborhoods are clamped at the buffer edges.
func localMeans(buf *raster.Buffer, radius int) []float64 {
	w, h := buf.Width, buf.Height

	// integral[y][x] holds the sum of intensities in [0,x) x [0,y).
	integral := make([]float64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		var rowSum float64
		for x := 0; x < w; x++ {
			rowSum += float64(buf.Intensity(x, y))
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	means := make([]float64, w*h)
	for y := 0; y < h; y++ {
		y0 := maxInt(0, y-radius)
		y1 := minInt(h-1, y+radius)
		for x := 0; x < w; x++ {
			x0 := maxInt(0, x-radius)
			x1 := minInt(w-1, x+radius)
			sum := integral[(y1+1)*stride+x1+1] -
				integral[y0*stride+x1+1] -
				integral[(y1+1)*stride+x0] +
				integral[y0*stride+x0]
			area := float64((x1 - x0 + 1) * (y1 - y0 + 1))
			means[y*w+x] = sum / area
		}
	}
	return means
}

// binarizeAt maps intensities at or below level to 0 and the rest to 255,
// in place.
func binarizeAt(buf *raster.Buffer, level uint8) *raster.Buffer {
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if buf.Intensity(x, y) <= level {
				buf.SetIntensity(x, y, 0)
			} else {
				buf.SetIntensity(x, y, 255)
			}
		}
	}
	return buf
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
