package preprocess

import "github.com/cartotext/cadscan/internal/raster"

// minCLAHETile is the smallest tile edge worth equalizing. Narrower tiles
// have too few pixels for a meaningful 256-bin histogram and are left
// unmodified.
const minCLAHETile = 8

// EqualizeAdaptive applies contrast-limited adaptive histogram equalization
// (CLAHE) to the buffer in place.
//
// The buffer is partitioned into tileSize x tileSize tiles (edge tiles may
// be smaller). Per tile: a 256-bin intensity histogram is built, bins above
// clipLimit * pixelCount / 256 are clipped with the excess redistributed
// uniformly across all bins, the cumulative distribution is normalized to
// [0, 255], and tile pixels are remapped through it.
//
// Tiles narrower than 8px in either dimension are skipped. Tiles are
// equalized independently; seams at tile boundaries are an accepted quality
// gap, not smoothed.
func EqualizeAdaptive(buf *raster.Buffer, tileSize int, clipLimit float64) *raster.Buffer {
	if buf.Empty() || tileSize <= 0 {
		return buf
	}

	for ty := 0; ty < buf.Height; ty += tileSize {
		for tx := 0; tx < buf.Width; tx += tileSize {
			tw := minInt(tileSize, buf.Width-tx)
			th := minInt(tileSize, buf.Height-ty)
			if tw < minCLAHETile || th < minCLAHETile {
				continue
			}
			equalizeTile(buf, tx, ty, tw, th, clipLimit)
		}
	}
	return buf
}

// equalizeTile remaps one tile's pixels through its clipped, normalized
// cumulative histogram.
func equalizeTile(buf *raster.Buffer, tx, ty, tw, th int, clipLimit float64) {
	var histogram [256]float64
	for y := ty; y < ty+th; y++ {
		for x := tx; x < tx+tw; x++ {
			histogram[buf.Intensity(x, y)]++
		}
	}

	pixels := float64(tw * th)
	ceiling := clipLimit * pixels / 256
	var clipped float64
	for i := 0; i < 256; i++ {
		if histogram[i] > ceiling {
			clipped += histogram[i] - ceiling
			histogram[i] = ceiling
		}
	}
	redistribute := clipped / 256
	for i := 0; i < 256; i++ {
		histogram[i] += redistribute
	}

	// Cumulative distribution, normalized to [0, 255].
	var lut [256]uint8
	var cum float64
	for i := 0; i < 256; i++ {
		cum += histogram[i]
		lut[i] = clampByte(cum / pixels * 255)
	}

	for y := ty; y < ty+th; y++ {
		for x := tx; x < tx+tw; x++ {
			buf.SetIntensity(x, y, lut[buf.Intensity(x, y)])
		}
	}
}
