package preprocess

import "github.com/cartotext/cadscan/internal/raster"

// Apply runs the full enhancement pipeline over a clone of the input buffer
// and returns the processed result. The input buffer is never modified, so
// concurrent branches can share one source scan safely.
//
// Apply assumes cfg has passed Validate. A zero-area buffer is returned
// unchanged; the pipeline never fails for valid non-empty input.
func Apply(src *raster.Buffer, cfg Config) *raster.Buffer {
	if src.Empty() {
		return src
	}

	buf := src.Clone()
	buf = Upscale(buf, cfg.ScaleFactor)

	if cfg.Grayscale {
		buf = Grayscale(buf)
	}
	if cfg.Denoise {
		buf = Denoise(buf)
	}
	if cfg.BlurRadius > 0 {
		buf = GaussianBlur(buf, cfg.BlurRadius)
	}

	factor := cfg.ContrastFactor
	if cfg.ContrastAuto {
		factor = ProbeContrast(buf)
	}
	buf = Contrast(buf, factor)

	if cfg.CLAHE {
		buf = EqualizeAdaptive(buf, cfg.CLAHETileSize, cfg.CLAHEClipLimit)
	}

	switch cfg.Threshold {
	case ThresholdFixed:
		buf = BinarizeFixed(buf, cfg.FixedThreshold)
	case ThresholdAdaptive:
		buf = BinarizeAdaptive(buf, cfg.AdaptiveRadius, cfg.AdaptiveOffset)
	case ThresholdOtsu:
		buf = BinarizeOtsu(buf)
	}

	if cfg.Morphology == MorphDilate {
		buf = Dilate(buf, cfg.MorphKernelSize)
	}

	// After grayscale the color channels are redundant; collapse to a
	// single channel so recognition variants are encoded as gray images.
	if cfg.Grayscale && buf.Channels != 1 {
		buf = buf.ToGray()
	}
	return buf
}

// Variants applies the pipeline and fans the result out into the tile and
// rotation variants requested by the configuration. Each variant owns its
// buffer; none share mutable state.
func Variants(src *raster.Buffer, cfg Config) []Variant {
	processed := Apply(src, cfg)
	if processed.Empty() {
		return nil
	}

	scale := cfg.ScaleFactor
	if scale < 1 {
		scale = 1
	}

	rotations := cfg.Rotations
	if len(rotations) == 0 {
		rotations = []int{0}
	}

	tiles := TileBuffer(processed, cfg.TileSize, cfg.TileOverlap)
	variants := make([]Variant, 0, len(tiles)*len(rotations))
	for _, tile := range tiles {
		for _, angle := range rotations {
			buf := tile.Buffer
			if angle != 0 {
				buf = Rotate(tile.Buffer, angle)
			}
			variants = append(variants, Variant{
				Buffer:   buf,
				OffsetX:  tile.X,
				OffsetY:  tile.Y,
				Rotation: angle,
				Scale:    scale,
			})
		}
	}
	return variants
}
