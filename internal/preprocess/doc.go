// Package preprocess implements the image-enhancement pipeline that prepares
// a noisy scanned cadastral raster for text recognition.
//
// The pipeline is a pure function of a pixel buffer and a Config: identical
// input and configuration always produce identical output. Stages run in a
// fixed order:
//
//  1. Upscaling (smooth interpolation, typically 2-4x for numeral passes)
//  2. Grayscale conversion (luminosity weighting)
//  3. Median denoise
//  4. Gaussian blur
//  5. Contrast enhancement (fixed factor or probe-driven automatic)
//  6. Tile-based CLAHE
//  7. Binarization (fixed, adaptive local, or Otsu global threshold)
//  8. Morphological dilation
//
// Every stage treats a zero-area buffer as a no-op and returns it unchanged;
// the pipeline never fails for valid non-empty input. Contradictory options
// are rejected at configuration construction time by Config.Validate, never
// deep inside the pipeline.
//
// The Variants function fans a processed scan out into overlapping tiles and
// rotation variants for recognition backends with bounded input sizes or
// orientation sensitivity. Each variant records the geometry needed to map
// detected bounding boxes back to source-scan coordinates.
//
// Algorithms are tuned for one image class: high-contrast black text and
// numerals on light cadastral backgrounds. They are not intended to
// generalize to arbitrary photographs.
package preprocess
