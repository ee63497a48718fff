package preprocess

import "fmt"

// ThresholdMode selects the binarization strategy applied after contrast
// enhancement.
type ThresholdMode int

const (
	// ThresholdNone leaves the buffer continuous-tone.
	ThresholdNone ThresholdMode = iota
	// ThresholdFixed binarizes at a fixed configured level.
	ThresholdFixed
	// ThresholdAdaptive binarizes against a locally-averaged copy of the
	// buffer minus a small constant offset.
	ThresholdAdaptive
	// ThresholdOtsu binarizes at the global level maximizing between-class
	// variance of the intensity histogram.
	ThresholdOtsu
)

// String returns the flag/export label for a threshold mode.
func (m ThresholdMode) String() string {
	switch m {
	case ThresholdNone:
		return "none"
	case ThresholdFixed:
		return "fixed"
	case ThresholdAdaptive:
		return "adaptive"
	case ThresholdOtsu:
		return "otsu"
	default:
		return "unknown"
	}
}

// MorphOp selects the morphological operation applied after binarization.
type MorphOp int

const (
	// MorphNone applies no morphology.
	MorphNone MorphOp = iota
	// MorphDilate thickens foreground (black) strokes by spreading each
	// foreground pixel into its neighbors.
	MorphDilate
)

// ConfigError reports mutually contradictory or out-of-range preprocessing
// options. It is surfaced by Validate at configuration-construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("preprocess config: %s: %s", e.Field, e.Reason)
}

// Config holds the full set of preprocessing options.
//
// A Config is immutable once constructed: the pipeline never modifies it,
// and pipelines are pure functions of (buffer, config). There is no partial
// merging; start from DefaultConfig and set fields explicitly.
type Config struct {
	// ScaleFactor upscales the scan before processing. 1 disables scaling.
	// Numerals benefit from higher factors (3-4) than place-name text (2).
	ScaleFactor float64

	// Grayscale converts to luminosity-weighted grayscale.
	Grayscale bool

	// Denoise applies a small median filter before blurring.
	Denoise bool

	// BlurRadius is the Gaussian blur radius in pixels. 0 disables blur.
	BlurRadius int

	// ContrastFactor applies a linear contrast transform. 1 disables it.
	// Ignored when ContrastAuto is set.
	ContrastFactor float64

	// ContrastAuto derives the contrast factor from a perceptual probe of
	// the scan's background and ink colors.
	ContrastAuto bool

	// CLAHE enables contrast-limited adaptive histogram equalization.
	CLAHE bool

	// CLAHETileSize is the equalization tile edge in pixels.
	CLAHETileSize int

	// CLAHEClipLimit caps each histogram bin at ClipLimit times the uniform
	// bin share before equalization.
	CLAHEClipLimit float64

	// Threshold selects the binarization mode.
	Threshold ThresholdMode

	// FixedThreshold is the binarization level for ThresholdFixed.
	FixedThreshold uint8

	// AdaptiveOffset is the constant C subtracted from the local average in
	// ThresholdAdaptive mode.
	AdaptiveOffset int

	// AdaptiveRadius is the local-averaging radius for ThresholdAdaptive.
	AdaptiveRadius int

	// Morphology selects the post-binarization morphological operation.
	Morphology MorphOp

	// MorphKernelSize is the morphology kernel edge (3 means 3x3).
	MorphKernelSize int

	// TileSize is the edge of the overlapping recognition windows a large
	// scan is partitioned into. 0 disables tiling.
	TileSize int

	// TileOverlap is the overlap between adjacent tiles in pixels.
	TileOverlap int

	// Rotations lists the orientation variants to produce, in degrees
	// clockwise. Only 0, 90, 180 and 270 are valid. Empty means 0 only.
	Rotations []int
}

// DefaultConfig returns the options tuned for black text and numerals on
// light cadastral backgrounds.
func DefaultConfig() Config {
	return Config{
		ScaleFactor:     1,
		Grayscale:       true,
		Denoise:         false,
		BlurRadius:      0,
		ContrastFactor:  1,
		CLAHE:           false,
		CLAHETileSize:   32,
		CLAHEClipLimit:  3.0,
		Threshold:       ThresholdNone,
		FixedThreshold:  128,
		AdaptiveOffset:  12,
		AdaptiveRadius:  8,
		Morphology:      MorphNone,
		MorphKernelSize: 3,
		TileSize:        800,
		TileOverlap:     100,
		Rotations:       []int{0},
	}
}

// Validate rejects contradictory or out-of-range option combinations.
//
// Validation happens once, when the configuration is constructed; pipeline
// stages assume a valid Config and never re-check these conditions.
func (c Config) Validate() error {
	if c.ScaleFactor <= 0 {
		return &ConfigError{Field: "ScaleFactor", Reason: "must be positive"}
	}
	if c.BlurRadius < 0 {
		return &ConfigError{Field: "BlurRadius", Reason: "must not be negative"}
	}
	if c.ContrastFactor <= 0 && !c.ContrastAuto {
		return &ConfigError{Field: "ContrastFactor", Reason: "must be positive"}
	}
	if c.CLAHE {
		if c.CLAHETileSize <= 0 {
			return &ConfigError{Field: "CLAHETileSize", Reason: "must be positive"}
		}
		if c.CLAHEClipLimit <= 0 {
			return &ConfigError{Field: "CLAHEClipLimit", Reason: "must be positive"}
		}
	}
	if c.Threshold == ThresholdAdaptive {
		if c.AdaptiveRadius <= 0 {
			return &ConfigError{Field: "AdaptiveRadius", Reason: "must be positive"}
		}
		if c.AdaptiveOffset < 0 {
			return &ConfigError{Field: "AdaptiveOffset", Reason: "must not be negative"}
		}
	}
	if c.Morphology == MorphDilate && c.MorphKernelSize < 3 {
		return &ConfigError{Field: "MorphKernelSize", Reason: "must be at least 3"}
	}
	if c.TileSize < 0 || c.TileOverlap < 0 {
		return &ConfigError{Field: "TileSize", Reason: "tile size and overlap must not be negative"}
	}
	if c.TileSize > 0 && c.TileOverlap >= c.TileSize {
		return &ConfigError{Field: "TileOverlap", Reason: "must be smaller than tile size"}
	}
	for _, r := range c.Rotations {
		switch r {
		case 0, 90, 180, 270:
		default:
			return &ConfigError{Field: "Rotations", Reason: fmt.Sprintf("unsupported angle %d", r)}
		}
	}
	return nil
}
