package fragment

import "strings"

// Kind categorizes what a recognized text span represents.
type Kind int

const (
	// KindPlaceName is alphabetic place-name text.
	KindPlaceName Kind = iota
	// KindNumber is a numeric parcel or sheet identifier.
	KindNumber
)

// String returns the export label for a fragment kind.
func (k Kind) String() string {
	switch k {
	case KindPlaceName:
		return "place_name"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Bounds represents a rectangular bounding box in pixel coordinates
// of the original (un-tiled, un-rotated) scan.
type Bounds struct {
	X0 int `json:"x0"` // Left edge
	Y0 int `json:"y0"` // Top edge
	X1 int `json:"x1"` // Right edge
	Y1 int `json:"y1"` // Bottom edge
}

// Fragment is a single recognized text span with its location, confidence
// and classified kind.
//
// Confidence is always in [0, 100] as reported by the recognition backend.
// Dictionary correction may raise it, never lower it.
type Fragment struct {
	// Text is the recognized (and possibly dictionary-corrected) content.
	Text string `json:"text"`

	// Confidence is the recognition confidence score (0-100).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the source image.
	Bounds Bounds `json:"bounds"`

	// Kind classifies the fragment as a place name or a number.
	Kind Kind `json:"kind"`

	// Source tags which recognition backend produced this fragment.
	Source string `json:"source"`
}

// Key is the identity used to detect duplicate detections of the same
// logical text. Two fragments with the same Key are the same detection;
// only the higher-confidence one survives fusion.
type Key struct {
	Text string
	Kind Kind
}

// KeyOf derives the fusion key for a fragment: lowercased text plus kind.
func KeyOf(f Fragment) Key {
	return Key{Text: strings.ToLower(f.Text), Kind: f.Kind}
}
