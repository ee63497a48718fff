package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is a Backend backed by the Tesseract engine via gosseract.
//
// Each call uses a fresh client, so one Tesseract backend is safe for
// concurrent use across variants. Images are passed through a temporary
// PNG file because Tesseract wants a file path.
type Tesseract struct {
	// Language is the Tesseract language code ("eng" by default). The
	// corresponding training data must be installed on the system.
	Language string

	// DigitsOnly restricts recognition to the 0-9 character set. Useful
	// for passes over upscaled numeral tiles where letter confusions
	// (O/0, l/1) dominate the error budget.
	DigitsOnly bool
}

// NewTesseract returns a Tesseract backend for the given language code.
// An empty language defaults to "eng".
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Language: language}
}

// Name identifies the backend in detection source tags.
func (t *Tesseract) Name() string {
	if t.DigitsOnly {
		return "tesseract-digits"
	}
	return "tesseract"
}

// Recognize runs Tesseract over the image and returns word-level spans with
// their confidences (0-100) and bounding boxes.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, err := saveTempPNG(img)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if t.DigitsOnly {
		if err := client.SetWhitelist("0123456789"); err != nil {
			return nil, fmt.Errorf("failed to set digit whitelist: %w", err)
		}
	}
	if err := client.SetImage(tmpPath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		detections = append(detections, Detection{
			Text:       box.Word,
			Confidence: float64(box.Confidence),
			Bounds:     box.Box,
		})
	}
	return detections, nil
}

// saveTempPNG writes an image to a temporary PNG file and returns its path.
// The caller removes the file after use.
func saveTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "cadscan-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
