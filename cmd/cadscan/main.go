// Command cadscan extracts place-name and parcel-number text from a scanned
// cadastral map image and writes the result as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cartotext/cadscan/internal/dictionary"
	"github.com/cartotext/cadscan/internal/export"
	"github.com/cartotext/cadscan/internal/ocr"
	"github.com/cartotext/cadscan/internal/pipeline"
	"github.com/cartotext/cadscan/internal/preprocess"
	"github.com/cartotext/cadscan/internal/raster"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		input         = flag.String("input", "", "path to the scanned map image (PNG, JPEG or GIF)")
		output        = flag.String("out", "", "output CSV path (default stdout)")
		placesPath    = flag.String("places", "", "place-name dictionary file, one canonical name per line")
		numbersPath   = flag.String("numbers", "", "numeral dictionary file, one identifier per line")
		language      = flag.String("lang", "eng", "Tesseract language code")
		digitPass     = flag.Bool("digit-pass", true, "run an additional digits-only recognition backend")
		scale         = flag.Float64("scale", 2, "upscale factor before recognition")
		blur          = flag.Int("blur", 0, "Gaussian blur radius (0 = off)")
		contrast      = flag.Float64("contrast", 0, "contrast factor (0 = automatic probe)")
		clahe         = flag.Bool("clahe", false, "apply contrast-limited adaptive histogram equalization")
		thresholdMode = flag.String("threshold", "none", "binarization mode: none, fixed, adaptive or otsu")
		dilate        = flag.Bool("dilate", false, "dilate strokes after binarization")
		tileSize      = flag.Int("tile", 800, "tile window size in pixels (0 = no tiling)")
		tileOverlap   = flag.Int("overlap", 100, "tile overlap in pixels")
		rotations     = flag.String("rotations", "0", "comma-separated rotation variants (0,90,180,270)")
		minConfidence = flag.Float64("min-confidence", 85, "drop fused candidates below this confidence")
		timeout       = flag.Duration("ocr-timeout", 30*time.Second, "per-backend recognition timeout")
		showVersion   = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("cadscan %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	// CSV goes to stdout by default; keep logs on stderr.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := buildConfig(*scale, *blur, *contrast, *clahe, *thresholdMode, *dilate, *tileSize, *tileOverlap, *rotations)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	dict, err := loadDictionaries(*placesPath, *numbersPath)
	if err != nil {
		log.Fatalf("Dictionary error: %v", err)
	}

	backends := []ocr.Backend{ocr.NewTesseract(*language)}
	if *digitPass {
		backends = append(backends, &ocr.Tesseract{Language: *language, DigitsOnly: true})
	}
	adapter := ocr.NewAdapter(*timeout, backends...)

	cache := raster.NewScanCache()
	scan, err := cache.Load(*input)
	if err != nil {
		log.Fatalf("Failed to load scan: %v", err)
	}

	runner := pipeline.NewRunner(adapter, dict)
	fragments, err := runner.Run(context.Background(), scan, pipeline.Options{
		Preprocess:    cfg,
		MinConfidence: *minConfidence,
	})
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	log.Printf("Extracted %d fragments from %s (%dx%d)", len(fragments), *input, scan.Width, scan.Height)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := export.WriteCSV(out, fragments); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
}

// buildConfig translates CLI flags into a validated preprocessing config.
func buildConfig(scale float64, blur int, contrast float64, clahe bool, thresholdMode string, dilate bool, tileSize, tileOverlap int, rotations string) (preprocess.Config, error) {
	cfg := preprocess.DefaultConfig()
	cfg.ScaleFactor = scale
	cfg.BlurRadius = blur
	cfg.CLAHE = clahe
	cfg.TileSize = tileSize
	cfg.TileOverlap = tileOverlap

	if contrast > 0 {
		cfg.ContrastFactor = contrast
	} else {
		cfg.ContrastAuto = true
	}

	switch thresholdMode {
	case "none":
		cfg.Threshold = preprocess.ThresholdNone
	case "fixed":
		cfg.Threshold = preprocess.ThresholdFixed
	case "adaptive":
		cfg.Threshold = preprocess.ThresholdAdaptive
	case "otsu":
		cfg.Threshold = preprocess.ThresholdOtsu
	default:
		return cfg, fmt.Errorf("unknown threshold mode %q", thresholdMode)
	}

	if dilate {
		cfg.Morphology = preprocess.MorphDilate
	}

	cfg.Rotations = nil
	for _, part := range strings.Split(rotations, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		angle, err := strconv.Atoi(part)
		if err != nil {
			return cfg, fmt.Errorf("invalid rotation %q", part)
		}
		cfg.Rotations = append(cfg.Rotations, angle)
	}

	return cfg, cfg.Validate()
}

// loadDictionaries reads the optional place-name and numeral dictionaries.
// Missing paths yield empty dictionaries, which disable correction for the
// corresponding kind.
func loadDictionaries(placesPath, numbersPath string) (*dictionary.Dictionary, error) {
	var places, numbers []string
	var err error
	if placesPath != "" {
		places, err = dictionary.LoadFile(placesPath)
		if err != nil {
			return nil, err
		}
	}
	if numbersPath != "" {
		numbers, err = dictionary.LoadFile(numbersPath)
		if err != nil {
			return nil, err
		}
	}
	return dictionary.New(places, numbers), nil
}
