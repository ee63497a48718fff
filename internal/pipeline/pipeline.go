package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/cartotext/cadscan/internal/classify"
	"github.com/cartotext/cadscan/internal/dictionary"
	"github.com/cartotext/cadscan/internal/fragment"
	"github.com/cartotext/cadscan/internal/fusion"
	"github.com/cartotext/cadscan/internal/ocr"
	"github.com/cartotext/cadscan/internal/preprocess"
	"github.com/cartotext/cadscan/internal/raster"
)

// Event reports pipeline progress to an observer.
type Event struct {
	// Stage names the phase that just progressed: "preprocess",
	// "recognize", "fuse", "correct".
	Stage string

	// Done and Total count completed work items within the stage.
	Done  int
	Total int
}

// Options configures one extraction run.
type Options struct {
	// Preprocess is the preprocessing configuration. Must have passed
	// Validate.
	Preprocess preprocess.Config

	// MinConfidence filters fused candidates before correction.
	// Zero keeps everything.
	MinConfidence float64

	// Workers bounds the variant worker pool. Zero means GOMAXPROCS.
	Workers int

	// Observer, if non-nil, receives progress events. The channel is
	// never closed by the pipeline; sends are non-blocking, so a slow
	// observer misses events rather than stalling extraction.
	Observer chan<- Event
}

// Runner executes extraction runs against a fixed adapter and dictionary.
//
// The dictionary is shared, read-only state: it is loaded once, never
// mutated, and safe for unsynchronized concurrent reads across runs.
type Runner struct {
	adapter *ocr.Adapter
	dict    *dictionary.Dictionary
}

// NewRunner wires the recognition adapter and dictionaries into a runner.
func NewRunner(adapter *ocr.Adapter, dict *dictionary.Dictionary) *Runner {
	return &Runner{adapter: adapter, dict: dict}
}

// Run extracts place-name and number fragments from one scan.
//
// Returns raster.ErrInvalidImage (wrapped) for zero-area input; no partial
// run is attempted. Recognition backend failures are recovered per call
// inside the adapter and never surface here. The returned fragments are
// deduplicated, dictionary-corrected and stably ordered.
func (r *Runner) Run(ctx context.Context, scan *raster.Buffer, opts Options) ([]fragment.Fragment, error) {
	if scan == nil || scan.Empty() {
		return nil, fmt.Errorf("%w: empty scan", raster.ErrInvalidImage)
	}
	if err := opts.Preprocess.Validate(); err != nil {
		return nil, err
	}

	variants := preprocess.Variants(scan, opts.Preprocess)
	r.notify(opts, Event{Stage: "preprocess", Done: len(variants), Total: len(variants)})

	raw := r.recognizeAll(ctx, variants, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fused := fusion.Fuse(raw)
	fused = fusion.FilterConfidence(fused, opts.MinConfidence)
	r.notify(opts, Event{Stage: "fuse", Done: len(fused), Total: len(fused)})

	corrected := dictionary.CorrectAll(fused, r.dict)
	// Correction may map two raw spellings onto the same canonical entry;
	// fuse once more so the per-key invariant holds on the final output.
	corrected = fusion.Fuse(corrected)
	r.notify(opts, Event{Stage: "correct", Done: len(corrected), Total: len(corrected)})

	return corrected, nil
}

// recognizeAll dispatches variants across a bounded worker pool and
// collects classified fragments with source-scan bounding boxes.
//
// Per-variant results are collected by variant index, then flattened in
// variant order: workers finish in any order, yet identical backend output
// always yields an identical flattened list.
func (r *Runner) recognizeAll(ctx context.Context, variants []preprocess.Variant, opts Options) []fragment.Fragment {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(variants) {
		workers = len(variants)
	}

	perVariant := make([][]fragment.Fragment, len(variants))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perVariant[i] = r.recognizeVariant(ctx, variants[i])
			}
		}()
	}

	done := 0
dispatch:
	for i := range variants {
		select {
		case jobs <- i:
			done++
			r.notify(opts, Event{Stage: "recognize", Done: done, Total: len(variants)})
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	var all []fragment.Fragment
	for _, frags := range perVariant {
		all = append(all, frags...)
	}
	return all
}

// recognizeVariant runs the adapter over one variant and classifies its raw
// detections. Rejected detections are dropped; bounding boxes are mapped
// back into source-scan coordinates.
func (r *Runner) recognizeVariant(ctx context.Context, v preprocess.Variant) []fragment.Fragment {
	detections := r.adapter.Recognize(ctx, v.Buffer.ToImage())

	frags := make([]fragment.Fragment, 0, len(detections))
	for _, det := range detections {
		kind, cleaned, ok := classify.Classify(det.Text)
		if !ok {
			continue
		}
		conf := det.Confidence
		if conf < 0 {
			conf = 0
		}
		if conf > 100 {
			conf = 100
		}
		rect := v.MapRect(det.Bounds)
		frags = append(frags, fragment.Fragment{
			Text:       cleaned,
			Confidence: conf,
			Kind:       kind,
			Source:     det.Source,
			Bounds: fragment.Bounds{
				X0: rect.Min.X,
				Y0: rect.Min.Y,
				X1: rect.Max.X,
				Y1: rect.Max.Y,
			},
		})
	}
	return frags
}

// notify sends a progress event without ever blocking the pipeline.
func (r *Runner) notify(opts Options, ev Event) {
	if opts.Observer == nil {
		return
	}
	select {
	case opts.Observer <- ev:
	default:
	}
}
