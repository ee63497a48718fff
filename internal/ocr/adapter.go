package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"
)

// Detection is a raw recognized text span as reported by a backend, before
// classification and fusion.
type Detection struct {
	// Text is the recognized content, unmodified.
	Text string `json:"text"`

	// Confidence is the backend-reported score (0-100).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box in the coordinates of the image variant
	// the backend was given.
	Bounds image.Rectangle `json:"bounds"`

	// Source tags the backend that produced this detection.
	Source string `json:"source"`
}

// Backend is an opaque recognition capability. Implementations must return
// confidences in [0, 100] and should honor context cancellation where the
// underlying engine allows it.
type Backend interface {
	// Name identifies the backend in detection source tags and logs.
	Name() string

	// Recognize extracts text spans from one image variant.
	Recognize(ctx context.Context, img image.Image) ([]Detection, error)
}

// Adapter fans an image variant out to every registered backend and merges
// their raw detections.
type Adapter struct {
	backends []Backend
	timeout  time.Duration
}

// DefaultTimeout bounds a single backend call so one slow engine cannot
// block the others indefinitely.
const DefaultTimeout = 30 * time.Second

// NewAdapter creates an adapter over the given backends. A zero timeout
// falls back to DefaultTimeout.
func NewAdapter(timeout time.Duration, backends ...Backend) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{backends: backends, timeout: timeout}
}

// Backends returns the names of the registered backends, in registration
// order.
func (a *Adapter) Backends() []string {
	names := make([]string, len(a.backends))
	for i, b := range a.backends {
		names[i] = b.Name()
	}
	return names
}

// Recognize invokes every registered backend on the image concurrently and
// returns the union of their detections, each tagged with its backend name.
//
// Backends may complete in any order; detections are flattened in
// registration order so the output is deterministic for identical backend
// results. A failed or timed-out backend contributes zero detections and is
// logged; a timeout is retried once before giving up.
func (a *Adapter) Recognize(ctx context.Context, img image.Image) []Detection {
	perBackend := make([][]Detection, len(a.backends))

	var wg sync.WaitGroup
	for i, backend := range a.backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			dets, err := a.callWithRetry(ctx, b, img)
			if err != nil {
				log.Printf("ocr: backend %s contributed nothing: %v", b.Name(), err)
				return
			}
			// Tag a copy: the backend may reuse or share the slice it
			// returned, and concurrent adapter calls must not write into it.
			tagged := make([]Detection, len(dets))
			copy(tagged, dets)
			for j := range tagged {
				tagged[j].Source = b.Name()
			}
			perBackend[i] = tagged
		}(i, backend)
	}
	wg.Wait()

	var all []Detection
	for _, dets := range perBackend {
		all = append(all, dets...)
	}
	return all
}

// callWithRetry runs one bounded backend call, retrying a single time on
// timeout. Other failures are not retried.
func (a *Adapter) callWithRetry(ctx context.Context, b Backend, img image.Image) ([]Detection, error) {
	dets, err := a.call(ctx, b, img)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		log.Printf("ocr: backend %s timed out, retrying once", b.Name())
		dets, err = a.call(ctx, b, img)
	}
	return dets, err
}

// call runs a single backend invocation under the per-call timeout,
// converting a panicking backend into an error.
func (a *Adapter) call(ctx context.Context, b Backend, img image.Image) ([]Detection, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type outcome struct {
		dets []Detection
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		dets, err := b.Recognize(callCtx, img)
		done <- outcome{dets: dets, err: err}
	}()

	select {
	case out := <-done:
		return out.dets, out.err
	case <-callCtx.Done():
		return nil, callCtx.Err()
	}
}
