package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cartotext/cadscan/internal/dictionary"
	"github.com/cartotext/cadscan/internal/fragment"
	"github.com/cartotext/cadscan/internal/fusion"
	"github.com/cartotext/cadscan/internal/ocr"
	"github.com/cartotext/cadscan/internal/preprocess"
	"github.com/cartotext/cadscan/internal/raster"
)

// scriptedBackend replays a fixed detection list for every variant.
type scriptedBackend struct {
	name string
	dets []ocr.Detection
	err  error
}

func (s *scriptedBackend) Name() string { return s.name }

func (s *scriptedBackend) Recognize(ctx context.Context, img image.Image) ([]ocr.Detection, error) {
	return s.dets, s.err
}

// testScan renders sample map labels onto a light canvas, approximating a
// small cadastral crop.
func testScan(w, h int) *raster.Buffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{235, 230, 220, 255}), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{30, 30, 30, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, h/2),
	}
	d.DrawString("Gonal 12")
	return raster.FromImage(img)
}

func singleTileOptions() Options {
	cfg := preprocess.DefaultConfig()
	return Options{Preprocess: cfg}
}

func TestRun_InvalidScan(t *testing.T) {
	r := NewRunner(ocr.NewAdapter(0), dictionary.New(nil, nil))

	_, err := r.Run(context.Background(), nil, singleTileOptions())
	if !errors.Is(err, raster.ErrInvalidImage) {
		t.Errorf("nil scan: got %v, want ErrInvalidImage", err)
	}

	_, err = r.Run(context.Background(), raster.New(0, 0, 4), singleTileOptions())
	if !errors.Is(err, raster.ErrInvalidImage) {
		t.Errorf("zero-area scan: got %v, want ErrInvalidImage", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	r := NewRunner(ocr.NewAdapter(0), dictionary.New(nil, nil))

	opts := singleTileOptions()
	opts.Preprocess.TileOverlap = opts.Preprocess.TileSize

	_, err := r.Run(context.Background(), testScan(120, 60), opts)
	var cfgErr *preprocess.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("got %v, want *preprocess.ConfigError", err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	backend := &scriptedBackend{
		name: "scripted",
		dets: []ocr.Detection{
			{Text: "Gonal", Confidence: 60, Bounds: image.Rect(10, 10, 50, 25)},
			{Text: "gonal", Confidence: 55, Bounds: image.Rect(10, 10, 50, 25)},
			{Text: "12", Confidence: 90, Bounds: image.Rect(60, 10, 75, 25)},
			{Text: "O0", Confidence: 70, Bounds: image.Rect(80, 10, 95, 25)},
			{Text: "", Confidence: 50},
			{Text: "!?", Confidence: 40},
		},
	}
	dict := dictionary.New([]string{"Gonal"}, []string{"12"})
	r := NewRunner(ocr.NewAdapter(0, backend), dict)

	got, err := r.Run(context.Background(), testScan(120, 60), singleTileOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// "Gonal"/"gonal" converge on the dictionary spelling, "O0" cleans to
	// "00" and finds no close numeral, junk is rejected. Numbers sort
	// first by descending confidence.
	want := []struct {
		text string
		kind fragment.Kind
		conf float64
	}{
		{"12", fragment.KindNumber, 100}, // 90 + boost, capped
		{"00", fragment.KindNumber, 70},  // uncorrected, confidence kept
		{"Gonal", fragment.KindPlaceName, 80},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d fragments (%v), want %d", len(got), got, len(want))
	}
	for i, w := range want {
		f := got[i]
		if f.Text != w.text || f.Kind != w.kind || f.Confidence != w.conf {
			t.Errorf("fragment %d: got (%q, %v, %v), want (%q, %v, %v)",
				i, f.Text, f.Kind, f.Confidence, w.text, w.kind, w.conf)
		}
	}

	seen := make(map[fragment.Key]bool)
	for _, f := range got {
		key := fragment.KeyOf(f)
		if seen[key] {
			t.Errorf("duplicate fusion key %v in final output", key)
		}
		seen[key] = true
	}
}

func TestRun_CorrectionConvergesSpellings(t *testing.T) {
	// Two backends disagree on a faded label; both variants land within
	// correction range of the same dictionary entry and must collapse
	// into one fragment after the final fusion pass.
	a := &scriptedBackend{name: "a", dets: []ocr.Detection{{Text: "Gomal", Confidence: 60}}}
	b := &scriptedBackend{name: "b", dets: []ocr.Detection{{Text: "gonal", Confidence: 55}}}
	dict := dictionary.New([]string{"Gonal"}, nil)
	r := NewRunner(ocr.NewAdapter(0, a, b), dict)

	got, err := r.Run(context.Background(), testScan(120, 60), singleTileOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d fragments (%v), want 1", len(got), got)
	}
	if got[0].Text != "Gonal" || got[0].Confidence < 75 {
		t.Errorf("got (%q, %v), want (Gonal, >=75)", got[0].Text, got[0].Confidence)
	}
}

func TestFuseCorrectFuse_ConvergesPreclassifiedFragments(t *testing.T) {
	// Two divergent spellings of the same faded label, already classified,
	// must leave the fuse/correct/fuse chain as one canonical fragment.
	in := []fragment.Fragment{
		{Text: "Gona1", Kind: fragment.KindPlaceName, Confidence: 60},
		{Text: "gonal", Kind: fragment.KindPlaceName, Confidence: 55},
	}
	dict := dictionary.New([]string{"Gonal"}, nil)

	out := fusion.Fuse(dictionary.CorrectAll(fusion.Fuse(in), dict))
	if len(out) != 1 {
		t.Fatalf("got %d fragments (%v), want 1", len(out), out)
	}
	if out[0].Text != "Gonal" || out[0].Confidence < 75 {
		t.Errorf("got (%q, %v), want (Gonal, >=75)", out[0].Text, out[0].Confidence)
	}
}

func TestRun_MinConfidenceFiltersBeforeCorrection(t *testing.T) {
	backend := &scriptedBackend{
		name: "scripted",
		dets: []ocr.Detection{{Text: "gonal", Confidence: 60}},
	}
	dict := dictionary.New([]string{"Gonal"}, nil)
	r := NewRunner(ocr.NewAdapter(0, backend), dict)

	opts := singleTileOptions()
	opts.MinConfidence = fusion.DefaultMinConfidence

	got, err := r.Run(context.Background(), testScan(120, 60), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The 60-confidence candidate is dropped before correction could have
	// boosted it past the threshold.
	if len(got) != 0 {
		t.Errorf("got %v, want no fragments", got)
	}
}

func TestRun_BoundsMappedToSourceScale(t *testing.T) {
	backend := &scriptedBackend{
		name: "scripted",
		dets: []ocr.Detection{{Text: "12", Confidence: 90, Bounds: image.Rect(20, 40, 60, 80)}},
	}
	r := NewRunner(ocr.NewAdapter(0, backend), dictionary.New(nil, nil))

	opts := singleTileOptions()
	opts.Preprocess.ScaleFactor = 2

	got, err := r.Run(context.Background(), testScan(100, 100), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d fragments, want 1", len(got))
	}
	want := fragment.Bounds{X0: 10, Y0: 20, X1: 30, Y1: 40}
	if got[0].Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", got[0].Bounds, want)
	}
}

// captureBackend records the image types it is handed.
type captureBackend struct {
	mu   sync.Mutex
	imgs []image.Image
}

func (c *captureBackend) Name() string { return "capture" }

func (c *captureBackend) Recognize(ctx context.Context, img image.Image) ([]ocr.Detection, error) {
	c.mu.Lock()
	c.imgs = append(c.imgs, img)
	c.mu.Unlock()
	return nil, nil
}

func TestRun_BackendsReceiveGrayVariants(t *testing.T) {
	backend := &captureBackend{}
	r := NewRunner(ocr.NewAdapter(0, backend), dictionary.New(nil, nil))

	if _, err := r.Run(context.Background(), testScan(120, 60), singleTileOptions()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(backend.imgs) == 0 {
		t.Fatal("backend never invoked")
	}
	for i, img := range backend.imgs {
		if _, ok := img.(*image.Gray); !ok {
			t.Errorf("variant %d: got %T, want *image.Gray after grayscale preprocessing", i, img)
		}
	}
}

func TestRun_Cancellation(t *testing.T) {
	backend := &scriptedBackend{
		name: "scripted",
		dets: []ocr.Detection{{Text: "12", Confidence: 90}},
	}
	r := NewRunner(ocr.NewAdapter(0, backend), dictionary.New(nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, testScan(120, 60), singleTileOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestRun_ObserverReceivesStages(t *testing.T) {
	backend := &scriptedBackend{
		name: "scripted",
		dets: []ocr.Detection{{Text: "12", Confidence: 90}},
	}
	r := NewRunner(ocr.NewAdapter(0, backend), dictionary.New(nil, nil))

	events := make(chan Event, 64)
	opts := singleTileOptions()
	opts.Observer = events

	if _, err := r.Run(context.Background(), testScan(120, 60), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(events)

	stages := make(map[string]bool)
	for ev := range events {
		stages[ev.Stage] = true
		if ev.Done > ev.Total {
			t.Errorf("stage %s: done %d exceeds total %d", ev.Stage, ev.Done, ev.Total)
		}
	}
	for _, stage := range []string{"preprocess", "recognize", "fuse", "correct"} {
		if !stages[stage] {
			t.Errorf("observer never saw stage %q", stage)
		}
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	backend := &scriptedBackend{
		name: "scripted",
		dets: []ocr.Detection{
			{Text: "Gonal", Confidence: 88},
			{Text: "12", Confidence: 90},
			{Text: "345", Confidence: 86},
		},
	}
	r := NewRunner(ocr.NewAdapter(0, backend), dictionary.New(nil, nil))

	baseOpts := singleTileOptions()
	baseOpts.Preprocess.Rotations = []int{0, 90, 180, 270}

	var reference []fragment.Fragment
	for _, workers := range []int{1, 2, 8} {
		opts := baseOpts
		opts.Workers = workers
		got, err := r.Run(context.Background(), testScan(300, 200), opts)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if reference == nil {
			reference = got
			continue
		}
		if len(got) != len(reference) {
			t.Fatalf("workers=%d: got %d fragments, want %d", workers, len(got), len(reference))
		}
		for i := range got {
			if got[i].Text != reference[i].Text || got[i].Confidence != reference[i].Confidence {
				t.Errorf("workers=%d: fragment %d differs: %+v vs %+v",
					workers, i, got[i], reference[i])
			}
		}
	}
}
