package raster

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// ErrInvalidImage is returned when an input scan cannot be used at all:
// it failed to decode, or it decoded to a zero-dimension image. This is a
// hard error; no partial pipeline run is attempted on such input.
var ErrInvalidImage = errors.New("invalid input image")

// ScanCache provides thread-safe caching of decoded scans to avoid redundant
// disk reads when the same map sheet is processed with several configurations.
//
// Cached buffers remain in memory until explicitly removed via Evict() or
// Clear(). Scans are large; long-running batch processes should evict sheets
// once finished with them.
type ScanCache struct {
	mu    sync.RWMutex
	scans map[string]*Buffer
}

// NewScanCache creates an empty cache ready for concurrent use.
func NewScanCache() *ScanCache {
	return &ScanCache{
		scans: make(map[string]*Buffer),
	}
}

// Load retrieves a scan from the cache or decodes it from disk if not cached.
//
// Supported formats are PNG, JPEG, and GIF. The scan is cached using the
// exact path string provided, so relative and absolute paths to the same
// file occupy separate entries.
//
// Returns an error wrapping ErrInvalidImage if the file cannot be decoded
// or decodes to a zero-area image.
func (c *ScanCache) Load(path string) (*Buffer, error) {
	c.mu.RLock()
	if buf, ok := c.scans[path]; ok {
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidImage, path, err)
	}

	buf, err := Decode(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.mu.Lock()
	c.scans[path] = buf
	c.mu.Unlock()

	return buf, nil
}

// Decode validates a decoded raster and converts it into a pixel buffer.
//
// A nil or zero-dimension image yields ErrInvalidImage.
func Decode(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-dimension image %dx%d",
			ErrInvalidImage, bounds.Dx(), bounds.Dy())
	}
	return FromImage(img), nil
}

// Clear removes all scans from the cache, freeing the associated memory.
func (c *ScanCache) Clear() {
	c.mu.Lock()
	c.scans = make(map[string]*Buffer)
	c.mu.Unlock()
}

// Evict removes a specific scan from the cache by its path. If the path is
// not cached, Evict does nothing.
func (c *ScanCache) Evict(path string) {
	c.mu.Lock()
	delete(c.scans, path)
	c.mu.Unlock()
}
