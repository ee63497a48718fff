package preprocess

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/cartotext/cadscan/internal/raster"
)

// minTileSize is the smallest usable tile edge. Tiles narrower than this in
// either dimension carry too little context for recognition and are dropped.
const minTileSize = 100

// Upscale resizes the buffer by the given factor using Lanczos resampling.
// Factors at or below 1 (and zero-area buffers) return the input unchanged.
//
// Thin numerals resolve much better for recognition at 3-4x; place-name
// text is usually fine at 2x.
func Upscale(buf *raster.Buffer, factor float64) *raster.Buffer {
	if buf.Empty() || factor <= 1 {
		return buf
	}
	w := int(float64(buf.Width) * factor)
	h := int(float64(buf.Height) * factor)
	resized := imaging.Resize(buf.ToImage(), w, h, imaging.Lanczos)
	return raster.FromImage(resized)
}

// Rotate produces a rotated copy of the buffer. angle must be 0, 90, 180 or
// 270 degrees clockwise; any other value returns the input unchanged. For
// 90 and 270 the output canvas dimensions are swapped.
func Rotate(buf *raster.Buffer, angle int) *raster.Buffer {
	if buf.Empty() || angle == 0 {
		return buf
	}

	var out *raster.Buffer
	switch angle {
	case 90, 270:
		out = raster.New(buf.Height, buf.Width, buf.Channels)
	case 180:
		out = raster.New(buf.Width, buf.Height, buf.Channels)
	default:
		return buf
	}

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			var sx, sy int
			switch angle {
			case 90:
				sx, sy = y, buf.Height-1-x
			case 180:
				sx, sy = buf.Width-1-x, buf.Height-1-y
			case 270:
				sx, sy = buf.Width-1-y, x
			}
			for c := 0; c < buf.Channels; c++ {
				out.Set(x, y, c, buf.At(sx, sy, c))
			}
		}
	}
	return out
}

// Tile describes one overlapping window cut from a processed scan.
type Tile struct {
	Buffer *raster.Buffer
	// X, Y locate the tile's top-left corner in processed-scan coordinates.
	X int
	Y int
}

// TileBuffer partitions a buffer into overlapping tileSize windows with the
// given overlap, so recognition backends with bounded input sizes can
// process high-resolution scans.
//
// Windows step by tileSize-overlap. Edge windows may be smaller than
// tileSize; windows below the minimum usable size (100px) in either
// dimension are dropped. A tileSize of 0, or a buffer that fits in a single
// window, yields one tile covering the whole buffer.
func TileBuffer(buf *raster.Buffer, tileSize, overlap int) []Tile {
	if buf.Empty() {
		return nil
	}
	if tileSize <= 0 || (buf.Width <= tileSize && buf.Height <= tileSize) {
		return []Tile{{Buffer: buf, X: 0, Y: 0}}
	}

	step := tileSize - overlap
	var tiles []Tile
	for y := 0; y < buf.Height; y += step {
		th := minInt(tileSize, buf.Height-y)
		for x := 0; x < buf.Width; x += step {
			tw := minInt(tileSize, buf.Width-x)
			if tw < minTileSize || th < minTileSize {
				continue
			}
			tiles = append(tiles, Tile{
				Buffer: crop(buf, x, y, tw, th),
				X:      x,
				Y:      y,
			})
		}
	}
	return tiles
}

// crop copies a w x h window at (x, y) into a new buffer.
func crop(buf *raster.Buffer, x, y, w, h int) *raster.Buffer {
	out := raster.New(w, h, buf.Channels)
	rowBytes := w * buf.Channels
	for row := 0; row < h; row++ {
		srcOff := ((y+row)*buf.Width + x) * buf.Channels
		copy(out.Pix[row*rowBytes:(row+1)*rowBytes], buf.Pix[srcOff:srcOff+rowBytes])
	}
	return out
}

// Variant is one preprocessed rendering of (part of) the scan, ready for a
// recognition backend, together with the geometry needed to map detected
// bounding boxes back to source-scan coordinates.
type Variant struct {
	Buffer *raster.Buffer

	// OffsetX, OffsetY locate the variant's tile in processed (scaled)
	// scan coordinates.
	OffsetX int
	OffsetY int

	// Rotation is the clockwise angle applied to the tile (0/90/180/270).
	Rotation int

	// Scale is the upscale factor applied before tiling.
	Scale float64
}

// MapRect translates a bounding box detected on the variant back into
// source-scan pixel coordinates: the rotation is undone, the tile offset
// added, and the upscale factor divided out.
func (v Variant) MapRect(r image.Rectangle) image.Rectangle {
	// Undo the rotation within the tile. The tile's pre-rotation
	// dimensions depend on the angle.
	var tw, th int
	switch v.Rotation {
	case 90, 270:
		tw, th = v.Buffer.Height, v.Buffer.Width
	default:
		tw, th = v.Buffer.Width, v.Buffer.Height
	}

	unrotate := func(x, y int) (int, int) {
		switch v.Rotation {
		case 90:
			return y, th - 1 - x
		case 180:
			return tw - 1 - x, th - 1 - y
		case 270:
			return tw - 1 - y, x
		default:
			return x, y
		}
	}

	x0, y0 := unrotate(r.Min.X, r.Min.Y)
	x1, y1 := unrotate(r.Max.X-1, r.Max.Y-1)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}

	// Into processed-scan coordinates, then back to source scale.
	scale := v.Scale
	if scale <= 0 {
		scale = 1
	}
	return image.Rect(
		int(float64(x0+v.OffsetX)/scale),
		int(float64(y0+v.OffsetY)/scale),
		int(float64(x1+1+v.OffsetX)/scale),
		int(float64(y1+1+v.OffsetY)/scale),
	)
}
