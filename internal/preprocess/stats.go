package preprocess

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cartotext/cadscan/internal/raster"
)

// colorCluster is one quantized color bucket with its pixel share.
type colorCluster struct {
	r, g, b uint8
	count   int
}

// ProbeContrast estimates how separated the scan's ink is from its
// background and derives a contrast factor for the linear contrast stage.
//
// The buffer's colors are quantized into 16-unit buckets; the most frequent
// bucket is taken as the background and the most frequent clearly-darker
// bucket as the ink. Their perceptual separation is measured as CIE Lab
// distance. Well-separated scans (distance >= 0.5) need no boost and get
// factor 1; washed-out scans get a factor growing linearly up to 2 as the
// separation approaches zero.
//
// The probe is deterministic: cluster ties are broken by quantized color
// value.
func ProbeContrast(buf *raster.Buffer) float64 {
	if buf.Empty() {
		return 1
	}

	clusters := quantizeColors(buf)
	if len(clusters) < 2 {
		return 2 // single flat color, maximum boost
	}

	background := clusters[0]
	bgLum := luminance(background)

	// Ink: the most frequent cluster meaningfully darker than the
	// background. Cadastral scans have dark ink on a light ground.
	var ink *colorCluster
	for i := 1; i < len(clusters); i++ {
		if luminance(clusters[i]) < bgLum-20 {
			ink = &clusters[i]
			break
		}
	}
	if ink == nil {
		return 2 // nothing darker than the ground, boost hard
	}

	bgColor := colorful.Color{
		R: float64(background.r) / 255,
		G: float64(background.g) / 255,
		B: float64(background.b) / 255,
	}
	inkColor := colorful.Color{
		R: float64(ink.r) / 255,
		G: float64(ink.g) / 255,
		B: float64(ink.b) / 255,
	}

	distance := bgColor.DistanceLab(inkColor)
	if distance >= 0.5 {
		return 1
	}
	return 1 + (0.5-distance)*2
}

// quantizeColors buckets pixel colors into 16-unit-per-channel clusters and
// returns them sorted by frequency (descending), ties broken by color value
// for determinism.
func quantizeColors(buf *raster.Buffer) []colorCluster {
	counts := make(map[uint32]int)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r := buf.At(x, y, 0) / 16 * 16
			g, b := r, r
			if buf.Channels == 4 {
				g = buf.At(x, y, 1) / 16 * 16
				b = buf.At(x, y, 2) / 16 * 16
			}
			key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
			counts[key]++
		}
	}

	clusters := make([]colorCluster, 0, len(counts))
	for key, n := range counts {
		clusters = append(clusters, colorCluster{
			r:     uint8(key >> 16),
			g:     uint8(key >> 8),
			b:     uint8(key),
			count: n,
		})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].count != clusters[j].count {
			return clusters[i].count > clusters[j].count
		}
		return packColor(clusters[i]) < packColor(clusters[j])
	})
	return clusters
}

func packColor(c colorCluster) uint32 {
	return uint32(c.r)<<16 | uint32(c.g)<<8 | uint32(c.b)
}

// luminance computes the BT.601 luminosity of a cluster color.
func luminance(c colorCluster) float64 {
	return 0.299*float64(c.r) + 0.587*float64(c.g) + 0.114*float64(c.b)
}
