// Package fusion merges recognition outputs from multiple variants, tiles
// and backends into a single deduplicated, confidence-ranked candidate list.
package fusion

import (
	"sort"

	"github.com/cartotext/cadscan/internal/fragment"
)

// DefaultMinConfidence filters out weak candidates before dictionary
// correction gets a chance to rescue near-misses.
const DefaultMinConfidence = 85.0

// Fuse groups fragments by fusion key (lowercased text plus kind) and keeps
// only the highest-confidence fragment per key, ties broken by first-seen.
//
// The output contains at most one fragment per key and is stably ordered:
// numbers before place names, then descending confidence, then first-seen.
// Concurrent recognition calls complete in any order, so callers must not
// rely on input ordering; this sort is what makes pipeline output
// deterministic.
func Fuse(fragments []fragment.Fragment) []fragment.Fragment {
	best := make(map[fragment.Key]int, len(fragments))
	order := make([]fragment.Key, 0, len(fragments))

	for i, f := range fragments {
		key := fragment.KeyOf(f)
		j, seen := best[key]
		if !seen {
			best[key] = i
			order = append(order, key)
			continue
		}
		if f.Confidence > fragments[j].Confidence {
			best[key] = i
		}
	}

	fused := make([]fragment.Fragment, 0, len(order))
	for _, key := range order {
		fused = append(fused, fragments[best[key]])
	}

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Kind != fused[j].Kind {
			return fused[i].Kind == fragment.KindNumber
		}
		return fused[i].Confidence > fused[j].Confidence
	})
	return fused
}

// FilterConfidence drops fragments below the given confidence threshold,
// preserving order. A threshold at or below zero keeps everything.
func FilterConfidence(fragments []fragment.Fragment, min float64) []fragment.Fragment {
	if min <= 0 {
		return fragments
	}
	kept := make([]fragment.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f.Confidence >= min {
			kept = append(kept, f)
		}
	}
	return kept
}
