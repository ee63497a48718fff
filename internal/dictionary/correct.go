package dictionary

import (
	"strings"

	"github.com/cartotext/cadscan/internal/classify"
	"github.com/cartotext/cadscan/internal/fragment"
)

// Acceptance thresholds for normalized similarity, per kind. Place names
// tolerate looser matches; numeric strings are short and a single edit
// changes their meaning, so they need to be nearly exact.
const (
	PlaceNameThreshold = 0.70
	NumberThreshold    = 0.85
)

// ConfidenceBoost is added to a fragment's confidence when a dictionary
// entry is accepted, capped at 100. Correction only ever raises confidence.
const ConfidenceBoost = 20.0

// Correct fuzzy-matches one fragment against the dictionary entries of its
// kind and returns the corrected fragment. The input fragment is not
// modified; correction is a pure function.
//
// The lowercased candidate is compared with every lowercased entry by
// normalized Levenshtein similarity. The best-scoring entry is accepted
// when its similarity exceeds the kind's threshold; the fragment then takes
// the entry's canonical spelling and a confidence boost (never past 100).
// With no acceptable entry the text is returned cosmetically cleaned with
// confidence unchanged.
func Correct(f fragment.Fragment, dict *Dictionary) fragment.Fragment {
	candidate := strings.ToLower(classify.Clean(f.Text))

	threshold := PlaceNameThreshold
	if f.Kind == fragment.KindNumber {
		threshold = NumberThreshold
	}

	bestScore := -1.0
	bestEntry := ""
	for _, entry := range dict.Entries(f.Kind) {
		score := Similarity(candidate, strings.ToLower(entry))
		if score > bestScore {
			bestScore = score
			bestEntry = entry
		}
	}

	if bestScore > threshold {
		f.Text = bestEntry
		f.Confidence = f.Confidence + ConfidenceBoost
		if f.Confidence > 100 {
			f.Confidence = 100
		}
		return f
	}

	f.Text = classify.Clean(f.Text)
	return f
}

// CorrectAll corrects every fragment in order. Fragments whose kind has no
// dictionary entries pass through cleaned but otherwise untouched.
func CorrectAll(fragments []fragment.Fragment, dict *Dictionary) []fragment.Fragment {
	out := make([]fragment.Fragment, len(fragments))
	for i, f := range fragments {
		out[i] = Correct(f, dict)
	}
	return out
}
