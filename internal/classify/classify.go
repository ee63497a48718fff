// Package classify determines whether a cleaned text fragment is a place
// name or a numeric identifier, and rejects everything else.
package classify

import (
	"regexp"
	"strings"

	"github.com/cartotext/cadscan/internal/fragment"
)

var (
	placeNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z\s,.-]*$`)
	digitsOnly       = regexp.MustCompile(`[^0-9]+`)
)

// digitLookalikes maps letters Tesseract commonly confuses with digits.
// Applied only on the numeric classification path, after the place-name
// pattern has already failed.
var digitLookalikes = strings.NewReplacer(
	"O", "0", "o", "0", "Q", "0",
	"I", "1", "l", "1", "|", "1",
	"Z", "2", "z", "2",
	"S", "5", "s", "5",
	"B", "8",
)

// Clean cosmetically normalizes recognized text: surrounding whitespace and
// stray punctuation are trimmed. The interior of the string is preserved.
func Clean(text string) string {
	return strings.TrimFunc(text, func(r rune) bool {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return true
		case strings.ContainsRune(`"'()[]{}<>:;!?*_=+/\~`+"`", r):
			return true
		}
		return false
	})
}

// Classify cleans a raw fragment and determines its kind.
//
// A fragment is a place name when it matches ^[A-Za-z][A-Za-z\s,.-]*$ and
// has at least two characters. Otherwise, digit-lookalike letters are
// substituted and all remaining non-digit characters stripped; a non-empty
// remainder is a number, and the remainder becomes the fragment text.
// Anything matching neither is rejected.
//
// The returned string is the cleaned text to carry forward; ok is false for
// rejected fragments.
func Classify(text string) (kind fragment.Kind, cleaned string, ok bool) {
	cleaned = Clean(text)
	if cleaned == "" {
		return 0, "", false
	}

	if len(cleaned) >= 2 && placeNamePattern.MatchString(cleaned) {
		return fragment.KindPlaceName, cleaned, true
	}

	digits := digitsOnly.ReplaceAllString(digitLookalikes.Replace(cleaned), "")
	if digits != "" {
		return fragment.KindNumber, digits, true
	}

	return 0, "", false
}
