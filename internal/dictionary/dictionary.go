// Package dictionary corrects recognized fragments against curated
// place-name and numeral dictionaries using normalized edit distance.
//
// Dictionaries are loaded once at process start and are read-only
// thereafter; unsynchronized concurrent reads are safe. They are passed in
// explicitly rather than looked up globally so tests can substitute small
// ones.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cartotext/cadscan/internal/fragment"
)

// Dictionary is an ordered set of known canonical strings per fragment
// kind. Lookups never mutate it.
type Dictionary struct {
	entries map[fragment.Kind][]string
}

// New builds a dictionary from canonical place names and numerals.
// Duplicate entries (case-insensitive) are dropped, first occurrence wins;
// order is otherwise preserved so correction ties resolve deterministically.
func New(placeNames, numbers []string) *Dictionary {
	d := &Dictionary{entries: make(map[fragment.Kind][]string)}
	d.entries[fragment.KindPlaceName] = dedupe(placeNames)
	d.entries[fragment.KindNumber] = dedupe(numbers)
	return d
}

// LoadFile reads one canonical entry per line, skipping blank lines and
// lines starting with '#'.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return entries, nil
}

// Entries returns the canonical strings for a kind. The returned slice is
// shared and must not be modified.
func (d *Dictionary) Entries(kind fragment.Kind) []string {
	return d.entries[kind]
}

// Len reports the total number of canonical entries across kinds.
func (d *Dictionary) Len() int {
	n := 0
	for _, e := range d.entries {
		n += len(e)
	}
	return n
}

func dedupe(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
