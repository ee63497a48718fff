package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cartotext/cadscan/internal/fragment"
)

func TestNew_DedupesCaseInsensitive(t *testing.T) {
	d := New([]string{"Gonal", "gonal", " Arzl ", "", "GONAL"}, []string{"12", "12"})

	places := d.Entries(fragment.KindPlaceName)
	if len(places) != 2 || places[0] != "Gonal" || places[1] != "Arzl" {
		t.Errorf("place entries: got %v, want [Gonal Arzl]", places)
	}
	if nums := d.Entries(fragment.KindNumber); len(nums) != 1 {
		t.Errorf("number entries: got %v, want [12]", nums)
	}
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.txt")
	content := "# cadastral districts\nGonal\n\n  Arzl  \n# comment\nHall\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := []string{"Gonal", "Arzl", "Hall"}
	if len(entries) != len(want) {
		t.Fatalf("got %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, entries[i], want[i])
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("missing file must return an error")
	}
}

func TestCorrect_AcceptsNearMiss(t *testing.T) {
	d := New([]string{"Gonal", "Arzl"}, nil)

	in := fragment.Fragment{Text: "Gona1", Kind: fragment.KindPlaceName, Confidence: 60}
	out := Correct(in, d)

	if out.Text != "Gonal" {
		t.Errorf("text: got %q, want canonical Gonal", out.Text)
	}
	if out.Confidence != 80 {
		t.Errorf("confidence: got %v, want 60+20", out.Confidence)
	}
	if in.Text != "Gona1" {
		t.Error("Correct must not modify its input")
	}
}

func TestCorrect_BoostCappedAt100(t *testing.T) {
	d := New([]string{"Gonal"}, nil)

	in := fragment.Fragment{Text: "gonal", Kind: fragment.KindPlaceName, Confidence: 95}
	if out := Correct(in, d); out.Confidence != 100 {
		t.Errorf("confidence: got %v, want capped 100", out.Confidence)
	}
}

func TestCorrect_RejectsDistantMatch(t *testing.T) {
	d := New([]string{"Gonal"}, nil)

	in := fragment.Fragment{Text: "  Wattens  ", Kind: fragment.KindPlaceName, Confidence: 90}
	out := Correct(in, d)

	if out.Text != "Wattens" {
		t.Errorf("rejected match must keep cleaned text, got %q", out.Text)
	}
	if out.Confidence != 90 {
		t.Errorf("rejected match must keep confidence, got %v", out.Confidence)
	}
}

func TestCorrect_NumbersNeedNearExactMatch(t *testing.T) {
	d := New(nil, []string{"1234"})

	// One edit on four digits is similarity 0.75, below the 0.85 number
	// threshold: too risky to rewrite a parcel number.
	in := fragment.Fragment{Text: "1230", Kind: fragment.KindNumber, Confidence: 90}
	if out := Correct(in, d); out.Text != "1230" {
		t.Errorf("got %q, want the original number kept", out.Text)
	}

	// One edit on a longer number clears the threshold.
	d = New(nil, []string{"1234567"})
	in = fragment.Fragment{Text: "1234560", Kind: fragment.KindNumber, Confidence: 90}
	if out := Correct(in, d); out.Text != "1234567" {
		t.Errorf("got %q, want canonical 1234567", out.Text)
	}
}

func TestCorrect_EmptyDictionaryPassesThrough(t *testing.T) {
	d := New(nil, nil)

	in := fragment.Fragment{Text: " Gonal ", Kind: fragment.KindPlaceName, Confidence: 88}
	out := Correct(in, d)
	if out.Text != "Gonal" || out.Confidence != 88 {
		t.Errorf("got (%q, %v), want cleaned text with unchanged confidence", out.Text, out.Confidence)
	}
}

func TestCorrectAll(t *testing.T) {
	d := New([]string{"Gonal"}, []string{"12"})

	in := []fragment.Fragment{
		{Text: "gona1", Kind: fragment.KindPlaceName, Confidence: 70},
		{Text: "12", Kind: fragment.KindNumber, Confidence: 90},
	}
	out := CorrectAll(in, d)
	if len(out) != 2 {
		t.Fatalf("got %d fragments, want 2", len(out))
	}
	if out[0].Text != "Gonal" || out[0].Confidence != 90 {
		t.Errorf("fragment 0: got (%q, %v), want (Gonal, 90)", out[0].Text, out[0].Confidence)
	}
	if out[1].Text != "12" || out[1].Confidence != 100 {
		t.Errorf("fragment 1: got (%q, %v), want (12, 100)", out[1].Text, out[1].Confidence)
	}
}
