// Package export renders the final fragment list into tabular form for
// downstream tooling. It consumes fragments exactly as the pipeline emits
// them; formatting beyond CSV is out of scope here.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cartotext/cadscan/internal/fragment"
)

// Header is the column layout of the CSV export: one row per fragment.
var Header = []string{"Text", "Type", "Confidence", "X0", "Y0", "X1", "Y1"}

// WriteCSV writes the header row followed by one comma-separated row per
// fragment. Text fields are quoted by the CSV encoder whenever they need
// it. Confidence is written with two decimals.
func WriteCSV(w io.Writer, fragments []fragment.Fragment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range fragments {
		row := []string{
			f.Text,
			f.Kind.String(),
			strconv.FormatFloat(f.Confidence, 'f', 2, 64),
			strconv.Itoa(f.Bounds.X0),
			strconv.Itoa(f.Bounds.Y0),
			strconv.Itoa(f.Bounds.X1),
			strconv.Itoa(f.Bounds.Y1),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
