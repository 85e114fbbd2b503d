package common

import (
	"encoding/json"
	"io"
	"text/tabwriter"
)

// Print writes v as indented JSON when asJSON is set, otherwise it hands a
// tab-aligned writer to table.
func Print(out io.Writer, asJSON bool, v interface{}, table func(w io.Writer)) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	table(w)
	return w.Flush()
}
