package output

import (
	"encoding/json"
	"io"

	"github.com/whiskeyjimb/espim/internal/plugin"
)

// JSONFormatter outputs results as pretty-printed JSON.
type JSONFormatter struct{}

// FormatList writes the entries as an indented JSON array.
func (f *JSONFormatter) FormatList(w io.Writer, entries []plugin.Entry) error {
	if entries == nil {
		entries = []plugin.Entry{}
	}
	return encodeJSON(w, entries)
}

// FormatDetails writes the details as an indented JSON object.
func (f *JSONFormatter) FormatDetails(w io.Writer, details *plugin.Details) error {
	return encodeJSON(w, details)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
