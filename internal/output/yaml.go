package output

import (
	"io"

	"github.com/whiskeyjimb/espim/internal/plugin"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter outputs results as YAML.
type YAMLFormatter struct{}

// FormatList writes the entries as a YAML sequence.
func (f *YAMLFormatter) FormatList(w io.Writer, entries []plugin.Entry) error {
	if entries == nil {
		entries = []plugin.Entry{}
	}
	return encodeYAML(w, entries)
}

// FormatDetails writes the details as a YAML mapping.
func (f *YAMLFormatter) FormatDetails(w io.Writer, details *plugin.Details) error {
	return encodeYAML(w, details)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(v)
}
