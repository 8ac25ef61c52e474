// Package output handles formatting and rendering of plugin listings.
package output

import (
	"fmt"
	"io"

	"github.com/whiskeyjimb/espim/internal/plugin"
)

// Formatter renders command results to the given writer.
type Formatter interface {
	// FormatList writes the plugin listing.
	FormatList(w io.Writer, entries []plugin.Entry) error
	// FormatDetails writes a single plugin description.
	FormatDetails(w io.Writer, details *plugin.Details) error
}

// NewFormatter returns a Formatter for the given format name.
// Supported formats: "table", "json", "yaml".
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "table":
		return &TableFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q (supported: table, json, yaml)", format)
	}
}
