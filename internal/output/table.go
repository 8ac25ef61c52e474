package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/whiskeyjimb/espim/internal/plugin"
)

// TableFormatter outputs results as a human-readable table.
type TableFormatter struct{}

// FormatList renders one row per plugin: installed, name, version.
func (f *TableFormatter) FormatList(w io.Writer, entries []plugin.Entry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No plugins in index.")
		return nil
	}

	table := newTable(w)
	table.Header("Installed", "Name", "Version")
	for _, e := range entries {
		if err := table.Append(yesNo(e.Installed), e.Name, e.Version); err != nil {
			return err
		}
	}
	return table.Render()
}

// FormatDetails renders a two-column field/value table.
func (f *TableFormatter) FormatDetails(w io.Writer, d *plugin.Details) error {
	rows := [][]string{
		{"Name", d.Name},
		{"Version", d.Version},
		{"URL", d.URL},
		{"Installed", yesNo(d.Installed)},
		{"Link", d.LinkPath},
		{"Checkout", d.RepoPath},
	}
	if d.Head != "" {
		rows = append(rows, []string{"Head", d.Head})
	}
	for _, s := range d.Submodules {
		rows = append(rows, []string{"Submodule", fmt.Sprintf("%s (%s) %s", s.Name, s.Path, shortHash(s.Head))})
	}

	table := newTable(w)
	table.Header("Field", "Value")
	for _, r := range rows {
		if err := table.Append(r[0], r[1]); err != nil {
			return err
		}
	}
	return table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Top: tw.On, Bottom: tw.On, Left: tw.On, Right: tw.On},
		}),
	)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func shortHash(h string) string {
	if h == "" {
		return "(not initialized)"
	}
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
