package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// Format renders value as one rounded table per section.
func (f *TableFormatter) Format(value any) (string, error) {
	sections, err := Sections(value)
	if err != nil {
		return "", err
	}

	rendered := make([]string, 0, len(sections))
	for _, s := range sections {
		t := table.NewWriter()
		style := table.StyleRounded
		style.Format.Footer = text.FormatDefault
		t.SetStyle(style)
		if s.Title != "" {
			t.SetTitle(s.Title)
		}
		t.AppendHeader(toRow(s.Header))
		for _, row := range s.Rows {
			t.AppendRow(toRow(row))
		}
		if s.Footer != "" {
			footer := make([]string, len(s.Header))
			footer[len(footer)-1] = s.Footer
			t.AppendFooter(toRow(footer))
		}
		rendered = append(rendered, t.Render())
	}
	return strings.Join(rendered, "\n\n"), nil
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
