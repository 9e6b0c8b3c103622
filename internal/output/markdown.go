package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders results as markdown tables.
type MarkdownFormatter struct{}

// Format renders value as Markdown.
func (f *MarkdownFormatter) Format(value any) (string, error) {
	sections, err := Sections(value)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if s.Title != "" {
			sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(s.Title)))
		}
		writeMarkdownRow(&sb, s.Header)
		sb.WriteString("|")
		for range s.Header {
			sb.WriteString("---|")
		}
		sb.WriteString("\n")
		for _, row := range s.Rows {
			writeMarkdownRow(&sb, row)
		}
		if s.Footer != "" {
			sb.WriteString(fmt.Sprintf("\n**Total**: %s\n", s.Footer))
		}
	}
	return sb.String(), nil
}

func writeMarkdownRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(escapeMarkdownCell(c))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", " ")
}
