package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Colors follow the 256-color palette.
const (
	colorAccent = "154"
	colorBorder = "238"
	colorDim    = "245"
)

// styles renders for one writer; colors are dropped when w is not a
// terminal.
type styles struct {
	header lipgloss.Style
	border lipgloss.Style
	dim    lipgloss.Style
	title  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)).Padding(0, 1),
		border: r.NewStyle().Foreground(lipgloss.Color(colorBorder)),
		dim:    r.NewStyle().Foreground(lipgloss.Color(colorDim)),
		title:  r.NewStyle().Bold(true),
	}
}

// writeTable renders rows under headers.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	st := newStyles(w)
	cell := lipgloss.NewRenderer(w).NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return cell
		})
	fmt.Fprintln(w, t.String())
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
