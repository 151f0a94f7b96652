package report

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// table renders fixed-width columns separated by "|". Column widths are
// measured with lipgloss so wide runes line up.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) render(w io.Writer, header bool) string {
	re := lipgloss.NewRenderer(w)
	headerStyle := re.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := re.NewStyle().Padding(0, 1)
	sep := re.NewStyle().Faint(true)

	widths := make([]int, len(t.headers))
	if header {
		for i, h := range t.headers {
			widths[i] = lipgloss.Width(h)
		}
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2 // padding
		total += widths[i]
	}

	var sb strings.Builder
	line := func(cells []string, st lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(st.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(sep.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	if header {
		line(t.headers, headerStyle)
		sb.WriteString(sep.Render(strings.Repeat("-", total)))
		sb.WriteString("\n")
	}
	for _, row := range t.rows {
		line(row, cellStyle)
	}
	return sb.String()
}
