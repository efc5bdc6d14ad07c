// SPDX-License-Identifier: MIT
package render

import (
	"fmt"
	"strings"

	"dspview/internal/graph"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	selectedTitleStyle = titleStyle.
				Background(lipgloss.Color("#A04025"))

	cellStyles = [...]lipgloss.Style{
		CellEmpty:     lipgloss.NewStyle(),
		CellAxis:      lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		CellPrimary:   lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")),
		CellSecondary: lipgloss.NewStyle().Foreground(lipgloss.Color("#D05030")),
		CellBoth:      lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030")),
	}

	polarPrimaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
)

// Render draws g in a width by height box: one title row and height-1
// plot rows. Real graphs show max/min bars around the midline; polar
// graphs overlay normalized magnitude and phase.
func Render(g graph.Graph, width, height int) string {
	return render(g, width, height, false)
}

// RenderSelected is Render with the title highlighted.
func RenderSelected(g graph.Graph, width, height int) string {
	return render(g, width, height, true)
}

func render(g graph.Graph, width, height int, selected bool) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	style := titleStyle
	if selected {
		style = selectedTitleStyle
	}
	title := style.Render(fmt.Sprintf("%s (%s)", g.Title, g.Kind))
	if height == 1 {
		return title
	}

	canvas := Draw(g, width, height-1)
	lines := make([]string, 0, height)
	lines = append(lines, title)
	for y := range canvas.Height {
		lines = append(lines, styleRow(canvas, y, g.Kind))
	}
	return strings.Join(lines, "\n")
}

// styleRow renders one canvas row, styling runs of equal cells together.
func styleRow(c *Canvas, y int, kind graph.Kind) string {
	var sb strings.Builder
	for x := 0; x < c.Width; {
		cell := c.At(x, y)
		end := x + 1
		for end < c.Width && c.At(end, y) == cell {
			end++
		}

		run := strings.Repeat(string(cell.Rune()), end-x)
		style := cellStyles[cell]
		if cell == CellPrimary && kind == graph.KindPolar {
			style = polarPrimaryStyle
		}
		sb.WriteString(style.Render(run))
		x = end
	}
	return sb.String()
}

// Layout splits totalHeight rows evenly between n graphs. Leftover rows go
// to the first graphs. It returns nil when n <= 0.
func Layout(totalHeight, n int) []int {
	if n <= 0 {
		return nil
	}
	totalHeight = max(totalHeight, 0)

	heights := make([]int, n)
	base, extra := totalHeight/n, totalHeight%n
	for i := range heights {
		heights[i] = base
		if i < extra {
			heights[i]++
		}
	}
	return heights
}

// RenderAll stacks graphs vertically in totalHeight rows. selected is the
// index of the highlighted graph, or -1 for none.
func RenderAll(graphs []graph.Graph, width, totalHeight, selected int) string {
	heights := Layout(totalHeight, len(graphs))
	parts := make([]string, 0, len(graphs))
	for i, g := range graphs {
		if heights[i] == 0 {
			continue
		}
		if i == selected {
			parts = append(parts, RenderSelected(g, width, heights[i]))
		} else {
			parts = append(parts, Render(g, width, heights[i]))
		}
	}
	return strings.Join(parts, "\n")
}
