// SPDX-License-Identifier: MIT
//
// Package render draws reduced graphs as character cells for the terminal.
package render

import (
	"math"
	"strings"

	"dspview/internal/graph"
)

// Cell classifies one character position of a canvas.
type Cell uint8

const (
	CellEmpty     Cell = iota
	CellAxis           // midline
	CellPrimary        // real extents or polar magnitude
	CellSecondary      // polar phase
	CellBoth           // primary and secondary overlap
)

var cellRunes = [...]rune{
	CellEmpty:     ' ',
	CellAxis:      '─',
	CellPrimary:   '█',
	CellSecondary: '░',
	CellBoth:      '▓',
}

// Rune returns the character drawn for c.
func (c Cell) Rune() rune {
	if int(c) < len(cellRunes) {
		return cellRunes[c]
	}
	return '?'
}

// Canvas is a width by height grid of cells, row 0 at the top.
type Canvas struct {
	Width  int
	Height int
	cells  []Cell
}

// NewCanvas returns an empty canvas. Non-positive sizes yield an empty grid.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	return &Canvas{Width: width, Height: height, cells: make([]Cell, width*height)}
}

// At returns the cell at column x, row y.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return CellEmpty
	}
	return c.cells[y*c.Width+x]
}

func (c *Canvas) set(x, y int, cell Cell) {
	i := y*c.Width + x
	switch cur := c.cells[i]; {
	case cur == CellBoth, cur == cell:
	case cur == CellPrimary && cell == CellSecondary, cur == CellSecondary && cell == CellPrimary:
		c.cells[i] = CellBoth
	case cell == CellAxis && cur != CellEmpty:
	default:
		c.cells[i] = cell
	}
}

// row maps a value in [-1, 1] to a row, +1 at the top.
func (c *Canvas) row(v float64) int {
	half := float64(c.Height-1) / 2
	r := int(math.Round(half - v*half))
	return min(max(r, 0), c.Height-1)
}

// AxisRow returns the row of the midline.
func (c *Canvas) AxisRow() int { return c.row(0) }

// bar fills column x from the midline to the row of v.
func (c *Canvas) bar(x int, v float64, cell Cell) {
	axis, r := c.AxisRow(), c.row(v)
	if r == axis {
		return
	}
	lo, hi := min(axis, r), max(axis, r)
	for y := lo; y <= hi; y++ {
		c.set(x, y, cell)
	}
}

// Draw plots g onto a new canvas. Columns beyond the graph width stay
// empty apart from the midline.
func Draw(g graph.Graph, width, height int) *Canvas {
	c := NewCanvas(width, height)
	if c.Width == 0 || c.Height == 0 {
		return c
	}

	cols := min(width, g.Width())
	switch g.Kind {
	case graph.KindReal:
		for x := range cols {
			c.bar(x, g.Real[x].Max, CellPrimary)
			c.bar(x, g.Real[x].Min, CellPrimary)
		}
	case graph.KindPolar:
		for x := range cols {
			col := g.Polar[x]
			c.bar(x, col.Max.R, CellPrimary)
			c.bar(x, col.Min.R, CellPrimary)
			c.bar(x, col.Max.Theta, CellSecondary)
			c.bar(x, col.Min.Theta, CellSecondary)
		}
	}

	axis := c.AxisRow()
	for x := range c.Width {
		c.set(x, axis, CellAxis)
	}
	return c
}

// Lines returns the canvas as unstyled text, one string per row.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.Height)
	var sb strings.Builder
	for y := range c.Height {
		sb.Reset()
		for x := range c.Width {
			sb.WriteRune(c.At(x, y).Rune())
		}
		lines[y] = sb.String()
	}
	return lines
}

// String returns the canvas as unstyled text.
func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n")
}
