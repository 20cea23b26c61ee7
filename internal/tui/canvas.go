package tui

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/evaluator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/input"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
)

type layer uint8

const (
	layerEmpty layer = iota
	layerReference
	layerInk
	layerPrimary
	layerError
)

var layerGlyph = map[layer]string{
	layerEmpty:     " ",
	layerReference: "·",
	layerInk:       "•",
	layerPrimary:   "•",
	layerError:     "×",
}

var layerStyle = map[layer]lipgloss.Style{
	layerEmpty:     lipgloss.NewStyle(),
	layerReference: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B5B95")),
	layerInk:       lipgloss.NewStyle().Foreground(lipgloss.Color("#F1E9DA")),
	layerPrimary:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D4B192")).Bold(true),
	layerError:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E63946")),
}

// Marker is a labelled anchor drawn over the canvas, such as an element.
type Marker struct {
	Label  string
	At     geom.Point
	Style  lipgloss.Style
	Active bool
}

// Canvas is a terminal cell grid implementing evaluator.Surface. Logical
// canvas coordinates are scaled onto cols x rows cells.
type Canvas struct {
	mu         sync.Mutex
	cols, rows int
	logicalW   float64
	logicalH   float64
	cells      []layer
	markers    []Marker
}

// NewCanvas returns an empty canvas.
func NewCanvas(cols, rows int, logicalW, logicalH float64) *Canvas {
	c := &Canvas{logicalW: logicalW, logicalH: logicalH}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it. Callers redraw afterwards.
func (c *Canvas) Resize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cols, c.rows = max(cols, 1), max(rows, 1)
	c.cells = make([]layer, c.cols*c.rows)
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols, c.rows
}

// CellSize returns the logical size of one cell.
func (c *Canvas) CellSize() (w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logicalW / float64(c.cols), c.logicalH / float64(c.rows)
}

// Bounds describes the canvas placed with its top-left cell at (left, top)
// in terminal coordinates, for the input sampler.
func (c *Canvas) Bounds(left, top int) input.Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return input.Bounds{
		Viewport:      geom.Rect{X: float64(left), Y: float64(top), Width: float64(c.cols), Height: float64(c.rows)},
		LogicalWidth:  c.logicalW,
		LogicalHeight: c.logicalH,
	}
}

func (c *Canvas) cell(p geom.Point) (int, int) {
	x := int(math.Floor(p.X / c.logicalW * float64(c.cols)))
	y := int(math.Floor(p.Y / c.logicalH * float64(c.rows)))
	return x, y
}

func (c *Canvas) set(x, y int, l layer) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y*c.cols+x] = l
}

// plot walks the segment in cell space, marking every cell it crosses.
func (c *Canvas) plot(from, to geom.Point, l layer) {
	x0, y0 := c.cell(from)
	x1, y1 := c.cell(to)
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		c.set(x0, y0, l)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.set(x0+int(math.Round(t*float64(x1-x0))), y0+int(math.Round(t*float64(y1-y0))), l)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (c *Canvas) StrokeSegment(from, to geom.Point, color evaluator.ColorToken) {
	l := layerInk
	switch color {
	case evaluator.ColorPrimary:
		l = layerPrimary
	case evaluator.ColorError:
		l = layerError
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plot(from, to, l)
}

func (c *Canvas) DrawReferencePattern(_ string, path pattern.ReferencePath) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cells)
	for _, line := range path.Lines() {
		for i := range line {
			if i == 0 {
				c.plot(line[0], line[0], layerReference)
				continue
			}
			c.plot(line[i-1], line[i], layerReference)
		}
	}
}

// SetMarkers replaces the anchors drawn over the grid.
func (c *Canvas) SetMarkers(m []Marker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers = append(c.markers[:0], m...)
}

// Render draws the grid, grouping runs of equal cells into one styled
// string each.
func (c *Canvas) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	overlay := make(map[int]Marker, len(c.markers))
	for _, m := range c.markers {
		x, y := c.cell(m.At)
		if x >= 0 && y >= 0 && x < c.cols && y < c.rows {
			overlay[y*c.cols+x] = m
		}
	}

	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		run := layerEmpty
		var seg strings.Builder
		flush := func() {
			if seg.Len() > 0 {
				b.WriteString(layerStyle[run].Render(seg.String()))
				seg.Reset()
			}
		}
		for x := 0; x < c.cols; x++ {
			i := y*c.cols + x
			if m, ok := overlay[i]; ok {
				flush()
				style := m.Style
				if m.Active {
					style = style.Reverse(true)
				}
				b.WriteString(style.Render(m.Label))
				continue
			}
			if l := c.cells[i]; l != run {
				flush()
				run = l
			}
			seg.WriteString(layerGlyph[run])
		}
		flush()
	}
	return b.String()
}
