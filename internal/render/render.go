// Package render rasterizes the labyrinth and traced strokes with gg.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/evaluator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
)

// Palette holds hex colors for each layer.
type Palette struct {
	Background string
	Reference  string
	Ink        string
	Primary    string
	Error      string
	Anchor     string
}

// DefaultPalette is the parchment-on-night look of the labyrinth.
var DefaultPalette = Palette{
	Background: "#1a1423",
	Reference:  "#6b5b95",
	Ink:        "#f1e9da",
	Primary:    "#d4b192",
	Error:      "#e63946",
	Anchor:     "#3b82f6",
}

const (
	referenceWidth = 3
	strokeWidth    = 3
	anchorRadius   = 6
)

// PNGSurface is an evaluator.Surface backed by a gg raster.
type PNGSurface struct {
	mu      sync.Mutex
	dc      *gg.Context
	palette Palette
	log     *slog.Logger
	anchors []geom.Point
}

// NewPNGSurface returns a cleared surface of the given canvas size.
func NewPNGSurface(width, height int, palette Palette, log *slog.Logger) *PNGSurface {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &PNGSurface{dc: gg.NewContext(width, height), palette: palette, log: log}
	s.clear()
	return s
}

func (s *PNGSurface) clear() {
	s.dc.ClearWithColor(gg.Hex(s.palette.Background))
}

func (s *PNGSurface) color(c evaluator.ColorToken) string {
	switch c {
	case evaluator.ColorPrimary:
		return s.palette.Primary
	case evaluator.ColorError:
		return s.palette.Error
	default:
		return s.palette.Ink
	}
}

// StrokeSegment draws one traced segment.
func (s *PNGSurface) StrokeSegment(from, to geom.Point, c evaluator.ColorToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.SetHexColor(s.color(c))
	s.dc.SetLineWidth(strokeWidth)
	s.dc.MoveTo(from.X, from.Y)
	s.dc.LineTo(to.X, to.Y)
	if err := s.dc.Stroke(); err != nil {
		s.log.Warn("stroke segment failed", "error", err)
	}
}

// DrawReferencePattern clears the canvas and draws the pattern.
func (s *PNGSurface) DrawReferencePattern(id string, path pattern.ReferencePath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.dc.SetHexColor(s.palette.Reference)
	s.dc.SetLineWidth(referenceWidth)
	for _, line := range path.Lines() {
		for i, p := range line {
			if i == 0 {
				s.dc.MoveTo(p.X, p.Y)
				continue
			}
			s.dc.LineTo(p.X, p.Y)
		}
		if len(line) == 1 {
			s.dc.DrawPoint(line[0].X, line[0].Y, referenceWidth/2.0)
		}
	}
	if err := s.dc.Stroke(); err != nil {
		s.log.Warn("reference pattern failed", "pattern", id, "error", err)
	}
	s.drawAnchorsLocked()
}

// SetAnchors marks element positions, redrawn with every pattern.
func (s *PNGSurface) SetAnchors(pts []geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors = append([]geom.Point(nil), pts...)
	s.drawAnchorsLocked()
}

func (s *PNGSurface) drawAnchorsLocked() {
	if len(s.anchors) == 0 {
		return
	}
	s.dc.SetHexColor(s.palette.Anchor)
	for _, p := range s.anchors {
		s.dc.DrawCircle(p.X, p.Y, anchorRadius)
	}
	if err := s.dc.Fill(); err != nil {
		s.log.Warn("anchors failed", "error", err)
	}
}

// Context exposes the raster for inspection.
func (s *PNGSurface) Context() *gg.Context { return s.dc }

// WritePNG encodes the canvas.
func (s *PNGSurface) WritePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.EncodePNG(w)
}

// Export saves the canvas as a PNG file.
func (s *PNGSurface) Export(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	s.log.Info("canvas exported", "path", path)
	return nil
}

// Close releases the raster.
func (s *PNGSurface) Close() error {
	return s.dc.Close()
}

// Tee fans surface calls out to several surfaces, such as a terminal view
// and a PNGSurface kept for export.
type Tee []evaluator.Surface

func (t Tee) StrokeSegment(from, to geom.Point, c evaluator.ColorToken) {
	for _, s := range t {
		s.StrokeSegment(from, to, c)
	}
}

func (t Tee) DrawReferencePattern(id string, path pattern.ReferencePath) {
	for _, s := range t {
		s.DrawReferencePattern(id, path)
	}
}
