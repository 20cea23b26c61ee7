package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/evaluator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
)

func rgbAt(t *testing.T, s *PNGSurface, x, y int) (uint8, uint8, uint8) {
	t.Helper()
	r, g, b, _ := s.Context().Image().At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

// near compares a channel against a 0..1 float within rounding slack.
func near(got uint8, want float64) bool {
	d := int(got) - int(want*255+0.5)
	return d >= -2 && d <= 2
}

func TestReferencePatternAndStroke(t *testing.T) {
	s := NewPNGSurface(100, 100, DefaultPalette, nil)
	defer s.Close()

	line := pattern.NewReferencePath("line", [][]geom.Point{{geom.Pt(10, 50), geom.Pt(90, 50)}})
	s.DrawReferencePattern("line", line)

	want := gg.Hex(DefaultPalette.Reference)
	r, g, b := rgbAt(t, s, 50, 50)
	if !near(r, want.R) || !near(g, want.G) || !near(b, want.B) {
		t.Errorf("reference pixel = %d,%d,%d", r, g, b)
	}

	bg := gg.Hex(DefaultPalette.Background)
	if r, _, _ := rgbAt(t, s, 50, 10); !near(r, bg.R) {
		t.Errorf("background pixel red = %d", r)
	}

	s.StrokeSegment(geom.Pt(50, 10), geom.Pt(50, 40), evaluator.ColorError)
	if r, _, _ := rgbAt(t, s, 50, 25); r < 200 {
		t.Errorf("error stroke not painted, red = %d", r)
	}
}

func TestExport(t *testing.T) {
	s := NewPNGSurface(60, 40, DefaultPalette, nil)
	defer s.Close()
	s.SetAnchors([]geom.Point{geom.Pt(30, 20)})

	path := filepath.Join(t.TempDir(), "canvas.png")
	if err := s.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("bounds = %v", b)
	}

	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil || buf.Len() == 0 {
		t.Errorf("WritePNG: %v, %d bytes", err, buf.Len())
	}
}

type countingSurface struct{ segments, patterns int }

func (c *countingSurface) StrokeSegment(geom.Point, geom.Point, evaluator.ColorToken) { c.segments++ }
func (c *countingSurface) DrawReferencePattern(string, pattern.ReferencePath)         { c.patterns++ }

func TestTee(t *testing.T) {
	a, b := &countingSurface{}, &countingSurface{}
	tee := Tee{a, b}
	tee.StrokeSegment(geom.Pt(0, 0), geom.Pt(1, 1), evaluator.ColorInk)
	tee.DrawReferencePattern("x", pattern.ReferencePath{})
	if a.segments != 1 || b.segments != 1 || a.patterns != 1 || b.patterns != 1 {
		t.Errorf("tee counts: %+v %+v", a, b)
	}
}
