package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/app"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/audio"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/evaluator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/narrator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
)

func TestCanvasRasterizes(t *testing.T) {
	c := NewCanvas(60, 20, 600, 400)
	line := pattern.NewReferencePath("line", [][]geom.Point{{geom.Pt(0, 200), geom.Pt(599, 200)}})
	c.DrawReferencePattern("line", line)

	rows := strings.Split(c.Render(), "\n")
	if len(rows) != 20 {
		t.Fatalf("got %d rows", len(rows))
	}
	if strings.Count(rows[10], "·") != 60 {
		t.Errorf("reference row = %q", rows[10])
	}

	c.StrokeSegment(geom.Pt(5, 5), geom.Pt(95, 5), evaluator.ColorError)
	if got := strings.Count(strings.Split(c.Render(), "\n")[0], "×"); got != 10 {
		t.Errorf("error cells = %d, want 10", got)
	}

	c.DrawReferencePattern("line", line)
	if strings.Contains(c.Render(), "×") {
		t.Error("redrawing the pattern should clear strokes")
	}
}

func TestCanvasBounds(t *testing.T) {
	c := NewCanvas(60, 20, 600, 400)
	b := c.Bounds(1, 3)
	if b.Viewport.X != 1 || b.Viewport.Y != 3 || b.Viewport.Width != 60 || b.LogicalHeight != 400 {
		t.Errorf("bounds = %+v", b)
	}
	if w, h := c.CellSize(); w != 10 || h != 20 {
		t.Errorf("cell size = %v x %v", w, h)
	}
}

func newTestModel(t *testing.T) model {
	t.Helper()
	canvas := NewCanvas(60, 20, 600, 400)
	a, err := app.New(context.Background(), app.Options{
		Config:   config.Default(),
		Store:    storage.NewMemoryStore(),
		Surface:  canvas,
		Narrator: narrator.Static{},
		Player:   audio.NopPlayer{},
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(a.Close)

	m, err := NewModel(a, canvas)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 45})
	return next.(model)
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestKeysToggleElements(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if got := m.app.Engine.ActiveElements(); len(got) != 1 || got[0] != "agua" {
		t.Fatalf("active = %v", got)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if m.app.Engine.Pattern() != pattern.Spiral {
		t.Errorf("pattern = %q, want spiral", m.app.Engine.Pattern())
	}
	if !strings.Contains(m.gameLog, "Vapor da Alma") {
		t.Errorf("journal log missing entry:\n%s", m.gameLog)
	}
	if !strings.Contains(m.banner, "Vapor da Transformação") || !strings.Contains(m.banner, "Primeira Transmutação") {
		t.Errorf("banner = %q", m.banner)
	}
	if cmd == nil {
		t.Fatal("expected a narration command")
	}
}

func TestMouseDrawsStroke(t *testing.T) {
	m := newTestModel(t)
	cols, rows := m.canvas.Size()
	y := originY + rows/2

	m, _ = update(t, m, tea.MouseMsg{X: originX + 2, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.app.Engine.Drawing() {
		t.Fatal("press inside the canvas should start a stroke")
	}
	for x := originX + 3; x < originX+cols/2; x++ {
		m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	}
	m, _ = update(t, m, tea.MouseMsg{X: originX + cols/2, Y: y, Action: tea.MouseActionRelease})

	if m.app.Engine.Drawing() {
		t.Error("release should end the stroke")
	}
	if h := m.app.Engine.History(); len(h) != 1 {
		t.Fatalf("history = %d strokes", len(h))
	}
	if !strings.HasPrefix(m.status, "traço:") {
		t.Errorf("status = %q", m.status)
	}
}

func TestPressOutsideCanvasIgnored(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.app.Engine.Drawing() {
		t.Error("press on the border should not draw")
	}
}

func TestCommands(t *testing.T) {
	m := newTestModel(t)
	m.textInput.SetValue("/pattern mandala")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.app.Engine.Pattern() != pattern.Mandala {
		t.Errorf("pattern = %q", m.app.Engine.Pattern())
	}

	m.textInput.SetValue("/pattern nope")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.status, "unknown pattern") {
		t.Errorf("status = %q", m.status)
	}

	m.textInput.SetValue("/toggle terra")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.textInput.SetValue("/reset")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.app.Engine.ActiveElements()) != 0 {
		t.Error("/reset should clear elements")
	}

	if v := m.View(); !strings.Contains(v, "ELEMENTOS") || !strings.Contains(v, "ATHANOR") {
		t.Error("view is missing panels")
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "⏳ 00:00"},
		{-time.Second, "⏳ 00:00"},
		{59*time.Second + 900*time.Millisecond, "⏳ 00:59"},
		{5*time.Minute + 3*time.Second, "⏳ 05:03"},
		{75 * time.Minute, "⏳ 75:00"},
	}
	for _, tt := range tests {
		if got := clock(tt.d); got != tt.want {
			t.Errorf("clock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestResetRestartsClock(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, frameMsg(m.started.Add(2*time.Minute+7*time.Second)))
	if v := m.View(); !strings.Contains(v, "02:07") {
		t.Fatalf("view is missing the elapsed time")
	}

	m.textInput.SetValue("/reset")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if v := m.View(); !strings.Contains(v, "00:00") {
		t.Error("/reset should restart the clock")
	}
}

func TestAchievementsCommand(t *testing.T) {
	m := newTestModel(t)
	m.textInput.SetValue("/achievements")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.gameLog, "CONQUISTAS") || !strings.Contains(m.gameLog, "0/10") {
		t.Fatalf("log:\n%s", m.gameLog)
	}
	if strings.Contains(m.gameLog, "Fusão Perfeita") {
		t.Error("locked secret achievement was revealed")
	}
	if !strings.Contains(m.gameLog, "Mestre Transmutador") {
		t.Error("public achievement missing")
	}
}
