package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/achievements"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/app"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/evaluator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/input"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/journal"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/models"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/narrator"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/pattern"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/tween"
)

const (
	frameRate = 20

	// Terminal position of the first canvas cell: a blank line, the
	// header and the top border above it, the left border beside it.
	originX = 1
	originY = 3

	journalHeight = 5
	bannerTTL     = 4 * time.Second
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B5B95"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D4B192")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E63946"))
)

// Messages produced outside Update.
type (
	frameMsg     time.Time
	narrationMsg struct {
		event     trigger.Event
		narration narrator.Narration
	}
	summaryMsg struct {
		text string
		err  error
	}
)

// feed collects engine events raised while Update runs. Program.Send
// cannot be used from inside Update, so they are drained afterwards.
type feed struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (f *feed) push(msg tea.Msg) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *feed) drain() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.msgs
	f.msgs = nil
	return out
}

type model struct {
	app       *app.App
	canvas    *Canvas
	sampler   *input.Sampler
	feed      *feed
	textInput textinput.Model
	viewport  viewport.Model
	gameLog   string
	width     int
	height    int
	status    string
	err       error

	now        time.Time
	started    time.Time
	banner     string
	bannerAt   time.Time
	precision  tween.Tween
	precisionT time.Time
}

func NewModel(a *app.App, canvas *Canvas) (model, error) {
	ti := textinput.New()
	ti.Placeholder = "/pattern spiral, /toggle agua, /help..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	sampler, err := input.NewSampler(func() (input.Bounds, error) {
		return canvas.Bounds(originX, originY), nil
	})
	if err != nil {
		return model{}, err
	}

	m := model{
		app:       a,
		canvas:    canvas,
		sampler:   sampler,
		feed:      &feed{},
		textInput: ti,
		viewport:  viewport.New(60, journalHeight),
		now:       time.Now(),
	}
	m.started = m.now
	p := float64(a.Engine.Precision())
	m.precision = tween.New(p, p, 0, tween.InOutQuad)

	ev := a.Engine.Events()
	ev.Trigger.On(func(e trigger.Event) { m.feed.push(e) })
	ev.NoMatch.On(func(e evaluator.NoMatchEvent) { m.feed.push(e) })
	ev.DrawEnd.On(func(e evaluator.StrokeEvent) { m.feed.push(e) })
	ev.Pattern.On(func(e evaluator.PatternEvent) { m.feed.push(e) })
	a.Journal.Added().On(func(e journal.Entry) { m.feed.push(e) })
	a.Achievements.Unlocked().On(func(e achievements.Achievement) { m.feed.push(e) })

	m.refreshMarkers()
	m.appendLog(gameStyle.Bold(true).Render("Athanor") + " " + gameStyle.Render("Trace o labirinto e combine os arquétipos."))
	return m, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, m.quit()

		case tea.KeyEnter:
			line := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			if line == "" {
				return m, nil
			}
			cmd = m.runCommand(line)
			return m.flush(cmd)

		case tea.KeyRunes:
			if m.textInput.Value() == "" && len(msg.Runes) == 1 && msg.Runes[0] != '/' {
				if e, ok := m.app.Catalog.ByKey(string(msg.Runes)); ok {
					m.app.Engine.Toggle(e.ID)
					m.refreshMarkers()
					return m.flush(nil)
				}
			}
		}

	case tea.MouseMsg:
		if ev, ok := m.rawEvent(msg); ok {
			s, err := m.sampler.Sample(ev)
			if err != nil {
				m.app.Log.Warn("input sample dropped", "error", err)
				return m, nil
			}
			m.app.Engine.HandleSample(s)
			return m.flush(nil)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case frameMsg:
		m.now = time.Time(msg)
		if target := float64(m.app.Engine.Precision()); target != m.precision.To {
			from := m.precision.Value(m.now.Sub(m.precisionT))
			m.precision = tween.New(from, target, 300*time.Millisecond, tween.InOutQuad)
			m.precisionT = m.now
		}
		return m, nil

	case narrationMsg:
		text := msg.narration.Narrative
		if msg.narration.Reflection != "" {
			text += "\n" + helpStyle.Render(msg.narration.Reflection)
		}
		m.appendLog(gameStyle.Width(m.logWidth()).Render(text))
		return m, nil

	case summaryMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("resumo: " + msg.err.Error())
			return m, nil
		}
		m.appendLog(titleStyle.Render("JORNADA") + "\n" + gameStyle.Width(m.logWidth()).Render(msg.text))
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// flush handles engine events raised by the last action.
func (m model) flush(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{cmd}
	var fired string
	var unlocked []string
	for _, msg := range m.feed.drain() {
		switch e := msg.(type) {
		case trigger.Event:
			fired = strings.TrimSpace(e.Rule.Icon + " " + e.Rule.Message)
			cmds = append(cmds, m.narrate(e))
		case achievements.Achievement:
			unlocked = append(unlocked, "🏆 Conquista desbloqueada: "+e.Name)
			m.appendLog(lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Bold(true).
				Render(e.Icon+" "+e.Name) + " " + helpStyle.Render(e.Description))
		case journal.Entry:
			m.appendLog(userStyle.Width(m.logWidth()).Render(
				fmt.Sprintf("%s %s (%s) +%d XP", e.Icon, e.Name, strings.Join(e.Elements, " + "), e.XP)))
		case evaluator.NoMatchEvent:
			m.status = "nenhuma transmutação para " + e.Key
		case evaluator.StrokeEvent:
			if e.Result.Total > 1 {
				m.status = fmt.Sprintf("traço: %d/%d pontos no caminho (%.0f%%)", e.Result.Matched, e.Result.Total, e.Result.Accuracy*100)
				if e.Success {
					m.status += " ✓"
				}
				if err := m.app.Save(""); err != nil {
					m.app.Log.Warn("autosave failed", "error", err)
				}
			}
		case evaluator.PatternEvent:
			m.status = "padrão: " + e.Name
		}
	}
	if fired != "" || len(unlocked) > 0 {
		parts := unlocked
		if fired != "" {
			parts = append([]string{fired}, unlocked...)
		}
		m.banner = strings.Join(parts, "  ")
		m.bannerAt = m.now
	}
	m.refreshMarkers()
	return m, tea.Batch(cmds...)
}

func (m model) narrate(e trigger.Event) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		n, _ := m.app.Narrate(ctx, e)
		return narrationMsg{event: e, narration: n}
	}
}

func (m model) summarize() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		text, err := m.app.Summarize(ctx)
		return summaryMsg{text: text, err: err}
	}
}

func (m *model) quit() tea.Cmd {
	if err := m.app.Save(""); err != nil {
		m.app.Log.Error("save on quit failed", "error", err)
	}
	return tea.Quit
}

func (m *model) runCommand(line string) tea.Cmd {
	m.appendLog(userStyle.Width(m.logWidth()).Render("> " + line))
	m.status = ""

	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	eng := m.app.Engine

	switch fields[0] {
	case "/quit":
		return m.quit()
	case "/pattern":
		if err := eng.SelectPattern(arg); err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("%v (disponíveis: %s)", err, strings.Join(eng.PatternNames(), ", ")))
		}
	case "/toggle":
		if _, ok := m.app.Catalog.Element(arg); !ok {
			m.status = errorStyle.Render("elemento desconhecido: " + arg)
			return nil
		}
		eng.Toggle(arg)
	case "/reset", "/restart":
		eng.Reset()
		m.started = m.now
		m.status = "elementos limpos"
	case "/clear":
		eng.ClearCanvas()
		m.status = "canvas limpo"
	case "/export":
		if arg == "" {
			arg = "labirinto.png"
		}
		if err := m.app.Export(arg); err != nil {
			m.status = errorStyle.Render(err.Error())
		} else {
			m.status = "exportado para " + arg
		}
	case "/save":
		if err := m.app.Save(arg); err != nil {
			m.status = errorStyle.Render(err.Error())
		} else {
			m.status = "sessão salva: " + models.SlotKey(arg)
		}
	case "/load":
		err := m.app.Restore(arg)
		switch {
		case errors.Is(err, models.ErrNoSession):
			m.status = "nenhuma sessão salva em " + models.SlotKey(arg)
		case err != nil:
			m.status = errorStyle.Render(err.Error())
		default:
			m.status = "sessão carregada"
		}
	case "/summary":
		return m.summarize()
	case "/achievements", "/conquistas":
		m.appendLog(m.renderAchievements())
	case "/help":
		m.appendLog(helpStyle.Render(helpText))
	default:
		m.status = errorStyle.Render("comando desconhecido: " + fields[0])
	}
	return nil
}

const helpText = "Comandos: /pattern <nome>, /toggle <id>, /reset, /clear, /export <arquivo>, " +
	"/save [slot], /load [slot], /summary, /achievements, /quit. Teclas 1-0, m, e, s alternam elementos."

// rawEvent converts a terminal mouse event into a pointer event. Leaving
// the canvas while drawing ends the stroke.
func (m model) rawEvent(msg tea.MouseMsg) (input.RawEvent, bool) {
	cols, rows := m.canvas.Size()
	inside := msg.X >= originX && msg.X < originX+cols && msg.Y >= originY && msg.Y < originY+rows
	ev := input.RawEvent{Kind: input.KindMouse, ClientX: float64(msg.X) + 0.5, ClientY: float64(msg.Y) + 0.5}
	drawing := m.app.Engine.Drawing()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return ev, false
		}
		ev.Phase = input.Press
	case tea.MouseActionMotion:
		if !drawing {
			return ev, false
		}
		ev.Phase = input.Move
		if !inside {
			ev.Phase = input.Leave
		}
	case tea.MouseActionRelease:
		if !drawing {
			return ev, false
		}
		ev.Phase = input.Release
	default:
		return ev, false
	}
	return ev, true
}

// layout sizes the canvas for the window. The canvas keeps roughly the
// labyrinth's 3:2 aspect with cells twice as tall as wide.
func (m *model) layout() {
	rows := max(8, m.height-15)
	cols := max(20, min(int(float64(m.width)*0.68), rows*3))
	m.canvas.Resize(cols, rows)

	cw, ch := m.canvas.CellSize()
	tol := max(m.app.Config.Tolerance, math.Hypot(cw, ch)/2)
	m.app.Engine.SetTolerance(tol)
	m.app.Engine.Redraw()
	m.app.Log.Debug("canvas resized", "cols", cols, "rows", rows, "tolerance", tol)

	m.viewport.Width = m.logWidth()
	m.viewport.Height = journalHeight
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
	m.refreshMarkers()
}

func (m *model) logWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(20, m.width-2)
}

func (m *model) appendLog(s string) {
	if m.gameLog != "" {
		m.gameLog += "\n"
	}
	m.gameLog += s
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m *model) refreshMarkers() {
	active := make(map[string]bool)
	for _, id := range m.app.Engine.ActiveElements() {
		active[id] = true
	}
	markers := make([]Marker, 0, len(m.app.Catalog.Elements))
	for _, e := range m.app.Catalog.Elements {
		markers = append(markers, Marker{
			Label:  e.Key,
			At:     e.Point(),
			Style:  lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Bold(true),
			Active: active[e.ID],
		})
	}
	m.canvas.SetMarkers(markers)
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	header := titleStyle.Render("ATHANOR") + "  " + helpStyle.Render(clock(m.now.Sub(m.started))+"  padrão: "+m.app.Engine.Pattern())
	if m.status != "" {
		header += "  " + m.status
	}
	if m.width > 0 {
		header = lipgloss.NewStyle().MaxWidth(m.width).Render(header)
	}

	canvasView := canvasStyle.Render(m.canvas.Render())
	_, rows := m.canvas.Size()
	sideWidth := max(24, m.width-lipgloss.Width(canvasView)-3)
	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasView,
		m.renderState(sideWidth, rows+2),
	)

	help := helpStyle.Render("Arraste com o mouse para traçar. Comandos: /help, /quit.")

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		header,
		mainView,
		m.renderBanner(),
		m.viewport.View(),
		m.textInput.View(),
		help,
	)
}

// clock formats an elapsed session time as mm:ss.
func clock(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)
	return fmt.Sprintf("⏳ %02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// renderAchievements lists every achievement, hiding locked secret ones.
func (m model) renderAchievements() string {
	tr := m.app.Achievements
	n, total := tr.Progress()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d", titleStyle.Render("CONQUISTAS"), n, total)
	for _, a := range achievements.All {
		switch {
		case tr.Has(a.ID):
			fmt.Fprintf(&b, "\n✅ %s %s · %s", a.Icon, a.Name, a.Description)
		case a.Secret:
			b.WriteString("\n🔒 ❓ Conquista Secreta · Continue explorando para descobrir")
		default:
			fmt.Fprintf(&b, "\n🔒 %s %s · %s", a.Icon, a.Name, a.Description)
		}
	}
	return b.String()
}

func (m model) renderBanner() string {
	if m.banner == "" {
		return ""
	}
	elapsed := m.now.Sub(m.bannerAt)
	if elapsed >= bannerTTL || elapsed < 0 {
		return ""
	}
	pop := tween.Sequence{Values: []float64{0, 1.2, 1}, Duration: 600 * time.Millisecond, Ease: tween.OutElastic}.Value(elapsed)
	runes := []rune(m.banner)
	n := min(len(runes), int(math.Round(math.Min(pop, 1)*float64(len(runes)))))
	style := bannerStyle
	if pop > 1 {
		style = style.Underline(true)
	}
	return style.Render(string(runes[:n]))
}

func (m model) renderState(width, height int) string {
	eng := m.app.Engine

	active := make(map[string]bool)
	for _, id := range eng.ActiveElements() {
		active[id] = true
	}
	var elems strings.Builder
	elems.WriteString(titleStyle.Render("ELEMENTOS") + "\n")
	for _, e := range m.app.Catalog.Elements {
		mark := " "
		if active[e.ID] {
			mark = "●"
		}
		fmt.Fprintf(&elems, "%s [%s] %s %s\n", mark, e.Key, e.Icon, e.Title)
	}

	shown := m.precision.Value(m.now.Sub(m.precisionT))
	precision := titleStyle.Render("PRECISÃO") + "\n" + bar(shown/100, 20) + fmt.Sprintf(" %3.0f%%\n", shown)

	last := "—"
	if r, ok := eng.LastResult(); ok {
		last = fmt.Sprintf("%.0f%% (%d/%d)", r.Accuracy*100, r.Matched, r.Total)
	}
	drawing := ""
	if eng.Drawing() {
		pulse := tween.InOutSine(math.Mod(float64(m.now.UnixMilli())/800, 1))
		drawing = lipgloss.NewStyle().Faint(pulse < 0.5).Render(" ✎")
	}
	stroke := titleStyle.Render("TRAÇO") + drawing + "\n" + last + "\n"

	lvl := m.app.Journal.Level()
	level := titleStyle.Render("NÍVEL") + "\n" +
		fmt.Sprintf("%d %s · %d XP\n", lvl.Number, lvl.Title, m.app.Journal.XP()) +
		bar(m.app.Journal.Progress(), 20) + "\n" +
		fmt.Sprintf("%d/%d fusões · %s\n", len(m.app.Journal.Discovered()), len(m.app.Catalog.Rules), eng.State())
	if n, total := m.app.Achievements.Progress(); total > 0 {
		level += fmt.Sprintf("🏆 %d/%d conquistas\n", n, total)
	}

	content := elems.String() + "\n" + precision + "\n" + stroke + "\n" + level
	return stateStyle.Width(width).Height(height).Render(content)
}

func bar(frac float64, width int) string {
	frac = math.Max(0, math.Min(1, frac))
	n := int(math.Round(frac * float64(width)))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

// Run starts the terminal UI over an assembled app. The canvas must be the
// surface the app's engine draws to.
func Run(a *app.App, canvas *Canvas) error {
	m, err := NewModel(a, canvas)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = evaluator.NewLoop(frameRate).Run(ctx, func(now time.Time) {
			p.Send(frameMsg(now))
		})
	}()

	_, err = p.Run()
	return err
}

// Start loads configuration, assembles the app and runs the UI.
func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	f, err := tea.LogToFile(cfg.LogFile, "athanor")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))

	params := pattern.DefaultParams()
	canvas := NewCanvas(90, 30, params.Width, params.Height)
	a, err := app.New(context.Background(), app.Options{Config: cfg, Logger: log, Surface: canvas})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.RestoreIfSaved(); err != nil {
		log.Warn("saved session not restored", "error", err)
	}
	return Run(a, canvas)
}
