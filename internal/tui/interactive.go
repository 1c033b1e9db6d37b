package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/metrics"
	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/sandbox"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	panel  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
)

const (
	gravityStep = 0.5
	orbitStep   = 0.1
	// viewRange is the half width in meters of the top-down view.
	viewRange = 5.0
)

// Meter reports recent output loudness as bass, mid and high levels in
// [0, 1].
type Meter interface {
	BandLevels() [3]float64
}

type model struct {
	session *sandbox.Session
	meter   Meter

	history   []float64
	lastFrame time.Time
	fps       float64
	lastSound int
	flash     int

	width  int
	height int
}

// NewModel builds the terminal panel for s. meter may be nil when no
// sound device is playing.
func NewModel(s *sandbox.Session, meter Meter) *model {
	return &model{
		session: s,
		meter:   meter,
		history: make([]float64, 0, 60),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return tick(m.session.Config().Window.FPS) }

type tickMsg time.Time

func tick(fps int) tea.Cmd {
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				m.fps = 1.0 / dt
			}
		}
		m.lastFrame = now
		m.step()
		return m, tick(m.session.Config().Window.FPS)
	}
	return m, nil
}

func (m *model) step() {
	s := m.session
	s.ApplyPending()
	s.Tick()

	m.history = append(m.history, metrics.TotalEnergy(m.bodies(), s.Gravity()))
	if len(m.history) > 60 {
		m.history = m.history[1:]
	}
	if s.Sounds() != m.lastSound {
		m.lastSound = s.Sounds()
		m.flash = 6
	} else if m.flash > 0 {
		m.flash--
	}
}

func (m model) bodies() []*physics.Body {
	objs := m.session.Registry.Objects()
	out := make([]*physics.Body, len(objs))
	for i, o := range objs {
		out[i] = o.Body
	}
	return out
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	s := m.session
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "b":
		s.CreateRandomBox()
	case "s":
		s.CreateRandomSphere()
	case "r":
		s.ResetAll()
	case "up", "+":
		s.SetGravity(s.Gravity() + gravityStep)
	case "down", "-":
		s.SetGravity(s.Gravity() - gravityStep)
	case "left":
		if o := s.Orbit(); o != nil {
			o.Rotate(-orbitStep, 0)
		}
	case "right":
		if o := s.Orbit(); o != nil {
			o.Rotate(orbitStep, 0)
		}
	}
	return m, nil
}

func (m model) View() string {
	cw := m.width - 8
	ch := m.height - 12
	if cw < 40 {
		cw = 40
	}
	if ch < 10 {
		ch = 10
	}

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	m.drawFloor(canvas, cw, ch)
	m.drawObjects(canvas, cw, ch)

	var b strings.Builder
	s := m.session

	sound := dimmer.Render("♪")
	if m.flash > 0 {
		sound = yellow.Render("♪")
	}
	if m.meter != nil {
		sound += " " + levelBars(m.meter.BandLevels())
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		green.Render("●"), cyan.Render("physbox"),
		dim.Render(fmt.Sprintf("%d objects", s.Registry.Len())), sound))

	b.WriteString("   " + m.gravityBar(36) + "\n\n")

	rows := make([]string, len(canvas))
	for i, row := range canvas {
		rows[i] = string(row)
	}
	b.WriteString(panel.Render(strings.Join(rows, "\n")) + "\n")

	energy := 0.0
	if len(m.history) > 0 {
		energy = m.history[len(m.history)-1]
	}
	b.WriteString(fmt.Sprintf("   %s %s  %s  %s\n",
		dim.Render("energy"), cyan.Render(sparkline(m.history, 24)),
		white.Render(fmt.Sprintf("%.1f J", energy)),
		dim.Render(fmt.Sprintf("%d impacts  t=%.1fs  %.0ffps", s.Sounds(), s.World.Time(), m.fps))))

	b.WriteString("\n" + dim.Render("   b box  s sphere  r reset  ↑↓ gravity  ←→ orbit  q quit") + "\n")
	return b.String()
}

func (m model) gravityBar(width int) string {
	g := m.session.Gravity()
	frac := (g - config.GravityMin) / (config.GravityMax - config.GravityMin)
	pos := int(frac * float64(width-1))
	bar := dimmer.Render(strings.Repeat("─", pos)) + white.Render("┃") + dimmer.Render(strings.Repeat("─", width-1-pos))
	return fmt.Sprintf("%s %s %s", dim.Render("gravity"), bar, cyan.Render(fmt.Sprintf("%.4f", g)))
}

// project maps world x, z onto canvas cells, rotated by the camera azimuth
// so the panel turns with the orbit controls.
func (m model) project(x, z float64, w, h int) (int, int) {
	cam := m.session.Camera
	az := math.Atan2(cam.Position.X()-cam.Target.X(), cam.Position.Z()-cam.Target.Z())
	c, sn := math.Cos(az), math.Sin(az)
	rx := x*c - z*sn
	rz := x*sn + z*c
	col := int((rx/viewRange + 1) / 2 * float64(w-1))
	row := int((rz/viewRange + 1) / 2 * float64(h-1))
	return col, row
}

func (m model) drawFloor(canvas [][]rune, w, h int) {
	for _, x := range []float64{-5, 5} {
		for z := -5.0; z <= 5; z += 0.25 {
			col, row := m.project(x, z, w, h)
			set(canvas, col, row, '·', w, h)
			col, row = m.project(z, x, w, h)
			set(canvas, col, row, '·', w, h)
		}
	}
}

func (m model) drawObjects(canvas [][]rune, w, h int) {
	m.session.Registry.Each(func(o *sandbox.ManagedObject) {
		p := o.Body.Position
		col, row := m.project(p.X(), p.Z(), w, h)
		set(canvas, col, row, glyph(o.Kind, p.Y(), o.Body.IsSleeping()), w, h)
	})
}

func glyph(kind sandbox.Kind, y float64, sleeping bool) rune {
	if kind == sandbox.KindBox {
		if sleeping {
			return '□'
		}
		return '■'
	}
	switch {
	case sleeping:
		return '∘'
	case y > 2:
		return '●'
	default:
		return 'o'
	}
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

var barChars = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func levelBars(levels [3]float64) string {
	return yellow.Render(levelGlyphs(levels))
}

// levelGlyphs renders bass, mid and high as one bar each.
func levelGlyphs(levels [3]float64) string {
	var sb strings.Builder
	for _, l := range levels {
		idx := int(math.Round(l * float64(len(barChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(barChars) {
			idx = len(barChars) - 1
		}
		sb.WriteRune(barChars[idx])
	}
	return sb.String()
}

func set(canvas [][]rune, x, y int, c rune, w, h int) {
	if x >= 0 && x < w && y >= 0 && y < h {
		canvas[y][x] = c
	}
}

// Run drives s from a bubbletea program until the user quits.
func Run(s *sandbox.Session, meter Meter) error {
	p := tea.NewProgram(NewModel(s, meter), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
