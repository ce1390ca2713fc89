package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/sim"
)

const (
	panelWidth      = 46
	historyCapacity = 300
	steerStep       = 0.1
	driveStep       = 0.25
	defaultZoom     = 0.1
	trailSpacing    = 0.25 // m between stored trail points
)

// Engine is the part of sim.Scheduler the dashboard drives.
type Engine interface {
	Snapshot() sim.Snapshot
	SetInput(in dynamo.Input)
	Input() dynamo.Input
	Reset(spawn dynamo.State)
	Running() bool
}

type DashboardConfig struct {
	Title      string
	FPS        int
	WorldScale float64 // screen units per metre
	Width      int     // canvas cells
	Height     int

	// Auto means a scripted controller drives the kart; input keys are ignored.
	Auto bool
}

type frameMsg time.Time

// Dashboard is a tea.Model showing the kart, its trail and live telemetry.
type Dashboard struct {
	engine Engine
	params dynamo.Params
	spawn  dynamo.State
	cfg    DashboardConfig

	canvas   *Canvas
	zoom     float64
	follow   bool
	theme    int
	style    styles
	showHelp bool

	snap   sim.Snapshot
	trail  []Point
	speeds []float64
}

func NewDashboard(engine Engine, params dynamo.Params, spawn dynamo.State, cfg DashboardConfig) *Dashboard {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.WorldScale <= 0 {
		cfg.WorldScale = 30
	}
	if cfg.Width <= 0 {
		cfg.Width = 70
	}
	if cfg.Height <= 0 {
		cfg.Height = 28
	}
	return &Dashboard{
		engine: engine,
		params: params,
		spawn:  spawn,
		cfg:    cfg,
		canvas: NewCanvas(cfg.Width, cfg.Height),
		zoom:   defaultZoom,
		follow: true,
		style:  newStyles(Themes[0]),
		snap:   engine.Snapshot(),
		trail:  []Point{{spawn.X, spawn.Y}},
		speeds: make([]float64, 0, historyCapacity),
	}
}

func (d *Dashboard) Init() tea.Cmd {
	return d.nextFrame()
}

func (d *Dashboard) nextFrame() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(d.cfg.FPS), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d, d.handleKey(msg)
	case tea.WindowSizeMsg:
		d.resize(msg.Width, msg.Height)
	case frameMsg:
		d.sample()
		return d, d.nextFrame()
	}
	return d, nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	in := d.engine.Input()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "left", "a":
		in.Steering += steerStep
	case "right", "d":
		in.Steering -= steerStep
	case "up", "w":
		in.Drive += driveStep
	case "down", "s":
		in.Drive -= driveStep
	case "c":
		in.Steering = 0
	case "x":
		in.Drive = 0
	case " ":
		in = dynamo.Input{}
	case "r":
		d.engine.SetInput(dynamo.Input{})
		d.engine.Reset(d.spawn)
		d.clearHistory()
		return nil
	case "f":
		d.follow = !d.follow
		return nil
	case "+", "=":
		d.zoom = math.Min(d.zoom*1.25, 2)
		return nil
	case "-", "_":
		d.zoom = math.Max(d.zoom/1.25, 0.005)
		return nil
	case "t":
		d.theme = (d.theme + 1) % len(Themes)
		d.style = newStyles(Themes[d.theme])
		return nil
	case "?":
		d.showHelp = !d.showHelp
		return nil
	default:
		return nil
	}
	if d.cfg.Auto {
		return nil
	}
	// latched inputs stay on a 0.01 grid
	in.Steering = math.Round(in.Steering*100) / 100
	in.Drive = math.Round(in.Drive*100) / 100
	d.engine.SetInput(in.Clamp())
	return nil
}

func (d *Dashboard) resize(w, h int) {
	cw := max(w-panelWidth-6, 20)
	ch := max(h-2, 10)
	if cw != d.canvas.Width || ch != d.canvas.Height {
		d.canvas = NewCanvas(cw, ch)
	}
}

// sample pulls the latest snapshot and extends the history.
func (d *Dashboard) sample() {
	snap := d.engine.Snapshot()
	if snap.Time < d.snap.Time {
		d.clearHistory()
	}
	d.snap = snap

	s := snap.State
	last := d.trail[len(d.trail)-1]
	if math.Hypot(s.X-last.X, s.Y-last.Y) >= trailSpacing {
		d.trail = append(d.trail, Point{s.X, s.Y})
		if len(d.trail) > 4*historyCapacity {
			d.trail = d.trail[len(d.trail)-4*historyCapacity:]
		}
	}

	d.speeds = append(d.speeds, s.Speed()*3.6)
	if len(d.speeds) > historyCapacity {
		d.speeds = d.speeds[1:]
	}
}

func (d *Dashboard) clearHistory() {
	d.trail = []Point{{d.spawn.X, d.spawn.Y}}
	d.speeds = d.speeds[:0]
	d.snap = sim.Snapshot{State: d.spawn}
}

func (d *Dashboard) camera() Camera {
	cam := Camera{CenterX: d.spawn.X, CenterY: d.spawn.Y, Scale: d.cfg.WorldScale * d.zoom}
	if d.follow {
		cam.CenterX, cam.CenterY = d.snap.State.X, d.snap.State.Y
	}
	return cam
}

func (d *Dashboard) draw() {
	d.canvas.Clear()
	cam := d.camera()
	DrawGrid(d.canvas, cam, 10)
	DrawTrail(d.canvas, cam, append(d.trail, Point{d.snap.State.X, d.snap.State.Y}))
	DrawKart(d.canvas, cam, d.snap.State, d.params, d.params.MaxSteer*d.snap.Input.Steering)
}

func (d *Dashboard) View() string {
	d.draw()
	st := d.style
	s := d.snap.State

	var b strings.Builder
	b.WriteString(st.header.Render(strings.ToUpper(d.cfg.Title)) + "\n")

	status := st.good.Render("RUNNING")
	switch {
	case !s.IsValid():
		status = st.bad.Render("DIVERGED")
	case !d.engine.Running():
		status = st.warn.Render("STOPPED")
	}
	b.WriteString(status + "\n\n")

	row := func(label, format string, args ...any) {
		b.WriteString(st.label.Render(label) + st.value.Render(fmt.Sprintf(format, args...)) + "\n")
	}
	row("time", "%.2f s  (%d ticks)", d.snap.Time, d.snap.Tick)
	row("speed", "%.1f km/h", s.Speed()*3.6)
	row("vel", "%+.2f / %+.2f m/s", s.LongVel, s.LatVel)
	row("yaw", "%+.1f°  %+.2f rad/s", dynamo.Deg(s.Yaw), s.YawRate)
	row("slip", "F %+.1f°  R %+.1f°", dynamo.Deg(s.SlipEffFront), dynamo.Deg(s.SlipEffRear))
	row("lat force", "F %+.0f  R %+.0f N", s.LatForceFront, s.LatForceRear)
	row("long force", "F %+.0f  R %+.0f N", s.LongForceFront, s.LongForceRear)
	row("grip", "%.2f", s.GripCoeff)

	in := d.snap.Input
	b.WriteString("\n")
	b.WriteString(st.label.Render("steering") + inputBar(in.Steering, 20) + st.value.Render(fmt.Sprintf(" %+.2f", in.Steering)) + "\n")
	b.WriteString(st.label.Render("drive") + inputBar(in.Drive, 20) + st.value.Render(fmt.Sprintf(" %+.2f", in.Drive)) + "\n")

	if len(d.speeds) > 1 {
		chart := asciigraph.Plot(d.speeds,
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-12),
			asciigraph.LowerBound(0),
			asciigraph.Caption("speed km/h"))
		b.WriteString(st.graph.Render(chart) + "\n")
	}

	b.WriteString(st.help.Render(fmt.Sprintf("←→ steer  ↑↓ drive  space neutral\nr respawn  f follow  +/- zoom (%.0f px/m)\nt theme  ? help  q quit", d.camera().Scale)))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		st.canvas.Render(d.canvas.String()),
		st.panel.Render(b.String()))
	if d.showHelp {
		return helpText + "\n" + main
	}
	return main
}

// inputBar draws v in [-1, 1] as a bar centred on zero.
func inputBar(v float64, width int) string {
	half := width / 2
	n := int(math.Round(math.Abs(v) * float64(half)))
	left := strings.Repeat("─", half)
	right := strings.Repeat("─", half)
	if v < 0 {
		left = strings.Repeat("─", half-n) + strings.Repeat("█", n)
	} else {
		right = strings.Repeat("█", n) + strings.Repeat("─", half-n)
	}
	return left + "│" + right
}

const helpText = `
╔══════════════════════════════════════╗
║  ←/→ a/d  steer, latched 0.1 a press ║
║  ↑/↓ w/s  throttle / brake, 0.25     ║
║  c / x    centre steer / lift off    ║
║  space    neutral inputs             ║
║  r        respawn                    ║
║  f        follow camera on/off       ║
║  +/-      zoom                       ║
║  t        cycle theme                ║
║  q        quit                       ║
╚══════════════════════════════════════╝`
