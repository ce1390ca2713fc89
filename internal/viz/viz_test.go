package viz

import (
	"math"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/physics"
	"github.com/san-kum/kartsim/internal/sim"
)

type fakeEngine struct {
	mu     sync.Mutex
	snap   sim.Snapshot
	input  dynamo.Input
	resets int
}

func (f *fakeEngine) Snapshot() sim.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeEngine) SetInput(in dynamo.Input) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = in
}

func (f *fakeEngine) Input() dynamo.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func (f *fakeEngine) Reset(spawn dynamo.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.snap = sim.Snapshot{State: spawn}
}

func (f *fakeEngine) Running() bool { return true }

func newTestDashboard(t *testing.T) (*Dashboard, *fakeEngine) {
	t.Helper()
	p, err := physics.Archetype("gokart-sport")
	if err != nil {
		t.Fatal(err)
	}
	spawn := dynamo.NewState(0, 0, dynamo.Rad(-90))
	spawn.GripCoeff = 2
	eng := &fakeEngine{snap: sim.Snapshot{State: spawn}}
	return NewDashboard(eng, p, spawn, DashboardConfig{Title: "sport"}), eng
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasSetAndString(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if !c.IsSet(0, 0) || !c.IsSet(3, 3) || c.IsSet(1, 0) {
		t.Fatal("unexpected pixel state")
	}
	if got, want := c.String(), "⠁⢀\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	c.Clear()
	if c.String() != "⠀⠀\n" {
		t.Errorf("Clear left %q", c.String())
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawLine(0, 0, 9, 7)
	for _, p := range [][2]int{{0, 0}, {9, 7}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("endpoint %v not set", p)
		}
	}

	c.Clear()
	c.DrawLine(0, 3, 9, 3)
	for x := 0; x < 10; x++ {
		if !c.IsSet(x, 3) {
			t.Errorf("pixel %d not set on horizontal line", x)
		}
	}
}

func TestCameraProject(t *testing.T) {
	c := NewCanvas(10, 5) // 20 x 20 pixels
	cam := Camera{CenterX: 100, CenterY: -50, Scale: 3}

	if x, y := cam.Project(c, 100, -50); x != 10 || y != 10 {
		t.Errorf("centre -> (%d, %d)", x, y)
	}
	if x, y := cam.Project(c, 102, -51); x != 16 || y != 7 {
		t.Errorf("offset -> (%d, %d)", x, y)
	}
}

func TestCameraCullsOffscreenLines(t *testing.T) {
	c := NewCanvas(10, 5)
	cam := Camera{Scale: 1}
	cam.Line(c, 1000, 0, 2000, 0)
	if c.String() != NewCanvas(10, 5).String() {
		t.Error("off-screen line was drawn")
	}
}

func TestDrawKartAtCentre(t *testing.T) {
	p, _ := physics.Archetype("gokart-sport")
	c := NewCanvas(20, 10)
	s := dynamo.NewState(0, 0, 0)
	DrawKart(c, Camera{Scale: 10}, s, p, 0)

	cx, cy := Camera{Scale: 10}.Project(c, 0, 0)
	if !c.IsSet(cx, cy) {
		t.Error("chassis should pass through the centre of mass")
	}
	fx, fy := Camera{Scale: 10}.Project(c, p.DistFront, halfTrack)
	if !c.IsSet(fx, fy) {
		t.Error("front axle end missing")
	}
}

func TestKeysLatchInputs(t *testing.T) {
	d, eng := newTestDashboard(t)

	d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	d.Update(tea.KeyMsg{Type: tea.KeyUp})
	if in := eng.Input(); in.Steering != 0.2 || in.Drive != 0.25 {
		t.Fatalf("input = %+v", in)
	}

	for i := 0; i < 20; i++ {
		d.Update(runes("a"))
	}
	if in := eng.Input(); in.Steering != 1 {
		t.Errorf("steering should clamp at 1, got %v", in.Steering)
	}

	d.Update(tea.KeyMsg{Type: tea.KeyRight})
	d.Update(runes("c"))
	if in := eng.Input(); in.Steering != 0 || in.Drive != 0.25 {
		t.Errorf("centre: %+v", in)
	}

	d.Update(tea.KeyMsg{Type: tea.KeySpace})
	if in := eng.Input(); in != (dynamo.Input{}) {
		t.Errorf("space should neutralise, got %+v", in)
	}
}

func TestQuitKey(t *testing.T) {
	d, _ := newTestDashboard(t)
	_, cmd := d.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestFrameSamplesSnapshot(t *testing.T) {
	d, eng := newTestDashboard(t)

	eng.mu.Lock()
	eng.snap.State.Y = -5
	eng.snap.State.LongVel = 10
	eng.snap.Time = 1
	eng.snap.Tick = 1000
	eng.mu.Unlock()

	_, cmd := d.Update(frameMsg{})
	if cmd == nil {
		t.Error("frame should schedule the next frame")
	}
	if len(d.trail) != 2 || d.trail[1].Y != -5 {
		t.Errorf("trail = %v", d.trail)
	}
	if len(d.speeds) != 1 || math.Abs(d.speeds[0]-36) > 1e-9 {
		t.Errorf("speeds = %v", d.speeds)
	}

	view := d.View()
	for _, want := range []string{"SPORT", "36.0 km/h", "RUNNING", "1000 ticks"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResetKeyClearsHistory(t *testing.T) {
	d, eng := newTestDashboard(t)
	eng.mu.Lock()
	eng.snap.State.Y = -20
	eng.snap.Time = 2
	eng.mu.Unlock()
	d.Update(frameMsg{})
	d.Update(tea.KeyMsg{Type: tea.KeyUp})

	d.Update(runes("r"))
	if eng.resets != 1 {
		t.Errorf("resets = %d", eng.resets)
	}
	if len(d.trail) != 1 || len(d.speeds) != 0 {
		t.Errorf("history not cleared: %d trail, %d speeds", len(d.trail), len(d.speeds))
	}
	if eng.Input() != (dynamo.Input{}) {
		t.Errorf("inputs should be released on reset, got %+v", eng.Input())
	}
}

func TestDivergedStatus(t *testing.T) {
	d, eng := newTestDashboard(t)
	eng.mu.Lock()
	eng.snap.State.LatVel = math.NaN()
	eng.snap.Time = 0.2
	eng.mu.Unlock()
	d.Update(frameMsg{})
	if !strings.Contains(d.View(), "DIVERGED") {
		t.Error("NaN state should show as diverged")
	}
}

func TestInputBar(t *testing.T) {
	if got := inputBar(0, 4); got != "──│──" {
		t.Errorf("zero: %q", got)
	}
	if got := inputBar(1, 4); got != "──│██" {
		t.Errorf("full: %q", got)
	}
	if got := inputBar(-0.5, 4); got != "─█│──" {
		t.Errorf("half reverse: %q", got)
	}
}

func TestPicker(t *testing.T) {
	p := NewPicker("presets", []Choice{{Name: "sport"}, {Name: "slalom", Info: "scripted"}})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if !strings.Contains(p.View(), "scripted") {
		t.Error("info not rendered")
	}
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Selected != "slalom" || cmd == nil {
		t.Errorf("selected %q", p.Selected)
	}
}

func TestAutoModeShowsAppliedInput(t *testing.T) {
	d, eng := newTestDashboard(t)
	d.cfg.Auto = true

	d.Update(tea.KeyMsg{Type: tea.KeyUp})
	d.Update(runes("a"))
	if eng.Input() != (dynamo.Input{}) {
		t.Errorf("keys should not latch while a controller drives, got %+v", eng.Input())
	}

	eng.mu.Lock()
	eng.snap.Input = dynamo.Input{Steering: 0.4, Drive: -0.75}
	eng.snap.Time = 0.5
	eng.mu.Unlock()
	d.Update(frameMsg{})

	view := d.View()
	for _, want := range []string{"+0.40", "-0.75"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing applied input %q", want)
		}
	}

	d.Update(runes("r"))
	if eng.resets != 1 {
		t.Errorf("reset should still work in auto mode, resets = %d", eng.resets)
	}
}
