package control

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/san-kum/kartsim/internal/dynamo"
)

func TestNone(t *testing.T) {
	s := dynamo.NewState(0, 0, 0)
	if in := NewNone().Compute(&s, 1); in != (dynamo.Input{}) {
		t.Errorf("None returned %v", in)
	}
}

func TestConstant_Clamps(t *testing.T) {
	s := dynamo.NewState(0, 0, 0)
	in := NewConstant(3, -0.4).Compute(&s, 0)
	if in.Steering != 1 || in.Drive != -0.4 {
		t.Errorf("Constant = %v, want {1 -0.4}", in)
	}
}

func TestManual_ConcurrentWrites(t *testing.T) {
	m := NewManual()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Set(dynamo.Input{Steering: float64(i) / 4, Drive: -float64(i) / 4})
			}
		}(i)
	}
	s := dynamo.NewState(0, 0, 0)
	for j := 0; j < 1000; j++ {
		in := m.Compute(&s, 0)
		if in.Steering < 0 || in.Steering > 1 || in.Drive > 0 || in.Drive < -1 {
			t.Fatalf("torn read: %v", in)
		}
	}
	wg.Wait()

	m.SetSteering(-7)
	m.SetDrive(0.25)
	if got := m.Get(); got.Steering != -1 || got.Drive != 0.25 {
		t.Errorf("Get() = %v, want {-1 0.25}", got)
	}
}

func TestPID(t *testing.T) {
	ctrl := NewPID(10.0, 0.1, 0.5, 0.0)
	if u := ctrl.Update(1.0, 0.0); u >= 0 {
		t.Error("PID should output negative control for positive error")
	}
	if u := ctrl.Update(0.5, 0.1); u >= 0 {
		t.Error("PID should keep pushing toward the target")
	}

	ctrl.Reset()
	ctrl.SetParam("Kp", 2)
	if u := ctrl.Update(-1, 0.2); u != 2 {
		t.Errorf("after reset Update = %v, want 2", u)
	}
	if ctrl.GetParams()["Kp"] != 2 {
		t.Error("Kp not updated")
	}
}

func TestPID_Limit(t *testing.T) {
	ctrl := NewPID(1, 1, 0, 100)
	ctrl.Limit = 1
	for i := 0; i < 100; i++ {
		if u := ctrl.Update(0, float64(i)*0.01); math.Abs(u) > 1 {
			t.Fatalf("output %v exceeds limit", u)
		}
	}
	if ctrl.integral != 0 {
		t.Errorf("integral wound up to %v while saturated", ctrl.integral)
	}
}

func TestCruise_HoldsSpeed(t *testing.T) {
	cruise := NewCruise(NewPID(0.5, 0.1, 0, 15), NewConstant(0.2, 0))
	s := dynamo.NewState(0, 0, 0)
	dt := 0.001
	for i := 0; i < 30000; i++ {
		in := cruise.Compute(&s, float64(i)*dt)
		if math.Abs(in.Drive) > 1 {
			t.Fatalf("drive %v outside [-1, 1]", in.Drive)
		}
		if in.Steering != 0.2 {
			t.Fatalf("steering %v not taken from inner source", in.Steering)
		}
		s.LongVel += dt * (10*in.Drive - 0.1*s.LongVel)
	}
	if math.Abs(s.LongVel-15) > 0.05 {
		t.Errorf("cruise settled at %v, want 15", s.LongVel)
	}
}

func TestScript_Interpolates(t *testing.T) {
	sc := NewScript([]Keyframe{
		{T: 2, Steering: 1, Drive: 0},
		{T: 0, Steering: 0, Drive: 1},
	})

	tests := []struct {
		t    float64
		want dynamo.Input
	}{
		{-1, dynamo.Input{Steering: 0, Drive: 1}},
		{0, dynamo.Input{Steering: 0, Drive: 1}},
		{1, dynamo.Input{Steering: 0.5, Drive: 0.5}},
		{2, dynamo.Input{Steering: 1, Drive: 0}},
		{9, dynamo.Input{Steering: 1, Drive: 0}},
	}
	for _, tt := range tests {
		got := sc.At(tt.t)
		if math.Abs(got.Steering-tt.want.Steering) > 1e-12 || math.Abs(got.Drive-tt.want.Drive) > 1e-12 {
			t.Errorf("At(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if sc.Duration() != 2 {
		t.Errorf("Duration() = %v, want 2", sc.Duration())
	}
	if NewScript(nil).At(1) != (dynamo.Input{}) {
		t.Error("empty script should coast")
	}
}

func TestBuiltinScripts(t *testing.T) {
	for _, name := range ListScripts() {
		sc, err := BuiltinScript(name)
		if err != nil {
			t.Fatalf("BuiltinScript(%q): %v", name, err)
		}
		if sc.Duration() <= 0 {
			t.Errorf("%s has no duration", name)
		}
	}
	ramp, _ := BuiltinScript("ramp")
	if in := ramp.At(6); math.Abs(in.Steering-0.5) > 1e-12 || in.Drive != 1 {
		t.Errorf("ramp.At(6) = %v, want {0.5 1}", in)
	}
	if _, err := BuiltinScript("donut"); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("BuiltinScript(donut) = %v", err)
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.yaml")
	data := "- t: 0\n  drive: 1\n- t: 4\n  steering: -0.5\n  drive: 1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if in := sc.At(2); math.Abs(in.Steering+0.25) > 1e-12 || in.Drive != 1 {
		t.Errorf("At(2) = %v, want {-0.25 1}", in)
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"none", "constant", "manual", "cruise"} {
		if _, err := New(Spec{Source: name, Steering: 0.1, Drive: 0.5}); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if c, err := New(Spec{Source: "script", Script: "slalom"}); err != nil {
		t.Errorf("New(script slalom): %v", err)
	} else if _, ok := c.(*Script); !ok {
		t.Errorf("New(script) = %T", c)
	}
	if _, err := New(Spec{Source: "script"}); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("New(script without frames) = %v", err)
	}
	if _, err := New(Spec{Source: "joystick"}); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("New(joystick) = %v", err)
	}
}
