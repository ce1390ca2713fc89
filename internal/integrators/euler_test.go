package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/kartsim/internal/dynamo"
)

func TestSemiImplicitEuler_UsesUpdatedVelocity(t *testing.T) {
	s := dynamo.State{LongAccel: 2}
	NewSemiImplicitEuler().Step(&s, 0.5)

	if s.LongVel != 1 {
		t.Errorf("LongVel = %v, want 1", s.LongVel)
	}
	if s.X != 0.5 {
		t.Errorf("X = %v, want 0.5 (moved with the updated velocity)", s.X)
	}
}

func TestEuler_UsesStartVelocity(t *testing.T) {
	s := dynamo.State{LongAccel: 2}
	NewEuler().Step(&s, 0.5)

	if s.LongVel != 1 {
		t.Errorf("LongVel = %v, want 1", s.LongVel)
	}
	if s.X != 0 {
		t.Errorf("X = %v, want 0 (moved with the start velocity)", s.X)
	}
}

func TestSemiImplicitEuler_RotatesIntoWorldFrame(t *testing.T) {
	tests := []struct {
		name   string
		yaw    float64
		vx, vy float64
		wantX  float64
		wantY  float64
	}{
		{"east", 0, 10, 0, 0.01, 0},
		{"north", math.Pi / 2, 10, 0, 0, 0.01},
		{"south", -math.Pi / 2, 10, 0, 0, -0.01},
		{"lateral", 0, 0, 10, 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dynamo.State{Yaw: tt.yaw, LongVel: tt.vx, LatVel: tt.vy}
			NewSemiImplicitEuler().Step(&s, 0.001)
			if math.Abs(s.X-tt.wantX) > 1e-12 || math.Abs(s.Y-tt.wantY) > 1e-12 {
				t.Errorf("position = (%v, %v), want (%v, %v)", s.X, s.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSemiImplicitEuler_WrapsHeading(t *testing.T) {
	s := dynamo.State{Yaw: math.Pi - 0.001, YawRate: 5}
	integ := NewSemiImplicitEuler()
	for i := 0; i < 5000; i++ {
		integ.Step(&s, 0.001)
		if s.Yaw <= -math.Pi || s.Yaw > math.Pi {
			t.Fatalf("step %d: yaw %v outside (-pi, pi]", i, s.Yaw)
		}
	}
}

// A spring acting on X exposes the energy behaviour of both schemes.
func TestSemiImplicitEuler_BoundedOscillation(t *testing.T) {
	run := func(integ dynamo.Integrator) (maxAmp float64, energy float64) {
		s := dynamo.State{X: 1}
		for i := 0; i < 10000; i++ {
			s.LongAccel = -s.X
			integ.Step(&s, 0.01)
			maxAmp = math.Max(maxAmp, math.Abs(s.X))
		}
		return maxAmp, 0.5 * (s.X*s.X + s.LongVel*s.LongVel)
	}

	amp, _ := run(NewSemiImplicitEuler())
	if amp > 1.01 {
		t.Errorf("semi-implicit amplitude grew to %v", amp)
	}

	_, energy := run(NewEuler())
	if energy < 0.75 {
		t.Errorf("explicit Euler energy = %v, expected growth above initial 0.5", energy)
	}
}

func TestNew(t *testing.T) {
	for _, name := range List() {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if integ, err := New(""); err != nil {
		t.Errorf("New(\"\"): %v", err)
	} else if _, ok := integ.(*SemiImplicitEuler); !ok {
		t.Errorf("New(\"\") = %T, want *SemiImplicitEuler", integ)
	}
	if _, err := New("rk4"); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("New(rk4) error = %v, want ErrUnknownComponent", err)
	}
}
