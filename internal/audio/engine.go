// Package audio synthesizes an engine note that follows the kart's speed
// and throttle during live sessions.
package audio

import (
	"math"
	"sync"

	"github.com/san-kum/kartsim/internal/dynamo"
)

const (
	SampleRate = 44100
	BufferSize = 512

	IdleRPM = 1800.0
	MaxRPM  = 14000.0

	// direct drive: engine speed is proportional to wheel speed
	rpmPerMetre = 420.0
	smoothing   = 0.05 // seconds
)

// RPM maps vehicle speed in m/s onto engine speed.
func RPM(speed float64) float64 {
	return math.Min(IdleRPM+math.Abs(speed)*rpmPerMetre, MaxRPM)
}

// EngineNote is a single cylinder two-stroke voice. It fires once per
// revolution, so the fundamental is RPM/60 Hz.
type EngineNote struct {
	mu       sync.Mutex
	rpm      float64
	throttle float64
	muted    bool

	// audio thread only
	rpmSmooth      float64
	throttleSmooth float64
	phase          float64
	filter         float64
}

func NewEngineNote() *EngineNote {
	return &EngineNote{rpm: IdleRPM, rpmSmooth: IdleRPM}
}

// Update sets the targets the voice glides towards. Braking and reversing
// count as a closed throttle.
func (e *EngineNote) Update(speed, drive float64) {
	e.mu.Lock()
	e.rpm = RPM(speed)
	e.throttle = math.Max(0, math.Min(drive, 1))
	e.mu.Unlock()
}

// OnStep lets the note ride along as a scheduler observer.
func (e *EngineNote) OnStep(s *dynamo.State, in dynamo.Input, t float64) {
	e.Update(s.LongVel, in.Drive)
}

func (e *EngineNote) SetMuted(m bool) {
	e.mu.Lock()
	e.muted = m
	e.mu.Unlock()
}

func (e *EngineNote) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Fill renders len(out[0]) frames into every channel of out.
func (e *EngineNote) Fill(out [][]float32) {
	e.mu.Lock()
	rpm, throttle, muted := e.rpm, e.throttle, e.muted
	e.mu.Unlock()

	if len(out) == 0 {
		return
	}

	dt := 1.0 / SampleRate
	k := 1 - math.Exp(-dt/smoothing)

	for i := range out[0] {
		e.rpmSmooth += k * (rpm - e.rpmSmooth)
		e.throttleSmooth += k * (throttle - e.throttleSmooth)

		e.phase += e.rpmSmooth / 60 * dt
		e.phase -= math.Floor(e.phase)

		var raw float64
		for h := 1.0; h <= 4; h++ {
			raw += math.Sin(2*math.Pi*h*e.phase) / h
		}

		cutoff := 400 + 2400*e.throttleSmooth
		rc := 1 / (2 * math.Pi * cutoff)
		e.filter += dt / (rc + dt) * (raw - e.filter)

		v := 0.0
		if !muted {
			v = (0.12 + 0.3*e.throttleSmooth) * e.filter
		}
		for c := range out {
			out[c][i] = float32(v)
		}
	}
}
