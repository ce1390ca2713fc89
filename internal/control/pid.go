package control

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	Limit    float64 // symmetric output bound, 0 for none
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Update returns the controller output for measurement x at time t.
func (p *PID) Update(x, t float64) float64 {
	err := p.Target - x

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.limit(p.Kp * err)
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative
		if p.Limit > 0 && math.Abs(u) > p.Limit {
			// No integration while saturated.
			p.integral -= err * dt
			u = p.limit(u)
		}

		p.prevErr = err
		p.prevT = t

		return u
	}
	return p.limit(p.Kp * err)
}

func (p *PID) limit(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	return math.Max(-p.Limit, math.Min(p.Limit, u))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}

// Cruise holds longitudinal speed at the PID target. Steering comes from the
// wrapped source; its drive channel is ignored.
type Cruise struct {
	PID      *PID
	Steering dynamo.Controller
}

func NewCruise(pid *PID, steering dynamo.Controller) *Cruise {
	if steering == nil {
		steering = NewNone()
	}
	pid.Limit = 1
	return &Cruise{PID: pid, Steering: steering}
}

func (c *Cruise) Compute(s *dynamo.State, t float64) dynamo.Input {
	in := c.Steering.Compute(s, t)
	in.Drive = c.PID.Update(s.LongVel, t)
	return in.Clamp()
}

func (c *Cruise) Reset() {
	c.PID.Reset()
}
