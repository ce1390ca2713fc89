package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/kartsim/internal/control"
	"github.com/san-kum/kartsim/internal/dynamo"
)

const defaultYield = 200 * time.Microsecond

// Snapshot is the state published after a tick. Snapshots are immutable once
// published; readers may keep them.
type Snapshot struct {
	State dynamo.State
	Input dynamo.Input
	Tick  uint64
	Time  float64 // simulated seconds since start or last reset
}

// Scheduler ticks a model in real time on its own goroutine, independent of
// any consumer's refresh rate.
//
// The loop goroutine is the only writer of the vehicle state. Inputs cross
// into it through atomics; the state crosses out through Snapshot, which is
// swapped atomically once per tick.
type Scheduler struct {
	model  Model
	input  *control.Manual
	source dynamo.Controller
	logger *zap.Logger
	yield  time.Duration
	maxLag int
	onTick []dynamo.Observer

	mu   sync.Mutex // serializes Start, Stop and Reset
	done chan struct{}

	running  atomic.Bool
	snapshot atomic.Pointer[Snapshot]
	resetReq atomic.Pointer[dynamo.State]
	ticks    atomic.Uint64

	// Owned by the loop goroutine while running.
	state   dynamo.State
	simTime float64
}

type SchedulerOption func(*Scheduler)

// WithController replaces the default manual source. SetInput then has no
// effect on the vehicle.
func WithController(c dynamo.Controller) SchedulerOption {
	return func(s *Scheduler) { s.source = c }
}

func WithLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithYield sets the pause between polls when no tick is due.
func WithYield(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.yield = d }
}

// WithMaxLag lets the loop drop its backlog and resynchronize with wall clock
// once it is more than ticks behind. Off by default: after a stall the loop
// runs the missed ticks back to back until simulated time catches up.
func WithMaxLag(ticks int) SchedulerOption {
	return func(s *Scheduler) { s.maxLag = ticks }
}

// WithObserver registers o to run on the loop goroutine after every tick.
func WithObserver(o dynamo.Observer) SchedulerOption {
	return func(s *Scheduler) { s.onTick = append(s.onTick, o) }
}

// NewScheduler prepares a stopped scheduler with the vehicle at spawn.
func NewScheduler(model Model, spawn dynamo.State, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		model:  model,
		input:  control.NewManual(),
		logger: zap.NewNop(),
		yield:  defaultYield,
		state:  spawn,
	}
	s.source = s.input
	for _, opt := range opts {
		opt(s)
	}
	s.publish(dynamo.Input{})
	return s
}

// Start launches the loop. It is a no-op while already running. The loop
// also ends when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
			s.done = nil
		default:
			return
		}
	}

	s.running.Store(true)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	s.logger.Info("scheduler started", zap.Float64("dt", s.model.Dt()))
}

// Stop signals the loop and waits for it to exit. No tick runs after Stop
// returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done == nil {
		return
	}
	s.running.Store(false)
	<-s.done
	s.done = nil
	s.logger.Info("scheduler stopped", zap.Uint64("ticks", s.ticks.Load()))
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Reset replaces the vehicle with a fresh state. While running, the loop
// applies it before its next tick.
func (s *Scheduler) Reset(spawn dynamo.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		if s.running.Load() {
			s.resetReq.Store(&spawn)
			return
		}
		// The loop ended on its context; wait until it has fully exited.
		<-s.done
		s.done = nil
	}
	s.resetReq.Store(nil)
	s.applyReset(spawn)
}

func (s *Scheduler) applyReset(spawn dynamo.State) {
	s.state = spawn
	s.simTime = 0
	s.publish(dynamo.Input{})
	s.logger.Info("vehicle reset",
		zap.Float64("x", spawn.X),
		zap.Float64("y", spawn.Y),
		zap.Float64("yaw", spawn.Yaw))
}

// SetInput publishes the driver's input for the next tick.
func (s *Scheduler) SetInput(in dynamo.Input) {
	s.input.Set(in)
}

func (s *Scheduler) Input() dynamo.Input {
	return s.input.Get()
}

// Snapshot returns the most recently published state.
func (s *Scheduler) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// Ticks counts steps since construction.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	step := time.Duration(s.model.Dt() * float64(time.Second))
	last := time.Now()
	var lastWarn time.Time

	for s.running.Load() {
		if ctx.Err() != nil {
			s.running.Store(false)
			s.logger.Info("scheduler context done", zap.Error(ctx.Err()))
			return
		}
		if req := s.resetReq.Swap(nil); req != nil {
			s.applyReset(*req)
			last = time.Now()
		}

		now := time.Now()
		if now.Sub(last) < step {
			time.Sleep(s.yield)
			continue
		}

		s.tick()
		last = last.Add(step)

		if behind := int(now.Sub(last) / step); s.maxLag > 0 && behind > s.maxLag {
			if now.Sub(lastWarn) > time.Second {
				s.logger.Warn("simulation behind wall clock, dropping backlog",
					zap.Int("ticks_behind", behind))
				lastWarn = now
			}
			last = now
		}
	}
}

func (s *Scheduler) tick() {
	in := s.source.Compute(&s.state, s.simTime).Clamp()
	s.model.Step(&s.state, in)
	s.simTime += s.model.Dt()
	s.ticks.Add(1)
	for _, o := range s.onTick {
		o.OnStep(&s.state, in, s.simTime)
	}
	s.publish(in)
}

func (s *Scheduler) publish(in dynamo.Input) {
	s.snapshot.Store(&Snapshot{
		State: s.state,
		Input: in,
		Tick:  s.ticks.Load(),
		Time:  s.simTime,
	})
}
