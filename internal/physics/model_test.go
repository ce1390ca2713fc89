package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kartsim/internal/dynamo"
	"github.com/san-kum/kartsim/internal/physics"
)

const dt = 0.001

func newModel(p dynamo.Params, t physics.Tuning) *physics.Model {
	params, err := dynamo.NewParams(p)
	Expect(err).NotTo(HaveOccurred())
	stages, err := physics.DefaultStages(t)
	Expect(err).NotTo(HaveOccurred())
	m, err := physics.NewModel(params, stages, dt)
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("Model", func() {
	var model *physics.Model

	BeforeEach(func() {
		model = newModel(physics.GoKartSport(), physics.DefaultTuning())
	})

	Describe("construction", func() {
		It("rejects a non-positive timestep", func() {
			p, _ := physics.Archetype("gokart-sport")
			stages, _ := physics.DefaultStages(physics.DefaultTuning())
			for _, bad := range []float64{0, -0.001, math.NaN()} {
				_, err := physics.NewModel(p, stages, bad)
				Expect(err).To(MatchError(dynamo.ErrInvalidTimestep))
			}
		})

		It("rejects params without derived static loads", func() {
			stages, _ := physics.DefaultStages(physics.DefaultTuning())
			_, err := physics.NewModel(physics.GoKartSport(), stages, dt)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects an incomplete pipeline", func() {
			p, _ := physics.Archetype("gokart-sport")
			stages, _ := physics.DefaultStages(physics.DefaultTuning())
			stages.Limiter = nil
			_, err := physics.NewModel(p, stages, dt)
			Expect(err).To(MatchError(dynamo.ErrUnknownComponent))
			Expect(err.Error()).To(ContainSubstring("force limiter"))
		})
	})

	Describe("rest", func() {
		It("is a fixed point with zero inputs", func() {
			s := dynamo.NewState(0, 0, 0)
			for i := 0; i < 5000; i++ {
				model.Step(&s, dynamo.Input{})
			}
			Expect(s).To(Equal(dynamo.NewState(0, 0, 0)))
		})

		It("stays at rest when only steering is applied", func() {
			s := dynamo.NewState(2, 3, 1)
			for i := 0; i < 2000; i++ {
				model.Step(&s, dynamo.Input{Steering: 1})
			}
			Expect(s.X).To(Equal(2.0))
			Expect(s.Y).To(Equal(3.0))
			Expect(s.LongVel).To(BeZero())
			Expect(s.YawRate).To(BeZero())
		})
	})

	Describe("straight-line acceleration", func() {
		It("accelerates monotonically along the spawn heading toward a plateau", func() {
			s := dynamo.NewState(0, 0, dynamo.Rad(-90))
			p := model.Params()
			var at6, at7 float64
			prev := 0.0
			for i := 1; i <= 8000; i++ {
				model.Step(&s, dynamo.Input{Drive: 1})
				Expect(s.LongVel).To(BeNumerically(">=", prev), "tick %d", i)
				Expect(s.LongForceRear).To(BeNumerically("<=", p.EngineForce))
				Expect(s.LongVel).To(BeNumerically("<", 36.8))
				prev = s.LongVel
				switch i {
				case 6000:
					at6 = s.LongVel
				case 7000:
					at7 = s.LongVel
				}
			}

			Expect(s.LongVel).To(BeNumerically("~", 35.02, 0.05))
			Expect(s.LongVel - at7).To(BeNumerically("<", at7-at6))
			Expect(s.LongVel - at7).To(BeNumerically("<", 1))

			Expect(math.Abs(s.X)).To(BeNumerically("<", 1e-9))
			Expect(s.Y).To(BeNumerically("~", -203.8, 0.5))
			Expect(s.Yaw).To(BeNumerically("~", -math.Pi/2, 1e-12))
			Expect(s.LatVel).To(BeNumerically("~", 0, 1e-12))
		})

		It("gains less speed on a low-grip surface", func() {
			run := func(grip float64) float64 {
				s := dynamo.NewState(0, 0, 0)
				s.GripCoeff = grip
				for i := 0; i < 1000; i++ {
					model.Step(&s, dynamo.Input{Drive: 1})
				}
				return s.LongVel
			}
			Expect(run(1)).To(BeNumerically("~", 4.86, 0.05))
			Expect(run(2)).To(BeNumerically("~", 11.07, 0.05))
		})

		It("reverses slowly from rest", func() {
			s := dynamo.NewState(0, 0, 0)
			for i := 0; i < 3000; i++ {
				model.Step(&s, dynamo.Input{Drive: -1})
			}
			Expect(s.LongVel).To(BeNumerically("~", -9.08, 0.05))
			Expect(s.LongForceRear).To(BeNumerically("<", 0))
		})
	})

	Describe("braking", func() {
		It("slows monotonically and stops without reversing", func() {
			s := dynamo.NewState(0, 0, 0)
			s.LongVel = 20
			prev := s.LongVel
			ticks := 0
			for s.LongVel > 0 && ticks < 2000 {
				model.Step(&s, dynamo.Input{Drive: -1})
				Expect(s.LongVel).To(BeNumerically("<", prev))
				prev = s.LongVel
				ticks++
			}
			Expect(ticks).To(BeNumerically("<", 1000))
			Expect(s.LongVel).To(BeNumerically(">", -0.05))
		})

		It("coasts down under drag and rolling resistance", func() {
			s := dynamo.NewState(0, 0, 0)
			s.LongVel = 20
			prev := s.LongVel
			for i := 0; i < 5000; i++ {
				model.Step(&s, dynamo.Input{})
				Expect(s.LongVel).To(BeNumerically("<=", prev))
				prev = s.LongVel
			}
			Expect(s.LongVel).To(BeNumerically("~", 14.05, 0.05))
		})
	})

	Describe("steering", func() {
		turn := func(steer float64) [][3]float64 {
			s := dynamo.NewState(0, 0, 0)
			var trace [][3]float64
			for i := 0; i < 3000; i++ {
				in := dynamo.Input{Drive: 1}
				if i >= 1000 {
					in.Steering = steer
				}
				model.Step(&s, in)
				trace = append(trace, [3]float64{s.LongVel, s.LatVel, s.YawRate})
			}
			return trace
		}

		It("mirrors the yaw-rate trajectory when the input is mirrored", func() {
			left, right := turn(0.4), turn(-0.4)
			for i := range left {
				Expect(right[i][0]).To(BeNumerically("~", left[i][0], 1e-9))
				Expect(right[i][1]).To(BeNumerically("~", -left[i][1], 1e-9))
				Expect(right[i][2]).To(BeNumerically("~", -left[i][2], 1e-9))
			}
			Expect(left[len(left)-1][2]).To(BeNumerically("<", -1))
		})

		It("settles into a steady turn", func() {
			trace := turn(0.3)
			last := trace[len(trace)-1]
			Expect(last[0]).To(BeNumerically("~", 23.56, 0.05))
			Expect(last[2]).To(BeNumerically("~", -0.879, 0.01))
		})
	})

	Describe("arbitrary inputs", func() {
		It("keeps heading canonical and slip angles clamped", func() {
			rng := rand.New(rand.NewSource(7))
			clampRad := dynamo.Rad(physics.DefaultTuning().SlipClampDeg)
			s := dynamo.NewState(0, 0, 0)
			var in dynamo.Input
			for i := 0; i < 20000; i++ {
				if i%250 == 0 {
					in = dynamo.Input{Steering: rng.Float64()*4 - 2, Drive: rng.Float64()*4 - 2}
				}
				model.Step(&s, in)
				Expect(s.Yaw).To(SatisfyAll(BeNumerically(">", -math.Pi), BeNumerically("<=", math.Pi)))
				Expect(math.Abs(s.SlipFront)).To(BeNumerically("<=", clampRad))
				Expect(math.Abs(s.SlipRear)).To(BeNumerically("<=", clampRad))
			}
			Expect(s.IsValid()).To(BeTrue())
		})

		It("is deterministic for a recorded input sequence", func() {
			rng := rand.New(rand.NewSource(42))
			inputs := make([]dynamo.Input, 6000)
			for i := range inputs {
				inputs[i] = dynamo.Input{Steering: rng.Float64()*2 - 1, Drive: rng.Float64()*2 - 1}
			}
			run := func() dynamo.State {
				m := newModel(physics.GoKartSport(), physics.DefaultTuning())
				s := dynamo.NewState(1, 2, 0.5)
				for _, in := range inputs {
					m.Step(&s, in)
				}
				return s
			}
			Expect(run()).To(Equal(run()))
		})
	})

	Describe("prototype tuning", func() {
		It("drives straight but diverges under sustained steering", func() {
			proto := newModel(physics.GoKartPrototype(), physics.PrototypeTuning())

			s := dynamo.NewState(0, 0, 0)
			for i := 0; i < 8000; i++ {
				proto.Step(&s, dynamo.Input{Drive: 1})
			}
			Expect(s.IsValid()).To(BeTrue())
			Expect(s.LongVel).To(BeNumerically("~", 35.02, 0.1))

			s = dynamo.NewState(0, 0, 0)
			for i := 0; i < 8000 && s.IsValid(); i++ {
				in := dynamo.Input{Drive: 1}
				if i >= 2000 {
					in.Steering = 0.5
				}
				proto.Step(&s, in)
			}
			Expect(s.IsValid()).To(BeFalse())
		})
	})
})
