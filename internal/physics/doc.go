// Package physics implements the go-kart vehicle dynamics pipeline.
//
// A [Model] runs seven stages once per tick, in order:
//
//   - [SlipAngleLinear]: kinematic slip angles and slip-angle rates
//   - [TyreRelaxation]: first-order lag into effective slip angles
//   - [RearWheelDrive]: throttle, brake and reverse forces
//   - [PacejkaSimple]: saturating lateral tire forces
//   - [FrictionLimiter]: load transfer, friction ellipse, alignment, drag
//   - [LocalDynamic]: local-frame accelerations
//   - a [dynamo.Integrator] from the integrators package
//
// Stages are built from a [Tuning]; vehicle constants come from an archetype
// such as [GoKartSport].
//
//	p, _ := physics.Archetype("gokart-sport")
//	stages, _ := physics.DefaultStages(physics.DefaultTuning())
//	m, _ := physics.NewModel(p, stages, 0.001)
//
// Nothing in this package blocks, allocates per tick or logs.
package physics
