// Package dynamo provides the core primitives of the vehicle dynamics simulator.
//
// The package defines the data model and the stage contracts of the
// per-tick pipeline:
//
//   - [Params]: immutable physical constants of one vehicle archetype
//   - [State]: mutable dynamic state of one vehicle instance
//   - [Input]: normalized steering and drive command
//   - [SlipModel], [RelaxationModel], [DriveModel], [LateralForceModel],
//     [ForceLimiter], [AccelerationModel], [Integrator]: pipeline stages
//   - [Controller]: source of inputs for each tick
//
// # Example
//
//	p, _ := dynamo.NewParams(physics.GoKartSport())
//	model, _ := physics.NewModel(p, physics.DefaultStages(physics.DefaultTuning()), 0.001)
//	s := dynamo.NewState(0, 0, 0)
//	model.Step(&s, dynamo.Input{Drive: 1})
//
// # Thread Safety
//
// State is a plain value with no synchronization. A State is owned by exactly
// one writer; concurrent readers must go through a published copy (see the
// sim package).
package dynamo
