// Package control provides input sources for the vehicle.
//
// Sources implement the [dynamo.Controller] interface and return the
// normalized steering and drive command for each tick:
//
//   - [None]: coast, zero input
//   - [Constant]: fixed steering and drive
//   - [Manual]: inputs written by another goroutine (keyboard, UI)
//   - [Script]: keyframed test drives with linear interpolation
//   - [Cruise]: PID speed hold wrapped around a steering source
//
// # Usage
//
//	cruise := control.NewCruise(control.NewPID(0.5, 0.1, 0, 15), control.NewNone())
//	in := cruise.Compute(&state, t)
//
// Only [Manual] is safe for concurrent use.
package control
