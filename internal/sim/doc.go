// Package sim runs the vehicle model.
//
// [Simulator] steps a model headless and deterministically, as fast as the
// CPU allows; [Sweep] fans several independent runs out over goroutines.
// [Scheduler] ticks a model in wall-clock real time on a dedicated goroutine
// and publishes a [Snapshot] after every tick for concurrent readers.
package sim
