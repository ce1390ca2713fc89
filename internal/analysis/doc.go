// Package analysis inspects recorded or generated kart trajectories.
//
//   - [PowerSpectrum], [DominantFrequency]: FFT of a telemetry channel, used to
//     spot lightly damped yaw oscillation
//   - [DivergenceRate]: growth rate of a small velocity perturbation, positive
//     for a pipeline tuning that blows up
//   - [SteeringSweep]: steady-state yaw response against steering input
//   - [NewPhasePortrait]: two telemetry channels against each other
//
// Spectral work uses github.com/mjibson/go-dsp.
package analysis
