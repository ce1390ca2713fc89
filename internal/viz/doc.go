// Package viz renders a running kart in the terminal with Bubble Tea.
//
// [Dashboard] is a consumer of a real-time [sim.Scheduler]: it samples the
// published snapshot at its own frame rate and writes driver inputs back
// through SetInput. It never steps the model itself.
//
// # Key Bindings
//
//	←/→ a/d  - steer (latched, 0.1 per press)
//	↑/↓ w/s  - throttle / brake-reverse (latched, 0.25 per press)
//	c        - centre steering
//	x        - release throttle
//	space    - centre steering and release throttle
//	r        - respawn
//	f        - toggle follow camera
//	+/-      - zoom
//	t        - cycle theme
//	?        - help
//	q        - quit
package viz
