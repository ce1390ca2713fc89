package dynamo

import "math"

// WrapAngle maps a to the half-open range (-pi, pi].
func WrapAngle(a float64) float64 {
	r := math.Mod(a+math.Pi, 2*math.Pi)
	if r <= 0 {
		r += 2 * math.Pi
	}
	w := r - math.Pi
	if w <= -math.Pi {
		w = math.Pi
	}
	return w
}

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Sign returns -1, 0 or 1. NaN maps to 0.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
