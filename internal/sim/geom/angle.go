package geom

import "math"

const TwoPi = 2 * math.Pi

// NormalizeAngle wraps a radian angle into [0, 2pi).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}

// CircularDistance is the absolute angular distance between a and b, in [0, pi].
func CircularDistance(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	if d > math.Pi {
		d = TwoPi - d
	}
	return d
}
