package ballistics

import "math"

// LaunchAngle returns the low elevation angle, in radians, that puts a
// projectile fired at speed s under gravity g onto a point d away
// horizontally and h higher. It reports false when the point is out of
// range or the inputs are degenerate.
func LaunchAngle(d, h, s, g float64) (float64, bool) {
	if d <= 0 || s <= 0 || g <= 0 {
		return 0, false
	}
	s2 := s * s
	root := s2*s2 - g*(g*d*d+2*h*s2)
	if root < 0 {
		return 0, false
	}
	angle := math.Atan((s2 - math.Sqrt(root)) / (g * d))
	if math.IsNaN(angle) {
		return 0, false
	}
	return angle, true
}

// ElevationOffset is how far above the target the shooter has to aim for a
// flat-fire sight to produce LaunchAngle.
func ElevationOffset(d, h, s, g float64) (float64, bool) {
	angle, ok := LaunchAngle(d, h, s, g)
	if !ok {
		return 0, false
	}
	return d * math.Tan(angle), true
}

// TimeOfFlight is the time a projectile fired at angle with speed s takes to
// cover d horizontally.
func TimeOfFlight(d, angle, s float64) float64 {
	return d / (s * math.Cos(angle))
}
