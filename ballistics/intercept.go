package ballistics

import (
	"math"

	"gosight/camera"
)

const (
	// EarthGravity in world units (cm) per second squared. Projectiles
	// scale it by their gravity scale.
	EarthGravity = 981.0

	rootTolerance = 1e-4
)

// Solution is a predicted intercept: the flight time and where to aim.
type Solution struct {
	Time     float64
	AimPoint camera.Vec3
}

// Gravity returns the acceleration vector for a projectile gravity scale.
func Gravity(scale float64) camera.Vec3 {
	return camera.Vec3{Z: -scale * EarthGravity}
}

// Intercept solves for the time t at which a projectile fired at speed from
// shooter meets a target at target moving with vRel relative to the
// shooter's frame. The returned aim point lies on the launch direction: its
// height is the shooter's plus the elevation offset for the intercept point.
//
// gravity is the projectile's acceleration, pointing down, and enters the
// p·g and v·g terms with a plus sign. That matches the textbook form when
// shooter and target share a height and vRel is horizontal, which is the
// ship-to-ship case this is tuned for.
func Intercept(shooter, target, vRel, gravity camera.Vec3, speed float64) (Solution, bool) {
	if speed <= 0 {
		return Solution{}, false
	}
	pRel := target.Sub(shooter)

	c4 := gravity.Dot(gravity) / 4
	c3 := vRel.Dot(gravity)
	c2 := pRel.Dot(gravity) + vRel.Dot(vRel) - speed*speed
	c1 := 2 * pRel.Dot(vRel)
	c0 := pRel.Dot(pRel)

	t, ok := SmallestPositiveReal(SolveQuartic(c4, c3, c2, c1, c0), rootTolerance)
	if !ok {
		return Solution{}, false
	}

	aim := target.Add(vRel.Scale(t))
	offset, ok := ElevationOffset(camera.Distance2D(shooter, aim), aim.Z-shooter.Z, speed, gravity.Len())
	if !ok {
		return Solution{}, false
	}
	aim.Z = shooter.Z + offset

	if !aim.IsFinite() || math.IsNaN(t) {
		return Solution{}, false
	}
	return Solution{Time: t, AimPoint: aim}, true
}
