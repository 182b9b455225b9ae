package ballistics

import (
	"math"

	"gosight/camera"
)

const (
	circularStep    = 0.1
	circularSteps   = 500
	circularRange   = 600.0 // metres
	radiusTightness = 0.98
	unitsPerMetre   = 100.0
)

// Turn describes a target ship that is turning. Positions and velocities are
// in world units, YawRate in degrees per second.
type Turn struct {
	Shooter         camera.Vec3
	ShooterVelocity camera.Vec3
	Target          camera.Vec3
	TargetVelocity  camera.Vec3
	YawRate         float64
	Speed           float64
	GravityScale    float64
}

// PredictCircular assumes the target keeps turning at its current rate and
// steps time forward in 0.1 s increments, up to 50 s, until a shot fired now
// would arrive no later than the target reaches its arc position. It returns
// the elevated aim point of the first such step in world units.
//
// Work is done in metres. Zero yaw rate, a target beyond 600 m or no
// crossover within the cap give no prediction. A step the projectile cannot
// reach is skipped.
func PredictCircular(in Turn) (camera.Vec3, bool) {
	shooter := in.Shooter.Scale(1 / unitsPerMetre)
	target := in.Target.Scale(1 / unitsPerMetre)
	drift := in.ShooterVelocity.Scale(1 / unitsPerMetre)
	vel := in.TargetVelocity.Scale(1 / unitsPerMetre)
	speed := in.Speed / unitsPerMetre
	g := in.GravityScale * EarthGravity / unitsPerMetre

	if camera.Distance2D(shooter, target) >= circularRange {
		return camera.Vec3{}, false
	}

	omega := in.YawRate * math.Pi / 180
	if omega == 0 || math.IsNaN(omega) {
		return camera.Vec3{}, false
	}

	radius := vel.Len2D() / omega * radiusTightness
	heading := math.Atan2(vel.Y, vel.X)
	center := camera.Vec3{
		X: target.X + radius*math.Cos(heading+math.Pi/2),
		Y: target.Y + radius*math.Sin(heading+math.Pi/2),
	}
	theta := heading - math.Pi/2

	for i := 0; i < circularSteps; i++ {
		t := float64(i) * circularStep
		pos := camera.Vec3{
			X: center.X + radius*math.Cos(omega*t+theta) - drift.X*t,
			Y: center.Y + radius*math.Sin(omega*t+theta) - drift.Y*t,
			Z: target.Z,
		}

		d := camera.Distance2D(shooter, pos)
		angle, ok := LaunchAngle(d, pos.Z-shooter.Z, speed, g)
		if !ok {
			continue
		}
		if TimeOfFlight(d, angle, speed) <= t {
			pos.Z = shooter.Z + d*math.Tan(angle)
			aim := pos.Scale(unitsPerMetre)
			if !aim.IsFinite() {
				return camera.Vec3{}, false
			}
			return aim, true
		}
	}
	return camera.Vec3{}, false
}
