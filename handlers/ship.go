package handlers

import (
	"fmt"
	"math"
	"strings"

	"gosight/ballistics"
	"gosight/camera"
	"gosight/directory"
	"gosight/process"
	"gosight/remote"
	"gosight/render"
	"gosight/world"
)

const (
	shipCull        = 60000.0
	ownShipRadius   = 5000.0
	shipLabelHeight = 1000.0
	quarticMin      = 5000.0
	quarticMax      = 50000.0
)

// Ship labels a ship with its distance in metres. The ship the viewer is on
// is recognised by proximity and its movement is remembered as the
// platform's. Other ships get aim predictions while the viewer mans a
// cannon.
type Ship struct{}

func (Ship) Handle(env *world.Env, rec directory.EntityRecord) {
	pos, dist, ok := locate(env, rec.Address)
	if !ok || dist >= shipCull {
		return
	}

	if dist < ownShipRadius {
		env.Platform.SetPlatform(env.Movement(rec.Address))
	} else if env.Params.Params().Prediction {
		predictCannon(env, rec.Address, pos)
	}

	top := pos
	top.Z += shipLabelHeight
	env.Emit(top, render.Label(0, 0, fmt.Sprintf("%.0f", math.Round(dist/100)), 20, render.White))
}

// mannedCannon returns the cannon actor the viewer is interacting with.
func mannedCannon(env *world.Env, pawn process.ProcessMemoryAddress) (process.ProcessMemoryAddress, bool) {
	if pawn.IsNull() {
		return 0, false
	}
	in := env.Layout.Interaction
	actor, err := remote.ReadChain(env.Mem, pawn, in.Component, in.CurrentInteractable, in.ParentActor)
	if err != nil {
		return 0, false
	}
	name, ok := env.Names.ResolveAt(actor)
	if !ok || !strings.Contains(name, "Cannon") {
		return 0, false
	}
	return actor, true
}

func predictCannon(env *world.Env, ship process.ProcessMemoryAddress, shipPos camera.Vec3) {
	viewer := env.Pose.Viewer()
	cannon, ok := mannedCannon(env, viewer.Pawn)
	if !ok {
		return
	}

	proj, err := remote.Read[remote.ACannon](env.Mem, env.Off(cannon, env.Layout.Cannon.Projectile))
	if err != nil {
		env.Log.Debugln("cannon", cannon.ToString(), err)
		return
	}
	speed := float64(proj.ProjectileSpeed)
	scale := float64(proj.ProjectileGravityScale)

	target := env.Movement(ship)
	own := env.Platform.Platform()
	shooter := viewer.Pose.Position

	aim, ok := ballistics.PredictCircular(ballistics.Turn{
		Shooter:         shooter,
		ShooterVelocity: own.LinearVelocity.Vec3(),
		Target:          shipPos,
		TargetVelocity:  target.LinearVelocity.Vec3(),
		YawRate:         float64(target.AngularVelocity.Z),
		Speed:           speed,
		GravityScale:    scale,
	})
	if ok {
		env.Emit(aim, render.Marker(0, 0, 10, render.Blue))
	}

	d := camera.Distance2D(shooter, shipPos)
	if d <= quarticMin || d >= quarticMax {
		return
	}
	vRel := target.LinearVelocity.Vec3().Sub(own.LinearVelocity.Vec3())
	sol, ok := ballistics.Intercept(shooter, shipPos, vRel, ballistics.Gravity(scale), speed)
	if ok {
		env.Emit(sol.AimPoint, render.Marker(0, 0, 10, render.Goldenrod))
	}
}
