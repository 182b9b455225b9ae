package handlers

import (
	"gosight/camera"
	"gosight/directory"
	"gosight/remote"
	"gosight/render"
	"gosight/world"
)

const (
	playerHalfHeight = 110.0
	playerAspect     = 0.65
	damageZoneCull   = 50000.0
	cookingCull      = 4500.0
)

// Player boxes another player from head to feet.
type Player struct{}

func (Player) Handle(env *world.Env, rec directory.EntityRecord) {
	if rec.Address == env.Pose.Viewer().Pawn {
		return
	}
	loc, err := env.ActorLocation(rec.Address)
	if err != nil {
		return
	}
	pos := loc.Location.Vec3()

	head, ok := env.Project(camera.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z + playerHalfHeight})
	if !ok {
		return
	}
	feet, ok := env.Project(camera.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z - playerHalfHeight})
	if !ok {
		return
	}
	h := feet.Y - head.Y
	env.Draw.Push(render.Frame(head.X, head.Y, h*playerAspect, h, render.Red))
}

// Treasure labels loot with its raw name, or with Label when set.
type Treasure struct {
	Label string
}

func (t Treasure) Handle(env *world.Env, rec directory.EntityRecord) {
	if !env.Params.Params().Treasure {
		return
	}
	pos, _, ok := locate(env, rec.Address)
	if !ok {
		return
	}
	label := t.Label
	if label == "" {
		label = rec.Name
	}
	env.Emit(pos, render.Label(0, 0, label, 8, render.White))
}

// DamageZone marks a damaged hull section that still needs repair.
type DamageZone struct{}

func (DamageZone) Handle(env *world.Env, rec directory.EntityRecord) {
	pos, dist, ok := locate(env, rec.Address)
	if !ok || dist > damageZoneCull {
		return
	}
	level, err := remote.Read[int32](env.Mem, env.Off(rec.Address, env.Layout.DamageZone.DamageLevel))
	if err != nil || level <= 0 {
		return
	}
	env.Emit(pos, render.Label(0, 0, "H", 14, render.White))
}

type CookState string

const (
	NotCooked CookState = "NotCooked"
	Cooked    CookState = "Cooked"
	Burned    CookState = "Burned"
)

// CookStateOf maps the visible cooked extent of food to its state.
func CookStateOf(extent float32) CookState {
	switch {
	case extent < 1:
		return NotCooked
	case extent <= 2:
		return Cooked
	default:
		return Burned
	}
}

// CookingPot shows the state of food cooking on a nearby pot.
type CookingPot struct{}

func (CookingPot) Handle(env *world.Env, rec directory.EntityRecord) {
	pos, dist, ok := locate(env, rec.Address)
	if !ok || dist > cookingCull {
		return
	}
	c := env.Layout.Cooking
	cooker, err := remote.ReadPointer(env.Mem, env.Off(rec.Address, c.CookerComponent))
	if err != nil {
		return
	}
	cooking, err := remote.Read[uint8](env.Mem, env.Off(cooker, c.CookingState))
	if err != nil || cooking == 0 {
		return
	}
	extent, err := remote.Read[float32](env.Mem, env.Off(cooker, c.CookingState+c.VisibleCookedExtent))
	if err != nil {
		return
	}
	env.Emit(pos, render.Label(0, 0, string(CookStateOf(extent)), 18, render.White))
}
