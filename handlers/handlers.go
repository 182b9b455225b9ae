// Package handlers draws one kind of entity each. Handlers read what they
// need through the world capabilities, cull by distance, project and push at
// most a few instructions. A failed read means nothing is drawn this tick.
package handlers

import (
	"gosight/camera"
	"gosight/classify"
	"gosight/directory"
	"gosight/process"
	"gosight/render"
	"gosight/world"
)

// Keys of every ship flavour, player-crewed and AI.
var ShipKeys = []string{
	"SmallShipTemplate", "SmallShipNetProxy",
	"MediumShipTemplate", "MediumShipNetProxy",
	"LargeShipTemplate", "LargeShipNetProxy",
	"AISmallShipTemplate", "AISmallShipNetProxy",
	"AILargeShipTemplate", "AILargeShipNetProxy",
}

var TreasureKeys = []string{"TreasureChest", "BountyRewardSkull", "TreasureArtifact"}

// Registry returns the handler table used by the scan loops.
func Registry() *classify.Registry {
	return classify.NewRegistry().
		RegisterAll(Ship{}, ShipKeys...).
		Register("PlayerPirate", Player{}).
		RegisterAll(Treasure{}, TreasureKeys...).
		Register("DamageZone", DamageZone{}).
		Register("ShipCookingPot", CookingPot{}).
		Fallback(classify.Rule{Name: "Gunpowder", Match: classify.Contains("Gunpowder"), Handler: Treasure{Label: "Gunpowder"}}).
		Fallback(classify.Rule{Name: "DamageZone", Match: classify.Contains("DamageZone"), Handler: DamageZone{}}).
		Fallback(classify.Rule{Name: "IslandService", Match: classify.Contains("IslandService"), Handler: IslandService{}}).
		Fallback(classify.Rule{Name: "BP_TreasureMap_C", Match: classify.Contains("BP_TreasureMap_C"), Handler: TreasureMap{}})
}

// locate reads the actor's position and its distance from the viewer.
func locate(env *world.Env, actor process.ProcessMemoryAddress) (camera.Vec3, float64, bool) {
	loc, err := env.ActorLocation(actor)
	if err != nil {
		env.Log.Debugln("location", actor.ToString(), err)
		return camera.Vec3{}, 0, false
	}
	pos := loc.Location.Vec3()
	return pos, env.Pose.Viewer().Pose.DistanceTo(pos), true
}


// DebugRadius is how close an entity has to be for its raw name to be drawn
// in debug mode.
const DebugRadius = 1000.0

// DebugName labels any nearby entity with its raw engine name.
func DebugName(env *world.Env, rec directory.EntityRecord) {
	pos, dist, ok := locate(env, rec.Address)
	if !ok || dist >= DebugRadius {
		return
	}
	env.Emit(pos, render.Label(0, 0, rec.Name, 8, render.White))
}
