package handlers

import (
	"math"
	"strings"

	"gosight/camera"
	"gosight/directory"
	"gosight/pod"
	"gosight/process"
	"gosight/remote"
	"gosight/render"
	"gosight/world"
)

// IslandService remembers where the island service lives. Treasure maps need
// it to find their island.
type IslandService struct{}

func (IslandService) Handle(env *world.Env, rec directory.EntityRecord) {
	if env.Islands.IslandService() != rec.Address {
		env.Log.Infoln("island service at", rec.Address.ToString())
	}
	env.Islands.SetIslandService(rec.Address)
}

// mapScale converts the capture's ortho width into world units per texture.
const mapScale = 1.041669

// DigSpot converts a mark in normalised map texture coordinates into the
// world point to dig at. The texture is rotated by rotation degrees
// relative to the capture camera.
func DigSpot(mark camera.Vec2, rotation float64, p remote.FWorldMapIslandDataCaptureParams) camera.Vec3 {
	theta := (180 + rotation) * math.Pi / 180
	sin, cos := math.Sincos(theta)
	dx, dy := mark.X-0.5, mark.Y-0.5
	rx := cos*dx - sin*dy
	ry := sin*dx + cos*dy

	scale := float64(p.CameraOrthoWidth) / mapScale
	ws := p.WorldSpaceCameraPosition.Vec3()
	return camera.Vec3{X: ws.X - rx*scale, Y: ws.Y - ry*scale}
}

// TreasureMap finds the island a held treasure map points at, labels it and
// marks every X on the map at its dig spot.
type TreasureMap struct{}

func (TreasureMap) Handle(env *world.Env, rec directory.EntityRecord) {
	if !env.Params.Params().XMaps {
		return
	}
	svc := env.Islands.IslandService()
	if svc.IsNull() {
		return
	}

	tm := env.Layout.TreasureMap
	texture, err := remote.Read[remote.TArray](env.Mem, env.Off(rec.Address, tm.TexturePath))
	if err != nil || !texture.Valid() {
		return
	}
	path, err := remote.ReadWideString(env.Mem, texture.DataAddress())
	if err != nil || path == "" {
		return
	}

	island, name, ok := findIsland(env, svc, path)
	if !ok {
		env.Log.Debugln("no island for map", path)
		return
	}

	if center, ok := islandCenter(env, svc, name); ok {
		env.Emit(center, render.Label(0, 0, "TargetIsland", 18, render.White))
	}

	is := env.Layout.Islands
	wmd, err := remote.ReadPointer(env.Mem, env.Off(island, is.WorldMapData))
	if err != nil {
		return
	}
	capture, err := remote.Read[remote.FWorldMapIslandDataCaptureParams](env.Mem, env.Off(wmd, is.CaptureParams))
	if err != nil {
		return
	}
	rotation, err := remote.Read[float32](env.Mem, env.Off(rec.Address, tm.MarksRotation))
	if err != nil {
		return
	}

	for _, m := range readMarks(env, rec.Address) {
		spot := DigSpot(camera.Vec2{X: float64(m.X), Y: float64(m.Y)}, float64(rotation), capture)
		env.Emit(spot, render.Label(0, 0, "X", 18, render.Red))
	}
}

// findIsland returns the island data entry whose name appears in the map's
// texture path.
func findIsland(env *world.Env, svc process.ProcessMemoryAddress, path string) (process.ProcessMemoryAddress, string, bool) {
	is := env.Layout.Islands
	asset, err := remote.ReadPointer(env.Mem, env.Off(svc, is.DataAsset))
	if err != nil {
		return 0, "", false
	}
	arr, err := remote.Read[remote.TArray](env.Mem, env.Off(asset, is.DataEntries))
	if err != nil {
		return 0, "", false
	}
	entries, err := remote.ReadPointerArray(env.Mem, arr, env.Layout.Limits.MaxIslands)
	if err != nil {
		env.Log.Debugln("island entries", err)
		return 0, "", false
	}

	for _, e := range entries {
		if e.IsNull() {
			continue
		}
		id, err := remote.Read[int32](env.Mem, env.Off(e, is.Name))
		if err != nil {
			continue
		}
		name, ok := env.Names.Resolve(id)
		if ok && strings.Contains(path, name) {
			return e, name, true
		}
	}
	return 0, "", false
}

// islandCenter looks name up in the service's island array, read in one go.
func islandCenter(env *world.Env, svc process.ProcessMemoryAddress, name string) (camera.Vec3, bool) {
	is := env.Layout.Islands
	arr, err := remote.Read[remote.TArray](env.Mem, env.Off(svc, is.IslandArray))
	if err != nil || !arr.Valid() || arr.Count == 0 || arr.Count > env.Layout.Limits.MaxIslands {
		return camera.Vec3{}, false
	}
	raw, err := env.Mem.ReadMemory(arr.DataAddress(), process.ProcessMemorySize(uint64(arr.Count)*is.IslandStride))
	if err != nil {
		return camera.Vec3{}, false
	}

	for i := uint64(0); i < uint64(arr.Count); i++ {
		entry := raw[i*is.IslandStride : (i+1)*is.IslandStride]
		id, err := pod.Decode[int32](entry)
		if err != nil {
			continue
		}
		if n, ok := env.Names.Resolve(id); !ok || n != name {
			continue
		}
		v, err := pod.Decode[remote.FVector](entry[is.BoundsCenter:])
		if err != nil {
			return camera.Vec3{}, false
		}
		return v.Vec3(), true
	}
	return camera.Vec3{}, false
}

func readMarks(env *world.Env, treasureMap process.ProcessMemoryAddress) []remote.FVector {
	tm := env.Layout.TreasureMap
	arr, err := remote.Read[remote.TArray](env.Mem, env.Off(treasureMap, tm.Marks))
	if err != nil || !arr.Valid() || arr.Count == 0 || arr.Count > env.Layout.Limits.MaxMarks {
		return nil
	}
	raw, err := env.Mem.ReadMemory(arr.DataAddress(), process.ProcessMemorySize(uint64(arr.Count)*tm.MarkStride))
	if err != nil {
		return nil
	}
	marks := make([]remote.FVector, 0, arr.Count)
	for i := uint64(0); i < uint64(arr.Count); i++ {
		v, err := pod.Decode[remote.FVector](raw[i*tm.MarkStride:])
		if err != nil {
			continue
		}
		marks = append(marks, v)
	}
	return marks
}
