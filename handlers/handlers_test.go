package handlers

import (
	"testing"
	"unicode/utf16"

	"gosight/camera"
	"gosight/classify"
	"gosight/control"
	"gosight/directory"
	"gosight/process"
	"gosight/remote"
	"gosight/remote/remotetest"
	"gosight/render"
	"gosight/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullHD = camera.Viewport{Width: 1920, Height: 1080}

type fixture struct {
	tg  *remotetest.Target
	tr  *world.Tracked
	q   *render.Queue
	dir *directory.Directory
	env *world.Env
}

// newFixture puts the viewer at the origin looking down +X with a 90 degree
// field of view.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	tg := remotetest.Must(remotetest.New())
	tr := world.NewTracked(fullHD, control.Defaults())
	tr.SetViewer(world.Viewer{Pose: camera.Pose{FOV: 90}, Viewport: fullHD})
	q := render.NewQueue(16)
	dir := directory.New(tg.Acc, "test")

	return &fixture{
		tg:  tg,
		tr:  tr,
		q:   q,
		dir: dir,
		env: &world.Env{
			Mem:      tg.Acc,
			Layout:   tg.Layout,
			Names:    dir,
			Draw:     q,
			Pose:     tr,
			Platform: tr,
			Params:   tr,
			Islands:  tr,
			Log:      logger.NewLogger(coloransi.Color(coloransi.White, coloransi.Black, "handlers-test")),
		},
	}
}

func (f *fixture) record(t *testing.T, actor process.ProcessMemoryAddress) directory.EntityRecord {
	t.Helper()
	name, ok := f.dir.ResolveAt(actor)
	require.True(t, ok)
	return directory.EntityRecord{Address: actor, Name: name}
}

func (f *fixture) handle(t *testing.T, h classify.Handler, actor process.ProcessMemoryAddress) []render.DrawInstruction {
	t.Helper()
	h.Handle(f.env, f.record(t, actor))
	return f.q.Swap(nil)
}

func (f *fixture) put(addr process.ProcessMemoryAddress, v any) {
	if err := f.tg.Arena.Put(addr, v); err != nil {
		panic(err)
	}
}

func (f *fixture) ptr(addr, target process.ProcessMemoryAddress) {
	if err := f.tg.Arena.PutPointer(addr, target); err != nil {
		panic(err)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := Registry()

	cases := []struct {
		name string
		key  string
		kind classify.MatchKind
	}{
		{"BP_SmallShipTemplate_C", "SmallShipTemplate", classify.Exact},
		{"BP_AILargeShipNetProxy_C", "AILargeShipNetProxy", classify.Exact},
		{"BP_PlayerPirate_C", "PlayerPirate", classify.Exact},
		{"BP_TreasureChest_ItemInfo_C", "TreasureChest", classify.Exact},
		{"BP_ShipCookingPot_C", "ShipCookingPot", classify.Exact},
		{"BP_MerchantCrate_GunpowderBarrel_C", "Gunpowder", classify.Fallback},
		{"BP_Hull_DamageZone_C", "DamageZone", classify.Fallback},
		{"BP_IslandService_C", "IslandService", classify.Fallback},
		{"BP_TreasureMap_C", "BP_TreasureMap_C", classify.Fallback},
		{"BP_Rowboat_C", "", classify.NoMatch},
	}
	for _, c := range cases {
		key, _, kind := reg.Lookup(c.name)
		assert.Equal(t, c.kind, kind, c.name)
		assert.Equal(t, c.key, key, c.name)
	}

	// first matching rule wins
	key, _, _ := reg.Lookup("Gunpowder_DamageZone")
	assert.Equal(t, "Gunpowder", key)
}

func TestShip_LabelsDistanceInMetres(t *testing.T) {
	f := newFixture(t)
	ship := f.tg.AddActor("BP_LargeShipTemplate_C", remote.FVector{X: 10000})

	out := f.handle(t, Ship{}, ship)
	require.Len(t, out, 1)
	assert.Equal(t, "100", out[0].Label)
	assert.EqualValues(t, 20, out[0].FontSize)
	assert.Equal(t, render.White, out[0].Color)
	assert.InDelta(t, 960, out[0].X, 1e-6)
	assert.Less(t, out[0].Y, 540.0)
}

func TestShip_BeyondCullDrawsNothing(t *testing.T) {
	f := newFixture(t)
	ship := f.tg.AddActor("BP_LargeShipTemplate_C", remote.FVector{X: 70000})
	assert.Empty(t, f.handle(t, Ship{}, ship))
}

func TestShip_NearbyBecomesPlatform(t *testing.T) {
	f := newFixture(t)
	ship := f.tg.AddActor("BP_SmallShipTemplate_C", remote.FVector{X: 3000})
	f.put(f.tg.Off(ship, f.tg.Layout.Actor.ReplicatedMovement), remote.FRepMovement{
		LinearVelocity: remote.FVector{X: 250, Y: -40},
	})

	out := f.handle(t, Ship{}, ship)
	require.Len(t, out, 1)
	assert.Equal(t, "30", out[0].Label)
	assert.Equal(t, float32(250), f.tr.Platform().LinearVelocity.X)
	assert.Equal(t, float32(-40), f.tr.Platform().LinearVelocity.Y)
}

// manCannon makes the viewer's pawn interact with a cannon.
func (f *fixture) manCannon(name string, speed, gravityScale float32) {
	lay := f.tg.Layout
	pawn := f.tg.AddActor("BP_PlayerPirate_C", remote.FVector{})
	component := f.tg.Arena.Alloc(0x800)
	f.ptr(f.tg.Off(pawn, lay.Interaction.Component), component)
	interactable := f.tg.Arena.Alloc(0x100)
	f.ptr(f.tg.Off(component, lay.Interaction.CurrentInteractable), interactable)
	cannon := f.tg.AddActor(name, remote.FVector{X: 10})
	f.ptr(f.tg.Off(interactable, lay.Interaction.ParentActor), cannon)
	f.put(f.tg.Off(cannon, lay.Cannon.Projectile), remote.ACannon{ProjectileSpeed: speed, ProjectileGravityScale: gravityScale})

	v := f.tr.Viewer()
	v.Pawn = pawn
	f.tr.SetViewer(v)
}

func TestShip_CannonPrediction(t *testing.T) {
	f := newFixture(t)
	f.manCannon("BP_Cannon_C", 10000, 1)
	ship := f.tg.AddActor("BP_MediumShipTemplate_C", remote.FVector{X: 20000})

	out := f.handle(t, Ship{}, ship)
	require.Len(t, out, 2)

	marker := out[0]
	assert.Equal(t, render.Circle, marker.Style)
	assert.Equal(t, render.Goldenrod, marker.Color)
	assert.EqualValues(t, 10, marker.Width)
	assert.InDelta(t, 960, marker.X, 1e-6)
	// aimed above the hull
	assert.Less(t, marker.Y, 540.0)

	assert.Equal(t, "200", out[1].Label)
}

func TestShip_CircularPredictionWhileTurning(t *testing.T) {
	f := newFixture(t)
	f.manCannon("BP_Cannon_C", 10000, 1)
	ship := f.tg.AddActor("BP_MediumShipTemplate_C", remote.FVector{X: 20000})
	f.put(f.tg.Off(ship, f.tg.Layout.Actor.ReplicatedMovement), remote.FRepMovement{
		LinearVelocity:  remote.FVector{Y: 500},
		AngularVelocity: remote.FVector{Z: 5},
	})

	out := f.handle(t, Ship{}, ship)
	var styles []render.Style
	var colors []string
	for _, d := range out {
		styles = append(styles, d.Style)
		colors = append(colors, d.Color.Hex())
	}
	assert.Contains(t, colors, render.Blue.Hex())
	assert.Contains(t, colors, render.Goldenrod.Hex())
	assert.Equal(t, render.Text, styles[len(styles)-1])
}

func TestShip_NoPredictionWithoutCannon(t *testing.T) {
	f := newFixture(t)
	f.manCannon("BP_Wheel_C", 10000, 1)
	ship := f.tg.AddActor("BP_MediumShipTemplate_C", remote.FVector{X: 20000})
	assert.Len(t, f.handle(t, Ship{}, ship), 1)

	f = newFixture(t)
	f.manCannon("BP_Cannon_C", 10000, 1)
	p := control.Defaults()
	p.Prediction = false
	f.tr.SetParams(p)
	ship = f.tg.AddActor("BP_MediumShipTemplate_C", remote.FVector{X: 20000})
	assert.Len(t, f.handle(t, Ship{}, ship), 1)
}

func TestPlayer_Frame(t *testing.T) {
	f := newFixture(t)
	player := f.tg.AddActor("BP_PlayerPirate_C", remote.FVector{X: 2000})

	out := f.handle(t, Player{}, player)
	require.Len(t, out, 1)
	d := out[0]
	assert.Equal(t, render.Box, d.Style)
	assert.Equal(t, render.Red, d.Color)
	assert.EqualValues(t, 1, d.FontSize)
	assert.InDelta(t, 960, d.X, 1e-6)
	assert.InDelta(t, 540-110*960/2000.0, d.Y, 1e-6)
	assert.InDelta(t, 2*110*960/2000.0, d.Height, 1e-6)
	assert.InDelta(t, d.Height*0.65, d.Width, 1e-9)
}

func TestPlayer_SkipsSelf(t *testing.T) {
	f := newFixture(t)
	player := f.tg.AddActor("BP_PlayerPirate_C", remote.FVector{X: 2000})
	v := f.tr.Viewer()
	v.Pawn = player
	f.tr.SetViewer(v)

	assert.Empty(t, f.handle(t, Player{}, player))
}

func TestTreasure(t *testing.T) {
	f := newFixture(t)
	chest := f.tg.AddActor("BP_TreasureChest_C", remote.FVector{X: 1000})
	barrel := f.tg.AddActor("BP_MerchantCrate_GunpowderBarrel_C", remote.FVector{X: 1000, Y: 100})

	out := f.handle(t, Treasure{}, chest)
	require.Len(t, out, 1)
	assert.Equal(t, "BP_TreasureChest_C", out[0].Label)
	assert.EqualValues(t, 8, out[0].FontSize)

	out = f.handle(t, Treasure{Label: "Gunpowder"}, barrel)
	require.Len(t, out, 1)
	assert.Equal(t, "Gunpowder", out[0].Label)

	p := control.Defaults()
	p.Treasure = false
	f.tr.SetParams(p)
	assert.Empty(t, f.handle(t, Treasure{}, chest))
}

func TestDamageZone(t *testing.T) {
	f := newFixture(t)
	off := f.tg.Layout.DamageZone.DamageLevel

	hole := f.tg.AddActor("BP_Hull_DamageZone_C", remote.FVector{X: 1000})
	f.put(f.tg.Off(hole, off), int32(2))
	out := f.handle(t, DamageZone{}, hole)
	require.Len(t, out, 1)
	assert.Equal(t, "H", out[0].Label)
	assert.EqualValues(t, 14, out[0].FontSize)

	intact := f.tg.AddActor("BP_Hull_DamageZone_C", remote.FVector{X: 1000})
	assert.Empty(t, f.handle(t, DamageZone{}, intact))

	far := f.tg.AddActor("BP_Hull_DamageZone_C", remote.FVector{X: 60000})
	f.put(f.tg.Off(far, off), int32(1))
	assert.Empty(t, f.handle(t, DamageZone{}, far))
}

func TestCookStateOf(t *testing.T) {
	assert.Equal(t, NotCooked, CookStateOf(0))
	assert.Equal(t, NotCooked, CookStateOf(0.99))
	assert.Equal(t, Cooked, CookStateOf(1))
	assert.Equal(t, Cooked, CookStateOf(2))
	assert.Equal(t, Burned, CookStateOf(2.01))
}

func TestCookingPot(t *testing.T) {
	f := newFixture(t)
	c := f.tg.Layout.Cooking

	pot := f.tg.AddActor("BP_ShipCookingPot_C", remote.FVector{X: 1000})
	cooker := f.tg.Arena.Alloc(0x200)
	f.ptr(f.tg.Off(pot, c.CookerComponent), cooker)

	// nothing on the pot
	assert.Empty(t, f.handle(t, CookingPot{}, pot))

	f.put(f.tg.Off(cooker, c.CookingState), uint8(1))
	f.put(f.tg.Off(cooker, c.CookingState+c.VisibleCookedExtent), float32(1.5))
	out := f.handle(t, CookingPot{}, pot)
	require.Len(t, out, 1)
	assert.Equal(t, "Cooked", out[0].Label)
	assert.EqualValues(t, 18, out[0].FontSize)

	far := f.tg.AddActor("BP_ShipCookingPot_C", remote.FVector{X: 5000})
	f.ptr(f.tg.Off(far, c.CookerComponent), cooker)
	assert.Empty(t, f.handle(t, CookingPot{}, far))
}

func TestIslandService_Records(t *testing.T) {
	f := newFixture(t)
	svc := f.tg.AddActor("BP_IslandService_C", remote.FVector{})

	assert.Empty(t, f.handle(t, IslandService{}, svc))
	assert.Equal(t, svc, f.tr.IslandService())
}

func TestDigSpot(t *testing.T) {
	p := remote.FWorldMapIslandDataCaptureParams{
		WorldSpaceCameraPosition: remote.FVector{X: 5000, Y: -2000, Z: 900},
		CameraOrthoWidth:         1041.669,
	}

	center := DigSpot(camera.Vec2{X: 0.5, Y: 0.5}, 0, p)
	assert.InDelta(t, 5000, center.X, 1e-6)
	assert.InDelta(t, -2000, center.Y, 1e-6)
	assert.Zero(t, center.Z)

	east := DigSpot(camera.Vec2{X: 1, Y: 0.5}, 0, p)
	assert.InDelta(t, 5500, east.X, 1e-3)
	assert.InDelta(t, -2000, east.Y, 1e-3)

	turned := DigSpot(camera.Vec2{X: 1, Y: 0.5}, 90, p)
	assert.InDelta(t, 5000, turned.X, 1e-3)
	assert.InDelta(t, -1500, turned.Y, 1e-3)
}

// islandWorld installs an island service that knows two islands and a
// treasure map pointing at one of them. It returns the map actor.
func (f *fixture) islandWorld(t *testing.T) process.ProcessMemoryAddress {
	t.Helper()
	lay := f.tg.Layout
	is := lay.Islands
	tm := lay.TreasureMap

	svc := f.tg.AddActor("BP_IslandService_C", remote.FVector{})
	f.tr.SetIslandService(svc)

	plunder := f.tg.Intern("PlunderOutpost")
	crooks := f.tg.Intern("CrooksHollow")

	asset := f.tg.Arena.Alloc(0x100)
	f.ptr(f.tg.Off(svc, is.DataAsset), asset)
	other := f.tg.Arena.Alloc(0x100)
	f.put(f.tg.Off(other, is.Name), plunder)
	target := f.tg.Arena.Alloc(0x100)
	f.put(f.tg.Off(target, is.Name), crooks)
	f.put(f.tg.Off(asset, is.DataEntries), f.tg.Array([]process.ProcessMemoryAddress{other, target}))

	wmd := f.tg.Arena.Alloc(0x100)
	f.ptr(f.tg.Off(target, is.WorldMapData), wmd)
	f.put(f.tg.Off(wmd, is.CaptureParams), remote.FWorldMapIslandDataCaptureParams{
		WorldSpaceCameraPosition: remote.FVector{X: 5000},
		CameraOrthoWidth:         1041.669,
	})

	islands := f.tg.Arena.Alloc(process.ProcessMemorySize(2 * is.IslandStride))
	f.put(islands, plunder)
	f.put(f.tg.Off(islands, is.BoundsCenter), remote.FVector{X: -9000})
	f.put(f.tg.Off(islands, is.IslandStride), crooks)
	f.put(f.tg.Off(islands, is.IslandStride+is.BoundsCenter), remote.FVector{X: 8000})
	f.put(f.tg.Off(svc, is.IslandArray), remote.TArray{Data: uint64(islands), Count: 2, Max: 2})

	m := f.tg.AddActor("BP_TreasureMap_C", remote.FVector{})
	path := utf16.Encode([]rune("/Game/Maps/CrooksHollow_Map"))
	buf := f.tg.Arena.Alloc(128)
	f.put(buf, append(path, 0))
	f.put(f.tg.Off(m, tm.TexturePath), remote.TArray{Data: uint64(buf), Count: int32(len(path) + 1), Max: int32(len(path) + 1)})

	marks := f.tg.Arena.Alloc(process.ProcessMemorySize(tm.MarkStride))
	f.put(marks, remote.FVector{X: 0.5, Y: 0.5})
	f.put(f.tg.Off(m, tm.Marks), remote.TArray{Data: uint64(marks), Count: 1, Max: 1})
	f.put(f.tg.Off(m, tm.MarksRotation), float32(30))
	return m
}

func TestTreasureMap(t *testing.T) {
	f := newFixture(t)
	m := f.islandWorld(t)

	out := f.handle(t, TreasureMap{}, m)
	require.Len(t, out, 2)

	assert.Equal(t, "TargetIsland", out[0].Label)
	assert.InDelta(t, 960, out[0].X, 1e-6)

	assert.Equal(t, "X", out[1].Label)
	assert.Equal(t, render.Red, out[1].Color)
	assert.InDelta(t, 960, out[1].X, 1e-6)
}

func TestTreasureMap_Gated(t *testing.T) {
	f := newFixture(t)
	m := f.islandWorld(t)

	p := control.Defaults()
	p.XMaps = false
	f.tr.SetParams(p)
	assert.Empty(t, f.handle(t, TreasureMap{}, m))

	f.tr.SetParams(control.Defaults())
	f.tr.SetIslandService(0)
	assert.Empty(t, f.handle(t, TreasureMap{}, m))
}

func TestDebugName(t *testing.T) {
	f := newFixture(t)
	near := f.tg.AddActor("BP_Barrel_Something_C", remote.FVector{X: 500})
	far := f.tg.AddActor("BP_Barrel_Something_C", remote.FVector{X: 1500})

	DebugName(f.env, f.record(t, near))
	DebugName(f.env, f.record(t, far))
	out := f.q.Swap(nil)
	require.Len(t, out, 1)
	assert.Equal(t, "BP_Barrel_Something_C", out[0].Label)
}
