// Package remotetest builds synthetic targets for tests: an in-memory image
// laid out the way the default layout expects, with a name table, a world,
// levels and actors.
package remotetest

import (
	"fmt"

	"gosight/layout"
	"gosight/process"
	"gosight/process_blob"
	"gosight/remote"
)

const (
	Base      process.ProcessMemoryAddress = 0x140000000
	ArenaBase process.ProcessMemoryAddress = 0x200000000
	ArenaSize process.ProcessMemorySize    = 0x400000
)

// Target is a fake attached process.
type Target struct {
	Image  *process_blob.Image
	Arena  *process_blob.Arena
	Layout *layout.Layout
	Acc    *remote.Accessor

	names     process.ProcessMemoryAddress
	pages     map[uint64]process.ProcessMemoryAddress
	world     process.ProcessMemoryAddress
	levels    []process.ProcessMemoryAddress
	nextID    int32
	nameByStr map[string]int32
}

func New() (*Target, error) {
	lay := layout.Default()
	img := process_blob.NewImage()

	for _, off := range []uint64{lay.Globals.UWorld, lay.Globals.GNames, lay.Globals.GObjects} {
		if err := img.Map(Base.Add(process.ProcessMemorySize(off)), 8, "rw-p"); err != nil {
			return nil, err
		}
	}
	arena, err := process_blob.NewArena(img, ArenaBase, ArenaSize)
	if err != nil {
		return nil, err
	}

	t := &Target{
		Image:     img,
		Arena:     arena,
		Layout:    lay,
		pages:     make(map[uint64]process.ProcessMemoryAddress),
		nextID:    1,
		nameByStr: make(map[string]int32),
	}

	// room for 16 name pages
	t.names = arena.Alloc(16 * 8)
	if err := arena.PutPointer(Base.Add(process.ProcessMemorySize(lay.Globals.GNames)), t.names); err != nil {
		return nil, err
	}

	t.world = arena.Alloc(0x400)
	if err := arena.PutPointer(Base.Add(process.ProcessMemorySize(lay.Globals.UWorld)), t.world); err != nil {
		return nil, err
	}

	t.Acc = remote.New(img, process.Handle{PID: 4242, BaseAddress: Base}, lay)
	return t, nil
}

// Must panics on error; fixtures are expected to fit.
func Must(t *Target, err error) *Target {
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Target) World() process.ProcessMemoryAddress { return t.world }

func (t *Target) Off(addr process.ProcessMemoryAddress, off uint64) process.ProcessMemoryAddress {
	return addr.Add(process.ProcessMemorySize(off))
}

// SetName installs name under id in the paged table.
func (t *Target) SetName(id int32, name string) error {
	n := t.Layout.Names
	page := uint64(id) / n.PageSize
	slot := uint64(id) % n.PageSize
	if page >= 16 {
		return fmt.Errorf("id %d beyond fixture pages", id)
	}

	pagePtr, ok := t.pages[page]
	if !ok {
		pagePtr = t.Arena.Alloc(process.ProcessMemorySize(n.PageSize * n.EntryStride))
		t.pages[page] = pagePtr
		if err := t.Arena.PutPointer(t.names.Add(process.ProcessMemorySize(page*n.EntryStride)), pagePtr); err != nil {
			return err
		}
	}

	entry := t.Arena.Alloc(process.ProcessMemorySize(n.StringOffset + n.MaxLength))
	raw := []byte(name)
	if uint64(len(raw)) >= n.MaxLength {
		raw = raw[:n.MaxLength-1]
	}
	if err := t.Image.Poke(t.Off(entry, n.StringOffset), raw); err != nil {
		return err
	}
	if err := t.Arena.PutPointer(pagePtr.Add(process.ProcessMemorySize(slot*n.EntryStride)), entry); err != nil {
		return err
	}
	t.nameByStr[name] = id
	return nil
}

// Intern returns the id of name, installing it on first use.
func (t *Target) Intern(name string) int32 {
	if id, ok := t.nameByStr[name]; ok {
		return id
	}
	id := t.nextID
	t.nextID++
	if err := t.SetName(id, name); err != nil {
		panic(err)
	}
	return id
}

// AddActor allocates a 4 KiB actor object carrying the interned id of name
// and a root component at pos.
func (t *Target) AddActor(name string, pos remote.FVector) process.ProcessMemoryAddress {
	a := t.Layout.Actor
	actor := t.Arena.Alloc(0x1000)
	t.must(t.Arena.Put(t.Off(actor, a.ID), t.Intern(name)))

	root := t.Arena.Alloc(0x200)
	t.must(t.Arena.PutPointer(t.Off(actor, a.RootComponent), root))
	t.must(t.Arena.Put(t.Off(root, a.RelativeLocation), pos))
	return actor
}

// AddLevel allocates a level whose actor array holds actors, in order.
// Zero entries stay null.
func (t *Target) AddLevel(actors ...process.ProcessMemoryAddress) process.ProcessMemoryAddress {
	level := t.Arena.Alloc(0x200)
	t.must(t.Arena.Put(t.Off(level, t.Layout.Level.ActorArray), t.array(actors)))
	t.levels = append(t.levels, level)
	return level
}

// SetPersistentLevel points the world at level and lists every level added
// so far as the world's level array, persistent first.
func (t *Target) SetPersistentLevel(level process.ProcessMemoryAddress) {
	w := t.Layout.World
	t.must(t.Arena.PutPointer(t.Off(t.world, w.PersistentLevel), level))

	all := []process.ProcessMemoryAddress{level}
	for _, l := range t.levels {
		if l != level {
			all = append(all, l)
		}
	}
	t.must(t.Arena.Put(t.Off(t.world, w.Levels), t.array(all)))
}

// Array stores the pointers and returns a header describing them.
func (t *Target) Array(ptrs []process.ProcessMemoryAddress) remote.TArray {
	return t.array(ptrs)
}

func (t *Target) array(ptrs []process.ProcessMemoryAddress) remote.TArray {
	if len(ptrs) == 0 {
		return remote.TArray{}
	}
	data := t.Arena.Alloc(process.ProcessMemorySize(len(ptrs) * 8))
	raw := make([]uint64, len(ptrs))
	for i, p := range ptrs {
		raw[i] = uint64(p)
	}
	t.must(t.Arena.Put(data, raw))
	return remote.TArray{Data: uint64(data), Count: int32(len(ptrs)), Max: int32(len(ptrs))}
}

// Viewer installs a local player whose camera cache holds pov, and returns
// the controller and pawn addresses.
func (t *Target) Viewer(pov remote.FMinimalViewInfo) (controller, pawn process.ProcessMemoryAddress) {
	lp := t.Layout.LocalPlayer
	w := t.Layout.World

	gameInstance := t.Arena.Alloc(0x100)
	t.must(t.Arena.PutPointer(t.Off(t.world, w.GameInstance), gameInstance))

	players := t.Arena.Alloc(8)
	t.must(t.Arena.PutPointer(t.Off(gameInstance, lp.LocalPlayers), players))

	player := t.Arena.Alloc(0x100)
	t.must(t.Arena.PutPointer(players, player))

	controller = t.Arena.Alloc(0x800)
	t.must(t.Arena.PutPointer(t.Off(player, lp.PlayerController), controller))

	pawn = t.AddActor("BP_PlayerPirate_C", pov.Location)
	t.must(t.Arena.PutPointer(t.Off(controller, lp.Pawn), pawn))

	cam := t.Arena.Alloc(0x600)
	t.must(t.Arena.PutPointer(t.Off(controller, lp.CameraManager), cam))
	t.must(t.Arena.Put(t.Off(cam, lp.CameraCache), remote.FCameraCacheEntry{POV: pov}))
	return controller, pawn
}

func (t *Target) must(err error) {
	if err != nil {
		panic(err)
	}
}
