// Package directory walks the target's level actor arrays and turns each
// actor pointer into a named record.
//
// Every scan loop owns its own Directory. Names are interned by the target and
// never change while it runs, so a Directory resolves each id at most once and
// keeps the answer (or the failure) forever. Two loops may resolve the same id
// independently; that costs a few reads and needs no locking.
package directory

import (
	"errors"
	"fmt"

	"gosight/layout"
	"gosight/pod"
	"gosight/process"
	"gosight/remote"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Source is what a Directory needs from the attached process.
type Source interface {
	process.Reader
	Layout() *layout.Layout
	World() (process.ProcessMemoryAddress, error)
	NameTable() (process.ProcessMemoryAddress, error)
	ReadName(table process.ProcessMemoryAddress, id int32) (string, error)
}

// EntityRecord is one actor seen during a walk. Key is left empty here and
// filled in by the classifier.
type EntityRecord struct {
	Address process.ProcessMemoryAddress
	NameID  int32
	Name    string
	Key     string
}

type Directory struct {
	src Source
	lay *layout.Layout
	log *logger.Logger

	table       process.ProcessMemoryAddress
	names       map[int32]string
	unresolved  map[int32]struct{}
	resolutions int
}

func New(src Source, label string) *Directory {
	return &Directory{
		src:        src,
		lay:        src.Layout(),
		log:        logger.NewLogger(coloransi.Color(coloransi.Yellow, coloransi.Black, "directory-"+label)),
		names:      make(map[int32]string),
		unresolved: make(map[int32]struct{}),
	}
}

// Resolutions is the number of times this Directory went to the target for a
// name. Cache hits do not count.
func (d *Directory) Resolutions() int { return d.resolutions }

// Cached is the number of ids with a known name.
func (d *Directory) Cached() int { return len(d.names) }

// PersistentLevel returns the world's persistent level.
func (d *Directory) PersistentLevel() (process.ProcessMemoryAddress, error) {
	world, err := d.src.World()
	if err != nil {
		return 0, fmt.Errorf("world: %w", err)
	}
	return remote.ReadPointer(d.src, world.Add(process.ProcessMemorySize(d.lay.World.PersistentLevel)))
}

// SecondaryLevels returns every streamed level after the persistent one.
// Null entries are dropped.
func (d *Directory) SecondaryLevels() ([]process.ProcessMemoryAddress, error) {
	world, err := d.src.World()
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	arr, err := remote.ReadArray(d.src, world.Add(process.ProcessMemorySize(d.lay.World.Levels)))
	if err != nil {
		return nil, err
	}
	levels, err := remote.ReadPointerArray(d.src, arr, d.lay.Limits.MaxLevels)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	if len(levels) <= 1 {
		return nil, nil
	}

	out := make([]process.ProcessMemoryAddress, 0, len(levels)-1)
	for _, l := range levels[1:] {
		if !l.IsNull() {
			out = append(out, l)
		}
	}
	return out, nil
}

// Walk reads the level's actor array and returns a record for every actor
// with a resolvable, non-empty name, in array order.
func (d *Directory) Walk(level process.ProcessMemoryAddress) ([]EntityRecord, error) {
	arr, err := remote.ReadArray(d.src, level.Add(process.ProcessMemorySize(d.lay.Level.ActorArray)))
	if err != nil {
		return nil, fmt.Errorf("actor array: %w", err)
	}

	actors, err := remote.ReadPointerArray(d.src, arr, d.lay.Limits.MaxActors)
	if err != nil {
		return nil, fmt.Errorf("actors: %w", err)
	}

	live := make([]process.ProcessMemoryAddress, 0, len(actors))
	idAddrs := make([]process.ProcessMemoryAddress, 0, len(actors))
	for _, a := range actors {
		if a.IsNull() {
			continue
		}
		live = append(live, a)
		idAddrs = append(idAddrs, a.Add(process.ProcessMemorySize(d.lay.Actor.ID)))
	}

	ids := remote.ReadVec(d.src, idAddrs, 4)

	records := make([]EntityRecord, 0, len(live))
	for i, res := range ids {
		if res.Err != nil {
			continue
		}
		id, err := pod.Decode[int32](res.Data)
		if err != nil || id == 0 {
			continue
		}
		name, ok := d.Resolve(id)
		if !ok {
			continue
		}
		records = append(records, EntityRecord{Address: live[i], NameID: id, Name: name})
	}
	return records, nil
}

// Resolve returns the name of id, going to the target only the first time id
// is seen.
func (d *Directory) Resolve(id int32) (string, bool) {
	if id == 0 {
		return "", false
	}
	if name, ok := d.names[id]; ok {
		return name, true
	}
	if _, bad := d.unresolved[id]; bad {
		return "", false
	}

	if d.table.IsNull() {
		table, err := d.src.NameTable()
		if err != nil {
			d.log.Debugln("name table unavailable:", err)
			return "", false
		}
		d.table = table
	}

	d.resolutions++
	name, err := d.src.ReadName(d.table, id)
	if err != nil || name == "" {
		d.unresolved[id] = struct{}{}
		if err == nil {
			err = remote.ErrNameUnresolved
		}
		if !errors.Is(err, remote.ErrNameUnresolved) {
			err = fmt.Errorf("%w: %w", remote.ErrNameUnresolved, err)
		}
		d.log.Warn("unresolvable name id ", id, ": ", err)
		return "", false
	}

	d.names[id] = name
	return name, true
}

// ResolveAt reads the name id stored in the actor at addr and resolves it.
func (d *Directory) ResolveAt(actor process.ProcessMemoryAddress) (string, bool) {
	id, err := remote.Read[int32](d.src, actor.Add(process.ProcessMemorySize(d.lay.Actor.ID)))
	if err != nil {
		return "", false
	}
	return d.Resolve(id)
}
